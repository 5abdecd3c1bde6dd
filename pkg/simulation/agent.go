package simulation

import (
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
)

// Role is the kind of creature an agent plays. It only changes how the agent
// is labelled and drawn.
type Role string

const (
	RoleHunter Role = "hunter"
	RoleWolf   Role = "wolf"
)

// Agent is one steerable character of the World.
type Agent struct {
	ID       string
	Role     Role
	Kind     steering.Kind
	TargetID string // empty when the agent has no target
	State    steering.Kinematic
	Label    string

	// Per-agent behavior memory, only touched by the goroutine evaluating
	// this agent during a step.
	Wander *steering.WanderState
	Script steering.Scripter

	// Annotations of the last successful evaluation
	Annotations []steering.Annotation
}

// NewAgent creates an agent with a fresh random ID.
func NewAgent(role Role, kind steering.Kind, state steering.Kinematic) *Agent {
	return &Agent{
		ID:    uuid.NewString(),
		Role:  role,
		Kind:  kind,
		State: state,
		Label: Label(role, kind),
	}
}

// Label is the text a renderer shows next to an agent.
func Label(role Role, kind steering.Kind) string {
	switch kind {
	case steering.KindStatic:
		return fmt.Sprintf("%s\nStatic NPC", role)
	case steering.KindScripted:
		return fmt.Sprintf("%s\nMoving towards Left Corner", role)
	default:
		return fmt.Sprintf("%s\nAlgorithm: %s", role, kind)
	}
}

// AgentView is a read-only copy of an agent handed to renderers and actor
// clients.
type AgentView struct {
	ID          string                `json:"id"`
	Role        Role                  `json:"role"`
	Kind        steering.Kind         `json:"kind"`
	TargetID    string                `json:"targetId,omitempty"`
	Label       string                `json:"label"`
	State       steering.Kinematic    `json:"state"`
	Annotations []steering.Annotation `json:"annotations,omitempty"`
}

// View copies the agent.
func (a *Agent) View() AgentView {
	v := AgentView{
		ID:       a.ID,
		Role:     a.Role,
		Kind:     a.Kind,
		TargetID: a.TargetID,
		Label:    a.Label,
		State:    a.State,
	}
	if len(a.Annotations) > 0 {
		v.Annotations = append([]steering.Annotation(nil), a.Annotations...)
	}
	return v
}

// ToProto converts the view into a protobuf Struct envelope.
func (v AgentView) ToProto() (*structpb.Struct, error) {
	annotations := make([]interface{}, 0, len(v.Annotations))
	for _, a := range v.Annotations {
		annotations = append(annotations, map[string]interface{}{
			"shape":  float64(a.Shape),
			"label":  a.Label,
			"center": vectorToMap(a.Center),
			"radius": a.Radius,
		})
	}
	return structpb.NewStruct(map[string]interface{}{
		"id":              v.ID,
		"role":            string(v.Role),
		"kind":            v.Kind.String(),
		"targetId":        v.TargetID,
		"label":           v.Label,
		"position":        vectorToMap(v.State.Position),
		"velocity":        vectorToMap(v.State.Velocity),
		"orientation":     v.State.Orientation,
		"angularVelocity": v.State.AngularVelocity,
		"annotations":     annotations,
	})
}

// AgentViewFromProto converts a Struct produced by ToProto back into a view.
func AgentViewFromProto(s *structpb.Struct) (AgentView, error) {
	f := s.GetFields()
	kind, err := steering.ParseKind(f["kind"].GetStringValue())
	if err != nil {
		return AgentView{}, err
	}
	v := AgentView{
		ID:       f["id"].GetStringValue(),
		Role:     Role(f["role"].GetStringValue()),
		Kind:     kind,
		TargetID: f["targetId"].GetStringValue(),
		Label:    f["label"].GetStringValue(),
		State: steering.Kinematic{
			Position:        vectorFromValue(f["position"]),
			Velocity:        vectorFromValue(f["velocity"]),
			Orientation:     f["orientation"].GetNumberValue(),
			AngularVelocity: f["angularVelocity"].GetNumberValue(),
		},
	}
	for _, item := range f["annotations"].GetListValue().GetValues() {
		af := item.GetStructValue().GetFields()
		v.Annotations = append(v.Annotations, steering.Annotation{
			Shape:  steering.Shape(af["shape"].GetNumberValue()),
			Label:  af["label"].GetStringValue(),
			Center: vectorFromValue(af["center"]),
			Radius: af["radius"].GetNumberValue(),
		})
	}
	return v, nil
}

func vectorToMap(v geometry.Vector3D) map[string]interface{} {
	return map[string]interface{}{"x": v.X, "y": v.Y, "z": v.Z}
}

func vectorFromValue(v *structpb.Value) geometry.Vector3D {
	f := v.GetStructValue().GetFields()
	return geometry.NewVector(f["x"].GetNumberValue(), f["y"].GetNumberValue(), f["z"].GetNumberValue())
}

// ToProto converts the snapshot into a protobuf Struct envelope.
func (s *Snapshot) ToProto() (*structpb.Struct, error) {
	agents := make([]interface{}, 0, len(s.Agents))
	for _, a := range s.Agents {
		pb, err := a.ToProto()
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.ID, err)
		}
		agents = append(agents, pb.AsMap())
	}
	return structpb.NewStruct(map[string]interface{}{
		"tick":   float64(s.Tick),
		"phase":  float64(s.Phase),
		"agents": agents,
	})
}

// SnapshotFromProto converts a Struct produced by Snapshot.ToProto back.
func SnapshotFromProto(pb *structpb.Struct) (*Snapshot, error) {
	f := pb.GetFields()
	s := &Snapshot{
		Tick:  uint64(f["tick"].GetNumberValue()),
		Phase: Phase(f["phase"].GetNumberValue()),
	}
	for _, item := range f["agents"].GetListValue().GetValues() {
		v, err := AgentViewFromProto(item.GetStructValue())
		if err != nil {
			return nil, err
		}
		s.Agents = append(s.Agents, v)
	}
	return s, nil
}
