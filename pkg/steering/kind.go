package steering

import (
	"fmt"
	"strings"
)

// Kind selects the behavior an agent runs this tick.
type Kind int

const (
	KindNone Kind = iota
	KindSeek
	KindFlee
	KindArrive
	KindPursue
	KindPursueWithArrive
	KindEvade
	KindFace
	KindFaceAway
	KindAlign
	KindWander
	KindStatic
	KindScripted
)

var kindNames = map[Kind]string{
	KindNone:             "none",
	KindSeek:             "seek",
	KindFlee:             "flee",
	KindArrive:           "arrive",
	KindPursue:           "pursue",
	KindPursueWithArrive: "pursue-with-arrive",
	KindEvade:            "evade",
	KindFace:             "face",
	KindFaceAway:         "face-away",
	KindAlign:            "align",
	KindWander:           "wander",
	KindStatic:           "static",
	KindScripted:         "scripted",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind returns the Kind named s, case-insensitively. Underscores and
// spaces are accepted in place of dashes.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("_", "-", " ", "-").Replace(name)
	for k, n := range kindNames {
		if n == name && k != KindNone {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("%w: %q", ErrUnknownBehavior, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := behaviors[k]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownBehavior, k)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// NeedsTarget reports whether the behavior steers relative to a target.
func (k Kind) NeedsTarget() bool {
	switch k {
	case KindSeek, KindFlee, KindArrive, KindPursue, KindPursueWithArrive,
		KindEvade, KindFace, KindFaceAway, KindAlign:
		return true
	}
	return false
}

// Request gathers everything one evaluation reads.
type Request struct {
	Kind   Kind
	Agent  Kinematic
	Target *Kinematic // nil when the agent has no target
	Config Config

	Wander *WanderState // required by KindWander, advanced in place
	Script Scripter     // optional for KindScripted
}

type behaviorFunc func(r Request) (Output, error)

// behaviors is the dispatch table from Kind to evaluation.
var behaviors = map[Kind]behaviorFunc{
	KindSeek:             targeted(Seek),
	KindFlee:             targeted(Flee),
	KindArrive:           targeted(Arrive),
	KindPursue:           targeted(Pursue),
	KindPursueWithArrive: targeted(PursueWithArrive),
	KindEvade:            targeted(Evade),
	KindFace:             targeted(Face),
	KindFaceAway:         targeted(FaceAway),
	KindAlign:            targeted(Align),
	KindWander: func(r Request) (Output, error) {
		if r.Wander == nil {
			return Output{}, ErrMissingState
		}
		return Wander(r.Agent, r.Wander, r.Config), nil
	},
	KindStatic: func(r Request) (Output, error) {
		return Static(r.Config), nil
	},
	KindScripted: func(r Request) (Output, error) {
		return Scripted(r.Agent, r.Script, r.Config)
	},
}

func targeted(fn func(agent, target Kinematic, cfg Config) Output) behaviorFunc {
	return func(r Request) (Output, error) {
		return fn(r.Agent, *r.Target, r.Config), nil
	}
}

// Evaluate runs the behavior selected by r.Kind.
//
// It fails with ErrUnknownBehavior for a Kind without behavior, with
// ErrInvalidConfig when the tunables do not validate and with
// ErrMissingTarget when a target-dependent Kind has no target. It never
// silently falls back to another behavior.
func Evaluate(r Request) (Output, error) {
	fn, ok := behaviors[r.Kind]
	if !ok {
		return Output{}, fmt.Errorf("%w: %s", ErrUnknownBehavior, r.Kind)
	}
	if err := r.Config.Validate(); err != nil {
		return Output{}, err
	}
	if r.Kind.NeedsTarget() && r.Target == nil {
		return Output{}, fmt.Errorf("%w: %s", ErrMissingTarget, r.Kind)
	}
	return fn(r)
}

// Kinds lists every Kind Evaluate accepts, in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(behaviors))
	for k := KindSeek; k <= KindScripted; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
