// Package steering computes, once per simulation tick, the linear and angular
// acceleration an agent applies to seek, flee, arrive, pursue, evade, face,
// align or wander relative to a target, and integrates that command into the
// agent's kinematic state.
//
// Every behavior is a pure function of the agent state, the target state and
// the Config, except Wander which also advances the agent's WanderState.
package steering

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

// Kinematic is the steerable state of one agent.
// Orientation is a heading in radians around the vertical axis (0 looks down
// +Z). It is unbounded, compare two orientations only through MapToRange.
type Kinematic struct {
	Position        geometry.Vector3D `json:"position" yaml:"position"`
	Velocity        geometry.Vector3D `json:"velocity" yaml:"velocity"`
	Orientation     float64           `json:"orientation" yaml:"orientation"`
	AngularVelocity float64           `json:"angularVelocity" yaml:"angularVelocity"`
}

// Heading returns the unit vector the agent is facing.
func (k Kinematic) Heading() geometry.Vector3D {
	return geometry.NewVectorHeading(k.Orientation)
}

// Speed returns the magnitude of the velocity.
func (k Kinematic) Speed() float64 {
	return k.Velocity.Len()
}

func (k Kinematic) String() string {
	return fmt.Sprintf("pos=%s vel=%s orient=%.3f rot=%.3f",
		k.Position, k.Velocity, k.Orientation, k.AngularVelocity)
}
