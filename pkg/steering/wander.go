package steering

import (
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

// Source is the uniform [0,1) random source used by Wander.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// WanderState is the per-agent memory of Wander. It must live next to the
// agent's Kinematic and survive between ticks: the wander offset is a random
// walk, not a fresh sample each tick.
type WanderState struct {
	// Orientation is the accumulated offset (radians) of the wander target
	// relative to the agent heading.
	Orientation float64
	// Rand is the random source. Nil uses the math/rand/v2 global source.
	Rand Source
}

// NewWanderState creates a wander memory drawing from src.
func NewWanderState(src Source) *WanderState {
	return &WanderState{Rand: src}
}

// binomial returns a value in (-1, 1) where values around zero are more
// likely: the difference of two independent uniform draws.
func (w *WanderState) binomial() float64 {
	if w.Rand == nil {
		return rand.Float64() - rand.Float64()
	}
	return w.Rand.Float64() - w.Rand.Float64()
}

// Wander drifts the agent's heading randomly while it always accelerates
// forward at MaxAcceleration.
//
// Each call moves state.Orientation by at most WanderRate, places a target on
// a circle of WanderRadius centred WanderOffset ahead of the agent, and turns
// toward that target.
func Wander(agent Kinematic, state *WanderState, cfg Config) Output {
	state.Orientation += state.binomial() * cfg.WanderRate

	heading := agent.Heading()
	center := agent.Position.Add(heading.Mul(cfg.WanderOffset))
	wanderTarget := center.Add(geometry.NewVectorHeading(state.Orientation + agent.Orientation).Mul(cfg.WanderRadius))

	out := faceBearing(agent, agent.Position, wanderTarget, cfg)
	out.Linear = heading.Mul(cfg.MaxAcceleration)
	out.annotate(
		Circle("wander circle", center, cfg.WanderRadius),
		Point("wander target", wanderTarget),
	)
	return out
}
