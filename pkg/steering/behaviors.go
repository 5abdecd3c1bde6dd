package steering

import "github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"

// Seek accelerates at full MaxAcceleration straight toward the target while
// turning to face it. Coincident positions give a zero linear command.
func Seek(agent, target Kinematic, cfg Config) Output {
	return Output{Command: Command{
		Linear:  seekLinear(agent.Position, target.Position, cfg),
		Angular: Face(agent, target, cfg).Angular,
	}}
}

// Flee is the exact opposite of Seek's linear command, without rotation.
func Flee(agent, target Kinematic, cfg Config) Output {
	return Output{Command: Command{
		Linear: seekLinear(agent.Position, target.Position, cfg).Neg(),
	}}
}

func seekLinear(from, to geometry.Vector3D, cfg Config) geometry.Vector3D {
	return to.Sub(from).Normalize().Mul(cfg.MaxAcceleration)
}

// Arrive is a decelerating Seek that comes to rest at the target.
//
// Beyond SlowRadiusL the agent aims for MaxSpeed, inside it the aimed speed
// ramps down linearly with distance, and inside TargetRadiusL it aims for a
// standstill. The command is the velocity correction reached within
// TimeToTarget, clamped to MaxAcceleration, and is zero once the agent rests
// inside TargetRadiusL. The agent settles without overshoot as long as it is
// integrated with a dt no longer than TimeToTarget.
func Arrive(agent, target Kinematic, cfg Config) Output {
	out := Output{}
	out.annotate(
		Circle("slow radius", target.Position, cfg.SlowRadiusL),
		Circle("target radius", target.Position, cfg.TargetRadiusL),
	)

	direction := target.Position.Sub(agent.Position)
	distance := direction.Len()

	var targetSpeed float64
	switch {
	case distance < cfg.TargetRadiusL:
		if agent.Velocity.IsZero() {
			return out
		}
		targetSpeed = 0
	case distance > cfg.SlowRadiusL || cfg.SlowRadiusL <= 0:
		targetSpeed = cfg.MaxSpeed
	default:
		targetSpeed = cfg.MaxSpeed * distance / cfg.SlowRadiusL
	}

	desired := direction.Normalize().Mul(targetSpeed)
	out.Linear = velocityCorrection(desired, agent.Velocity, cfg)
	return out
}

// velocityCorrection is the acceleration that brings current to desired
// within TimeToTarget, clamped to MaxAcceleration.
func velocityCorrection(desired, current geometry.Vector3D, cfg Config) geometry.Vector3D {
	diff := desired.Sub(current)
	if cfg.TimeToTarget > 0 {
		diff = diff.Mul(1 / cfg.TimeToTarget)
	}
	return diff.ClampLen(cfg.MaxAcceleration)
}

// Face turns the agent toward the bearing of the target. There is no linear
// component, and a target on top of the agent gives a zero command.
func Face(agent, target Kinematic, cfg Config) Output {
	return faceBearing(agent, agent.Position, target.Position, cfg)
}

// FaceAway turns the agent's back to the target.
func FaceAway(agent, target Kinematic, cfg Config) Output {
	return faceBearing(agent, target.Position, agent.Position, cfg)
}

// faceBearing turns the agent toward the bearing from one point to another.
func faceBearing(agent Kinematic, from, to geometry.Vector3D, cfg Config) Output {
	if to.Sub(from).Flat().IsZero() {
		return Output{}
	}
	return Output{Command: Command{Angular: Rotate(cfg, agent, from.BearingTo(to))}}
}

// Align matches the target's orientation rather than its bearing.
func Align(agent, target Kinematic, cfg Config) Output {
	return Output{Command: Command{Angular: Rotate(cfg, agent, target.Orientation)}}
}
