package steering

import "math"

// MapToRange folds an arbitrary rotation (radians) into (-Pi, Pi].
// MapToRange(x) == MapToRange(x + 2*Pi*k) for any integer k, up to float
// rounding. Non-finite input maps to 0.
func MapToRange(rotation float64) float64 {
	if math.IsNaN(rotation) || math.IsInf(rotation, 0) {
		return 0
	}
	r := math.Mod(rotation, 2*math.Pi)
	switch {
	case r > math.Pi:
		r -= 2 * math.Pi
	case r <= -math.Pi:
		r += 2 * math.Pi
	}
	return r
}

// Rotate returns the angular acceleration that turns the agent toward the
// desired orientation along the shorter way round.
//
// Outside TargetRadiusA the folded delta itself is the command (full turn
// commitment). Inside it the agent aims for a rotation speed of
// MaxRotation*delta/SlowRadiusA, and the command is the change of
// angular velocity needed to reach it within TimeToTarget. A zero SlowRadiusA
// disables the damped zone. The result is clamped to MaxAngularAcceleration.
func Rotate(cfg Config, agent Kinematic, desired float64) float64 {
	rotation := MapToRange(desired - agent.Orientation)
	angular := rotation

	if math.Abs(rotation) < cfg.TargetRadiusA && cfg.SlowRadiusA > 0 {
		targetRotation := cfg.MaxRotation * rotation / cfg.SlowRadiusA
		angular = perTimeToTarget(targetRotation-agent.AngularVelocity, cfg)
	}

	return clamp(angular, cfg.MaxAngularAcceleration)
}

// clamp limits v to [-limit, limit].
func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}

// perTimeToTarget turns a difference into the rate that closes it within
// TimeToTarget. A non-positive TimeToTarget closes it in one unit of time.
func perTimeToTarget(diff float64, cfg Config) float64 {
	if cfg.TimeToTarget <= 0 {
		return diff
	}
	return diff / cfg.TimeToTarget
}
