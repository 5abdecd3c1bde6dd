package steering

import "github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"

// PredictionTime returns how far ahead (seconds) Pursue and Evade look.
// When the agent is too slow to close the distance within MaxPrediction, or
// is not moving at all, the look-ahead is MaxPrediction. Otherwise it is the
// time to close the distance at the current speed.
func PredictionTime(agent, target Kinematic, cfg Config) float64 {
	distance := target.Position.DistanceTo(agent.Position)
	speed := agent.Speed()
	if cfg.MaxPrediction <= 0 {
		return 0
	}
	if speed <= distance/cfg.MaxPrediction {
		return cfg.MaxPrediction
	}
	return distance / speed
}

// PredictTarget returns where the target will be after PredictionTime if it
// keeps its current velocity.
func PredictTarget(agent, target Kinematic, cfg Config) geometry.Vector3D {
	return target.Position.Add(target.Velocity.Mul(PredictionTime(agent, target, cfg)))
}

// Pursue seeks the predicted future position of a moving target while facing
// its current position.
func Pursue(agent, target Kinematic, cfg Config) Output {
	predicted := PredictTarget(agent, target, cfg)
	out := Output{Command: Command{
		Linear:  seekLinear(agent.Position, predicted, cfg),
		Angular: Face(agent, target, cfg).Angular,
	}}
	out.annotate(
		Point("predicted", predicted),
		Circle("target radius", target.Position, cfg.TargetRadiusL),
	)
	return out
}

// PursueWithArrive pursues from afar and switches to Arrive once the target
// is closer than TargetRadiusL, which keeps the pursuer from oscillating
// around a close target.
func PursueWithArrive(agent, target Kinematic, cfg Config) Output {
	if agent.Position.DistanceTo(target.Position) < cfg.TargetRadiusL {
		return Arrive(agent, target, cfg)
	}
	return Pursue(agent, target, cfg)
}

// Evade flees the predicted intercept point while turning its back to the
// threat: Pursue's linear command negated, FaceAway's angular command.
func Evade(agent, target Kinematic, cfg Config) Output {
	out := Pursue(agent, target, cfg)
	out.Linear = out.Linear.Neg()
	out.Angular = FaceAway(agent, target, cfg).Angular
	return out
}
