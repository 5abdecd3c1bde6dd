package steering

import (
	"fmt"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

// Scripter computes a scripted linear acceleration for an agent.
type Scripter interface {
	Linear(agent Kinematic) (geometry.Vector3D, error)
}

// Static requests no acceleration and pins the heading to StaticOrientation.
func Static(cfg Config) Output {
	orientation := cfg.StaticOrientation
	return Output{PinnedOrientation: &orientation}
}

// Scripted applies the acceleration given by script, or the constant
// ScriptedLinear when script is nil. There is no angular component.
func Scripted(agent Kinematic, script Scripter, cfg Config) (Output, error) {
	if script == nil {
		return Output{Command: Command{Linear: cfg.ScriptedLinear}}, nil
	}
	linear, err := script.Linear(agent)
	if err != nil {
		return Output{}, fmt.Errorf("%w: %w", ErrScript, err)
	}
	if !linear.IsFinite() {
		return Output{}, fmt.Errorf("%w: non finite acceleration %s", ErrScript, linear)
	}
	return Output{Command: Command{Linear: linear}}, nil
}
