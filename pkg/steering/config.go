package steering

import (
	"errors"
	"fmt"
	"math"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

// Config holds the per-agent tunables. It is set once when an agent is
// configured and treated as immutable while a phase runs.
type Config struct {
	// Linear limits
	MaxSpeed        float64 `json:"maxSpeed" yaml:"maxSpeed"`
	MaxAcceleration float64 `json:"maxAcceleration" yaml:"maxAcceleration"`

	// Angular limits
	MaxRotation            float64 `json:"maxRotation" yaml:"maxRotation"`
	MaxAngularAcceleration float64 `json:"maxAngularAcceleration" yaml:"maxAngularAcceleration"`

	// Arrive (linear) and Face/Align (angular) zones
	TargetRadiusL float64 `json:"targetRadiusL" yaml:"targetRadiusL"`
	SlowRadiusL   float64 `json:"slowRadiusL" yaml:"slowRadiusL"`
	TargetRadiusA float64 `json:"targetRadiusA" yaml:"targetRadiusA"`
	SlowRadiusA   float64 `json:"slowRadiusA" yaml:"slowRadiusA"`
	TimeToTarget  float64 `json:"timeToTarget" yaml:"timeToTarget"`

	// Pursue / Evade look-ahead cap in seconds
	MaxPrediction float64 `json:"maxPrediction" yaml:"maxPrediction"`

	// Wander
	WanderOffset float64 `json:"wanderOffset" yaml:"wanderOffset"`
	WanderRadius float64 `json:"wanderRadius" yaml:"wanderRadius"`
	WanderRate   float64 `json:"wanderRate" yaml:"wanderRate"`

	// Static and scripted movement
	StaticOrientation float64           `json:"staticOrientation" yaml:"staticOrientation"`
	ScriptedLinear    geometry.Vector3D `json:"scriptedLinear" yaml:"scriptedLinear"`
}

// DefaultConfig returns tunables that give readable motion on a field a few
// tens of meters wide.
func DefaultConfig() Config {
	return Config{
		MaxSpeed:               4.0,
		MaxAcceleration:        2.0,
		MaxRotation:            math.Pi,
		MaxAngularAcceleration: 2 * math.Pi,
		TargetRadiusL:          0.5,
		SlowRadiusL:            5.0,
		TargetRadiusA:          math.Pi / 4,
		SlowRadiusA:            math.Pi / 2,
		TimeToTarget:           0.1,
		MaxPrediction:          1.0,
		WanderOffset:           2.0,
		WanderRadius:           1.0,
		WanderRate:             0.3,
		StaticOrientation:      2.0,
		// 2 * forward + 3 * left
		ScriptedLinear: geometry.Vector3D{X: -3, Y: 0, Z: 2},
	}
}

// Validate checks the tunables for values that would make a behavior divide
// by zero or produce NaN. The returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error
	type field struct {
		name  string
		value float64
	}
	nonNegative := []field{
		{"maxAcceleration", c.MaxAcceleration},
		{"maxRotation", c.MaxRotation},
		{"maxAngularAcceleration", c.MaxAngularAcceleration},
		{"targetRadiusL", c.TargetRadiusL},
		{"slowRadiusL", c.SlowRadiusL},
		{"targetRadiusA", c.TargetRadiusA},
		{"slowRadiusA", c.SlowRadiusA},
		{"wanderOffset", c.WanderOffset},
		{"wanderRadius", c.WanderRadius},
		{"wanderRate", c.WanderRate},
	}
	for _, f := range nonNegative {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			errs = append(errs, fmt.Errorf("%s must be a finite value >= 0, got %v", f.name, f.value))
		}
	}
	positive := []field{
		{"maxSpeed", c.MaxSpeed},
		{"timeToTarget", c.TimeToTarget},
		{"maxPrediction", c.MaxPrediction},
	}
	for _, p := range positive {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be a finite value > 0, got %v", p.name, p.value))
		}
	}
	if !c.ScriptedLinear.IsFinite() {
		errs = append(errs, fmt.Errorf("scriptedLinear must be finite, got %s", c.ScriptedLinear))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
