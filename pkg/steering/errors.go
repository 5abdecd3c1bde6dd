package steering

import "errors"

var (
	// ErrMissingTarget is returned when a behavior that steers relative to a
	// target is evaluated without one. The driver must set a target before
	// selecting a target-dependent Kind.
	ErrMissingTarget = errors.New("steering: behavior requires a target")

	// ErrUnknownBehavior is returned when the requested Kind has no behavior.
	ErrUnknownBehavior = errors.New("steering: unknown behavior kind")

	// ErrInvalidConfig is returned when Config.Validate fails.
	ErrInvalidConfig = errors.New("steering: invalid config")

	// ErrScript is returned when a scripted movement source fails.
	ErrScript = errors.New("steering: script failed")

	// ErrMissingState is returned when Wander is evaluated without the
	// agent's persistent WanderState.
	ErrMissingState = errors.New("steering: wander requires a wander state")
)
