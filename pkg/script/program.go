// Package script runs scripted movement written in tengo.
//
// A movement script reads the agent state from the globals position,
// velocity and heading (arrays of three numbers), orientation and
// angular_velocity, and assigns the linear acceleration to the predeclared
// global linear:
//
//	linear = [-3, 0, 2]
//
// The tengo standard library is importable, e.g. math := import("math").
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
)

const (
	// DefaultTimeout bounds one script run.
	DefaultTimeout = 50 * time.Millisecond
	maxAllocs      = 10_000
)

// ErrBadOutput is returned when the script leaves linear in a shape that is
// not an array of three numbers.
var ErrBadOutput = errors.New("script: linear must be an array of three numbers")

// Program is a compiled movement script. It implements steering.Scripter.
// One Program serializes its runs; give every agent its own Clone to run
// them in parallel.
type Program struct {
	name     string
	timeout  time.Duration
	mu       sync.Mutex
	compiled *tengo.Compiled
}

// Compile compiles src. name identifies the script in errors.
func Compile(name string, src []byte) (*Program, error) {
	s := tengo.NewScript(src)
	s.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	s.SetMaxAllocs(maxAllocs)

	for _, global := range []string{"position", "velocity", "heading", "linear"} {
		if err := s.Add(global, []interface{}{0.0, 0.0, 0.0}); err != nil {
			return nil, fmt.Errorf("script %s: %w", name, err)
		}
	}
	for _, global := range []string{"orientation", "angular_velocity"} {
		if err := s.Add(global, 0.0); err != nil {
			return nil, fmt.Errorf("script %s: %w", name, err)
		}
	}

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script %s: compile: %w", name, err)
	}
	return &Program{name: name, timeout: DefaultTimeout, compiled: compiled}, nil
}

// Load reads and compiles the script file at path.
func Load(path string) (*Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("script: read %s: %w", path, err)
	}
	return Compile(path, src)
}

// Name returns the name given at compile time.
func (p *Program) Name() string { return p.name }

// WithTimeout sets the limit for a single run.
func (p *Program) WithTimeout(d time.Duration) *Program {
	p.timeout = d
	return p
}

// Clone returns an independent copy sharing the compiled bytecode.
func (p *Program) Clone() *Program {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &Program{name: p.name, timeout: p.timeout, compiled: p.compiled.Clone()}
}

// Linear runs the script for agent and returns the linear acceleration it
// assigned.
func (p *Program) Linear(agent steering.Kinematic) (geometry.Vector3D, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	inputs := map[string]interface{}{
		"position":         vectorToArray(agent.Position),
		"velocity":         vectorToArray(agent.Velocity),
		"heading":          vectorToArray(agent.Heading()),
		"linear":           []interface{}{0.0, 0.0, 0.0},
		"orientation":      agent.Orientation,
		"angular_velocity": agent.AngularVelocity,
	}
	for name, value := range inputs {
		if err := p.compiled.Set(name, value); err != nil {
			return geometry.Vector3D{}, fmt.Errorf("script %s: set %s: %w", p.name, name, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.compiled.RunContext(ctx); err != nil {
		return geometry.Vector3D{}, fmt.Errorf("script %s: %w", p.name, err)
	}

	v, err := arrayToVector(p.compiled.Get("linear").Array())
	if err != nil {
		return geometry.Vector3D{}, fmt.Errorf("script %s: %w", p.name, err)
	}
	return v, nil
}

func vectorToArray(v geometry.Vector3D) []interface{} {
	return []interface{}{v.X, v.Y, v.Z}
}

func arrayToVector(arr []interface{}) (geometry.Vector3D, error) {
	if len(arr) != 3 {
		return geometry.Vector3D{}, ErrBadOutput
	}
	var c [3]float64
	for i, item := range arr {
		switch n := item.(type) {
		case float64:
			c[i] = n
		case int64:
			c[i] = float64(n)
		default:
			return geometry.Vector3D{}, ErrBadOutput
		}
	}
	return geometry.NewVector(c[0], c[1], c[2]), nil
}
