package script

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
)

func TestProgram_Linear(t *testing.T) {
	p, err := Compile("constant", []byte(`linear = [-3, 0, 2]`))
	require.NoError(t, err)

	got, err := p.Linear(steering.Kinematic{})
	require.NoError(t, err)
	assert.Equal(t, geometry.NewVector(-3, 0, 2), got)
}

func TestProgram_ReadsAgentState(t *testing.T) {
	src := `
math := import("math")
linear = [-position[0], 0, velocity[2] * 2 + math.abs(orientation) + angular_velocity]
`
	p, err := Compile("mirror", []byte(src))
	require.NoError(t, err)

	agent := steering.Kinematic{
		Position:        geometry.NewVector(4, 0, 1),
		Velocity:        geometry.NewVector(0, 0, 1.5),
		Orientation:     -0.5,
		AngularVelocity: 0.25,
	}
	got, err := p.Linear(agent)
	require.NoError(t, err)
	assert.True(t, got.Eq(geometry.NewVector(-4, 0, 3.75)), "got %s", got)
}

func TestProgram_LinearResetsEachRun(t *testing.T) {
	p, err := Compile("conditional", []byte(`if position[0] > 0 { linear = [1, 0, 0] }`))
	require.NoError(t, err)

	got, err := p.Linear(steering.Kinematic{Position: geometry.NewVector(1, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, geometry.NewVector(1, 0, 0), got)

	got, err = p.Linear(steering.Kinematic{Position: geometry.NewVector(-1, 0, 0)})
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestProgram_Errors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := Compile("broken", []byte(`linear = [`))
		assert.Error(t, err)
	})

	t.Run("bad output", func(t *testing.T) {
		p, err := Compile("string", []byte(`linear = "north"`))
		require.NoError(t, err)
		_, err = p.Linear(steering.Kinematic{})
		assert.True(t, errors.Is(err, ErrBadOutput))
	})

	t.Run("wrong arity", func(t *testing.T) {
		p, err := Compile("short", []byte(`linear = [1, 2]`))
		require.NoError(t, err)
		_, err = p.Linear(steering.Kinematic{})
		assert.ErrorIs(t, err, ErrBadOutput)
	})

	t.Run("runaway loop times out", func(t *testing.T) {
		p, err := Compile("forever", []byte(`for { }`))
		require.NoError(t, err)
		p.WithTimeout(10 * time.Millisecond)
		_, err = p.Linear(steering.Kinematic{})
		assert.Error(t, err)
	})

	t.Run("runtime error surfaces as a steering script error", func(t *testing.T) {
		p, err := Compile("index", []byte(`linear = [1, 0, position[7] + 1]`))
		require.NoError(t, err)
		_, err = steering.Evaluate(steering.Request{
			Kind:   steering.KindScripted,
			Config: steering.DefaultConfig(),
			Script: p,
		})
		assert.ErrorIs(t, err, steering.ErrScript)
	})
}

func TestProgram_Clone(t *testing.T) {
	p, err := Compile("clone", []byte(`linear = [position[0], 0, 0]`))
	require.NoError(t, err)
	c := p.Clone()

	a, err := p.Linear(steering.Kinematic{Position: geometry.NewVector(1, 0, 0)})
	require.NoError(t, err)
	b, err := c.Linear(steering.Kinematic{Position: geometry.NewVector(2, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, 1.0, a.X)
	assert.Equal(t, 2.0, b.X)
	assert.Equal(t, p.Name(), c.Name())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "move.tengo")
	require.NoError(t, os.WriteFile(path, []byte(`linear = [0, 0, 1]`), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	got, err := p.Linear(steering.Kinematic{})
	require.NoError(t, err)
	assert.Equal(t, geometry.NewVector(0, 0, 1), got)

	_, err = Load(filepath.Join(t.TempDir(), "missing.tengo"))
	assert.Error(t, err)
}

func TestLoad_LeftCornerExample(t *testing.T) {
	p, err := Load(filepath.Join("..", "..", "configs", "left-corner.tengo"))
	require.NoError(t, err)

	far, err := p.Linear(steering.Kinematic{Position: geometry.NewVector(0, 0, 0)})
	require.NoError(t, err)
	assert.Less(t, far.X, 0.0, "heads left")
	assert.Greater(t, far.Z, 0.0)
	assert.InDelta(t, 2.0, far.Len(), 1e-9)

	near, err := p.Linear(steering.Kinematic{
		Position: geometry.NewVector(-18, 0, 13),
		Velocity: geometry.NewVector(1, 0, 0),
	})
	require.NoError(t, err)
	assert.True(t, near.Eq(geometry.NewVector(-5, 0, 0)), "brakes at the corner, got %s", near)
}
