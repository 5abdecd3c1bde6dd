package steering

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"seek", KindSeek, false},
		{"Pursue_With_Arrive", KindPursueWithArrive, false},
		{" face away ", KindFaceAway, false},
		{"SCRIPTED", KindScripted, false},
		{"none", KindNone, true},
		{"teleport", KindNone, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownBehavior)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_TextRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		text, err := k.MarshalText()
		require.NoError(t, err)
		var back Kind
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, k, back)
	}
	_, err := KindNone.MarshalText()
	assert.ErrorIs(t, err, ErrUnknownBehavior)
}

func TestEvaluate_Errors(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("unknown kind", func(t *testing.T) {
		_, err := Evaluate(Request{Kind: Kind(99), Config: cfg})
		assert.ErrorIs(t, err, ErrUnknownBehavior)
	})

	t.Run("none is not a behavior", func(t *testing.T) {
		_, err := Evaluate(Request{Kind: KindNone, Config: cfg})
		assert.ErrorIs(t, err, ErrUnknownBehavior)
	})

	t.Run("every targeted kind needs a target", func(t *testing.T) {
		for _, k := range Kinds() {
			if !k.NeedsTarget() {
				continue
			}
			_, err := Evaluate(Request{Kind: k, Config: cfg})
			assert.ErrorIs(t, err, ErrMissingTarget, k.String())
		}
	})

	t.Run("wander needs its state", func(t *testing.T) {
		_, err := Evaluate(Request{Kind: KindWander, Config: cfg})
		assert.ErrorIs(t, err, ErrMissingState)
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := cfg
		bad.MaxSpeed = 0
		bad.TimeToTarget = math.NaN()
		_, err := Evaluate(Request{Kind: KindStatic, Config: bad})
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), "maxSpeed")
		assert.Contains(t, err.Error(), "timeToTarget")
	})

	t.Run("script failure", func(t *testing.T) {
		_, err := Evaluate(Request{Kind: KindScripted, Config: cfg, Script: failingScript{}})
		assert.ErrorIs(t, err, ErrScript)
	})

	t.Run("non finite script output", func(t *testing.T) {
		script := constScript(geometry.NewVector(math.Inf(1), 0, 0))
		_, err := Evaluate(Request{Kind: KindScripted, Config: cfg, Script: script})
		assert.ErrorIs(t, err, ErrScript)
	})
}

func TestEvaluate_Dispatch(t *testing.T) {
	cfg := DefaultConfig()
	agent := at(0, 0)
	target := at(3, 4)
	target.Orientation = 1

	for _, k := range Kinds() {
		t.Run(k.String(), func(t *testing.T) {
			out, err := Evaluate(Request{
				Kind:   k,
				Agent:  agent,
				Target: &target,
				Config: cfg,
				Wander: NewWanderState(fixedSource{0.5, 0.5}),
			})
			require.NoError(t, err)
			assert.True(t, out.Linear.IsFinite())
			assert.False(t, math.IsNaN(out.Angular))
		})
	}

	out, err := Evaluate(Request{Kind: KindArrive, Agent: agent, Target: &target, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, Arrive(agent, target, cfg), out)

	out, err = Evaluate(Request{Kind: KindScripted, Agent: agent, Config: cfg})
	require.NoError(t, err)
	assert.Equal(t, cfg.ScriptedLinear, out.Linear)

	out, err = Evaluate(Request{Kind: KindScripted, Agent: agent, Config: cfg, Script: constScript(geometry.NewVector(1, 0, 0))})
	require.NoError(t, err)
	assert.Equal(t, geometry.NewVector(1, 0, 0), out.Linear)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.WanderRate = -1
	cfg.ScriptedLinear = geometry.NewVector(math.NaN(), 0, 0)
	err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "wanderRate")
	assert.Contains(t, err.Error(), "scriptedLinear")
}

type failingScript struct{}

func (failingScript) Linear(Kinematic) (geometry.Vector3D, error) {
	return geometry.Vector3D{}, errors.New("boom")
}

type constScript geometry.Vector3D

func (c constScript) Linear(Kinematic) (geometry.Vector3D, error) {
	return geometry.Vector3D(c), nil
}
