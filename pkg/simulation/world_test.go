package simulation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
)

const dt = 0.02

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Seed = 1
	return cfg
}

func newTestWorld(t *testing.T, cfg *Config) *World {
	t.Helper()
	w, err := NewWorld(cfg, zap.NewNop())
	require.NoError(t, err)
	return w
}

func TestWorld_EnterPhase(t *testing.T) {
	w := newTestWorld(t, testConfig())

	for _, p := range Phases() {
		t.Run(p.String(), func(t *testing.T) {
			require.NoError(t, w.EnterPhase(p))
			assert.Equal(t, p, w.Phase())

			snap := w.Snapshot()
			require.Len(t, snap.Agents, len(phaseTable[p].cast))
			ids := map[string]bool{}
			for _, a := range snap.Agents {
				ids[a.ID] = true
			}
			for i, m := range phaseTable[p].cast {
				a := snap.Agents[i]
				assert.Equal(t, m.kind, a.Kind)
				assert.Equal(t, m.role, a.Role)
				assert.Equal(t, Label(m.role, m.kind), a.Label)
				if m.target >= 0 {
					assert.Equal(t, snap.Agents[m.target].ID, a.TargetID)
				} else {
					assert.Empty(t, a.TargetID)
				}
				spawner := w.Config().Spawners[m.spawner]
				assert.LessOrEqual(t, math.Abs(a.State.Position.X-spawner.Center.X), spawner.Width/2)
				assert.LessOrEqual(t, math.Abs(a.State.Position.Z-spawner.Center.Z), spawner.Depth/2)
			}
		})
	}

	err := w.EnterPhase(Phase(42))
	assert.ErrorIs(t, err, ErrUnknownPhase)
}

func TestWorld_RestartReentersPhase(t *testing.T) {
	w := newTestWorld(t, testConfig())
	require.NoError(t, w.EnterPhase(PhaseSeek))
	first := w.Snapshot().Agents[0].ID

	require.NoError(t, w.EnterPhase(PhaseRestart))
	assert.Equal(t, PhaseSeek, w.Phase())
	snap := w.Snapshot()
	require.Len(t, snap.Agents, 2)
	assert.NotEqual(t, first, snap.Agents[0].ID, "restart spawns a new cast")
}

func TestWorld_StepRejectsBadDt(t *testing.T) {
	w := newTestWorld(t, testConfig())
	for _, bad := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := w.Step(context.Background(), bad)
		assert.ErrorIs(t, err, ErrInvalidStep)
	}
}

func TestWorld_StepRejectsDtLongerThanTimeToTarget(t *testing.T) {
	w := newTestWorld(t, testConfig())
	require.NoError(t, w.EnterPhase(PhaseSeek))
	before := w.Snapshot()

	ttt := w.Config().Behavior.TimeToTarget
	_, err := w.Step(context.Background(), 2*ttt)
	assert.ErrorIs(t, err, ErrInvalidStep)
	assert.Equal(t, before, w.Snapshot())

	_, err = w.Step(context.Background(), ttt)
	assert.NoError(t, err)
}

// cancellingSource cancels the step context on its first draw.
type cancellingSource struct {
	cancel context.CancelFunc
}

func (c cancellingSource) Float64() float64 {
	c.cancel()
	return 0.9
}

func TestWorld_StepCancelledDuringWanderKeepsMemory(t *testing.T) {
	w := newTestWorld(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := NewAgent(RoleWolf, steering.KindWander, steering.Kinematic{})
	a.Wander = steering.NewWanderState(cancellingSource{cancel: cancel})
	a.Wander.Orientation = 0.25
	require.NoError(t, w.Add(a))
	before := w.Snapshot()

	_, err := w.Step(ctx, dt)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0.25, w.agents[a.ID].Wander.Orientation)
	assert.Equal(t, before, w.Snapshot())
}

func TestWorld_StepCommitsWanderMemory(t *testing.T) {
	w := newTestWorld(t, testConfig())
	a := NewAgent(RoleWolf, steering.KindWander, steering.Kinematic{})
	a.Wander = steering.NewWanderState(fixedSource{0.9, 0.1})
	require.NoError(t, w.Add(a))

	_, err := w.Step(context.Background(), dt)
	require.NoError(t, err)
	assert.InDelta(t, 0.8*w.Config().Behavior.WanderRate, w.agents[a.ID].Wander.Orientation, 1e-12)
}

type fixedSource []float64

func (f fixedSource) Float64() float64 {
	v := f[0]
	copy(f, append(f[1:], v))
	return v
}

func TestWorld_StepCancelled(t *testing.T) {
	w := newTestWorld(t, testConfig())
	require.NoError(t, w.EnterPhase(PhaseSeek))
	before := w.Snapshot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Step(ctx, dt)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, w.Snapshot())
}

func TestWorld_SeekClosesDistance(t *testing.T) {
	w := newTestWorld(t, testConfig())
	require.NoError(t, w.EnterPhase(PhaseSeek))
	snap := w.Snapshot()
	hunter, wolf := snap.Agents[0], snap.Agents[1]
	initial := hunter.State.Position.DistanceTo(wolf.State.Position)

	// The wolf flees at the same limits, so make it static to see the hunter close in.
	require.NoError(t, w.SetKind(wolf.ID, steering.KindStatic))
	for i := 0; i < 200; i++ {
		report, err := w.Step(context.Background(), dt)
		require.NoError(t, err)
		require.Empty(t, report.Skipped)
	}

	hunterNow, _ := w.Agent(hunter.ID)
	wolfNow, _ := w.Agent(wolf.ID)
	assert.Less(t, hunterNow.State.Position.DistanceTo(wolfNow.State.Position), initial)
	assert.LessOrEqual(t, hunterNow.State.Speed(), w.Config().Behavior.MaxSpeed+1e-9)
	assert.InDelta(t, w.Config().Behavior.StaticOrientation, wolfNow.State.Orientation, 1e-12)
	assert.Equal(t, uint64(200), w.Snapshot().Tick)
}

func TestWorld_ArriveComesToRest(t *testing.T) {
	for _, usePhysics := range []bool{false, true} {
		name := "kinematic"
		if usePhysics {
			name = "physics"
		}
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			cfg.UsePhysics = usePhysics
			w := newTestWorld(t, cfg)

			target := NewAgent(RoleWolf, steering.KindStatic, steering.Kinematic{Position: geometry.NewVector(10, 0, 0)})
			seeker := NewAgent(RoleHunter, steering.KindArrive, steering.Kinematic{})
			seeker.TargetID = target.ID
			require.NoError(t, w.Add(target))
			require.NoError(t, w.Add(seeker))

			rested := false
			for i := 0; i < 2000; i++ {
				_, err := w.Step(context.Background(), dt)
				require.NoError(t, err)
				s, _ := w.Agent(seeker.ID)
				require.LessOrEqual(t, s.State.Speed(), cfg.Behavior.MaxSpeed+1e-9)
				if s.State.Speed() < 1e-3 && s.State.Position.DistanceTo(target.State.Position) < cfg.Behavior.TargetRadiusL {
					rested = true
					break
				}
			}
			assert.True(t, rested)
		})
	}
}

func TestWorld_RemovedTargetSkipsAgent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	w, err := NewWorld(testConfig(), zap.New(core))
	require.NoError(t, err)
	require.NoError(t, w.EnterPhase(PhaseFace))
	snap := w.Snapshot()
	hunter, wolf := snap.Agents[0], snap.Agents[1]

	assert.True(t, w.Remove(wolf.ID))
	assert.False(t, w.Remove(wolf.ID))

	report, err := w.Step(context.Background(), dt)
	require.NoError(t, err)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, hunter.ID, report.Skipped[0].ID)
	assert.True(t, errors.Is(report.Skipped[0].Err, steering.ErrMissingTarget))
	assert.Equal(t, 0, report.Evaluated)
	assert.Equal(t, 1, logs.FilterMessage("agent skipped").Len())

	// Retargeting an existing agent resumes it.
	other := NewAgent(RoleWolf, steering.KindStatic, steering.Kinematic{Position: geometry.NewVector(3, 0, 3)})
	require.NoError(t, w.Add(other))
	require.NoError(t, w.SetTarget(hunter.ID, other.ID))
	report, err = w.Step(context.Background(), dt)
	require.NoError(t, err)
	assert.Empty(t, report.Skipped)

	assert.ErrorIs(t, w.SetTarget(hunter.ID, "ghost"), ErrUnknownAgent)
	assert.ErrorIs(t, w.SetTarget("ghost", other.ID), ErrUnknownAgent)
}

func TestWorld_StepIsOrderIndependent(t *testing.T) {
	// Two agents seeking each other: both must see the other's position
	// from before the step.
	build := func(reverse bool) *World {
		w := newTestWorld(t, testConfig())
		a := NewAgent(RoleHunter, steering.KindSeek, steering.Kinematic{Position: geometry.NewVector(-3, 0, 0)})
		b := NewAgent(RoleWolf, steering.KindSeek, steering.Kinematic{Position: geometry.NewVector(3, 0, 1)})
		a.ID, b.ID = "a", "b"
		a.TargetID, b.TargetID = "b", "a"
		if reverse {
			require.NoError(t, w.Add(b))
			require.NoError(t, w.Add(a))
		} else {
			require.NoError(t, w.Add(a))
			require.NoError(t, w.Add(b))
		}
		return w
	}
	w1, w2 := build(false), build(true)
	for i := 0; i < 50; i++ {
		_, err := w1.Step(context.Background(), dt)
		require.NoError(t, err)
		_, err = w2.Step(context.Background(), dt)
		require.NoError(t, err)
	}
	for _, id := range []string{"a", "b"} {
		v1, _ := w1.Agent(id)
		v2, _ := w2.Agent(id)
		assert.Equal(t, v1.State, v2.State)
	}
}

func TestWorld_WanderIsReproducible(t *testing.T) {
	run := func() steering.Kinematic {
		w := newTestWorld(t, testConfig())
		require.NoError(t, w.EnterPhase(PhaseWander))
		for i := 0; i < 100; i++ {
			_, err := w.Step(context.Background(), dt)
			require.NoError(t, err)
		}
		return w.Snapshot().Agents[0].State
	}
	assert.Equal(t, run(), run())
}

func TestWorld_ScriptedPhase(t *testing.T) {
	t.Run("constant acceleration", func(t *testing.T) {
		w := newTestWorld(t, testConfig())
		require.NoError(t, w.EnterPhase(PhaseScripted))
		start := w.Snapshot().Agents[0].State.Position
		_, err := w.Step(context.Background(), dt)
		require.NoError(t, err)
		got := w.Snapshot().Agents[0].State
		want := w.Config().Behavior.ScriptedLinear.Mul(dt)
		assert.True(t, got.Velocity.Eq(want), "got %s want %s", got.Velocity, want)
		assert.True(t, got.Position.Eq(start.Add(want.Mul(dt))))
	})

	t.Run("tengo script", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "move.tengo")
		require.NoError(t, os.WriteFile(path, []byte(`linear = [0, 0, 1]`), 0o600))
		cfg := testConfig()
		cfg.ScriptFile = path
		w := newTestWorld(t, cfg)
		require.NoError(t, w.EnterPhase(PhaseScripted))
		_, err := w.Step(context.Background(), dt)
		require.NoError(t, err)
		got := w.Snapshot().Agents[0].State.Velocity
		assert.True(t, got.Eq(geometry.NewVector(0, 0, dt)), "got %s", got)
	})

	t.Run("missing script file", func(t *testing.T) {
		cfg := testConfig()
		cfg.ScriptFile = filepath.Join(t.TempDir(), "none.tengo")
		_, err := NewWorld(cfg, nil)
		assert.Error(t, err)
	})
}

func TestWorld_PhysicsKeepsAgentsInArena(t *testing.T) {
	cfg := testConfig()
	cfg.UsePhysics = true
	cfg.WorldWidth, cfg.WorldDepth = 20, 20
	cfg.Spawners = []Spawner{{Center: geometry.NewVector(-5, 0, 0)}, {Center: geometry.NewVector(5, 0, 0)}}
	w := newTestWorld(t, cfg)

	runner := NewAgent(RoleWolf, steering.KindScripted, steering.Kinematic{})
	require.NoError(t, w.Add(runner))
	for i := 0; i < 1000; i++ {
		_, err := w.Step(context.Background(), dt)
		require.NoError(t, err)
	}
	got, _ := w.Agent(runner.ID)
	assert.Less(t, math.Abs(got.State.Position.X), 10.0)
	assert.Less(t, math.Abs(got.State.Position.Z), 10.0)
	assert.LessOrEqual(t, got.State.Speed(), cfg.Behavior.MaxSpeed+1e-9)
}

func TestWorld_Reload(t *testing.T) {
	w := newTestWorld(t, testConfig())
	require.NoError(t, w.EnterPhase(PhasePursue))

	cfg := testConfig()
	cfg.Behavior.MaxSpeed = 9
	require.NoError(t, w.Reload(cfg))
	assert.Equal(t, 9.0, w.Config().Behavior.MaxSpeed)
	assert.Equal(t, PhasePursue, w.Phase())
	assert.Equal(t, 2, w.Len())

	bad := testConfig()
	bad.Behavior.TimeToTarget = 0
	assert.ErrorIs(t, w.Reload(bad), steering.ErrInvalidConfig)
	assert.Equal(t, 9.0, w.Config().Behavior.MaxSpeed, "failed reload keeps the running config")
	assert.Equal(t, 2, w.Len())
	assert.Error(t, w.Reload(nil))
}

func TestWorld_Nearest(t *testing.T) {
	w := newTestWorld(t, testConfig())
	a := NewAgent(RoleWolf, steering.KindStatic, steering.Kinematic{Position: geometry.NewVector(1, 0, 1)})
	b := NewAgent(RoleWolf, steering.KindStatic, steering.Kinematic{Position: geometry.NewVector(3, 0, 1)})
	require.NoError(t, w.Add(a))
	require.NoError(t, w.Add(b))

	got, ok := w.Nearest(geometry.NewVector(2.6, 0, 1), 5)
	require.True(t, ok)
	assert.Equal(t, b.ID, got.ID)
	assert.Len(t, w.Nearby(geometry.NewVector(2, 0, 1), 5), 2)

	_, ok = w.Nearest(geometry.NewVector(50, 0, 50), 1)
	assert.False(t, ok)
}

func BenchmarkWorld_Step(b *testing.B) {
	w, err := NewWorld(testConfig(), nil)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 500; i++ {
		kind := steering.KindWander
		if i%2 == 0 {
			kind = steering.KindScripted
		}
		if err := w.Add(NewAgent(RoleWolf, kind, steering.Kinematic{Position: geometry.NewVector(float64(i%40)-20, 0, float64(i/40)-12)})); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := w.Step(context.Background(), dt); err != nil {
			b.Fatal(err)
		}
	}
}
