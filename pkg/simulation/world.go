package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/physics"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/script"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/steering"
)

var (
	// ErrInvalidStep is returned by Step for a non positive or non finite dt,
	// or for a dt longer than the behavior TimeToTarget.
	ErrInvalidStep = errors.New("simulation: dt must be a finite value > 0")
	// ErrUnknownAgent is returned when an agent id is not in the world.
	ErrUnknownAgent = errors.New("simulation: unknown agent")
)

// World owns the agents and advances them one fixed tick at a time.
//
// A step reads a snapshot of every agent, evaluates all behaviors in
// parallel against that snapshot and then commits the results one agent at
// a time, so the outcome never depends on evaluation order.
type World struct {
	logger *zap.Logger

	mu      sync.RWMutex
	cfg     *Config
	agents  map[string]*Agent
	order   []string // insertion order, makes steps reproducible
	grid    *grid
	space   *physics.Space // nil without physics
	program *script.Program
	rng     *rand.Rand
	tick    uint64
	phase   Phase
}

// NewWorld creates an empty world. Call EnterPhase to populate it.
func NewWorld(cfg *Config, logger *zap.Logger) (*World, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &World{
		logger: logger,
		agents: make(map[string]*Agent),
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	program, err := prepare(cfg)
	if err != nil {
		return nil, err
	}
	w.apply(cfg, program)
	return w, nil
}

// prepare validates cfg and loads its script without touching the world.
func prepare(cfg *Config) (*script.Program, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ScriptFile == "" {
		return nil, nil
	}
	return script.Load(cfg.ScriptFile)
}

func (w *World) apply(cfg *Config, program *script.Program) {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	w.cfg = cfg
	w.program = program
	w.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	w.grid = newGrid(cfg.GridCellSize)
	w.space = nil
	if cfg.UsePhysics {
		w.space = physics.NewSpace()
		w.space.SetBounds(cfg.Bounds())
	}
}

// Config returns the active configuration. Treat it as read-only.
func (w *World) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Phase returns the current phase, PhaseRestart before the first one.
func (w *World) Phase() Phase {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.phase
}

// Len returns the number of agents.
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// Add inserts an agent. Wander agents without memory get one seeded from
// the world, scripted agents without a script get their own copy of the
// configured one.
func (w *World) Add(a *Agent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.addLocked(a)
}

func (w *World) addLocked(a *Agent) error {
	if a.ID == "" {
		return fmt.Errorf("simulation: agent without id")
	}
	if _, ok := w.agents[a.ID]; ok {
		return fmt.Errorf("simulation: agent %s already exists", a.ID)
	}
	if a.Kind == steering.KindWander && a.Wander == nil {
		a.Wander = steering.NewWanderState(rand.New(rand.NewPCG(w.rng.Uint64(), w.rng.Uint64())))
	}
	if a.Kind == steering.KindScripted && a.Script == nil && w.program != nil {
		a.Script = w.program.Clone()
	}
	if w.space != nil {
		if err := w.space.AddAgent(a.ID, a.State.Position, a.State.Velocity, w.cfg.Body); err != nil {
			return err
		}
	}
	w.agents[a.ID] = a
	w.order = append(w.order, a.ID)
	w.grid.rebuild(w.orderedLocked())
	return nil
}

// Remove deletes an agent. Agents targeting it keep the dangling id and are
// skipped with steering.ErrMissingTarget until they get a new target.
func (w *World) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.agents[id]; !ok {
		return false
	}
	delete(w.agents, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	if w.space != nil {
		w.space.Remove(id)
	}
	w.grid.rebuild(w.orderedLocked())
	return true
}

// SetTarget points agent id at target. An empty target clears it.
func (w *World) SetTarget(id, target string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.agents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	if target != "" {
		if _, ok := w.agents[target]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownAgent, target)
		}
	}
	a.TargetID = target
	return nil
}

// SetKind switches the behavior of agent id.
func (w *World) SetKind(id string, kind steering.Kind) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.agents[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAgent, id)
	}
	a.Kind = kind
	a.Label = Label(a.Role, kind)
	if kind == steering.KindWander && a.Wander == nil {
		a.Wander = steering.NewWanderState(rand.New(rand.NewPCG(w.rng.Uint64(), w.rng.Uint64())))
	}
	return nil
}

// Clear removes every agent.
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clearLocked()
}

func (w *World) clearLocked() {
	clear(w.agents)
	w.order = w.order[:0]
	if w.space != nil {
		w.space.Clear()
	}
	w.grid.rebuild(nil)
}

func (w *World) orderedLocked() []*Agent {
	agents := make([]*Agent, 0, len(w.order))
	for _, id := range w.order {
		agents = append(agents, w.agents[id])
	}
	return agents
}

// EnterPhase clears the world and spawns the cast of p at random points of
// the configured spawners. PhaseRestart re-enters the current phase.
func (w *World) EnterPhase(p Phase) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enterPhaseLocked(p)
}

func (w *World) enterPhaseLocked(p Phase) error {
	if p == PhaseRestart {
		p = w.phase
		if p == PhaseRestart {
			w.clearLocked()
			return nil
		}
	}
	def, ok := phaseTable[p]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownPhase, int(p))
	}

	w.clearLocked()
	w.tick = 0
	w.phase = p

	cast := make([]*Agent, len(def.cast))
	for i, m := range def.cast {
		spawner := w.cfg.Spawners[m.spawner]
		cast[i] = NewAgent(m.role, m.kind, steering.Kinematic{Position: spawner.RandomPoint(w.rng)})
	}
	for i, m := range def.cast {
		if m.target >= 0 {
			cast[i].TargetID = cast[m.target].ID
		}
		if err := w.addLocked(cast[i]); err != nil {
			return err
		}
	}

	w.logger.Info("entered phase",
		zap.Int("phase", int(p)),
		zap.String("name", p.String()),
		zap.Int("agents", len(cast)))
	return nil
}

// Reload swaps the configuration and restarts the current phase, so a
// configuration never changes in the middle of a phase. An invalid cfg
// leaves the world untouched.
func (w *World) Reload(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", steering.ErrInvalidConfig)
	}
	program, err := prepare(cfg)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	phase := w.phase
	w.clearLocked()
	w.apply(cfg, program)
	w.logger.Info("configuration reloaded", zap.Bool("physics", cfg.UsePhysics))
	return w.enterPhaseLocked(phase)
}

// SkippedAgent is an agent that received no command this tick.
type SkippedAgent struct {
	ID  string
	Err error
}

// StepReport summarises one tick.
type StepReport struct {
	Tick      uint64
	Evaluated int
	Skipped   []SkippedAgent
	Duration  time.Duration
}

type evaluation struct {
	out    steering.Output
	err    error
	wander *steering.WanderState
}

// Step advances the world by dt seconds.
//
// An agent whose behavior fails (missing target, script error) is skipped:
// it gets no command and keeps coasting at its current velocity. Step only
// returns an error for an invalid dt or a cancelled ctx, in which case no
// agent is changed.
//
// Wander memories are evaluated on copies and written back during the
// commit, so a cancelled step leaves every wander offset untouched.
func (w *World) Step(ctx context.Context, dt float64) (StepReport, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return StepReport{}, fmt.Errorf("%w: %v", ErrInvalidStep, dt)
	}
	start := time.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	if ttt := w.cfg.Behavior.TimeToTarget; dt > ttt {
		return StepReport{}, fmt.Errorf("%w: %v is longer than timeToTarget %v", ErrInvalidStep, dt, ttt)
	}

	// 1. Snapshot
	agents := w.orderedLocked()
	snapshot := make(map[string]steering.Kinematic, len(agents))
	for _, a := range agents {
		snapshot[a.ID] = a.State
	}

	// 2. Compute every behavior against the snapshot
	results := make([]evaluation, len(agents))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, a := range agents {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			req := steering.Request{
				Kind:   a.Kind,
				Agent:  snapshot[a.ID],
				Config: w.cfg.Behavior,
				Script: a.Script,
			}
			if a.Wander != nil {
				ws := *a.Wander
				results[i].wander = &ws
				req.Wander = &ws
			}
			if a.TargetID != "" {
				if target, ok := snapshot[a.TargetID]; ok {
					req.Target = &target
				}
			}
			results[i].out, results[i].err = steering.Evaluate(req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return StepReport{}, err
	}
	if err := ctx.Err(); err != nil {
		return StepReport{}, err
	}

	// 3. Commit sequentially
	report := StepReport{Tick: w.tick + 1}
	maxSpeed := w.cfg.Behavior.MaxSpeed
	for i, a := range agents {
		next := a.State
		if err := results[i].err; err != nil {
			report.Skipped = append(report.Skipped, SkippedAgent{ID: a.ID, Err: err})
			w.logger.Warn("agent skipped",
				zap.String("agent", a.ID),
				zap.Stringer("kind", a.Kind),
				zap.Error(err))
			a.Annotations = nil
		} else {
			report.Evaluated++
			if ws := results[i].wander; ws != nil {
				a.Wander.Orientation = ws.Orientation
			}
			next = results[i].out.Apply(a.State, maxSpeed, dt)
			a.Annotations = results[i].out.Annotations
		}

		if w.space != nil {
			body, err := w.space.Velocity(a.ID)
			if err == nil {
				err = w.space.ApplyVelocityChange(a.ID, next.Velocity.Sub(body))
			}
			if err != nil {
				w.logger.Warn("physics body out of sync", zap.String("agent", a.ID), zap.Error(err))
			}
		} else {
			next = steering.Advance(next, dt)
		}
		a.State = next
	}

	// 4. Let the physics collaborator move the bodies
	if w.space != nil {
		w.space.Step(dt)
		for _, a := range agents {
			w.readBackLocked(a, maxSpeed)
		}
	}

	w.grid.rebuild(agents)
	w.tick++
	report.Duration = time.Since(start)
	return report, nil
}

// readBackLocked takes position and velocity from the physics body. A wall
// bounce may change the velocity, the speed bound still holds.
func (w *World) readBackLocked(a *Agent, maxSpeed float64) {
	pos, err := w.space.Position(a.ID)
	if err != nil {
		return
	}
	vel, err := w.space.Velocity(a.ID)
	if err != nil {
		return
	}
	a.State.Position = geometry.NewVector(pos.X, a.State.Position.Y, pos.Z)
	clamped := vel.ClampLen(maxSpeed)
	if !clamped.Eq(vel) {
		_ = w.space.SetVelocity(a.ID, clamped)
	}
	a.State.Velocity = clamped
}

// Snapshot is a consistent copy of the world for renderers.
type Snapshot struct {
	Tick   uint64
	Phase  Phase
	Agents []AgentView
}

// Snapshot copies the current state of every agent.
func (w *World) Snapshot() *Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := &Snapshot{Tick: w.tick, Phase: w.phase, Agents: make([]AgentView, 0, len(w.order))}
	for _, id := range w.order {
		s.Agents = append(s.Agents, w.agents[id].View())
	}
	return s
}

// Agent returns a copy of agent id.
func (w *World) Agent(id string) (AgentView, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.agents[id]
	if !ok {
		return AgentView{}, false
	}
	return a.View(), true
}

// Nearby returns the agents within radius of p on the ground plane.
func (w *World) Nearby(p geometry.Vector3D, radius float64) []AgentView {
	w.mu.RLock()
	defer w.mu.RUnlock()

	found := w.grid.inRadius(p, radius)
	views := make([]AgentView, 0, len(found))
	for _, a := range found {
		views = append(views, a.View())
	}
	return views
}

// Nearest returns the closest agent within radius of p.
func (w *World) Nearest(p geometry.Vector3D, radius float64) (AgentView, bool) {
	var best AgentView
	bestDist := math.Inf(1)
	for _, v := range w.Nearby(p, radius) {
		if d := v.State.Position.Flat().DistanceSquaredTo(p.Flat()); d < bestDist {
			best, bestDist = v, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}
