package simulation

import (
	"context"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// WorldActor drives a World from messages, so a renderer, a headless loop
// and a config watcher can all talk to the same world without sharing
// locks.
//
// Messages:
//   - *durationpb.Duration: step the world by that duration (Tell)
//   - *wrapperspb.Int32Value: enter the phase with that number (Ask, replies
//     with the name of the phase running afterwards as *wrapperspb.StringValue)
//   - *wrapperspb.StringValue: reload the configuration file at that path,
//     or the actor's own path when empty (Tell)
//   - *emptypb.Empty: reply with the current snapshot as *structpb.Struct (Ask)
type WorldActor struct {
	world      *World
	configPath string
	logger     *zap.Logger
	// Communication with UI
	snapshotCh chan<- *Snapshot

	// --- Benchmark Stats ---
	ticks       int
	skipped     int
	lastLogTime time.Time
}

// Enforce interface compliance
var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor wraps world. Snapshots are pushed to snapshotCh after every
// tick and phase change, dropping frames when the consumer is busy.
// snapshotCh may be nil.
func NewWorldActor(world *World, snapshotCh chan<- *Snapshot, configPath string, logger *zap.Logger) *WorldActor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorldActor{
		world:       world,
		configPath:  configPath,
		logger:      logger,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is starting...")
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {
	case *goaktpb.PostStart:
		ctx.Logger().Info("World started")
		w.pushSnapshot()

	case *durationpb.Duration:
		report, err := w.world.Step(ctx.Context(), msg.AsDuration().Seconds())
		if err != nil {
			w.logger.Error("step failed", zap.Error(err))
			return
		}
		w.ticks++
		w.skipped += len(report.Skipped)
		w.logBenchmarks()
		w.pushSnapshot()

	case *wrapperspb.Int32Value:
		phase, err := ParsePhase(int(msg.GetValue()))
		if err == nil {
			err = w.world.EnterPhase(phase)
		}
		if err != nil {
			// the reply carries the phase still running
			w.logger.Warn("phase change refused", zap.Int32("phase", msg.GetValue()), zap.Error(err))
		} else {
			w.pushSnapshot()
		}
		ctx.Response(wrapperspb.String(w.world.Phase().String()))

	case *wrapperspb.StringValue:
		path := msg.GetValue()
		if path == "" {
			path = w.configPath
		}
		w.reload(path)

	case *emptypb.Empty:
		state, err := w.world.Snapshot().ToProto()
		if err != nil {
			ctx.Err(err)
			return
		}
		ctx.Response(state)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}

func (w *WorldActor) reload(path string) {
	if path == "" {
		w.logger.Warn("reload requested without a configuration file")
		return
	}
	cfg, err := LoadConfig(path)
	if err == nil {
		err = w.world.Reload(cfg)
	}
	if err != nil {
		// keep running with the previous configuration
		w.logger.Error("configuration reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	w.pushSnapshot()
}

func (w *WorldActor) logBenchmarks() {
	if time.Since(w.lastLogTime) >= time.Second {
		w.logger.Info("world stats",
			zap.Int("ticks", w.ticks),
			zap.Int("skipped", w.skipped),
			zap.Int("agents", w.world.Len()),
			zap.Stringer("phase", w.world.Phase()))
		w.ticks = 0
		w.skipped = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- w.world.Snapshot():
	default:
		// UI busy, skip frame
	}
}

// ForwardReloads tells the actor to reload its configuration whenever the
// watcher reports a change, until ctx is done or the watcher is closed.
func ForwardReloads(ctx context.Context, watcher *Watcher, pid *actor.PID, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case name, ok := <-watcher.Events:
			if !ok {
				return
			}
			logger.Info("file changed, reloading", zap.String("path", name))
			if err := actor.Tell(ctx, pid, wrapperspb.String("")); err != nil {
				logger.Warn("cannot reach world actor", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
