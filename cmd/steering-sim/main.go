package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/internal/logging"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/simulation"
)

const askTimeout = 5 * time.Second

var (
	configPath = flag.String("config", "", "Configuration file (.yaml, .yml or .json)")
	phaseFlag  = flag.Int("phase", -1, "Phase to run (1-9), -1 uses the configured initial phase")
	ticks      = flag.Int("ticks", 500, "Number of ticks to run")
	logLevel   = flag.String("log-level", "", "Log level, overrides the configuration (debug|info|warn|error)")
	logFormat  = flag.String("log-format", "json", "Log encoding (json|console)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "steering-sim:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := simulation.DefaultConfig()
	if *configPath != "" {
		loaded, err := simulation.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	logger, err := logging.New(level, *logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	phase := simulation.Phase(cfg.InitialPhase)
	if *phaseFlag >= 0 {
		if phase, err = simulation.ParsePhase(*phaseFlag); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	world, err := simulation.NewWorld(cfg, logger.Named("world"))
	if err != nil {
		return err
	}
	system, err := actor.NewActorSystem("SteeringSim", actor.WithLogger(logging.ActorLogger(false)))
	if err != nil {
		return err
	}
	if err := system.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = system.Stop(context.Background()) }()

	pid, err := system.Spawn(ctx, "world", simulation.NewWorldActor(world, nil, *configPath, logger.Named("actor")))
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}

	reply, err := actor.Ask(ctx, pid, wrapperspb.Int32(int32(phase)), askTimeout)
	if err != nil {
		return fmt.Errorf("failed to enter phase %s: %w", phase, err)
	}
	name, ok := reply.(*wrapperspb.StringValue)
	if !ok {
		return fmt.Errorf("unexpected phase reply %T", reply)
	}
	logger.Info("running phase",
		zap.String("phase", name.GetValue()),
		zap.String("narration", phase.Narration()),
		zap.Int("ticks", *ticks))

	start := time.Now()
	tick := durationpb.New(time.Duration(cfg.TickSeconds() * float64(time.Second)))
	for i := 0; i < *ticks; i++ {
		if err := actor.Tell(ctx, pid, tick); err != nil {
			return err
		}
	}

	// the mailbox is ordered, the state arrives after the last tick
	state, err := actor.Ask(ctx, pid, &emptypb.Empty{}, askTimeout)
	if err != nil {
		return fmt.Errorf("failed to read the world state: %w", err)
	}
	pb, ok := state.(*structpb.Struct)
	if !ok {
		return fmt.Errorf("unexpected state reply %T", state)
	}
	snap, err := simulation.SnapshotFromProto(pb)
	if err != nil {
		return err
	}

	logger.Info("run finished",
		zap.Uint64("tick", snap.Tick),
		zap.Duration("elapsed", time.Since(start)))
	for _, a := range snap.Agents {
		logger.Info("final state",
			zap.String("agent", a.ID),
			zap.String("role", string(a.Role)),
			zap.Stringer("kind", a.Kind),
			zap.Stringer("position", a.State.Position),
			zap.Stringer("velocity", a.State.Velocity),
			zap.Float64("orientation", a.State.Orientation))
	}
	return nil
}
