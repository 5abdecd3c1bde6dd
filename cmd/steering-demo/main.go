package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-steering-behaviors/internal/logging"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-steering-behaviors/pkg/viewer"
)

var (
	configPath = flag.String("config", "", "Configuration file (.yaml, .yml or .json), hot reloaded on change")
	logLevel   = flag.String("log-level", "", "Log level, overrides the configuration (debug|info|warn|error)")
	logFormat  = flag.String("log-format", "console", "Log encoding (json|console)")
	actorLogs  = flag.Bool("actor-logs", false, "Let the actor system log next to the application")
	dumpConfig = flag.Bool("dump-config", false, "Print the effective configuration as YAML and exit")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "steering-demo:", err)
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
	if *dumpConfig {
		return cfg.WriteYAML(os.Stdout)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	world, err := simulation.NewWorld(cfg, logger.Named("world"))
	if err != nil {
		return err
	}
	phase, err := simulation.ParsePhase(cfg.InitialPhase)
	if err != nil {
		return err
	}
	if err := world.EnterPhase(phase); err != nil {
		return err
	}

	system, err := actor.NewActorSystem("SteeringDemo",
		actor.WithLogger(logging.ActorLogger(*actorLogs)),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return err
	}
	if err := system.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = system.Stop(context.Background()) }()

	snapshotCh := make(chan *simulation.Snapshot, 10) // Buffer to avoid blocking
	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(world, snapshotCh, *configPath, logger.Named("actor")))
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}

	if *configPath != "" {
		files := []string{*configPath}
		if cfg.ScriptFile != "" {
			files = append(files, cfg.ScriptFile)
		}
		watcher, err := simulation.NewWatcher(files...)
		if err != nil {
			return fmt.Errorf("failed to watch configuration: %w", err)
		}
		defer watcher.Close()
		go simulation.ForwardReloads(ctx, watcher, worldPID, logger.Named("watcher"))
	}

	game := viewer.NewGame(ctx, cfg, worldPID, snapshotCh, logger.Named("viewer"))
	ebiten.SetWindowSize(game.Size())
	ebiten.SetWindowTitle("Steering behaviors")
	ebiten.SetTPS(cfg.TickRate)

	logger.Info("demo started",
		zap.String("config", *configPath),
		zap.Stringer("phase", phase),
		zap.Bool("physics", cfg.UsePhysics))
	return ebiten.RunGame(game)
}
