package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/cornerfix/internal/config"
	"github.com/1broseidon/cornerfix/internal/corner"
	"github.com/1broseidon/cornerfix/internal/daemon"
	"github.com/1broseidon/cornerfix/internal/ipc"
	"github.com/1broseidon/cornerfix/internal/logging"
	"github.com/1broseidon/cornerfix/internal/monitor"
	"github.com/1broseidon/cornerfix/internal/overlay"
	"github.com/1broseidon/cornerfix/internal/platform"
	"github.com/1broseidon/cornerfix/internal/runtimepath"
	"github.com/thejerf/suture/v4"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Config file path (default: ~/.config/cornerfix/config.yaml)")
	debug := fs.Bool("debug", false, "Log at debug level regardless of log_level")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: cornerfix daemon [--config PATH] [--debug]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Mask the corners of maximized windows until interrupted.")
		fmt.Fprintln(os.Stderr, "SIGHUP reloads the configuration.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	load := func() (*config.Config, error) {
		res, err := loadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		return res.Config, nil
	}
	cfg, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	logCfg := cfg.GetLoggingConfig()
	levels := new(slog.LevelVar)
	if *debug {
		logCfg.Level = "debug"
	}
	logger, logCloser, err := logging.New(os.Stderr, logging.Options{
		Level:     logCfg.Level,
		File:      logCfg.File,
		MaxSizeMB: logCfg.MaxSizeMB,
		MaxFiles:  logCfg.MaxFiles,
		LevelVar:  levels,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	if err := serveDaemon(cfg, load, levels, *debug, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		return 1
	}
	return 0
}

func serveDaemon(cfg *config.Config, load daemon.Reloader, levels *slog.LevelVar, debug bool, logger *slog.Logger) error {
	lockPath, err := runtimepath.LockPath()
	if err != nil {
		return err
	}
	lock, err := runtimepath.AcquireLock(lockPath)
	if err != nil {
		return err
	}
	defer lock.Release()

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	fill, err := cfg.MaskRGBA()
	if err != nil {
		return err
	}
	overlays := overlay.NewManager(backend, corner.NewRenderer(fill), logger.With("component", "overlay"))
	mon := monitor.New(backend, backend, overlays, daemon.OptionsFromConfig(cfg), logger.With("component", "monitor"))

	loopCfg := daemon.LoopConfig{
		Config: cfg,
		Reload: load,
		Logger: logger.With("component", "loop"),
	}
	if !debug {
		loopCfg.LogLevel = levels
	}
	loop := daemon.NewLoop(mon, overlays, loopCfg)

	if err := backend.WatchFrontmost(loop.Notify); err != nil {
		// The timer still drives every tick; focus changes just land up to
		// one interval late.
		logger.Warn("focus notifications unavailable", "error", err)
	}

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	server := ipc.NewServer(socketPath, loop, logger.With("component", "ipc"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go reloadOnHangup(ctx, loop, logger)

	sup := daemon.NewSupervisor("cornerfix", logger.With("component", "supervisor"))
	daemon.Add(sup, daemon.NewServiceFunc("x11-events", func(ctx context.Context) error {
		defer context.AfterFunc(ctx, backend.StopEventLoop)()
		backend.EventLoop()
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("X event loop exited: %w", suture.ErrTerminateSupervisorTree)
	}))
	daemon.Add(sup, loop)
	daemon.Add(sup, server)

	logger.Info("cornerfix daemon started", "display", cfg.Display, "interval", cfg.Interval(), "threshold", cfg.MaximizedThreshold)
	err = sup.Serve(ctx)
	logger.Info("cornerfix daemon stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func reloadOnHangup(ctx context.Context, loop *daemon.Loop, logger *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info("received SIGHUP, reloading config")
			reqCtx, cancel := context.WithTimeout(ctx, ipc.RequestTimeout)
			if err := loop.Reload(reqCtx); err != nil {
				logger.Warn("reload failed, keeping previous config", "error", err)
			}
			cancel()
		}
	}
}
