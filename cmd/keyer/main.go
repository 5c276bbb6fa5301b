// cmd/keyer/main.go
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tamzrod/cw-keyer/internal/config"
	"github.com/tamzrod/cw-keyer/internal/control"
	"github.com/tamzrod/cw-keyer/internal/logging"
	"github.com/tamzrod/cw-keyer/internal/sim"
	"github.com/tamzrod/cw-keyer/internal/store"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfgPath := os.Getenv("KEYER_CONFIG")
	if len(os.Args) >= 2 {
		cfgPath = os.Args[1]
	}
	if cfgPath == "" {
		log.Fatal("usage: keyer <config.yaml> (or set KEYER_CONFIG)")
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}
	slog.SetDefault(logger)

	// --------------------
	// Persistence
	// --------------------

	backend, err := store.BuildBackend(cfg.Store)
	if err != nil {
		log.Fatalf("store backend failed (backend=%s): %v", cfg.Store.Backend, err)
	}

	defaults, err := store.DefaultsRecord(cfg.Defaults)
	if err != nil {
		_ = backend.Close()
		log.Fatalf("factory defaults invalid: %v", err)
	}

	st, err := store.Open(backend, defaults, logger)
	if err != nil {
		_ = backend.Close()
		log.Fatalf("store open failed: %v", err)
	}

	// --------------------
	// Engine + controller
	// --------------------

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := make(chan sim.Event, 64)
	go func() {
		if err := sim.ReadConsole(ctx, os.Stdin, events); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("console: read failed", "err", err)
		}
	}()

	sinks := sim.Sinks{sim.NewLogSink(logger)}
	var wavSink *sim.WAVSink
	if cfg.Sim.WavPath != "" {
		wavSink = sim.NewWAVSink(cfg.Sim.WavPath, cfg.Sim.SampleRate)
		sinks = append(sinks, wavSink)
	}

	if !cfg.Sim.Realtime {
		logger.Warn("sim: realtime disabled, heartbeat is unpaced")
	}
	eng := sim.New(st, events, sinks, sim.OptionsFromConfig(*cfg), logger)

	sched, err := control.New(eng, control.OptionsFromConfig(cfg.Keyer), logger)
	if err != nil {
		log.Fatalf("controller setup failed: %v", err)
	}

	logger.Info("keyer: started",
		"config", cfgPath,
		"backend", cfg.Store.Backend,
		"mode", st.Mode().String(),
		"wpm", st.WPM(),
	)

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("keyer: controller stopped", "err", err)
	}

	// --------------------
	// Shutdown
	// --------------------

	eng.Close()

	if err := st.Save(); err != nil {
		logger.Error("keyer: final save failed", "err", err)
	}
	if wavSink != nil {
		if err := wavSink.Close(); err != nil {
			logger.Error("keyer: wav render failed", "path", cfg.Sim.WavPath, "err", err)
		}
		if wavSink.Truncated() {
			logger.Warn("keyer: wav render truncated", "path", cfg.Sim.WavPath, "max", sim.MaxWAVDuration)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("keyer: store close failed", "err", err)
	}

	logger.Info("keyer: stopped", "writes", st.Writes())
}
