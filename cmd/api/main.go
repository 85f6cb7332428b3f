package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/donorops/reconcile-backend/internal/api"
	"github.com/donorops/reconcile-backend/internal/infrastructure/config"
	"github.com/donorops/reconcile-backend/internal/infrastructure/logging"
	"github.com/donorops/reconcile-backend/internal/infrastructure/storage"
	"github.com/donorops/reconcile-backend/internal/insights"
)

func main() {
	configFile := flag.String("config", "config.yaml", "Configuration file path")
	flag.Parse()

	cfg := config.LoadOrEnv(*configFile)
	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "api")

	engineCfg, err := cfg.Engine.ToEngineConfig()
	if err != nil {
		logger.Error("invalid engine configuration", "error", err)
		os.Exit(1)
	}

	dbPath := cfg.Storage.DatabasePath
	if dbPath == "" {
		dbPath = "reconcile.db"
	}
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	// Generate always returns ErrDisabled without an API key, so the
	// client can be wired unconditionally.
	generator := insights.NewClient(cfg.Insights.APIKey, cfg.Insights.Model)

	serverCfg := api.DefaultConfig()
	if cfg.Server.Port > 0 {
		serverCfg.Port = cfg.Server.Port
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		serverCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	}

	server := api.NewServer(serverCfg, engineCfg, store, generator, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("received signal", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
