package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/citycare/internal/config"
	"github.com/spec-kit/citycare/internal/fakeapi"
	"github.com/spec-kit/citycare/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// The fake is a server, so it logs at info unless told otherwise.
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Logger.Level = "info"
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	srv, err := fakeapi.New(cfg.FakeAPI, cfg.App, logger, observability.NewMetrics())
	if err != nil {
		logger.Fatal("failed to build fake api", zap.Error(err))
	}
	if cfg.FakeAPI.SeedDemo {
		logger.Info("demo account seeded", zap.String("email", fakeapi.DemoEmail), zap.String("password", fakeapi.DemoPassword))
	}

	go func() {
		if err := srv.Listen(); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = srv.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
