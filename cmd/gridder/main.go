// Command gridder interpolates station climate normals onto regional
// rasters. It runs the configured variable x region matrix once, serving
// health and metrics endpoints while the batch is in flight, then shuts
// down.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/normals-gridder/internal/adapter/httpadapter"
	"github.com/couchcryptid/normals-gridder/internal/config"
	"github.com/couchcryptid/normals-gridder/internal/observability"
	"github.com/couchcryptid/normals-gridder/internal/pipeline"
	"github.com/couchcryptid/normals-gridder/internal/regions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogFormat, cfg.LogLevel)
	metrics := observability.NewMetrics()

	registry, err := regions.NewRegistry(cfg.DataDir, cfg.RegionsFile)
	if err != nil {
		logger.Error("failed to load region registry", "error", err)
		os.Exit(1)
	}

	p := pipeline.New(cfg, registry, logger, metrics)
	runner := pipeline.NewRunner(p, cfg, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *httpadapter.Server
	if cfg.MetricsEnabled {
		srv = httpadapter.NewServer(cfg.HTTPAddr, runner, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
	}

	runErr := runner.Run(ctx)
	stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}

	if runErr != nil {
		logger.Error("batch error", "error", runErr)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
