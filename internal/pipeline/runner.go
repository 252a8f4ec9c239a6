package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/normals-gridder/internal/config"
	"github.com/couchcryptid/normals-gridder/internal/domain"
	"github.com/couchcryptid/normals-gridder/internal/observability"
)

// Executor runs one variable/region pair. Satisfied by *Pipeline; tests
// substitute fakes.
type Executor interface {
	RunOne(ctx context.Context, variable, region string) (*Result, error)
}

// Runner drives the configured variable x region matrix sequentially and
// reports readiness once any pair has produced a grid.
type Runner struct {
	executor  Executor
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
	completed atomic.Int64
	total     atomic.Int64
}

// NewRunner creates a Runner.
func NewRunner(executor Executor, cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{executor: executor, cfg: cfg, logger: logger, metrics: metrics}
}

// CheckReadiness returns nil once at least one run has succeeded.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no grid produced yet")
	}
	return nil
}

// Progress reports how many of the configured pairs have finished, whether
// they succeeded or failed. Served on the readiness endpoint.
func (r *Runner) Progress() (completed, total int) {
	return int(r.completed.Load()), int(r.total.Load())
}

// Run executes every configured pair. A failed pair is counted and logged
// with its error class; remaining pairs proceed unless CONTINUE_ON_ERROR is
// off. Returns an error when nothing succeeded, or on early abort.
func (r *Runner) Run(ctx context.Context) error {
	total := len(r.cfg.Variables) * len(r.cfg.Regions)
	r.total.Store(int64(total))
	r.logger.Info("batch starting",
		"variables", r.cfg.Variables, "regions", r.cfg.Regions, "runs", total)
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	var successes, failures int
	for _, variable := range r.cfg.Variables {
		for _, region := range r.cfg.Regions {
			if err := ctx.Err(); err != nil {
				r.logger.Info("batch stopping", "reason", err)
				return nil
			}

			start := time.Now()
			result, err := r.executor.RunOne(ctx, variable, region)
			r.metrics.RunDuration.Observe(time.Since(start).Seconds())
			r.completed.Add(1)

			if err != nil {
				outcome := classify(err)
				r.metrics.RunsTotal.WithLabelValues(variable, region, outcome).Inc()
				failures++
				r.logger.Error("run failed",
					"variable", variable, "region", region, "outcome", outcome, "error", err)
				if !r.cfg.ContinueOnError {
					return fmt.Errorf("run %s/%s: %w", variable, region, err)
				}
				continue
			}

			r.metrics.RunsTotal.WithLabelValues(variable, region, "success").Inc()
			successes++
			r.ready.Store(true)
			r.logger.Info("run succeeded",
				"variable", variable, "region", region,
				"output", result.OutputPath, "stations", result.Retained)
		}
	}

	r.logger.Info("batch finished", "succeeded", successes, "failed", failures)
	if successes == 0 && failures > 0 {
		return fmt.Errorf("all %d runs failed", failures)
	}
	return nil
}

// classify maps an error to its metrics outcome label.
func classify(err error) string {
	var cfgErr *domain.ConfigError
	var dataErr *domain.DataQualityError
	var numErr *domain.NumericalError
	switch {
	case errors.As(err, &cfgErr):
		return "config_error"
	case errors.As(err, &dataErr):
		return "data_error"
	case errors.As(err, &numErr):
		return "numerical_error"
	default:
		return "error"
	}
}
