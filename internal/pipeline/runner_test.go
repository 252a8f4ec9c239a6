package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/normals-gridder/internal/config"
	"github.com/couchcryptid/normals-gridder/internal/domain"
	"github.com/couchcryptid/normals-gridder/internal/observability"
	"github.com/couchcryptid/normals-gridder/internal/pipeline"
)

// fakeExecutor fails the pairs listed in failures and records call order.
type fakeExecutor struct {
	failures map[string]error
	calls    []string
}

func (f *fakeExecutor) RunOne(_ context.Context, variable, region string) (*pipeline.Result, error) {
	key := variable + "/" + region
	f.calls = append(f.calls, key)
	if err, ok := f.failures[key]; ok {
		return nil, err
	}
	return &pipeline.Result{
		RunID:      "test-run",
		OutputPath: key + ".tif",
		Retained:   42,
	}, nil
}

func testConfig(continueOnError bool) *config.Config {
	return &config.Config{
		Variables:       []string{"tavg", "pr_annual"},
		Regions:         []string{"conus", "alaska"},
		ContinueOnError: continueOnError,
	}
}

func TestRunner_AllPairsExecute(t *testing.T) {
	exec := &fakeExecutor{}
	r := pipeline.NewRunner(exec, testConfig(true), slog.Default(), observability.NewMetricsForTesting())

	require.NoError(t, r.Run(context.Background()))

	want := []string{
		"tavg/conus", "tavg/alaska",
		"pr_annual/conus", "pr_annual/alaska",
	}
	if diff := cmp.Diff(want, exec.calls); diff != "" {
		t.Errorf("run order mismatch (-want +got):\n%s", diff)
	}
	assert.NoError(t, r.CheckReadiness(context.Background()))
}

func TestRunner_FailureIsolation(t *testing.T) {
	exec := &fakeExecutor{failures: map[string]error{
		"tavg/conus": domain.NewDataQualityError(fmt.Errorf("no stations")),
	}}
	r := pipeline.NewRunner(exec, testConfig(true), slog.Default(), observability.NewMetricsForTesting())

	require.NoError(t, r.Run(context.Background()))

	// The failed pair did not stop the remaining three.
	assert.Len(t, exec.calls, 4)
	assert.NoError(t, r.CheckReadiness(context.Background()))
}

func TestRunner_StopOnFirstErrorWhenConfigured(t *testing.T) {
	failure := domain.NewConfigError(fmt.Errorf("bad region"))
	exec := &fakeExecutor{failures: map[string]error{"tavg/conus": failure}}
	r := pipeline.NewRunner(exec, testConfig(false), slog.Default(), observability.NewMetricsForTesting())

	err := r.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Len(t, exec.calls, 1)
}

func TestRunner_AllFailedReturnsError(t *testing.T) {
	boom := errors.New("boom")
	exec := &fakeExecutor{failures: map[string]error{
		"tavg/conus": boom, "tavg/alaska": boom,
		"pr_annual/conus": boom, "pr_annual/alaska": boom,
	}}
	r := pipeline.NewRunner(exec, testConfig(true), slog.Default(), observability.NewMetricsForTesting())

	assert.Error(t, r.Run(context.Background()))
	assert.Error(t, r.CheckReadiness(context.Background()))
}

func TestRunner_HonorsCancellationBetweenRuns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExecutor{}
	r := pipeline.NewRunner(exec, testConfig(true), slog.Default(), observability.NewMetricsForTesting())

	require.NoError(t, r.Run(ctx))
	assert.Empty(t, exec.calls)
}

func TestRunner_ProgressCountsEveryFinishedPair(t *testing.T) {
	exec := &fakeExecutor{failures: map[string]error{
		"tavg/conus": domain.NewDataQualityError(fmt.Errorf("no stations")),
	}}
	r := pipeline.NewRunner(exec, testConfig(true), slog.Default(), observability.NewMetricsForTesting())

	completed, total := r.Progress()
	assert.Zero(t, completed)
	assert.Zero(t, total)

	require.NoError(t, r.Run(context.Background()))

	// Failed pairs count toward completion too.
	completed, total = r.Progress()
	assert.Equal(t, 4, completed)
	assert.Equal(t, 4, total)
}

func TestRunner_NotReadyBeforeAnySuccess(t *testing.T) {
	r := pipeline.NewRunner(&fakeExecutor{}, testConfig(true), slog.Default(), observability.NewMetricsForTesting())
	assert.Error(t, r.CheckReadiness(context.Background()))
}
