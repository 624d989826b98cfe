package commands

import (
	"context"
	"log/slog"
	"testing"

	"github.com/rpggio/vantage/internal/config"
	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/stretchr/testify/require"
)

const sampleFixture = "../../../fixtures/sample.yaml"

func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.Default()
	cfg.DB.Path = ":memory:"
	cfg.KPI.PipelineScale = "1000000"

	a, err := newApp(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestSeedIfEmpty(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	require.NoError(t, a.seedIfEmpty(ctx, sampleFixture))

	ds, err := a.datasets.LoadDataset(ctx)
	require.NoError(t, err)
	require.Equal(t, kpi.MonthKey("2024-09"), ds.CurrentMonth)

	// Populated databases are left alone, even with a bad path.
	require.NoError(t, a.seedIfEmpty(ctx, "does-not-exist.yaml"))
}

func TestSeedIfEmpty_NoPath(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.seedIfEmpty(context.Background(), ""))
}

func TestOverviewAfterSeed(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	res, err := a.seed(ctx, sampleFixture)
	require.NoError(t, err)
	require.Equal(t, 4, res.Definitions)
	require.Equal(t, 4, res.Users)

	ov, err := a.dashboard.Overview(ctx, dashboard.OverviewRequest{})
	require.NoError(t, err)
	require.Equal(t, kpi.MonthKey("2024-09"), ov.Month)
	require.Len(t, ov.Rows, 4)
	require.NotNil(t, ov.Layered)
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}
