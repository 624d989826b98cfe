package dashboard_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/vantage/internal/dashboard"
	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/rpggio/vantage/internal/repository/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func dataset() *kpi.Dataset {
	return &kpi.Dataset{
		FiscalYear: "FY2024-Q1",
		MonthOrder: []kpi.MonthKey{"2024-04", "2024-05", "2024-06"},
		Months: []kpi.MonthRecord{
			{Month: "2024-04", IsClosed: true, KPIs: map[kpi.ID]kpi.Value{
				"revenue": {Actual: f(100), Budget: 90},
				"cost":    {Actual: f(50), Budget: 60},
			}},
			{Month: "2024-05", IsClosed: true, KPIs: map[kpi.ID]kpi.Value{
				"revenue": {Actual: f(110), Budget: 100},
				"cost":    {Actual: f(70), Budget: 60},
			}},
			{Month: "2024-06", KPIs: map[kpi.ID]kpi.Value{
				"revenue": {Budget: 120},
				"cost":    {Budget: 60},
			}},
		},
		AnnualBudgets: map[kpi.ID]float64{"revenue": 310, "cost": 180},
		Definitions: []kpi.Definition{
			{ID: "revenue", Name: "Revenue", Category: "sales", IsHigherBetter: true},
			{ID: "cost", Name: "Cost", Category: "cost"},
		},
		CurrentMonth: "2024-05",
	}
}

func snapshot() *pipeline.Snapshot {
	return &pipeline.Snapshot{
		Stages: []pipeline.Stage{
			{ID: "A", Name: "Committed", Probability: 80, HighConfidence: true},
			{ID: "B", Name: "Likely", Probability: 50},
		},
		Items: []pipeline.Item{
			{ID: "o1", Amount: decimal.NewFromInt(10), Stage: "A", ExpectedCloseMonth: "2024-06"},
			{ID: "o2", Amount: decimal.NewFromInt(20), Stage: "B", ExpectedCloseMonth: "2024-06"},
		},
	}
}

func providers() (*mocks.DatasetProvider, *mocks.PipelineProvider) {
	datasets := &mocks.DatasetProvider{}
	datasets.On("LoadDataset", mock.Anything).Return(dataset(), nil)
	pipelines := &mocks.PipelineProvider{}
	pipelines.On("LoadPipeline", mock.Anything).Return(snapshot(), nil)
	return datasets, pipelines
}

func TestOverview(t *testing.T) {
	datasets, pipelines := providers()
	svc := dashboard.NewService(datasets, pipelines, dashboard.Options{
		RevenueKPI:      "revenue",
		CompositeInputs: map[string]float64{"new_customer_ratio": 12.5},
	}, nil)

	out, err := svc.Overview(context.Background(), dashboard.OverviewRequest{})
	require.NoError(t, err)
	require.Equal(t, kpi.MonthKey("2024-05"), out.Month)
	require.Len(t, out.Rows, 2)

	revenue := out.Rows[0]
	require.Equal(t, kpi.StatusGood, revenue.Current.Status)
	require.Equal(t, 210.0, *revenue.YTD.Actual)
	require.Equal(t, 330.0, *revenue.Forecast.Actual)
	require.NotNil(t, revenue.Previous)

	cost := out.Rows[1]
	require.Equal(t, kpi.StatusCritical, cost.Current.Status)
	require.Equal(t, kpi.StatusGood, cost.YTD.Status)

	require.True(t, out.Pipeline.Weighted.Equal(decimal.NewFromInt(18)))
	require.InDelta(t, 33.333, out.Pipeline.Quality, 0.001)
	require.Len(t, out.Pipeline.ByCloseMonth, 1)

	require.NotNil(t, out.Layered)
	require.Equal(t, 210.0, out.Layered.Confirmed)
	require.Equal(t, 120.0, out.Layered.Projected)
	require.Equal(t, 228.0, out.Layered.Total)
	require.Equal(t, 82.0, out.Gap.Gap)

	require.Len(t, out.Issues, 1)
	require.Equal(t, 12.5, out.CompositeInputs["new_customer_ratio"])
}

func TestOverview_CategoryAndScale(t *testing.T) {
	datasets, pipelines := providers()
	svc := dashboard.NewService(datasets, pipelines, dashboard.Options{
		RevenueKPI:    "revenue",
		PipelineScale: decimal.NewFromInt(10),
	}, nil)

	out, err := svc.Overview(context.Background(), dashboard.OverviewRequest{Month: "2024-04", Category: "sales"})
	require.NoError(t, err)
	require.Len(t, out.Rows, 1)
	require.Nil(t, out.Rows[0].Previous)
	require.Empty(t, out.Issues)
	require.InDelta(t, 1.8, out.Layered.Pipeline, 1e-9)
}

func TestOverview_MissingRevenueBudget(t *testing.T) {
	ds := dataset()
	delete(ds.AnnualBudgets, "revenue")
	datasets := &mocks.DatasetProvider{}
	datasets.On("LoadDataset", mock.Anything).Return(ds, nil)
	_, pipelines := providers()

	svc := dashboard.NewService(datasets, pipelines, dashboard.Options{RevenueKPI: "revenue"}, nil)
	_, err := svc.Overview(context.Background(), dashboard.OverviewRequest{})
	require.ErrorIs(t, err, kpi.ErrMissingReference)
}

func TestOverview_ProviderFailure(t *testing.T) {
	datasets, _ := providers()
	pipelines := &mocks.PipelineProvider{}
	boom := errors.New("pipeline offline")
	pipelines.On("LoadPipeline", mock.Anything).Return(nil, boom)

	svc := dashboard.NewService(datasets, pipelines, dashboard.Options{}, nil)
	_, err := svc.Overview(context.Background(), dashboard.OverviewRequest{})
	require.ErrorIs(t, err, boom)
}

func TestPipelineAndIssues(t *testing.T) {
	datasets, pipelines := providers()
	svc := dashboard.NewService(datasets, pipelines, dashboard.Options{}, nil)

	pv, err := svc.Pipeline(context.Background())
	require.NoError(t, err)
	require.True(t, pv.Gross.Equal(decimal.NewFromInt(30)))

	issues, err := svc.Issues(context.Background(), dashboard.OverviewRequest{Category: "cost"})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	require.Equal(t, kpi.ID("cost"), issues[0].Definition.ID)
}
