package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/rpggio/vantage/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func sampleDataset() *kpi.Dataset {
	return &kpi.Dataset{
		FiscalYear: "FY2024",
		MonthOrder: []kpi.MonthKey{"2024-04", "2024-05"},
		Months: []kpi.MonthRecord{
			{Month: "2024-05", Label: "May", KPIs: map[kpi.ID]kpi.Value{"revenue": {Budget: 100}}},
			{Month: "2024-04", Label: "Apr", IsClosed: true, KPIs: map[kpi.ID]kpi.Value{"revenue": {Actual: floatPtr(95), Budget: 90}}},
		},
		AnnualBudgets: map[kpi.ID]float64{"revenue": 190},
		Definitions:   []kpi.Definition{{ID: "revenue", Name: "Revenue", Unit: "JPY", Category: "sales", IsHigherBetter: true}},
		CurrentMonth:  "2024-04",
	}
}

func TestDatasetRepository_SaveLoad(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewDatasetRepository(db)

	_, err := repo.LoadDataset(ctx)
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, repo.Save(ctx, sampleDataset()))
	// Saving again replaces rather than duplicates.
	require.NoError(t, repo.Save(ctx, sampleDataset()))

	ds, err := repo.LoadDataset(ctx)
	require.NoError(t, err)
	require.NoError(t, ds.Validate())
	require.Equal(t, []kpi.MonthKey{"2024-04", "2024-05"}, ds.MonthOrder)
	require.Equal(t, kpi.MonthKey("2024-04"), ds.CurrentMonth)
	require.Equal(t, 190.0, ds.AnnualBudgets["revenue"])
	require.True(t, ds.Definitions[0].IsHigherBetter)

	apr, ok := ds.Month("2024-04")
	require.True(t, ok)
	require.True(t, apr.IsClosed)
	require.Equal(t, 95.0, *apr.KPIs["revenue"].Actual)

	may, _ := ds.Month("2024-05")
	require.Nil(t, may.KPIs["revenue"].Actual)

	ytd, err := kpi.ComputeYTD(ds, "2024-05")
	require.NoError(t, err)
	require.Equal(t, 95.0, *ytd["revenue"].Actual)
}

func TestDatasetRepository_UnknownKPI(t *testing.T) {
	db := NewTestDB(t)
	repo := NewDatasetRepository(db)

	ds := sampleDataset()
	ds.Months[0].KPIs["headcount"] = kpi.Value{Budget: 3}
	err := repo.Save(context.Background(), ds)
	require.ErrorIs(t, err, kpi.ErrMissingReference)
}

func TestPipelineRepository_SaveLoad(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewPipelineRepository(db)

	snap := &pipeline.Snapshot{
		Stages: []pipeline.Stage{
			{ID: "B", Name: "Likely", Probability: 50},
			{ID: "A", Name: "Committed", Probability: 80, HighConfidence: true},
		},
		Items: []pipeline.Item{
			{ID: "o1", Amount: decimal.RequireFromString("1234567.89"), Stage: "A", ExpectedCloseMonth: "2024-07", Customer: "Acme", Owner: "u1"},
			{ID: "o2", Amount: decimal.NewFromInt(20), Stage: "B"},
		},
	}
	require.NoError(t, repo.Save(ctx, snap))

	loaded, err := repo.LoadPipeline(ctx)
	require.NoError(t, err)
	require.Equal(t, pipeline.StageID("B"), loaded.Stages[0].ID)
	require.True(t, loaded.Stages[1].HighConfidence)
	require.Len(t, loaded.Items, 2)
	require.True(t, loaded.Items[0].Amount.Equal(decimal.RequireFromString("1234567.89")))
	require.Equal(t, "Acme", loaded.Items[0].Customer)

	snap.Items = append(snap.Items, pipeline.Item{ID: "o3", Amount: decimal.NewFromInt(1), Stage: "Z"})
	err = repo.Save(ctx, snap)
	require.ErrorIs(t, err, pipeline.ErrMissingReference)

	// The failed save rolled back.
	loaded, err = repo.LoadPipeline(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
}
