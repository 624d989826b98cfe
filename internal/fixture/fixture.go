// Package fixture loads a fiscal-year snapshot, its sales pipeline and the user
// directory from a single YAML file. A Bundle serves as an in-memory provider
// for the dashboard and as seed data for the sqlite store.
package fixture

import (
	"context"
	"fmt"
	"os"

	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/rpggio/vantage/internal/domain/user"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type file struct {
	FiscalYear    string             `yaml:"fiscal_year"`
	CurrentMonth  string             `yaml:"current_month"`
	Definitions   []definition       `yaml:"definitions"`
	AnnualBudgets map[string]float64 `yaml:"annual_budgets"`
	Months        []month            `yaml:"months"`
	Pipeline      pipelineFile       `yaml:"pipeline"`
	Users         []user.User        `yaml:"users"`
}

type definition struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Unit           string `yaml:"unit"`
	Category       string `yaml:"category"`
	IsHigherBetter bool   `yaml:"is_higher_better"`
}

type month struct {
	Month  string           `yaml:"month"`
	Label  string           `yaml:"label"`
	Closed bool             `yaml:"closed"`
	KPIs   map[string]value `yaml:"kpis"`
}

type value struct {
	Actual *float64 `yaml:"actual"`
	Budget float64  `yaml:"budget"`
}

type pipelineFile struct {
	Stages []pipeline.Stage `yaml:"stages"`
	Items  []item           `yaml:"items"`
}

// Amounts are strings so that fractional yen survive without float rounding.
type item struct {
	ID                 string `yaml:"id"`
	Amount             string `yaml:"amount"`
	Stage              string `yaml:"stage"`
	ExpectedCloseMonth string `yaml:"expected_close_month"`
	Customer           string `yaml:"customer"`
	Owner              string `yaml:"owner"`
}

// Bundle is a validated fixture.
type Bundle struct {
	Dataset  *kpi.Dataset
	Pipeline *pipeline.Snapshot
	Users    []user.User
}

// Load reads and parses the fixture at path.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes fixture YAML. Month order follows the order of the months
// list, variance rates are derived from actual and budget, and the dataset
// and pipeline are validated before returning.
func Parse(data []byte) (*Bundle, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}

	ds := &kpi.Dataset{
		FiscalYear:    f.FiscalYear,
		CurrentMonth:  kpi.MonthKey(f.CurrentMonth),
		AnnualBudgets: make(map[kpi.ID]float64, len(f.AnnualBudgets)),
	}
	for _, d := range f.Definitions {
		ds.Definitions = append(ds.Definitions, kpi.Definition{
			ID:             kpi.ID(d.ID),
			Name:           d.Name,
			Unit:           d.Unit,
			Category:       d.Category,
			IsHigherBetter: d.IsHigherBetter,
		})
	}
	for id, amount := range f.AnnualBudgets {
		ds.AnnualBudgets[kpi.ID(id)] = amount
	}
	for _, m := range f.Months {
		rec := kpi.MonthRecord{
			Month:    kpi.MonthKey(m.Month),
			Label:    m.Label,
			IsClosed: m.Closed,
			KPIs:     make(map[kpi.ID]kpi.Value, len(m.KPIs)),
		}
		for id, v := range m.KPIs {
			kv := kpi.Value{Actual: v.Actual, Budget: v.Budget}
			if v.Actual != nil {
				kv.VarianceRate = kpi.VarianceRate(*v.Actual, v.Budget)
			}
			rec.KPIs[kpi.ID(id)] = kv
		}
		ds.MonthOrder = append(ds.MonthOrder, rec.Month)
		ds.Months = append(ds.Months, rec)
	}
	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	snap := &pipeline.Snapshot{Stages: f.Pipeline.Stages}
	for _, it := range f.Pipeline.Items {
		amount, err := decimal.NewFromString(it.Amount)
		if err != nil {
			return nil, fmt.Errorf("pipeline item %s: invalid amount %q: %w", it.ID, it.Amount, err)
		}
		snap.Items = append(snap.Items, pipeline.Item{
			ID:                 it.ID,
			Amount:             amount,
			Stage:              pipeline.StageID(it.Stage),
			ExpectedCloseMonth: it.ExpectedCloseMonth,
			Customer:           it.Customer,
			Owner:              it.Owner,
		})
	}
	if _, err := pipeline.Summarize(snap.Items, snap.Stages); err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}

	if _, err := user.NewDirectory(f.Users); err != nil {
		return nil, fmt.Errorf("invalid users: %w", err)
	}

	return &Bundle{Dataset: ds, Pipeline: snap, Users: f.Users}, nil
}

// LoadDataset returns the fixture dataset.
func (b *Bundle) LoadDataset(ctx context.Context) (*kpi.Dataset, error) {
	return b.Dataset, nil
}

// LoadPipeline returns the fixture pipeline snapshot.
func (b *Bundle) LoadPipeline(ctx context.Context) (*pipeline.Snapshot, error) {
	return b.Pipeline, nil
}
