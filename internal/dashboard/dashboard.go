// Package dashboard composes KPI views and the sales pipeline into the
// overview consumed by the transport layer.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/rpggio/vantage/internal/domain/pipeline"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DatasetProvider supplies the fiscal-year KPI dataset.
type DatasetProvider interface {
	LoadDataset(ctx context.Context) (*kpi.Dataset, error)
}

// PipelineProvider supplies the current sales pipeline.
type PipelineProvider interface {
	LoadPipeline(ctx context.Context) (*pipeline.Snapshot, error)
}

// Options configures derivations that depend on deployment settings.
type Options struct {
	Classifier kpi.Classifier
	// RevenueKPI anchors the layered revenue and target gap. Empty disables both.
	RevenueKPI kpi.ID
	// PipelineScale is the number of pipeline currency units per revenue KPI
	// unit. Zero means 1.
	PipelineScale decimal.Decimal
	// CompositeInputs are externally supplied figures shown as-is.
	CompositeInputs map[string]float64
}

// Service builds dashboard views from its providers.
type Service struct {
	datasets  DatasetProvider
	pipelines PipelineProvider
	opts      Options
	logger    *slog.Logger
}

// NewService creates a new dashboard service.
func NewService(datasets DatasetProvider, pipelines PipelineProvider, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PipelineScale.IsZero() {
		opts.PipelineScale = decimal.NewFromInt(1)
	}
	return &Service{datasets: datasets, pipelines: pipelines, opts: opts, logger: logger}
}

// OverviewRequest selects the month and category shown. Empty values mean the
// dataset's current month and every category.
type OverviewRequest struct {
	Month    kpi.MonthKey
	Category string
}

// Rated is a KPI value with its classification.
type Rated struct {
	kpi.Value
	Status kpi.Status `json:"status"`
}

// Row is one KPI across every view.
type Row struct {
	Definition kpi.Definition `json:"definition"`
	Current    Rated          `json:"current"`
	Previous   *Rated         `json:"previous,omitempty"`
	YTD        Rated          `json:"ytd"`
	Forecast   Rated          `json:"forecast"`
	MoM        kpi.Delta      `json:"mom"`
}

// PipelineView is the pipeline rollup with its close-month distribution.
type PipelineView struct {
	pipeline.Rollup
	ByCloseMonth []pipeline.MonthBucket `json:"by_close_month"`
}

// Overview is the full dashboard for one month.
type Overview struct {
	FiscalYear      string                   `json:"fiscal_year"`
	Month           kpi.MonthKey             `json:"month"`
	Category        string                   `json:"category,omitempty"`
	Rows            []Row                    `json:"rows"`
	Pipeline        PipelineView             `json:"pipeline"`
	Layered         *pipeline.LayeredRevenue `json:"layered_revenue,omitempty"`
	Gap             *pipeline.TargetGap      `json:"target_gap,omitempty"`
	Issues          []kpi.Issue              `json:"issues"`
	CompositeInputs map[string]float64       `json:"composite_inputs,omitempty"`
}

// Overview loads both providers concurrently and derives every view.
func (s *Service) Overview(ctx context.Context, req OverviewRequest) (*Overview, error) {
	ds, snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	month := req.Month
	if month == "" {
		month = ds.CurrentMonth
	}

	views, err := kpi.BuildViews(ds, month)
	if err != nil {
		return nil, err
	}
	pv, err := buildPipeline(snap)
	if err != nil {
		return nil, err
	}
	issues, err := kpi.DetectIssues(ds, month, s.opts.Classifier)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		FiscalYear:      ds.FiscalYear,
		Month:           month,
		Category:        req.Category,
		Rows:            s.rows(ds, views, req.Category),
		Pipeline:        *pv,
		Issues:          filterIssues(issues, req.Category),
		CompositeInputs: s.opts.CompositeInputs,
	}
	if s.opts.RevenueKPI != "" {
		if err := s.layer(ds, views, pv.Weighted, out); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("overview built", "month", month, "rows", len(out.Rows), "issues", len(out.Issues))
	return out, nil
}

// Pipeline returns the pipeline rollup alone.
func (s *Service) Pipeline(ctx context.Context) (*PipelineView, error) {
	snap, err := s.pipelines.LoadPipeline(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading pipeline: %w", err)
	}
	return buildPipeline(snap)
}

// Issues returns the warning and critical KPIs for a month.
func (s *Service) Issues(ctx context.Context, req OverviewRequest) ([]kpi.Issue, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	month := req.Month
	if month == "" {
		month = ds.CurrentMonth
	}
	issues, err := kpi.DetectIssues(ds, month, s.opts.Classifier)
	if err != nil {
		return nil, err
	}
	return filterIssues(issues, req.Category), nil
}

func (s *Service) load(ctx context.Context) (*kpi.Dataset, *pipeline.Snapshot, error) {
	var (
		ds   *kpi.Dataset
		snap *pipeline.Snapshot
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ds, err = s.dataset(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap, err = s.pipelines.LoadPipeline(gctx)
		if err != nil {
			return fmt.Errorf("loading pipeline: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ds, snap, nil
}

func (s *Service) dataset(ctx context.Context) (*kpi.Dataset, error) {
	ds, err := s.datasets.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *Service) rows(ds *kpi.Dataset, views kpi.Views, category string) []Row {
	c := s.opts.Classifier
	rate := func(v kpi.Value, hib bool) Rated {
		return Rated{Value: v, Status: c.Classify(v.VarianceRate, hib)}
	}

	rows := make([]Row, 0, len(ds.Definitions))
	for _, def := range ds.Definitions {
		if category != "" && def.Category != category {
			continue
		}
		row := Row{
			Definition: def,
			Current:    rate(views.Current[def.ID], def.IsHigherBetter),
			YTD:        rate(views.YTD[def.ID], def.IsHigherBetter),
			Forecast:   rate(views.Forecast[def.ID], def.IsHigherBetter),
			MoM:        views.MoM[def.ID],
		}
		if views.Previous != nil {
			prev := rate(views.Previous[def.ID], def.IsHigherBetter)
			row.Previous = &prev
		}
		rows = append(rows, row)
	}
	return rows
}

func (s *Service) layer(ds *kpi.Dataset, views kpi.Views, weighted decimal.Decimal, out *Overview) error {
	target, err := ds.AnnualBudget(s.opts.RevenueKPI)
	if err != nil {
		return err
	}
	if _, err := ds.Definition(s.opts.RevenueKPI); err != nil {
		return err
	}
	scaled := weighted.Div(s.opts.PipelineScale)
	forecast := 0.0
	if v := views.Forecast[s.opts.RevenueKPI].Actual; v != nil {
		forecast = *v
	}
	layered := pipeline.Layer(views.YTD[s.opts.RevenueKPI].Actual, forecast, scaled)
	gap := pipeline.Gap(target, layered.Total)
	out.Layered = &layered
	out.Gap = &gap
	return nil
}

func buildPipeline(snap *pipeline.Snapshot) (*PipelineView, error) {
	if snap == nil {
		snap = &pipeline.Snapshot{}
	}
	rollup, err := pipeline.Build(*snap)
	if err != nil {
		return nil, err
	}
	buckets, err := pipeline.ByCloseMonth(snap.Items, snap.Stages)
	if err != nil {
		return nil, err
	}
	return &PipelineView{Rollup: rollup, ByCloseMonth: buckets}, nil
}

func filterIssues(issues []kpi.Issue, category string) []kpi.Issue {
	if category == "" {
		return issues
	}
	out := make([]kpi.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Definition.Category == category {
			out = append(out, issue)
		}
	}
	return out
}
