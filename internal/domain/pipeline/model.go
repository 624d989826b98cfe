package pipeline

import "github.com/shopspring/decimal"

// StageID identifies a sales pipeline stage.
type StageID string

// Stage is a confidence bucket with its close probability in percent (0..100).
type Stage struct {
	ID             StageID `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Probability    float64 `json:"probability" yaml:"probability"`
	HighConfidence bool    `json:"high_confidence" yaml:"high_confidence"`
}

// Item is a single sales opportunity. Amounts are in the internal currency unit.
type Item struct {
	ID                 string          `json:"id"`
	Amount             decimal.Decimal `json:"amount"`
	Stage              StageID         `json:"stage"`
	ExpectedCloseMonth string          `json:"expected_close_month"`
	Customer           string          `json:"customer"`
	Owner              string          `json:"owner"`
}

// Snapshot is the pipeline state handed over by a provider.
type Snapshot struct {
	Stages []Stage `json:"stages"`
	Items  []Item  `json:"items"`
}

// Summary is the per-stage rollup.
type Summary struct {
	Stage          StageID         `json:"stage"`
	Name           string          `json:"name"`
	Probability    float64         `json:"probability"`
	HighConfidence bool            `json:"high_confidence"`
	Count          int             `json:"count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	WeightedAmount decimal.Decimal `json:"weighted_amount"`
}

// Rollup holds the stage summaries with the totals reduced from them.
type Rollup struct {
	Stages   []Summary       `json:"stages"`
	Gross    decimal.Decimal `json:"gross"`
	Weighted decimal.Decimal `json:"weighted"`
	Quality  float64         `json:"quality"`
}

// MonthBucket is the pipeline expected to close in one month.
type MonthBucket struct {
	Month    string          `json:"month"`
	Count    int             `json:"count"`
	Gross    decimal.Decimal `json:"gross"`
	Weighted decimal.Decimal `json:"weighted"`
}

// LayeredRevenue stacks confirmed revenue, the budget run-rate and the
// weighted pipeline.
type LayeredRevenue struct {
	Confirmed float64 `json:"confirmed"`
	Projected float64 `json:"projected"`
	Pipeline  float64 `json:"pipeline"`
	// Total is confirmed revenue plus weighted pipeline.
	Total float64 `json:"total"`
}

// TargetGap compares a landing figure with the annual target.
type TargetGap struct {
	Target       float64  `json:"target"`
	Landing      float64  `json:"landing"`
	Gap          float64  `json:"gap"`
	CoverageRate *float64 `json:"coverage_rate"`
}
