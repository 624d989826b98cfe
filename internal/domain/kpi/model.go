package kpi

// ID identifies a KPI such as "revenue" or "gross_margin".
type ID string

// MonthKey identifies a fiscal month, e.g. "2024-04".
type MonthKey string

// Status is the three-level health of a KPI plus the pending state for unknown values.
type Status string

const (
	StatusGood     Status = "good"
	StatusWarning  Status = "warning"
	StatusCritical Status = "critical"
	StatusPending  Status = "pending"
)

// Value is a single KPI observation. Actual is nil while the period is open.
type Value struct {
	Actual       *float64 `json:"actual"`
	Budget       float64  `json:"budget"`
	VarianceRate *float64 `json:"variance_rate"`
}

// MonthRecord is an immutable snapshot of one fiscal month.
type MonthRecord struct {
	Month    MonthKey     `json:"month"`
	Label    string       `json:"label"`
	IsClosed bool         `json:"is_closed"`
	KPIs     map[ID]Value `json:"kpis"`
}

// Definition is static configuration describing how a KPI is interpreted.
type Definition struct {
	ID             ID     `json:"id"`
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	Category       string `json:"category"`
	IsHigherBetter bool   `json:"is_higher_better"`
}

// Delta is the month-over-month movement of a KPI actual.
type Delta struct {
	Current    *float64 `json:"current"`
	Previous   *float64 `json:"previous"`
	Change     *float64 `json:"change"`
	ChangeRate *float64 `json:"change_rate"`
}

// Views bundles the derived values the dashboard renders for a selected month.
type Views struct {
	Month    MonthKey     `json:"month"`
	Current  map[ID]Value `json:"current"`
	Previous map[ID]Value `json:"previous,omitempty"`
	YTD      map[ID]Value `json:"ytd"`
	Forecast map[ID]Value `json:"forecast"`
	MoM      map[ID]Delta `json:"mom"`
}

// Issue is a KPI whose selected-month value classified as warning or critical.
type Issue struct {
	Definition Definition `json:"definition"`
	Month      MonthKey   `json:"month"`
	Value      Value      `json:"value"`
	Status     Status     `json:"status"`
	// Previous is the prior fiscal month's actual, nil for the first month
	// or when it was not recorded.
	Previous   *float64   `json:"previous,omitempty"`
}
