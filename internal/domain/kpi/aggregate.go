package kpi

import (
	"math"
	"sort"
)

// VarianceRate returns (actual-budget)/budget*100, or nil when budget is zero.
func VarianceRate(actual, budget float64) *float64 {
	if budget == 0 {
		return nil
	}
	return finite((actual - budget) / budget * 100)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ComputeYTD sums actuals over the closed months at or before upto, in fiscal
// order. The budget side covers the same closed months so the variance compares
// like with like; when no month in the window is closed, Actual and
// VarianceRate are nil and Budget is the whole window's budget.
func ComputeYTD(ds *Dataset, upto MonthKey) (map[ID]Value, error) {
	window, err := ds.window(upto)
	if err != nil {
		return nil, err
	}

	out := make(map[ID]Value, len(ds.Definitions))
	for _, def := range ds.Definitions {
		out[def.ID] = ytd(def.ID, window)
	}
	return out, nil
}

func ytd(id ID, window []MonthRecord) Value {
	actual, closedBudget, closed := confirmed(id, window)

	if closed == 0 {
		var budget float64
		for _, rec := range window {
			if v, ok := rec.KPIs[id]; ok {
				budget += v.Budget
			}
		}
		return Value{Budget: budget}
	}

	return Value{
		Actual:       &actual,
		Budget:       closedBudget,
		VarianceRate: VarianceRate(actual, closedBudget),
	}
}

// confirmed sums the actuals and matching budgets of closed months in window order.
func confirmed(id ID, window []MonthRecord) (actual, budget float64, closed int) {
	for _, rec := range window {
		if !rec.IsClosed {
			continue
		}
		v, ok := rec.KPIs[id]
		if !ok || v.Actual == nil {
			continue
		}
		actual += *v.Actual
		budget += v.Budget
		closed++
	}
	return actual, budget, closed
}

// ComputeForecast returns the landing estimate for every KPI: confirmed actuals
// through asOf plus the budget of every other month of the fiscal year. The
// variance compares the estimate against the full annual budget target.
func ComputeForecast(ds *Dataset, asOf MonthKey) (map[ID]Value, error) {
	window, err := ds.window(asOf)
	if err != nil {
		return nil, err
	}

	inWindow := make(map[MonthKey]bool, len(window))
	for _, rec := range window {
		inWindow[rec.Month] = true
	}

	out := make(map[ID]Value, len(ds.Definitions))
	for _, def := range ds.Definitions {
		annual, err := ds.AnnualBudget(def.ID)
		if err != nil {
			return nil, err
		}

		// Confirmed actuals are summed first, in the same order as ComputeYTD,
		// so an empty remainder yields exactly the YTD actual.
		forecast, _, _ := confirmed(def.ID, window)
		for _, rec := range ds.ordered() {
			v, ok := rec.KPIs[def.ID]
			if !ok {
				continue
			}
			if inWindow[rec.Month] && rec.IsClosed && v.Actual != nil {
				continue
			}
			forecast += v.Budget
		}

		out[def.ID] = Value{
			Actual:       &forecast,
			Budget:       annual,
			VarianceRate: VarianceRate(forecast, annual),
		}
	}
	return out, nil
}

// MonthValues returns the values recorded for month with variance rates
// recomputed through the division guard.
func MonthValues(ds *Dataset, month MonthKey) (map[ID]Value, error) {
	if _, err := ds.Position(month); err != nil {
		return nil, err
	}
	rec, _ := ds.Month(month)

	out := make(map[ID]Value, len(ds.Definitions))
	for _, def := range ds.Definitions {
		v, ok := rec.KPIs[def.ID]
		if !ok {
			out[def.ID] = Value{}
			continue
		}
		val := Value{Budget: v.Budget}
		if rec.IsClosed && v.Actual != nil {
			actual := *v.Actual
			val.Actual = &actual
			val.VarianceRate = VarianceRate(actual, v.Budget)
		}
		out[def.ID] = val
	}
	return out, nil
}

// ComputeMonthOverMonth compares month against the previous fiscal month. The
// change is nil when either side has no actual.
func ComputeMonthOverMonth(ds *Dataset, month MonthKey) (map[ID]Delta, error) {
	current, err := MonthValues(ds, month)
	if err != nil {
		return nil, err
	}
	prevKey, hasPrev, err := ds.PreviousMonth(month)
	if err != nil {
		return nil, err
	}
	var previous map[ID]Value
	if hasPrev {
		if previous, err = MonthValues(ds, prevKey); err != nil {
			return nil, err
		}
	}

	out := make(map[ID]Delta, len(current))
	for id, cur := range current {
		d := Delta{Current: cur.Actual}
		if prev, ok := previous[id]; ok {
			d.Previous = prev.Actual
		}
		if d.Current != nil && d.Previous != nil {
			change := *d.Current - *d.Previous
			d.Change = &change
			if *d.Previous != 0 {
				d.ChangeRate = finite(change / math.Abs(*d.Previous) * 100)
			}
		}
		out[id] = d
	}
	return out, nil
}

// BuildViews derives the current, previous, YTD, forecast and month-over-month
// views for month.
func BuildViews(ds *Dataset, month MonthKey) (Views, error) {
	views := Views{Month: month}

	var err error
	if views.Current, err = MonthValues(ds, month); err != nil {
		return Views{}, err
	}
	prevKey, hasPrev, err := ds.PreviousMonth(month)
	if err != nil {
		return Views{}, err
	}
	if hasPrev {
		if views.Previous, err = MonthValues(ds, prevKey); err != nil {
			return Views{}, err
		}
	}
	if views.YTD, err = ComputeYTD(ds, month); err != nil {
		return Views{}, err
	}
	if views.Forecast, err = ComputeForecast(ds, month); err != nil {
		return Views{}, err
	}
	if views.MoM, err = ComputeMonthOverMonth(ds, month); err != nil {
		return Views{}, err
	}
	return views, nil
}

// DetectIssues returns the KPIs whose value for month classifies as warning or
// critical, critical first and otherwise in definition order.
func DetectIssues(ds *Dataset, month MonthKey, classifier Classifier) ([]Issue, error) {
	values, err := MonthValues(ds, month)
	if err != nil {
		return nil, err
	}
	prevKey, hasPrev, err := ds.PreviousMonth(month)
	if err != nil {
		return nil, err
	}
	var previous map[ID]Value
	if hasPrev {
		if previous, err = MonthValues(ds, prevKey); err != nil {
			return nil, err
		}
	}

	var issues []Issue
	for _, def := range ds.Definitions {
		v := values[def.ID]
		status := classifier.Classify(v.VarianceRate, def.IsHigherBetter)
		if status != StatusWarning && status != StatusCritical {
			continue
		}
		issues = append(issues, Issue{
			Definition: def,
			Month:      month,
			Value:      v,
			Status:     status,
			Previous:   previous[def.ID].Actual,
		})
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Status == StatusCritical && issues[j].Status != StatusCritical
	})
	return issues, nil
}

// window returns the month records from the start of the fiscal year through
// upto, in fiscal order.
func (d *Dataset) window(upto MonthKey) ([]MonthRecord, error) {
	pos, err := d.Position(upto)
	if err != nil {
		return nil, err
	}
	out := make([]MonthRecord, 0, pos+1)
	for _, key := range d.MonthOrder[:pos+1] {
		if rec, ok := d.Month(key); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
