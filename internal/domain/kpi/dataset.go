package kpi

import "fmt"

// Dataset is the fiscal-year snapshot handed to the aggregation functions.
// Callers treat it as read-only; every derivation returns new values.
type Dataset struct {
	FiscalYear    string         `json:"fiscal_year"`
	MonthOrder    []MonthKey     `json:"month_order"`
	Months        []MonthRecord  `json:"months"`
	AnnualBudgets map[ID]float64 `json:"annual_budgets"`
	Definitions   []Definition   `json:"definitions"`
	// CurrentMonth points at the latest closed month.
	CurrentMonth MonthKey `json:"current_month"`
}

// Month returns the record for key.
func (d *Dataset) Month(key MonthKey) (MonthRecord, bool) {
	for _, rec := range d.Months {
		if rec.Month == key {
			return rec, true
		}
	}
	return MonthRecord{}, false
}

// Position returns the zero-based index of key in the fiscal month order.
func (d *Dataset) Position(key MonthKey) (int, error) {
	for i, m := range d.MonthOrder {
		if m == key {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrUnknownMonth, key)
}

// Definition looks up a KPI definition, failing with a MissingReferenceError.
func (d *Dataset) Definition(id ID) (Definition, error) {
	for _, def := range d.Definitions {
		if def.ID == id {
			return def, nil
		}
	}
	return Definition{}, &MissingReferenceError{Kind: "kpi", ID: string(id)}
}

// AnnualBudget returns the full-year budget target for id.
func (d *Dataset) AnnualBudget(id ID) (float64, error) {
	budget, ok := d.AnnualBudgets[id]
	if !ok {
		return 0, &MissingReferenceError{Kind: "annual budget", ID: string(id)}
	}
	return budget, nil
}

// LastClosedMonth returns the latest closed month in fiscal order.
func (d *Dataset) LastClosedMonth() (MonthKey, bool) {
	for i := len(d.MonthOrder) - 1; i >= 0; i-- {
		if rec, ok := d.Month(d.MonthOrder[i]); ok && rec.IsClosed {
			return rec.Month, true
		}
	}
	return "", false
}

// PreviousMonth returns the month before key in fiscal order.
func (d *Dataset) PreviousMonth(key MonthKey) (MonthKey, bool, error) {
	pos, err := d.Position(key)
	if err != nil {
		return "", false, err
	}
	if pos == 0 {
		return "", false, nil
	}
	return d.MonthOrder[pos-1], true, nil
}

// ordered returns the month records in fiscal order. Months without a record
// are skipped.
func (d *Dataset) ordered() []MonthRecord {
	byKey := make(map[MonthKey]MonthRecord, len(d.Months))
	for _, rec := range d.Months {
		byKey[rec.Month] = rec
	}
	out := make([]MonthRecord, 0, len(d.MonthOrder))
	for _, key := range d.MonthOrder {
		if rec, ok := byKey[key]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Validate checks the structural invariants of the dataset: every month in the
// order has exactly one record, actuals are present exactly on closed months,
// every KPI value references a definition, and the current month pointer is a
// closed month.
func (d *Dataset) Validate() error {
	if len(d.MonthOrder) == 0 {
		return fmt.Errorf("%w: empty month order", ErrInvalidDataset)
	}

	defs := make(map[ID]struct{}, len(d.Definitions))
	for _, def := range d.Definitions {
		if def.ID == "" {
			return fmt.Errorf("%w: definition without id", ErrInvalidDataset)
		}
		if _, dup := defs[def.ID]; dup {
			return fmt.Errorf("%w: duplicate definition %s", ErrInvalidDataset, def.ID)
		}
		defs[def.ID] = struct{}{}
	}

	inOrder := make(map[MonthKey]struct{}, len(d.MonthOrder))
	for _, key := range d.MonthOrder {
		if _, dup := inOrder[key]; dup {
			return fmt.Errorf("%w: duplicate month %s in order", ErrInvalidDataset, key)
		}
		inOrder[key] = struct{}{}
	}

	seen := make(map[MonthKey]struct{}, len(d.Months))
	for _, rec := range d.Months {
		if _, ok := inOrder[rec.Month]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMonth, rec.Month)
		}
		if _, dup := seen[rec.Month]; dup {
			return fmt.Errorf("%w: duplicate record for %s", ErrInvalidDataset, rec.Month)
		}
		seen[rec.Month] = struct{}{}

		for id, v := range rec.KPIs {
			if _, ok := defs[id]; !ok {
				return &MissingReferenceError{Kind: "kpi", ID: string(id)}
			}
			if rec.IsClosed && v.Actual == nil {
				return fmt.Errorf("%w: closed month %s has no actual for %s", ErrInvalidDataset, rec.Month, id)
			}
			if !rec.IsClosed && v.Actual != nil {
				return fmt.Errorf("%w: open month %s carries an actual for %s", ErrInvalidDataset, rec.Month, id)
			}
		}
	}
	if len(seen) != len(inOrder) {
		return fmt.Errorf("%w: %d of %d months have records", ErrInvalidDataset, len(seen), len(inOrder))
	}

	if d.CurrentMonth != "" {
		rec, ok := d.Month(d.CurrentMonth)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMonth, d.CurrentMonth)
		}
		if !rec.IsClosed {
			return fmt.Errorf("%w: current month %s is not closed", ErrInvalidDataset, d.CurrentMonth)
		}
	}

	return nil
}
