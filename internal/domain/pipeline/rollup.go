package pipeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"
)

// Summarize groups items by stage in the declared stage order. Stages without
// items are kept with zero totals. An item pointing at an unknown stage fails
// the whole rollup.
func Summarize(items []Item, stages []Stage) ([]Summary, error) {
	index, err := stageIndex(stages)
	if err != nil {
		return nil, err
	}
	summaries := make([]Summary, len(stages))
	for i, st := range stages {
		summaries[i] = Summary{
			Stage:          st.ID,
			Name:           st.Name,
			Probability:    st.Probability,
			HighConfidence: st.HighConfidence,
			TotalAmount:    decimal.Zero,
			WeightedAmount: decimal.Zero,
		}
	}

	for _, item := range items {
		i, ok := index[item.Stage]
		if !ok {
			return nil, &MissingReferenceError{ItemID: item.ID, Stage: item.Stage}
		}
		if item.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: item %s", ErrNegativeAmount, item.ID)
		}
		summaries[i].Count++
		summaries[i].TotalAmount = summaries[i].TotalAmount.Add(item.Amount)
	}

	for i := range summaries {
		summaries[i].WeightedAmount = weight(summaries[i].TotalAmount, summaries[i].Probability)
	}
	return summaries, nil
}

// stageIndex maps each stage id to its position, rejecting out-of-range
// probabilities and repeated ids.
func stageIndex(stages []Stage) (map[StageID]int, error) {
	index := make(map[StageID]int, len(stages))
	for i, st := range stages {
		if st.Probability < 0 || st.Probability > 100 || math.IsNaN(st.Probability) {
			return nil, fmt.Errorf("%w: stage %s has %v", ErrInvalidProbability, st.ID, st.Probability)
		}
		if _, dup := index[st.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStage, st.ID)
		}
		index[st.ID] = i
	}
	return index, nil
}

func weight(amount decimal.Decimal, probability float64) decimal.Decimal {
	return amount.Mul(decimal.NewFromFloat(probability)).Shift(-2)
}

// WeightedTotal sums the weighted amounts of summaries.
func WeightedTotal(summaries []Summary) decimal.Decimal {
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.WeightedAmount)
	}
	return total
}

// GrossTotal sums the total amounts of summaries.
func GrossTotal(summaries []Summary) decimal.Decimal {
	total := decimal.Zero
	for _, s := range summaries {
		total = total.Add(s.TotalAmount)
	}
	return total
}

// Quality is the share of the gross pipeline sitting in high-confidence
// stages, in percent. An empty pipeline has quality 0.
func Quality(summaries []Summary) float64 {
	gross := GrossTotal(summaries)
	if gross.IsZero() {
		return 0
	}
	high := decimal.Zero
	for _, s := range summaries {
		if s.HighConfidence {
			high = high.Add(s.TotalAmount)
		}
	}
	return high.Div(gross).Shift(2).InexactFloat64()
}

// Build runs a single summary pass and reduces every total from it.
func Build(snapshot Snapshot) (Rollup, error) {
	summaries, err := Summarize(snapshot.Items, snapshot.Stages)
	if err != nil {
		return Rollup{}, err
	}
	return Rollup{
		Stages:   summaries,
		Gross:    GrossTotal(summaries),
		Weighted: WeightedTotal(summaries),
		Quality:  Quality(summaries),
	}, nil
}

// ByCloseMonth buckets items by expected close month, ascending. Items
// without a close month are grouped under "".
func ByCloseMonth(items []Item, stages []Stage) ([]MonthBucket, error) {
	index, err := stageIndex(stages)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*MonthBucket)
	for _, item := range items {
		i, ok := index[item.Stage]
		if !ok {
			return nil, &MissingReferenceError{ItemID: item.ID, Stage: item.Stage}
		}
		p := stages[i].Probability
		b, ok := buckets[item.ExpectedCloseMonth]
		if !ok {
			b = &MonthBucket{Month: item.ExpectedCloseMonth, Gross: decimal.Zero, Weighted: decimal.Zero}
			buckets[item.ExpectedCloseMonth] = b
		}
		b.Count++
		b.Gross = b.Gross.Add(item.Amount)
		b.Weighted = b.Weighted.Add(weight(item.Amount, p))
	}

	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Layer stacks the revenue layers. confirmed is the YTD actual (nil while no
// month is closed), forecast the landing estimate of the revenue KPI.
func Layer(confirmed *float64, forecast float64, weighted decimal.Decimal) LayeredRevenue {
	var c float64
	if confirmed != nil {
		c = *confirmed
	}
	p := weighted.InexactFloat64()
	return LayeredRevenue{
		Confirmed: c,
		Projected: forecast - c,
		Pipeline:  p,
		Total:     c + p,
	}
}

// Gap compares landing with target. Coverage is nil for a zero target.
func Gap(target, landing float64) TargetGap {
	gap := TargetGap{
		Target:  target,
		Landing: landing,
		Gap:     target - landing,
	}
	if target != 0 {
		coverage := landing / target * 100
		if !math.IsNaN(coverage) && !math.IsInf(coverage, 0) {
			gap.CoverageRate = &coverage
		}
	}
	return gap
}
