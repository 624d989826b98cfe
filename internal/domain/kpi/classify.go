package kpi

// DefaultWarningThreshold is the distance, in percentage points below zero,
// that still counts as a warning rather than critical.
const DefaultWarningThreshold = 5.0

// Classifier maps variance rates to statuses.
type Classifier struct {
	WarningThreshold float64
}

// NewClassifier returns a classifier, falling back to DefaultWarningThreshold
// for non-positive thresholds.
func NewClassifier(threshold float64) Classifier {
	if threshold <= 0 {
		threshold = DefaultWarningThreshold
	}
	return Classifier{WarningThreshold: threshold}
}

// Classify normalizes the rate so that a positive effective value always means
// on track, then buckets it.
func (c Classifier) Classify(varianceRate *float64, isHigherBetter bool) Status {
	if varianceRate == nil {
		return StatusPending
	}
	threshold := c.WarningThreshold
	if threshold <= 0 {
		threshold = DefaultWarningThreshold
	}

	effective := *varianceRate
	if !isHigherBetter {
		effective = -effective
	}

	switch {
	case effective >= 0:
		return StatusGood
	case effective >= -threshold:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// Classify uses the default threshold.
func Classify(varianceRate *float64, isHigherBetter bool) Status {
	return NewClassifier(DefaultWarningThreshold).Classify(varianceRate, isHigherBetter)
}
