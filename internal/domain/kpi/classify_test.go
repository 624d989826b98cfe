package kpi_test

import (
	"testing"

	"github.com/rpggio/vantage/internal/domain/kpi"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name           string
		rate           *float64
		isHigherBetter bool
		want           kpi.Status
	}{
		{"above plan", f(3), true, kpi.StatusGood},
		{"slightly below plan", f(-3), true, kpi.StatusWarning},
		{"well below plan", f(-8), true, kpi.StatusCritical},
		{"cost overrun", f(8), false, kpi.StatusCritical},
		{"cost under plan", f(-2), false, kpi.StatusGood},
		{"exactly on plan", f(0), true, kpi.StatusGood},
		{"at threshold", f(-5), true, kpi.StatusWarning},
		{"just past threshold", f(-5.0001), true, kpi.StatusCritical},
		{"unknown", nil, true, kpi.StatusPending},
		{"unknown cost", nil, false, kpi.StatusPending},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, kpi.Classify(tc.rate, tc.isHigherBetter))
		})
	}
}

func TestClassifier_CustomThreshold(t *testing.T) {
	c := kpi.NewClassifier(10)
	require.Equal(t, kpi.StatusWarning, c.Classify(f(-8), true))
	require.Equal(t, kpi.StatusCritical, c.Classify(f(-11), true))

	require.Equal(t, kpi.DefaultWarningThreshold, kpi.NewClassifier(-1).WarningThreshold)

	var zero kpi.Classifier
	require.Equal(t, kpi.StatusCritical, zero.Classify(f(-8), true))
}
