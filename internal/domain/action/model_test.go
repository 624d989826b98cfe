package action_test

import (
	"testing"
	"time"

	"github.com/rpggio/vantage/internal/domain/action"
	"github.com/stretchr/testify/require"
)

func TestEffectiveStatus(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name string
		item action.ActionItem
		want action.Status
	}{
		{"pending past due", action.ActionItem{Status: action.StatusPending, DueDate: past}, action.StatusOverdue},
		{"in progress past due", action.ActionItem{Status: action.StatusInProgress, DueDate: past}, action.StatusOverdue},
		{"completed past due", action.ActionItem{Status: action.StatusCompleted, DueDate: past}, action.StatusCompleted},
		{"pending future", action.ActionItem{Status: action.StatusPending, DueDate: future}, action.StatusPending},
		{"due exactly now", action.ActionItem{Status: action.StatusPending, DueDate: now}, action.StatusPending},
		{"no due date", action.ActionItem{Status: action.StatusInProgress}, action.StatusInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, action.EffectiveStatus(tc.item, now))
		})
	}
}

func TestStatus_Storable(t *testing.T) {
	require.True(t, action.StatusPending.Storable())
	require.True(t, action.StatusCompleted.Storable())
	require.False(t, action.StatusOverdue.Storable())
	require.False(t, action.Status("archived").Storable())
}
