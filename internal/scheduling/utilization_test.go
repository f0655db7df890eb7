package scheduling

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/woms/internal/core"
)

func TestClassify(t *testing.T) {
	t.Run("UnderThreshold", func(t *testing.T) {
		u := Classify(8, 6)
		require.Equal(t, 75.0, u.Percentage)
		require.Equal(t, StatusUnder, u.Status)
		require.Equal(t, 2.0, u.RemainingHours)
		require.False(t, u.IsOverallocated)
	})

	t.Run("OptimalLowerBound", func(t *testing.T) {
		u := Classify(10, 8)
		require.Equal(t, 80.0, u.Percentage)
		require.Equal(t, StatusOptimal, u.Status)
	})

	t.Run("OptimalAtFullCapacity", func(t *testing.T) {
		u := Classify(8, 8)
		require.Equal(t, 100.0, u.Percentage)
		require.Equal(t, StatusOptimal, u.Status)
		require.False(t, u.IsOverallocated)
	})

	t.Run("OverFullCapacity", func(t *testing.T) {
		u := Classify(8, 8.8)
		require.Equal(t, 110.0, u.Percentage)
		require.Equal(t, StatusOver, u.Status)
		require.True(t, u.IsOverallocated)
	})

	t.Run("Overallocated", func(t *testing.T) {
		u := Classify(8, 9)
		require.Equal(t, 113.0, u.Percentage)
		require.Equal(t, StatusOver, u.Status)
		require.True(t, u.IsOverallocated)
		require.Equal(t, -1.0, u.RemainingHours)
	})

	t.Run("ZeroAvailableHours", func(t *testing.T) {
		u := Classify(0, 4)
		require.Equal(t, 0.0, u.Percentage)
		require.Equal(t, StatusUnder, u.Status)
		require.True(t, u.IsOverallocated)
	})

	t.Run("ZeroScheduledHours", func(t *testing.T) {
		u := Classify(8, 0)
		require.Equal(t, 0.0, u.Percentage)
		require.Equal(t, StatusUnder, u.Status)
		require.False(t, u.IsOverallocated)
	})

	t.Run("RoundsToNearestPercent", func(t *testing.T) {
		// 7.5/8 = 93.75 -> 94
		u := Classify(8, 7.5)
		require.Equal(t, 94.0, u.Percentage)
	})

	t.Run("Deterministic", func(t *testing.T) {
		first := Classify(8, 6.5)
		second := Classify(8, 6.5)
		require.Equal(t, first, second)
	})
}

func TestNewView(t *testing.T) {
	view := NewView(core.Schedule{
		ID:             "s1",
		TechnicianID:   "t1",
		Day:            "2026-09-01",
		AvailableHours: 8,
		ScheduledHours: 9,
		IsAvailable:    true,
	})

	require.Equal(t, "s1", view.ID)
	require.Equal(t, 113.0, view.UtilizationPercentage)
	require.Equal(t, -1.0, view.RemainingHours)
	require.True(t, view.IsOverallocated)
	require.Equal(t, StatusOver, view.UtilizationStatus)
}

func TestNewViewsEmpty(t *testing.T) {
	require.Empty(t, NewViews(nil))
}
