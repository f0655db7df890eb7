package scheduling

import (
	"math"

	"github.com/fieldworks/woms/internal/core"
)

// Stats aggregates utilization across a set of schedules. All fields are
// simple reductions; there is no hidden state.
type Stats struct {
	TotalSchedules      int            `json:"totalSchedules"`
	TotalAvailableHours float64        `json:"totalAvailableHours"`
	TotalScheduledHours float64        `json:"totalScheduledHours"`
	AverageUtilization  float64        `json:"averageUtilization"`
	OverallocatedCount  int            `json:"overallocatedCount"`
	UnderutilizedCount  int            `json:"underutilizedCount"`
	OptimalCount        int            `json:"optimalCount"`
	Schedules           []ScheduleView `json:"schedules"`
}

// Summarize computes aggregate statistics over schedules.
func Summarize(schedules []core.Schedule) Stats {
	stats := Stats{Schedules: NewViews(schedules)}

	var percentageSum float64
	for _, view := range stats.Schedules {
		stats.TotalSchedules++
		stats.TotalAvailableHours += view.AvailableHours
		stats.TotalScheduledHours += view.ScheduledHours
		percentageSum += view.UtilizationPercentage

		switch view.UtilizationStatus {
		case StatusOver:
			stats.OverallocatedCount++
		case StatusUnder:
			stats.UnderutilizedCount++
		default:
			stats.OptimalCount++
		}
	}

	if stats.TotalSchedules > 0 {
		stats.AverageUtilization = math.Round(percentageSum/float64(stats.TotalSchedules)*100) / 100
	}

	return stats
}
