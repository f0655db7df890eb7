// Package scheduling computes technician utilization and performs work-order
// assignment with conflict signaling.
package scheduling

import (
	"math"

	"github.com/fieldworks/woms/internal/core"
)

// UtilizationStatus classifies a technician's day.
type UtilizationStatus string

const (
	StatusUnder   UtilizationStatus = "under"
	StatusOptimal UtilizationStatus = "optimal"
	StatusOver    UtilizationStatus = "over"
)

// Classification thresholds: below underThreshold is "under", above
// overThreshold is "over". These values live only here; every consumer of
// the derived fields goes through Classify.
const (
	underThreshold = 80
	overThreshold  = 100
)

// Utilization is the derived view over (availableHours, scheduledHours).
type Utilization struct {
	Percentage      float64
	RemainingHours  float64
	IsOverallocated bool
	Status          UtilizationStatus
}

// Classify is pure and total: zero available hours yields percentage 0 and
// status "under", never a division error.
func Classify(availableHours, scheduledHours float64) Utilization {
	var percentage float64
	if availableHours > 0 {
		percentage = math.Round(scheduledHours / availableHours * 100)
	}

	status := StatusOptimal
	switch {
	case percentage < underThreshold:
		status = StatusUnder
	case percentage > overThreshold:
		status = StatusOver
	}

	return Utilization{
		Percentage:      percentage,
		RemainingHours:  availableHours - scheduledHours,
		IsOverallocated: scheduledHours > availableHours,
		Status:          status,
	}
}

// ScheduleView is a schedule row plus its derived fields, the shape returned
// by every schedule read.
type ScheduleView struct {
	core.Schedule
	UtilizationPercentage float64           `json:"utilizationPercentage"`
	RemainingHours        float64           `json:"remainingHours"`
	IsOverallocated       bool              `json:"isOverallocated"`
	UtilizationStatus     UtilizationStatus `json:"utilizationStatus"`
}

// NewView derives the computed fields for one schedule.
func NewView(s core.Schedule) ScheduleView {
	u := Classify(s.AvailableHours, s.ScheduledHours)
	return ScheduleView{
		Schedule:              s,
		UtilizationPercentage: u.Percentage,
		RemainingHours:        u.RemainingHours,
		IsOverallocated:       u.IsOverallocated,
		UtilizationStatus:     u.Status,
	}
}

// NewViews derives computed fields for a slice of schedules.
func NewViews(schedules []core.Schedule) []ScheduleView {
	views := make([]ScheduleView, 0, len(schedules))
	for _, s := range schedules {
		views = append(views, NewView(s))
	}
	return views
}
