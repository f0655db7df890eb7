// Package core defines the domain model shared by the store, the scheduling
// engine and the HTTP layer.
package core

import (
	"fmt"
	"time"
)

// Priority of a work order.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Status of a work order.
type Status string

const (
	StatusOpen       Status = "open"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusOpen, StatusAssigned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// statusTransitions enumerates the allowed forward moves. Cancellation is
// allowed from any non-terminal state.
var statusTransitions = map[Status][]Status{
	StatusOpen:       {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusOpen, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusAssigned, StatusCancelled},
}

// CanTransition reports whether a work order may move from one status to another.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Tenant is the top-level ownership boundary; every record is tenant-scoped.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// DefaultTenantID is used when no X-Tenant-ID header accompanies a request.
const DefaultTenantID = "default"

// Technician is a field worker that work orders are assigned to.
type Technician struct {
	ID       string `json:"id"`
	TenantID string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Skills   string `json:"skills,omitempty"`
	Active   bool   `json:"active"`
}

// Customer owns assets and requests work.
type Customer struct {
	ID       string `json:"id"`
	TenantID string `json:"-"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

// Asset is a serviceable piece of equipment belonging to a customer.
type Asset struct {
	ID         string `json:"id"`
	TenantID   string `json:"-"`
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Category   string `json:"category,omitempty"`
	Location   string `json:"location,omitempty"`
	Serial     string `json:"serial,omitempty"`
}

// WorkOrder tracks one maintenance or repair job.
type WorkOrder struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"-"`
	CustomerID     string     `json:"customerId,omitempty"`
	AssetID        string     `json:"assetId,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Priority       Priority   `json:"priority"`
	Status         Status     `json:"status"`
	AssignedToID   string     `json:"assignedToId,omitempty"`
	ScheduledStart *time.Time `json:"scheduledStartDate,omitempty"`
	ScheduledEnd   *time.Time `json:"scheduledEndDate,omitempty"`
	EstimatedHours float64    `json:"estimatedHours"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Schedule is one technician's capacity for one calendar day. Utilization
// fields are derived on read, never stored; see the scheduling package.
type Schedule struct {
	ID             string  `json:"id"`
	TenantID       string  `json:"-"`
	TechnicianID   string  `json:"technicianId"`
	Day            string  `json:"date"` // YYYY-MM-DD
	AvailableHours float64 `json:"availableHours"`
	ScheduledHours float64 `json:"scheduledHours"`
	IsAvailable    bool    `json:"isAvailable"`
	Notes          string  `json:"notes,omitempty"`
}

// DayFormat is the calendar-day granularity used by schedules.
const DayFormat = "2006-01-02"

// ParseDay validates a YYYY-MM-DD string and normalizes it.
func ParseDay(raw string) (string, error) {
	t, err := time.Parse(DayFormat, raw)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", raw)
	}
	return t.Format(DayFormat), nil
}
