package scheduling

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/core"
	"github.com/fieldworks/woms/internal/core/store"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/realtime"
)

// Severity tags an advisory. Callers proceed on warnings and abort on errors.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Advisory is a non-fatal or fatal note attached to an assignment attempt.
type Advisory struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Store is the persistence surface the assignment service needs.
type Store interface {
	GetWorkOrder(ctx context.Context, tenantID, id string) (*core.WorkOrder, error)
	GetTechnician(ctx context.Context, tenantID, id string) (*core.Technician, error)
	GetScheduleBySlot(ctx context.Context, tenantID, technicianID, day string) (*core.Schedule, error)
	ApplyAssignment(ctx context.Context, a store.Assignment) error
}

// Publisher pushes advisory events to realtime rooms. Broadcasts are
// best-effort; the REST response stays authoritative.
type Publisher interface {
	Publish(rooms []string, event string, payload any)
}

// Service performs work-order assignment and reassignment.
type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
}

// NewService creates an assignment service.
func NewService(st Store, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: st, publisher: publisher, logger: logger}
}

// AssignmentRequest binds a work order to a technician/day slot.
type AssignmentRequest struct {
	WorkOrderID        string
	AssignedToID       string
	ScheduledStartDate time.Time
	EstimatedHours     float64
	ForceAssign        bool
}

// Result is a successful assignment: the updated order plus any non-fatal
// advisories.
type Result struct {
	Order    *core.WorkOrder `json:"workOrder"`
	Warnings []Advisory      `json:"warnings,omitempty"`
}

// Assign validates the request, books the hours onto the target slot in one
// transaction, and broadcasts the outcome. Overallocation is fatal unless
// forceAssign is set, in which case it degrades to a warning.
func (s *Service) Assign(ctx context.Context, tenantID string, req AssignmentRequest) (*Result, error) {
	if req.WorkOrderID == "" {
		return nil, apperrors.NewValidationError("work order id is required")
	}
	if req.AssignedToID == "" {
		return nil, apperrors.NewValidationError("assignedToId is required")
	}
	if req.ScheduledStartDate.IsZero() {
		return nil, apperrors.NewValidationError("scheduledStartDate is required")
	}
	if req.EstimatedHours <= 0 || req.EstimatedHours > 24 {
		return nil, apperrors.NewValidationError("estimatedHours must be between 0 and 24")
	}

	order, err := s.store.GetWorkOrder(ctx, tenantID, req.WorkOrderID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, err, "failed to load work order")
	}
	if order == nil {
		return nil, apperrors.NewNotFoundError("work order not found")
	}
	if order.Status == core.StatusCompleted || order.Status == core.StatusCancelled {
		return nil, apperrors.NewConflictError("work order is closed and cannot be assigned")
	}

	technician, err := s.store.GetTechnician(ctx, tenantID, req.AssignedToID)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, err, "failed to load technician")
	}
	if technician == nil {
		return nil, apperrors.NewValidationError("technician not found")
	}

	day := req.ScheduledStartDate.UTC().Format(core.DayFormat)

	var advisories []Advisory
	if !technician.Active {
		advisories = append(advisories, Advisory{
			Severity: SeverityError,
			Message:  fmt.Sprintf("technician %s is not active", technician.Name),
		})
	}

	slot, err := s.store.GetScheduleBySlot(ctx, tenantID, req.AssignedToID, day)
	if err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, err, "failed to load schedule slot")
	}

	availableHours := 8.0
	scheduledHours := 0.0
	if slot != nil {
		availableHours = slot.AvailableHours
		scheduledHours = slot.ScheduledHours
		if !slot.IsAvailable {
			advisories = append(advisories, Advisory{
				Severity: SeverityError,
				Message:  fmt.Sprintf("technician %s is marked unavailable on %s", technician.Name, day),
			})
		}
	}

	// A same-slot reassignment releases the order's previous hours in the
	// same transaction that books the new estimate; exclude them from the
	// projection so the order is not counted against capacity twice.
	if order.AssignedToID == req.AssignedToID && order.ScheduledStart != nil &&
		order.ScheduledStart.UTC().Format(core.DayFormat) == day {
		scheduledHours -= order.EstimatedHours
		if scheduledHours < 0 {
			scheduledHours = 0
		}
	}

	projected := Classify(availableHours, scheduledHours+req.EstimatedHours)
	if projected.Status == StatusOver {
		severity := SeverityError
		if req.ForceAssign {
			severity = SeverityWarning
		}
		advisories = append(advisories, Advisory{
			Severity: severity,
			Message: fmt.Sprintf("assignment puts %s at %.0f%% utilization on %s, exceeding 100%%",
				technician.Name, projected.Percentage, day),
		})
	}

	warnings := make([]Advisory, 0, len(advisories))
	for _, advisory := range advisories {
		if advisory.Severity == SeverityError {
			err := apperrors.NewConflictError(advisory.Message)
			return nil, err.WithDetail("warnings", advisories)
		}
		warnings = append(warnings, advisory)
	}

	// Reassignment releases the order's previous estimate from the source
	// slot before booking the new one.
	assignment := store.Assignment{
		Order:        order,
		ToTechnician: req.AssignedToID,
		ToDay:        day,
		BookHours:    req.EstimatedHours,
	}
	if order.AssignedToID != "" && order.ScheduledStart != nil {
		assignment.FromTechnician = order.AssignedToID
		assignment.FromDay = order.ScheduledStart.UTC().Format(core.DayFormat)
		assignment.ReleaseHours = order.EstimatedHours
	}

	start := req.ScheduledStartDate.UTC()
	end := start.Add(time.Duration(req.EstimatedHours * float64(time.Hour)))
	previousAssignee := order.AssignedToID

	order.AssignedToID = req.AssignedToID
	order.ScheduledStart = &start
	order.ScheduledEnd = &end
	order.EstimatedHours = req.EstimatedHours
	if order.Status == core.StatusOpen {
		order.Status = core.StatusAssigned
	}

	if err := s.store.ApplyAssignment(ctx, assignment); err != nil {
		return nil, apperrors.WrapDatabaseError(ctx, err, "failed to apply assignment")
	}

	s.broadcast(order, technician, day, previousAssignee, projected)

	return &Result{Order: order, Warnings: warnings}, nil
}

func (s *Service) broadcast(order *core.WorkOrder, technician *core.Technician, day, previousAssignee string, projected Utilization) {
	if s.publisher == nil {
		return
	}

	rooms := []string{
		realtime.RoomWorkOrder(order.ID),
		realtime.RoomTechnicianSchedule(technician.ID),
		realtime.RoomDateSchedule(day),
		realtime.RoomSchedules,
	}
	if previousAssignee != "" && previousAssignee != technician.ID {
		rooms = append(rooms, realtime.RoomTechnicianSchedule(previousAssignee))
	}

	s.publisher.Publish(rooms, realtime.EventWorkOrderReassigned, map[string]any{
		"workOrderId":  order.ID,
		"technicianId": technician.ID,
		"date":         day,
	})
	s.publisher.Publish(rooms, realtime.EventScheduleUpdate, map[string]any{
		"technicianId": technician.ID,
		"date":         day,
	})

	if projected.Status == StatusOver {
		s.publisher.Publish(rooms, realtime.EventScheduleConflict, map[string]any{
			"workOrderId":  order.ID,
			"technicianId": technician.ID,
			"date":         day,
			"message": fmt.Sprintf("%s is overallocated on %s (%.0f%% utilization)",
				technician.Name, day, projected.Percentage),
		})
	}
}
