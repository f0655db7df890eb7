package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/woms/internal/core"
	"github.com/fieldworks/woms/internal/core/store"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/realtime"
	"github.com/fieldworks/woms/internal/scheduling"
	"github.com/fieldworks/woms/internal/server/middleware"
)

type createScheduleRequest struct {
	TechnicianID   string  `json:"technicianId"`
	Date           string  `json:"date"`
	AvailableHours float64 `json:"availableHours"`
	ScheduledHours float64 `json:"scheduledHours"`
	IsAvailable    *bool   `json:"isAvailable"`
	Notes          string  `json:"notes"`
}

type updateScheduleRequest struct {
	AvailableHours *float64 `json:"availableHours"`
	ScheduledHours *float64 `json:"scheduledHours"`
	IsAvailable    *bool    `json:"isAvailable"`
	Notes          *string  `json:"notes"`
}

// CreateSchedule handles POST /api/v1/schedules.
func (a *API) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	var req createScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	if req.TechnicianID == "" {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("technicianId is required"))
		return
	}
	day, err := core.ParseDay(req.Date)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapValidationError(ctx, err, "invalid date"))
		return
	}
	if req.AvailableHours < 0 || req.AvailableHours > 24 {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("availableHours must be between 0 and 24"))
		return
	}
	if req.ScheduledHours < 0 {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("scheduledHours must not be negative"))
		return
	}

	tech, err := a.Store.GetTechnician(ctx, tenantID, req.TechnicianID)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load technician"))
		return
	}
	if tech == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("technician not found"))
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	sched := &core.Schedule{
		TenantID:       tenantID,
		TechnicianID:   req.TechnicianID,
		Day:            day,
		AvailableHours: req.AvailableHours,
		ScheduledHours: req.ScheduledHours,
		IsAvailable:    isAvailable,
		Notes:          req.Notes,
	}
	if err := a.Store.CreateSchedule(ctx, sched); err != nil {
		if errors.Is(err, store.ErrDuplicateSlot) {
			apperrors.RespondWithError(w, r, apperrors.NewConflictError("schedule already exists for this technician and date"))
			return
		}
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to create schedule"))
		return
	}

	view := scheduling.NewView(*sched)
	a.publish([]string{
		realtime.RoomSchedules,
		realtime.RoomTechnicianSchedule(sched.TechnicianID),
		realtime.RoomDateSchedule(sched.Day),
	}, realtime.EventScheduleUpdate, view)

	respondJSON(w, http.StatusCreated, view)
}

// ListSchedules handles GET /api/v1/schedules. Supports technicianId,
// startDate and endDate query filters.
func (a *API) ListSchedules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	filter, err := scheduleFilterFromQuery(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	schedules, err := a.Store.ListSchedules(ctx, tenantID, filter)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to list schedules"))
		return
	}

	respondJSON(w, http.StatusOK, scheduling.NewViews(schedules))
}

// GetSchedule handles GET /api/v1/schedules/{id}.
func (a *API) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	sched, err := a.Store.GetSchedule(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load schedule"))
		return
	}
	if sched == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("schedule not found"))
		return
	}

	respondJSON(w, http.StatusOK, scheduling.NewView(*sched))
}

// UpdateSchedule handles PATCH /api/v1/schedules/{id}. Only hours,
// availability and notes can change; the technician/day slot is immutable.
func (a *API) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	var req updateScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	sched, err := a.Store.GetSchedule(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load schedule"))
		return
	}
	if sched == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("schedule not found"))
		return
	}

	if req.AvailableHours != nil {
		if *req.AvailableHours < 0 || *req.AvailableHours > 24 {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("availableHours must be between 0 and 24"))
			return
		}
		sched.AvailableHours = *req.AvailableHours
	}
	if req.ScheduledHours != nil {
		if *req.ScheduledHours < 0 {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("scheduledHours must not be negative"))
			return
		}
		sched.ScheduledHours = *req.ScheduledHours
	}
	if req.IsAvailable != nil {
		sched.IsAvailable = *req.IsAvailable
	}
	if req.Notes != nil {
		sched.Notes = *req.Notes
	}

	if err := a.Store.UpdateSchedule(ctx, sched); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to update schedule"))
		return
	}

	view := scheduling.NewView(*sched)
	a.publish([]string{
		realtime.RoomSchedules,
		realtime.RoomTechnicianSchedule(sched.TechnicianID),
		realtime.RoomDateSchedule(sched.Day),
	}, realtime.EventScheduleUpdate, view)

	respondJSON(w, http.StatusOK, view)
}

// ScheduleStats handles GET /api/v1/schedules/stats. Accepts the same
// filters as the list endpoint and aggregates utilization over the matches.
func (a *API) ScheduleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	filter, err := scheduleFilterFromQuery(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	schedules, err := a.Store.ListSchedules(ctx, tenantID, filter)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to list schedules"))
		return
	}

	respondJSON(w, http.StatusOK, scheduling.Summarize(schedules))
}

func scheduleFilterFromQuery(r *http.Request) (store.ScheduleFilter, error) {
	filter := store.ScheduleFilter{
		TechnicianID: r.URL.Query().Get("technicianId"),
	}

	if raw := r.URL.Query().Get("startDate"); raw != "" {
		day, err := core.ParseDay(raw)
		if err != nil {
			return filter, apperrors.WrapValidationError(r.Context(), err, "invalid startDate")
		}
		filter.StartDay = day
	}
	if raw := r.URL.Query().Get("endDate"); raw != "" {
		day, err := core.ParseDay(raw)
		if err != nil {
			return filter, apperrors.WrapValidationError(r.Context(), err, "invalid endDate")
		}
		filter.EndDay = day
	}

	return filter, nil
}
