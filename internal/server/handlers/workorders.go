package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/woms/internal/core"
	"github.com/fieldworks/woms/internal/core/store"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/scheduling"
	"github.com/fieldworks/woms/internal/server/middleware"
)

type createWorkOrderRequest struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Priority       string  `json:"priority"`
	CustomerID     string  `json:"customerId"`
	AssetID        string  `json:"assetId"`
	EstimatedHours float64 `json:"estimatedHours"`
}

type updateWorkOrderRequest struct {
	Title          *string  `json:"title"`
	Description    *string  `json:"description"`
	Priority       *string  `json:"priority"`
	Status         *string  `json:"status"`
	EstimatedHours *float64 `json:"estimatedHours"`
}

type assignWorkOrderRequest struct {
	AssignedToID       string  `json:"assignedToId"`
	ScheduledStartDate string  `json:"scheduledStartDate"`
	EstimatedHours     float64 `json:"estimatedHours"`
	ForceAssign        bool    `json:"forceAssign"`
}

// CreateWorkOrder handles POST /api/v1/workorders.
func (a *API) CreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	var req createWorkOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	if req.Title == "" {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("title is required"))
		return
	}
	priority := core.PriorityMedium
	if req.Priority != "" {
		priority = core.Priority(req.Priority)
		if !core.ValidPriority(priority) {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("unknown priority"))
			return
		}
	}
	if req.EstimatedHours < 0 {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("estimatedHours must not be negative"))
		return
	}

	order := &core.WorkOrder{
		TenantID:       tenantID,
		CustomerID:     req.CustomerID,
		AssetID:        req.AssetID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       priority,
		Status:         core.StatusOpen,
		EstimatedHours: req.EstimatedHours,
	}
	if err := a.Store.CreateWorkOrder(ctx, order); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to create work order"))
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// ListWorkOrders handles GET /api/v1/workorders. Supports status,
// assignedToId and customerId query filters.
func (a *API) ListWorkOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	filter := store.WorkOrderFilter{
		AssignedToID: r.URL.Query().Get("assignedToId"),
		CustomerID:   r.URL.Query().Get("customerId"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := core.Status(raw)
		if !core.ValidStatus(status) {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("unknown status"))
			return
		}
		filter.Status = status
	}

	orders, err := a.Store.ListWorkOrders(ctx, tenantID, filter)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to list work orders"))
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// GetWorkOrder handles GET /api/v1/workorders/{id}.
func (a *API) GetWorkOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	order, err := a.Store.GetWorkOrder(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load work order"))
		return
	}
	if order == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("work order not found"))
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// UpdateWorkOrder handles PATCH /api/v1/workorders/{id}. Status changes are
// validated against the allowed transitions.
func (a *API) UpdateWorkOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	var req updateWorkOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	order, err := a.Store.GetWorkOrder(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load work order"))
		return
	}
	if order == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("work order not found"))
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("title must not be empty"))
			return
		}
		order.Title = *req.Title
	}
	if req.Description != nil {
		order.Description = *req.Description
	}
	if req.Priority != nil {
		priority := core.Priority(*req.Priority)
		if !core.ValidPriority(priority) {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("unknown priority"))
			return
		}
		order.Priority = priority
	}
	if req.EstimatedHours != nil {
		if *req.EstimatedHours < 0 {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("estimatedHours must not be negative"))
			return
		}
		order.EstimatedHours = *req.EstimatedHours
	}
	if req.Status != nil {
		status := core.Status(*req.Status)
		if !core.ValidStatus(status) {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("unknown status"))
			return
		}
		if !core.CanTransition(order.Status, status) {
			appErr := apperrors.NewConflictError("status transition not allowed").
				WithDetail("from", string(order.Status)).
				WithDetail("to", string(status))
			apperrors.RespondWithError(w, r, appErr)
			return
		}
		order.Status = status
	}

	if err := a.Store.UpdateWorkOrder(ctx, order); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to update work order"))
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// AssignWorkOrder handles POST /api/v1/workorders/{id}/assign. The heavy
// lifting lives in the scheduling service; this handler only parses and
// shapes the exchange.
func (a *API) AssignWorkOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	var req assignWorkOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	start, err := time.Parse(time.RFC3339, req.ScheduledStartDate)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapValidationError(ctx, err, "scheduledStartDate must be RFC 3339"))
		return
	}

	result, err := a.Scheduler.Assign(ctx, tenantID, scheduling.AssignmentRequest{
		WorkOrderID:        id,
		AssignedToID:       req.AssignedToID,
		ScheduledStartDate: start,
		EstimatedHours:     req.EstimatedHours,
		ForceAssign:        req.ForceAssign,
	})
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
