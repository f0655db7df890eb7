package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/woms/internal/core"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/server/middleware"
)

type createTechnicianRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Skills string `json:"skills"`
	Active *bool  `json:"active"`
}

type updateTechnicianRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Skills *string `json:"skills"`
	Active *bool   `json:"active"`
}

// CreateTechnician handles POST /api/v1/technicians.
func (a *API) CreateTechnician(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	var req createTechnicianRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	if req.Name == "" {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("name is required"))
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	tech := &core.Technician{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Skills:   req.Skills,
		Active:   active,
	}
	if err := a.Store.CreateTechnician(ctx, tech); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to create technician"))
		return
	}

	respondJSON(w, http.StatusCreated, tech)
}

// ListTechnicians handles GET /api/v1/technicians.
func (a *API) ListTechnicians(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	technicians, err := a.Store.ListTechnicians(ctx, tenantID)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to list technicians"))
		return
	}

	respondJSON(w, http.StatusOK, technicians)
}

// GetTechnician handles GET /api/v1/technicians/{id}.
func (a *API) GetTechnician(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	tech, err := a.Store.GetTechnician(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load technician"))
		return
	}
	if tech == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("technician not found"))
		return
	}

	respondJSON(w, http.StatusOK, tech)
}

// UpdateTechnician handles PATCH /api/v1/technicians/{id}.
func (a *API) UpdateTechnician(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	var req updateTechnicianRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	tech, err := a.Store.GetTechnician(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load technician"))
		return
	}
	if tech == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("technician not found"))
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("name must not be empty"))
			return
		}
		tech.Name = *req.Name
	}
	if req.Email != nil {
		tech.Email = *req.Email
	}
	if req.Skills != nil {
		tech.Skills = *req.Skills
	}
	if req.Active != nil {
		tech.Active = *req.Active
	}

	if err := a.Store.UpdateTechnician(ctx, tech); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to update technician"))
		return
	}

	respondJSON(w, http.StatusOK, tech)
}
