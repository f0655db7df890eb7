package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/woms/internal/core"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/server/middleware"
)

type createCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// CreateCustomer handles POST /api/v1/customers.
func (a *API) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	var req createCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	if req.Name == "" {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("name is required"))
		return
	}

	cust := &core.Customer{
		TenantID: tenantID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
	}
	if err := a.Store.CreateCustomer(ctx, cust); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to create customer"))
		return
	}

	respondJSON(w, http.StatusCreated, cust)
}

// ListCustomers handles GET /api/v1/customers.
func (a *API) ListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	customers, err := a.Store.ListCustomers(ctx, tenantID)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to list customers"))
		return
	}

	respondJSON(w, http.StatusOK, customers)
}

// GetCustomer handles GET /api/v1/customers/{id}.
func (a *API) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	cust, err := a.Store.GetCustomer(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load customer"))
		return
	}
	if cust == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("customer not found"))
		return
	}

	respondJSON(w, http.StatusOK, cust)
}

// UpdateCustomer handles PATCH /api/v1/customers/{id}.
func (a *API) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	var req updateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	cust, err := a.Store.GetCustomer(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load customer"))
		return
	}
	if cust == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("customer not found"))
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("name must not be empty"))
			return
		}
		cust.Name = *req.Name
	}
	if req.Email != nil {
		cust.Email = *req.Email
	}
	if req.Phone != nil {
		cust.Phone = *req.Phone
	}
	if req.Address != nil {
		cust.Address = *req.Address
	}

	if err := a.Store.UpdateCustomer(ctx, cust); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to update customer"))
		return
	}

	respondJSON(w, http.StatusOK, cust)
}
