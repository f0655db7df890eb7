package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldworks/woms/internal/core"
	apperrors "github.com/fieldworks/woms/internal/errors"
	"github.com/fieldworks/woms/internal/server/middleware"
)

type createAssetRequest struct {
	CustomerID string `json:"customerId"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	Location   string `json:"location"`
	Serial     string `json:"serial"`
}

type updateAssetRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Location *string `json:"location"`
	Serial   *string `json:"serial"`
}

// CreateAsset handles POST /api/v1/assets.
func (a *API) CreateAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	if req.Name == "" {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("name is required"))
		return
	}
	if req.CustomerID == "" {
		apperrors.RespondWithError(w, r, apperrors.NewValidationError("customerId is required"))
		return
	}

	cust, err := a.Store.GetCustomer(ctx, tenantID, req.CustomerID)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load customer"))
		return
	}
	if cust == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("customer not found"))
		return
	}

	asset := &core.Asset{
		TenantID:   tenantID,
		CustomerID: req.CustomerID,
		Name:       req.Name,
		Category:   req.Category,
		Location:   req.Location,
		Serial:     req.Serial,
	}
	if err := a.Store.CreateAsset(ctx, asset); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to create asset"))
		return
	}

	respondJSON(w, http.StatusCreated, asset)
}

// ListAssets handles GET /api/v1/assets. Supports a customerId filter.
func (a *API) ListAssets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)

	assets, err := a.Store.ListAssets(ctx, tenantID, r.URL.Query().Get("customerId"))
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to list assets"))
		return
	}

	respondJSON(w, http.StatusOK, assets)
}

// GetAsset handles GET /api/v1/assets/{id}.
func (a *API) GetAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	asset, err := a.Store.GetAsset(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load asset"))
		return
	}
	if asset == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("asset not found"))
		return
	}

	respondJSON(w, http.StatusOK, asset)
}

// UpdateAsset handles PATCH /api/v1/assets/{id}.
func (a *API) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	id := chi.URLParam(r, "id")

	var req updateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	asset, err := a.Store.GetAsset(ctx, tenantID, id)
	if err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to load asset"))
		return
	}
	if asset == nil {
		apperrors.RespondWithError(w, r, apperrors.NewNotFoundError("asset not found"))
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			apperrors.RespondWithError(w, r, apperrors.NewValidationError("name must not be empty"))
			return
		}
		asset.Name = *req.Name
	}
	if req.Category != nil {
		asset.Category = *req.Category
	}
	if req.Location != nil {
		asset.Location = *req.Location
	}
	if req.Serial != nil {
		asset.Serial = *req.Serial
	}

	if err := a.Store.UpdateAsset(ctx, asset); err != nil {
		apperrors.RespondWithError(w, r, apperrors.WrapDatabaseError(ctx, err, "failed to update asset"))
		return
	}

	respondJSON(w, http.StatusOK, asset)
}
