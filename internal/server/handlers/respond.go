// Package handlers implements the REST endpoints of the work-order service.
package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/fieldworks/woms/internal/errors"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.WrapInvalidInput(r.Context(), err, "invalid request body")
	}
	return nil
}
