package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fieldworks/woms/internal/core"
)

type identityContextKey string

const (
	userIDContextKey   identityContextKey = "user_id"
	tenantIDContextKey identityContextKey = "tenant_id"
)

// Identity headers populated by the gateway in front of this service.
// Authentication itself is an external collaborator; this middleware only
// propagates the already-verified identity.
const (
	UserIDHeader   = "X-User-ID"
	TenantIDHeader = "X-Tenant-ID"
)

// Identity copies the gateway-asserted user and tenant into the request
// context. Requests without a tenant header fall back to the default tenant.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
			ctx = context.WithValue(ctx, userIDContextKey, userID)
		}

		tenantID := strings.TrimSpace(r.Header.Get(TenantIDHeader))
		if tenantID == "" {
			tenantID = core.DefaultTenantID
		}
		ctx = context.WithValue(ctx, tenantIDContextKey, tenantID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated user id, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDContextKey).(string); ok {
		return userID
	}
	return ""
}

// GetTenantID returns the request's tenant scope.
func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(tenantIDContextKey).(string); ok && tenantID != "" {
		return tenantID
	}
	return core.DefaultTenantID
}
