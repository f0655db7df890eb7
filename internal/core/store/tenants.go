package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fieldworks/woms/internal/core"
)

// EnsureTenant inserts a tenant if it does not exist yet.
func (s *Store) EnsureTenant(ctx context.Context, id, name string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if id == "" {
		return errors.New("tenant id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if name == "" {
		name = id
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tenants (id, name, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, name, time.Now().UTC().Unix())
	if err != nil {
		return fmt.Errorf("ensure tenant: %w", err)
	}

	return nil
}

// ListTenants returns all tenants ordered by creation time.
func (s *Store) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM tenants
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var tenants []core.Tenant
	for rows.Next() {
		var (
			tenant    core.Tenant
			createdAt int64
		)
		if err := rows.Scan(&tenant.ID, &tenant.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenant.CreatedAt = time.Unix(createdAt, 0).UTC()
		tenants = append(tenants, tenant)
	}

	return tenants, rows.Err()
}
