package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fieldworks/woms/internal/core"
)

// CreateAsset inserts a new asset.
func (s *Store) CreateAsset(ctx context.Context, asset *core.Asset) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if asset == nil {
		return errors.New("asset is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if asset.ID == "" {
		asset.ID = uuid.New().String()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO assets (id, tenant_id, customer_id, name, category, location, serial)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, asset.ID, asset.TenantID, asset.CustomerID, asset.Name, asset.Category, asset.Location, asset.Serial)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}

	return nil
}

// GetAsset returns an asset by id, or nil when absent.
func (s *Store) GetAsset(ctx context.Context, tenantID, id string) (*core.Asset, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, customer_id, name, category, location, serial
		FROM assets
		WHERE tenant_id = ? AND id = ?
	`, tenantID, id)

	var asset core.Asset
	if err := row.Scan(&asset.ID, &asset.TenantID, &asset.CustomerID, &asset.Name,
		&asset.Category, &asset.Location, &asset.Serial); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch asset: %w", err)
	}

	return &asset, nil
}

// ListAssets returns assets for a tenant, optionally filtered by customer.
func (s *Store) ListAssets(ctx context.Context, tenantID, customerID string) ([]core.Asset, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := `
		SELECT id, tenant_id, customer_id, name, category, location, serial
		FROM assets
		WHERE tenant_id = ?`
	args := []any{tenantID}
	if customerID != "" {
		query += " AND customer_id = ?"
		args = append(args, customerID)
	}
	query += " ORDER BY name"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var assets []core.Asset
	for rows.Next() {
		var asset core.Asset
		if err := rows.Scan(&asset.ID, &asset.TenantID, &asset.CustomerID, &asset.Name,
			&asset.Category, &asset.Location, &asset.Serial); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, asset)
	}

	return assets, rows.Err()
}

// UpdateAsset overwrites the mutable fields of an asset.
func (s *Store) UpdateAsset(ctx context.Context, asset *core.Asset) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if asset == nil || asset.ID == "" {
		return errors.New("asset id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `
		UPDATE assets
		SET customer_id = ?, name = ?, category = ?, location = ?, serial = ?
		WHERE tenant_id = ? AND id = ?
	`, asset.CustomerID, asset.Name, asset.Category, asset.Location, asset.Serial,
		asset.TenantID, asset.ID)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
