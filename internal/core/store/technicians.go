package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fieldworks/woms/internal/core"
)

// CreateTechnician inserts a new technician.
func (s *Store) CreateTechnician(ctx context.Context, tech *core.Technician) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if tech == nil {
		return errors.New("technician is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if tech.ID == "" {
		tech.ID = uuid.New().String()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO technicians (id, tenant_id, name, email, skills, active)
		VALUES (?, ?, ?, ?, ?, ?)
	`, tech.ID, tech.TenantID, tech.Name, tech.Email, tech.Skills, boolToInt(tech.Active))
	if err != nil {
		return fmt.Errorf("insert technician: %w", err)
	}

	return nil
}

// GetTechnician returns a technician by id, or nil when absent.
func (s *Store) GetTechnician(ctx context.Context, tenantID, id string) (*core.Technician, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, email, skills, active
		FROM technicians
		WHERE tenant_id = ? AND id = ?
	`, tenantID, id)

	var (
		tech   core.Technician
		active int
	)
	if err := row.Scan(&tech.ID, &tech.TenantID, &tech.Name, &tech.Email, &tech.Skills, &active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch technician: %w", err)
	}
	tech.Active = active != 0

	return &tech, nil
}

// ListTechnicians returns all technicians for a tenant ordered by name.
func (s *Store) ListTechnicians(ctx context.Context, tenantID string) ([]core.Technician, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, tenant_id, name, email, skills, active
		FROM technicians
		WHERE tenant_id = ?
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list technicians: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var techs []core.Technician
	for rows.Next() {
		var (
			tech   core.Technician
			active int
		)
		if err := rows.Scan(&tech.ID, &tech.TenantID, &tech.Name, &tech.Email, &tech.Skills, &active); err != nil {
			return nil, fmt.Errorf("scan technician: %w", err)
		}
		tech.Active = active != 0
		techs = append(techs, tech)
	}

	return techs, rows.Err()
}

// UpdateTechnician overwrites the mutable fields of a technician.
func (s *Store) UpdateTechnician(ctx context.Context, tech *core.Technician) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if tech == nil || tech.ID == "" {
		return errors.New("technician id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `
		UPDATE technicians
		SET name = ?, email = ?, skills = ?, active = ?
		WHERE tenant_id = ? AND id = ?
	`, tech.Name, tech.Email, tech.Skills, boolToInt(tech.Active), tech.TenantID, tech.ID)
	if err != nil {
		return fmt.Errorf("update technician: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update technician: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
