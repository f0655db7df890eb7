package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/fieldworks/woms/internal/core"
)

// CreateCustomer inserts a new customer.
func (s *Store) CreateCustomer(ctx context.Context, cust *core.Customer) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if cust == nil {
		return errors.New("customer is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if cust.ID == "" {
		cust.ID = uuid.New().String()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO customers (id, tenant_id, name, email, phone, address)
		VALUES (?, ?, ?, ?, ?, ?)
	`, cust.ID, cust.TenantID, cust.Name, cust.Email, cust.Phone, cust.Address)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}

	return nil
}

// GetCustomer returns a customer by id, or nil when absent.
func (s *Store) GetCustomer(ctx context.Context, tenantID, id string) (*core.Customer, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, email, phone, address
		FROM customers
		WHERE tenant_id = ? AND id = ?
	`, tenantID, id)

	var cust core.Customer
	if err := row.Scan(&cust.ID, &cust.TenantID, &cust.Name, &cust.Email, &cust.Phone, &cust.Address); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch customer: %w", err)
	}

	return &cust, nil
}

// ListCustomers returns all customers for a tenant ordered by name.
func (s *Store) ListCustomers(ctx context.Context, tenantID string) ([]core.Customer, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, tenant_id, name, email, phone, address
		FROM customers
		WHERE tenant_id = ?
		ORDER BY name
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var custs []core.Customer
	for rows.Next() {
		var cust core.Customer
		if err := rows.Scan(&cust.ID, &cust.TenantID, &cust.Name, &cust.Email, &cust.Phone, &cust.Address); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		custs = append(custs, cust)
	}

	return custs, rows.Err()
}

// UpdateCustomer overwrites the mutable fields of a customer.
func (s *Store) UpdateCustomer(ctx context.Context, cust *core.Customer) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if cust == nil || cust.ID == "" {
		return errors.New("customer id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, email = ?, phone = ?, address = ?
		WHERE tenant_id = ? AND id = ?
	`, cust.Name, cust.Email, cust.Phone, cust.Address, cust.TenantID, cust.ID)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}
