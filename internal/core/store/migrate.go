package store

import (
	"context"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS technicians (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		skills TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1
	);`,
	`CREATE INDEX IF NOT EXISTS idx_technicians_tenant ON technicians(tenant_id);`,
	`CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_customers_tenant ON customers(tenant_id);`,
	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		customer_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		serial TEXT NOT NULL DEFAULT ''
	);`,
	`CREATE INDEX IF NOT EXISTS idx_assets_tenant ON assets(tenant_id);`,
	`CREATE TABLE IF NOT EXISTS work_orders (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		customer_id TEXT NOT NULL DEFAULT '',
		asset_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT 'medium',
		status TEXT NOT NULL DEFAULT 'open',
		assigned_to_id TEXT NOT NULL DEFAULT '',
		scheduled_start INTEGER,
		scheduled_end INTEGER,
		estimated_hours REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_tenant ON work_orders(tenant_id);`,
	`CREATE INDEX IF NOT EXISTS idx_work_orders_assignee ON work_orders(assigned_to_id);`,
	// The unique index owns the "one schedule per technician per day"
	// invariant: concurrent check-then-write races resolve here, not in
	// application code.
	`CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		tenant_id TEXT NOT NULL,
		technician_id TEXT NOT NULL,
		day TEXT NOT NULL,
		available_hours REAL NOT NULL DEFAULT 8,
		scheduled_hours REAL NOT NULL DEFAULT 0,
		is_available INTEGER NOT NULL DEFAULT 1,
		notes TEXT NOT NULL DEFAULT '',
		UNIQUE(tenant_id, technician_id, day)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_day ON schedules(tenant_id, day);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	return nil
}
