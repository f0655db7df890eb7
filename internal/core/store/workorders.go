package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldworks/woms/internal/core"
)

// WorkOrderFilter narrows ListWorkOrders. Zero values match everything.
type WorkOrderFilter struct {
	Status       core.Status
	AssignedToID string
	CustomerID   string
}

// CreateWorkOrder inserts a new work order.
func (s *Store) CreateWorkOrder(ctx context.Context, order *core.WorkOrder) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if order == nil {
		return errors.New("work order is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO work_orders (id, tenant_id, customer_id, asset_id, title, description,
			priority, status, assigned_to_id, scheduled_start, scheduled_end, estimated_hours,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, order.ID, order.TenantID, order.CustomerID, order.AssetID, order.Title, order.Description,
		string(order.Priority), string(order.Status), order.AssignedToID,
		timeToUnix(order.ScheduledStart), timeToUnix(order.ScheduledEnd), order.EstimatedHours,
		order.CreatedAt.Unix(), order.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("insert work order: %w", err)
	}

	return nil
}

// GetWorkOrder returns a work order by id, or nil when absent.
func (s *Store) GetWorkOrder(ctx context.Context, tenantID, id string) (*core.WorkOrder, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, customer_id, asset_id, title, description, priority, status,
			assigned_to_id, scheduled_start, scheduled_end, estimated_hours, created_at, updated_at
		FROM work_orders
		WHERE tenant_id = ? AND id = ?
	`, tenantID, id)

	order, err := scanWorkOrder(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch work order: %w", err)
	}
	return order, nil
}

// ListWorkOrders returns work orders matching the filter, newest first.
func (s *Store) ListWorkOrders(ctx context.Context, tenantID string, filter WorkOrderFilter) ([]core.WorkOrder, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := `
		SELECT id, tenant_id, customer_id, asset_id, title, description, priority, status,
			assigned_to_id, scheduled_start, scheduled_end, estimated_hours, created_at, updated_at
		FROM work_orders
		WHERE tenant_id = ?`
	args := []any{tenantID}

	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	if filter.AssignedToID != "" {
		query += " AND assigned_to_id = ?"
		args = append(args, filter.AssignedToID)
	}
	if filter.CustomerID != "" {
		query += " AND customer_id = ?"
		args = append(args, filter.CustomerID)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list work orders: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var orders []core.WorkOrder
	for rows.Next() {
		order, err := scanWorkOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan work order: %w", err)
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// UpdateWorkOrder overwrites the mutable fields of a work order.
func (s *Store) UpdateWorkOrder(ctx context.Context, order *core.WorkOrder) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if order == nil || order.ID == "" {
		return errors.New("work order id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	order.UpdatedAt = time.Now().UTC()

	result, err := s.DB.ExecContext(ctx, `
		UPDATE work_orders
		SET customer_id = ?, asset_id = ?, title = ?, description = ?, priority = ?, status = ?,
			assigned_to_id = ?, scheduled_start = ?, scheduled_end = ?, estimated_hours = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`, order.CustomerID, order.AssetID, order.Title, order.Description,
		string(order.Priority), string(order.Status), order.AssignedToID,
		timeToUnix(order.ScheduledStart), timeToUnix(order.ScheduledEnd), order.EstimatedHours,
		order.UpdatedAt.Unix(), order.TenantID, order.ID)
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update work order: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// Assignment captures the single-transaction slot move performed when a work
// order is assigned or reassigned. Hours leave the source slot (when present)
// and land on the target slot, which is created with default availability if
// the technician has no schedule for that day yet.
type Assignment struct {
	Order          *core.WorkOrder
	FromTechnician string
	FromDay        string
	ReleaseHours   float64
	ToTechnician   string
	ToDay          string
	BookHours      float64
}

// ApplyAssignment runs the assignment as one transaction: decrement the
// source slot, upsert-and-increment the target slot, persist the order.
func (s *Store) ApplyAssignment(ctx context.Context, a Assignment) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if a.Order == nil {
		return errors.New("work order is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck // no-op after commit

	if a.FromTechnician != "" && a.FromDay != "" && a.ReleaseHours > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE schedules
			SET scheduled_hours = MAX(scheduled_hours - ?, 0)
			WHERE tenant_id = ? AND technician_id = ? AND day = ?
		`, a.ReleaseHours, a.Order.TenantID, a.FromTechnician, a.FromDay); err != nil {
			return fmt.Errorf("release source slot: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO schedules (id, tenant_id, technician_id, day, available_hours, scheduled_hours, is_available, notes)
		VALUES (?, ?, ?, ?, 8, ?, 1, '')
		ON CONFLICT(tenant_id, technician_id, day) DO UPDATE SET
			scheduled_hours = scheduled_hours + excluded.scheduled_hours
	`, uuid.New().String(), a.Order.TenantID, a.ToTechnician, a.ToDay, a.BookHours); err != nil {
		return fmt.Errorf("book target slot: %w", err)
	}

	a.Order.UpdatedAt = time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE work_orders
		SET status = ?, assigned_to_id = ?, scheduled_start = ?, scheduled_end = ?,
			estimated_hours = ?, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`, string(a.Order.Status), a.Order.AssignedToID,
		timeToUnix(a.Order.ScheduledStart), timeToUnix(a.Order.ScheduledEnd),
		a.Order.EstimatedHours, a.Order.UpdatedAt.Unix(),
		a.Order.TenantID, a.Order.ID); err != nil {
		return fmt.Errorf("persist assignment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment: %w", err)
	}

	return nil
}

func scanWorkOrder(scan func(dest ...any) error) (*core.WorkOrder, error) {
	var (
		order          core.WorkOrder
		priority       string
		status         string
		scheduledStart sql.NullInt64
		scheduledEnd   sql.NullInt64
		createdAt      int64
		updatedAt      int64
	)

	if err := scan(&order.ID, &order.TenantID, &order.CustomerID, &order.AssetID,
		&order.Title, &order.Description, &priority, &status, &order.AssignedToID,
		&scheduledStart, &scheduledEnd, &order.EstimatedHours, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	order.Priority = core.Priority(priority)
	order.Status = core.Status(status)
	order.ScheduledStart = unixToTime(scheduledStart)
	order.ScheduledEnd = unixToTime(scheduledEnd)
	order.CreatedAt = time.Unix(createdAt, 0).UTC()
	order.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	return &order, nil
}

func timeToUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UTC().Unix(), Valid: true}
}

func unixToTime(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
