package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fieldworks/woms/internal/core"
)

// ErrDuplicateSlot is returned when a schedule already exists for the
// technician/day pair. The unique index is the authority; this sentinel just
// names the violation.
var ErrDuplicateSlot = errors.New("schedule already exists for technician and day")

// ScheduleFilter narrows ListSchedules. Zero values match everything.
type ScheduleFilter struct {
	TechnicianID string
	StartDay     string
	EndDay       string
}

// CreateSchedule inserts a new schedule row.
func (s *Store) CreateSchedule(ctx context.Context, sched *core.Schedule) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if sched == nil {
		return errors.New("schedule is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if sched.ID == "" {
		sched.ID = uuid.New().String()
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO schedules (id, tenant_id, technician_id, day, available_hours, scheduled_hours, is_available, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, sched.ID, sched.TenantID, sched.TechnicianID, sched.Day,
		sched.AvailableHours, sched.ScheduledHours, boolToInt(sched.IsAvailable), sched.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("insert schedule: %w", err)
	}

	return nil
}

// GetSchedule returns a schedule by id, or nil when absent.
func (s *Store) GetSchedule(ctx context.Context, tenantID, id string) (*core.Schedule, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, technician_id, day, available_hours, scheduled_hours, is_available, notes
		FROM schedules
		WHERE tenant_id = ? AND id = ?
	`, tenantID, id)

	return scanSchedule(row)
}

// GetScheduleBySlot returns the schedule for a technician/day pair, or nil.
func (s *Store) GetScheduleBySlot(ctx context.Context, tenantID, technicianID, day string) (*core.Schedule, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT id, tenant_id, technician_id, day, available_hours, scheduled_hours, is_available, notes
		FROM schedules
		WHERE tenant_id = ? AND technician_id = ? AND day = ?
	`, tenantID, technicianID, day)

	return scanSchedule(row)
}

// ListSchedules returns schedules matching the filter, ordered by day then
// technician.
func (s *Store) ListSchedules(ctx context.Context, tenantID string, filter ScheduleFilter) ([]core.Schedule, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := `
		SELECT id, tenant_id, technician_id, day, available_hours, scheduled_hours, is_available, notes
		FROM schedules
		WHERE tenant_id = ?`
	args := []any{tenantID}

	if filter.TechnicianID != "" {
		query += " AND technician_id = ?"
		args = append(args, filter.TechnicianID)
	}
	if filter.StartDay != "" {
		query += " AND day >= ?"
		args = append(args, filter.StartDay)
	}
	if filter.EndDay != "" {
		query += " AND day <= ?"
		args = append(args, filter.EndDay)
	}
	query += " ORDER BY day, technician_id"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	var schedules []core.Schedule
	for rows.Next() {
		var (
			sched       core.Schedule
			isAvailable int
		)
		if err := rows.Scan(&sched.ID, &sched.TenantID, &sched.TechnicianID, &sched.Day,
			&sched.AvailableHours, &sched.ScheduledHours, &isAvailable, &sched.Notes); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		sched.IsAvailable = isAvailable != 0
		schedules = append(schedules, sched)
	}

	return schedules, rows.Err()
}

// UpdateSchedule overwrites the mutable fields of a schedule row.
func (s *Store) UpdateSchedule(ctx context.Context, sched *core.Schedule) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if sched == nil || sched.ID == "" {
		return errors.New("schedule id is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := s.DB.ExecContext(ctx, `
		UPDATE schedules
		SET available_hours = ?, scheduled_hours = ?, is_available = ?, notes = ?
		WHERE tenant_id = ? AND id = ?
	`, sched.AvailableHours, sched.ScheduledHours, boolToInt(sched.IsAvailable), sched.Notes,
		sched.TenantID, sched.ID)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func scanSchedule(row *sql.Row) (*core.Schedule, error) {
	var (
		sched       core.Schedule
		isAvailable int
	)
	if err := row.Scan(&sched.ID, &sched.TenantID, &sched.TechnicianID, &sched.Day,
		&sched.AvailableHours, &sched.ScheduledHours, &isAvailable, &sched.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	sched.IsAvailable = isAvailable != 0
	return &sched, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
