//go:build cgo

package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/woms/internal/config"
	"github.com/fieldworks/woms/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	st, err := Open(ctx, config.StoreConfig{Driver: "libsql", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.EnsureTenant(ctx, core.DefaultTenantID, "Default"))
	return st
}

func seedTechnician(t *testing.T, st *Store, name string) *core.Technician {
	t.Helper()
	tech := &core.Technician{
		TenantID: core.DefaultTenantID,
		Name:     name,
		Email:    name + "@example.com",
		Active:   true,
	}
	require.NoError(t, st.CreateTechnician(context.Background(), tech))
	return tech
}

func TestScheduleCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tech := seedTechnician(t, st, "maria")

	sched := &core.Schedule{
		TenantID:       core.DefaultTenantID,
		TechnicianID:   tech.ID,
		Day:            "2026-09-01",
		AvailableHours: 8,
		ScheduledHours: 6,
		IsAvailable:    true,
		Notes:          "morning route",
	}
	require.NoError(t, st.CreateSchedule(ctx, sched))
	require.NotEmpty(t, sched.ID)

	t.Run("DuplicateSlotRejected", func(t *testing.T) {
		dup := &core.Schedule{
			TenantID:       core.DefaultTenantID,
			TechnicianID:   tech.ID,
			Day:            "2026-09-01",
			AvailableHours: 8,
			IsAvailable:    true,
		}
		require.ErrorIs(t, st.CreateSchedule(ctx, dup), ErrDuplicateSlot)
	})

	t.Run("GetByID", func(t *testing.T) {
		got, err := st.GetSchedule(ctx, core.DefaultTenantID, sched.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, sched.Day, got.Day)
		require.Equal(t, 6.0, got.ScheduledHours)
		require.True(t, got.IsAvailable)
	})

	t.Run("GetAbsentReturnsNil", func(t *testing.T) {
		got, err := st.GetSchedule(ctx, core.DefaultTenantID, "nope")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("GetBySlot", func(t *testing.T) {
		got, err := st.GetScheduleBySlot(ctx, core.DefaultTenantID, tech.ID, "2026-09-01")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, sched.ID, got.ID)

		got, err = st.GetScheduleBySlot(ctx, core.DefaultTenantID, tech.ID, "2026-09-09")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("ListWithFilters", func(t *testing.T) {
		other := seedTechnician(t, st, "devon")
		require.NoError(t, st.CreateSchedule(ctx, &core.Schedule{
			TenantID: core.DefaultTenantID, TechnicianID: other.ID,
			Day: "2026-09-02", AvailableHours: 8, IsAvailable: true,
		}))

		all, err := st.ListSchedules(ctx, core.DefaultTenantID, ScheduleFilter{})
		require.NoError(t, err)
		require.Len(t, all, 2)

		byTech, err := st.ListSchedules(ctx, core.DefaultTenantID, ScheduleFilter{TechnicianID: tech.ID})
		require.NoError(t, err)
		require.Len(t, byTech, 1)

		byRange, err := st.ListSchedules(ctx, core.DefaultTenantID, ScheduleFilter{
			StartDay: "2026-09-02", EndDay: "2026-09-03",
		})
		require.NoError(t, err)
		require.Len(t, byRange, 1)
		require.Equal(t, "2026-09-02", byRange[0].Day)
	})

	t.Run("Update", func(t *testing.T) {
		sched.ScheduledHours = 9
		sched.IsAvailable = false
		require.NoError(t, st.UpdateSchedule(ctx, sched))

		got, err := st.GetSchedule(ctx, core.DefaultTenantID, sched.ID)
		require.NoError(t, err)
		require.Equal(t, 9.0, got.ScheduledHours)
		require.False(t, got.IsAvailable)
	})

	t.Run("UpdateAbsent", func(t *testing.T) {
		missing := &core.Schedule{ID: "nope", TenantID: core.DefaultTenantID}
		require.ErrorIs(t, st.UpdateSchedule(ctx, missing), sql.ErrNoRows)
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		got, err := st.GetSchedule(ctx, "other-tenant", sched.ID)
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func TestWorkOrderCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	order := &core.WorkOrder{
		TenantID:       core.DefaultTenantID,
		Title:          "Fix rooftop unit",
		Priority:       core.PriorityHigh,
		Status:         core.StatusOpen,
		EstimatedHours: 3,
	}
	require.NoError(t, st.CreateWorkOrder(ctx, order))
	require.NotEmpty(t, order.ID)
	require.False(t, order.CreatedAt.IsZero())

	got, err := st.GetWorkOrder(ctx, core.DefaultTenantID, order.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Fix rooftop unit", got.Title)
	require.Equal(t, core.PriorityHigh, got.Priority)
	require.Nil(t, got.ScheduledStart)

	order.Status = core.StatusAssigned
	order.AssignedToID = "t1"
	require.NoError(t, st.UpdateWorkOrder(ctx, order))

	filtered, err := st.ListWorkOrders(ctx, core.DefaultTenantID, WorkOrderFilter{Status: core.StatusAssigned})
	require.NoError(t, err)
	require.Len(t, filtered, 1)

	none, err := st.ListWorkOrders(ctx, core.DefaultTenantID, WorkOrderFilter{Status: core.StatusCompleted})
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestApplyAssignment(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	from := seedTechnician(t, st, "maria")
	to := seedTechnician(t, st, "devon")

	require.NoError(t, st.CreateSchedule(ctx, &core.Schedule{
		TenantID: core.DefaultTenantID, TechnicianID: from.ID,
		Day: "2026-09-01", AvailableHours: 8, ScheduledHours: 5, IsAvailable: true,
	}))

	order := &core.WorkOrder{
		TenantID:       core.DefaultTenantID,
		Title:          "Freezer repair",
		Priority:       core.PriorityUrgent,
		Status:         core.StatusAssigned,
		AssignedToID:   from.ID,
		EstimatedHours: 3,
	}
	require.NoError(t, st.CreateWorkOrder(ctx, order))

	start := time.Date(2026, 9, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	order.AssignedToID = to.ID
	order.ScheduledStart = &start
	order.ScheduledEnd = &end
	order.EstimatedHours = 4

	require.NoError(t, st.ApplyAssignment(ctx, Assignment{
		Order:          order,
		FromTechnician: from.ID,
		FromDay:        "2026-09-01",
		ReleaseHours:   3,
		ToTechnician:   to.ID,
		ToDay:          "2026-09-02",
		BookHours:      4,
	}))

	t.Run("SourceSlotReleased", func(t *testing.T) {
		slot, err := st.GetScheduleBySlot(ctx, core.DefaultTenantID, from.ID, "2026-09-01")
		require.NoError(t, err)
		require.NotNil(t, slot)
		require.Equal(t, 2.0, slot.ScheduledHours)
	})

	t.Run("TargetSlotCreatedAndBooked", func(t *testing.T) {
		slot, err := st.GetScheduleBySlot(ctx, core.DefaultTenantID, to.ID, "2026-09-02")
		require.NoError(t, err)
		require.NotNil(t, slot)
		require.Equal(t, 4.0, slot.ScheduledHours)
		require.Equal(t, 8.0, slot.AvailableHours)
		require.True(t, slot.IsAvailable)
	})

	t.Run("OrderPersisted", func(t *testing.T) {
		got, err := st.GetWorkOrder(ctx, core.DefaultTenantID, order.ID)
		require.NoError(t, err)
		require.Equal(t, to.ID, got.AssignedToID)
		require.Equal(t, 4.0, got.EstimatedHours)
		require.NotNil(t, got.ScheduledStart)
		require.Equal(t, start.Unix(), got.ScheduledStart.Unix())
	})

	t.Run("ReleaseNeverGoesNegative", func(t *testing.T) {
		require.NoError(t, st.ApplyAssignment(ctx, Assignment{
			Order:          order,
			FromTechnician: from.ID,
			FromDay:        "2026-09-01",
			ReleaseHours:   10,
			ToTechnician:   to.ID,
			ToDay:          "2026-09-03",
			BookHours:      1,
		}))

		slot, err := st.GetScheduleBySlot(ctx, core.DefaultTenantID, from.ID, "2026-09-01")
		require.NoError(t, err)
		require.Equal(t, 0.0, slot.ScheduledHours)
	})
}

func TestCustomerAndAssetCRUD(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	cust := &core.Customer{
		TenantID: core.DefaultTenantID,
		Name:     "Cedar Mill Bakery",
		Phone:    "+1-555-0178",
	}
	require.NoError(t, st.CreateCustomer(ctx, cust))

	asset := &core.Asset{
		TenantID:   core.DefaultTenantID,
		CustomerID: cust.ID,
		Name:       "Walk-in Freezer",
		Category:   "refrigeration",
	}
	require.NoError(t, st.CreateAsset(ctx, asset))

	byCustomer, err := st.ListAssets(ctx, core.DefaultTenantID, cust.ID)
	require.NoError(t, err)
	require.Len(t, byCustomer, 1)

	byOther, err := st.ListAssets(ctx, core.DefaultTenantID, "someone-else")
	require.NoError(t, err)
	require.Empty(t, byOther)
}
