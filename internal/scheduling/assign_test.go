package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fieldworks/woms/internal/core"
	"github.com/fieldworks/woms/internal/core/store"
	apperrors "github.com/fieldworks/woms/internal/errors"
)

type fakeStore struct {
	orders      map[string]*core.WorkOrder
	technicians map[string]*core.Technician
	slots       map[string]*core.Schedule // key technicianID+"|"+day

	applied  []store.Assignment
	applyErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:      make(map[string]*core.WorkOrder),
		technicians: make(map[string]*core.Technician),
		slots:       make(map[string]*core.Schedule),
	}
}

func (f *fakeStore) GetWorkOrder(_ context.Context, _, id string) (*core.WorkOrder, error) {
	if order, ok := f.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) GetTechnician(_ context.Context, _, id string) (*core.Technician, error) {
	if tech, ok := f.technicians[id]; ok {
		copied := *tech
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) GetScheduleBySlot(_ context.Context, _, technicianID, day string) (*core.Schedule, error) {
	if slot, ok := f.slots[technicianID+"|"+day]; ok {
		copied := *slot
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStore) ApplyAssignment(_ context.Context, a store.Assignment) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = append(f.applied, a)
	return nil
}

type fakePublisher struct {
	events []string
	rooms  [][]string
}

func (f *fakePublisher) Publish(rooms []string, event string, _ any) {
	f.events = append(f.events, event)
	f.rooms = append(f.rooms, rooms)
}

func day(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := time.Parse(core.DayFormat, raw)
	require.NoError(t, err)
	return parsed
}

func TestAssign(t *testing.T) {
	ctx := context.Background()

	setup := func() (*fakeStore, *fakePublisher, *Service) {
		st := newFakeStore()
		st.orders["wo1"] = &core.WorkOrder{ID: "wo1", Status: core.StatusOpen, EstimatedHours: 2}
		st.technicians["t1"] = &core.Technician{ID: "t1", Name: "Maria", Active: true}
		st.slots["t1|2026-09-01"] = &core.Schedule{
			TechnicianID: "t1", Day: "2026-09-01",
			AvailableHours: 8, ScheduledHours: 4, IsAvailable: true,
		}
		pub := &fakePublisher{}
		return st, pub, NewService(st, pub, nil)
	}

	t.Run("Success", func(t *testing.T) {
		st, pub, svc := setup()

		result, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     3,
		})
		require.NoError(t, err)
		require.Empty(t, result.Warnings)
		require.Equal(t, core.StatusAssigned, result.Order.Status)
		require.Equal(t, "t1", result.Order.AssignedToID)
		require.Equal(t, 3.0, result.Order.EstimatedHours)
		require.NotNil(t, result.Order.ScheduledEnd)
		require.Equal(t, 3*time.Hour, result.Order.ScheduledEnd.Sub(*result.Order.ScheduledStart))

		require.Len(t, st.applied, 1)
		require.Equal(t, "t1", st.applied[0].ToTechnician)
		require.Equal(t, "2026-09-01", st.applied[0].ToDay)
		require.Equal(t, 3.0, st.applied[0].BookHours)
		require.Empty(t, st.applied[0].FromTechnician)

		require.Contains(t, pub.events, "workOrderReassignment")
		require.Contains(t, pub.events, "scheduleUpdate")
		require.NotContains(t, pub.events, "scheduleConflict")
	})

	t.Run("OverallocationRejected", func(t *testing.T) {
		st, _, svc := setup()

		_, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     5, // 4 + 5 = 9 of 8
		})
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "CONFLICT", appErr.Code)
		require.Contains(t, appErr.Details, "warnings")
		require.Empty(t, st.applied)
	})

	t.Run("OverallocationForced", func(t *testing.T) {
		st, pub, svc := setup()

		result, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     5,
			ForceAssign:        true,
		})
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		require.Equal(t, SeverityWarning, result.Warnings[0].Severity)
		require.Len(t, st.applied, 1)
		require.Contains(t, pub.events, "scheduleConflict")
	})

	t.Run("InactiveTechnician", func(t *testing.T) {
		st, _, svc := setup()
		st.technicians["t1"].Active = false

		_, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     2,
		})
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "CONFLICT", appErr.Code)
	})

	t.Run("UnavailableSlot", func(t *testing.T) {
		st, _, svc := setup()
		st.slots["t1|2026-09-01"].IsAvailable = false

		_, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     2,
		})
		require.Error(t, err)
	})

	t.Run("MissingSlotAssumesEightHours", func(t *testing.T) {
		st, _, svc := setup()

		result, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-05"), // no slot for this day
			EstimatedHours:     8,
		})
		require.NoError(t, err)
		require.Empty(t, result.Warnings)
		require.Len(t, st.applied, 1)
	})

	t.Run("ClosedOrder", func(t *testing.T) {
		st, _, svc := setup()
		st.orders["wo1"].Status = core.StatusCompleted

		_, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     2,
		})
		require.Error(t, err)
	})

	t.Run("UnknownWorkOrder", func(t *testing.T) {
		_, _, svc := setup()

		_, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "missing",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     2,
		})
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "NOT_FOUND", appErr.Code)
	})

	t.Run("InvalidHours", func(t *testing.T) {
		_, _, svc := setup()

		for _, hours := range []float64{0, -1, 25} {
			_, err := svc.Assign(ctx, "default", AssignmentRequest{
				WorkOrderID:        "wo1",
				AssignedToID:       "t1",
				ScheduledStartDate: day(t, "2026-09-01"),
				EstimatedHours:     hours,
			})
			require.Error(t, err)
		}
	})

	t.Run("ReassignmentReleasesPriorSlot", func(t *testing.T) {
		st, _, svc := setup()
		prior := day(t, "2026-09-01")
		st.orders["wo1"].Status = core.StatusAssigned
		st.orders["wo1"].AssignedToID = "t1"
		st.orders["wo1"].ScheduledStart = &prior
		st.orders["wo1"].EstimatedHours = 3
		st.technicians["t2"] = &core.Technician{ID: "t2", Name: "Devon", Active: true}
		st.slots["t2|2026-09-02"] = &core.Schedule{
			TechnicianID: "t2", Day: "2026-09-02",
			AvailableHours: 8, ScheduledHours: 0, IsAvailable: true,
		}

		result, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t2",
			ScheduledStartDate: day(t, "2026-09-02"),
			EstimatedHours:     4,
		})
		require.NoError(t, err)
		require.Equal(t, core.StatusAssigned, result.Order.Status)

		require.Len(t, st.applied, 1)
		applied := st.applied[0]
		require.Equal(t, "t1", applied.FromTechnician)
		require.Equal(t, "2026-09-01", applied.FromDay)
		require.Equal(t, 3.0, applied.ReleaseHours)
		require.Equal(t, "t2", applied.ToTechnician)
		require.Equal(t, "2026-09-02", applied.ToDay)
		require.Equal(t, 4.0, applied.BookHours)
	})

	t.Run("SameSlotReassignmentNetsOwnHours", func(t *testing.T) {
		st, _, svc := setup()
		prior := day(t, "2026-09-01")
		st.orders["wo1"].Status = core.StatusAssigned
		st.orders["wo1"].AssignedToID = "t1"
		st.orders["wo1"].ScheduledStart = &prior
		st.orders["wo1"].EstimatedHours = 6
		st.slots["t1|2026-09-01"].ScheduledHours = 6

		// Re-issuing the current assignment books the same 6 hours the
		// transaction releases, leaving the slot at 6/8.
		result, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     6,
		})
		require.NoError(t, err)
		require.Empty(t, result.Warnings)

		require.Len(t, st.applied, 1)
		applied := st.applied[0]
		require.Equal(t, "t1", applied.FromTechnician)
		require.Equal(t, "2026-09-01", applied.FromDay)
		require.Equal(t, 6.0, applied.ReleaseHours)
		require.Equal(t, "t1", applied.ToTechnician)
		require.Equal(t, 6.0, applied.BookHours)
	})

	t.Run("SameSlotHoursIncreaseWithinCapacity", func(t *testing.T) {
		st, _, svc := setup()
		prior := day(t, "2026-09-01")
		st.orders["wo1"].Status = core.StatusAssigned
		st.orders["wo1"].AssignedToID = "t1"
		st.orders["wo1"].ScheduledStart = &prior
		st.orders["wo1"].EstimatedHours = 6
		st.slots["t1|2026-09-01"].ScheduledHours = 6

		result, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     8,
		})
		require.NoError(t, err)
		require.Empty(t, result.Warnings)
		require.Equal(t, 8.0, result.Order.EstimatedHours)
	})

	t.Run("SameSlotStillRejectsRealOverallocation", func(t *testing.T) {
		st, _, svc := setup()
		prior := day(t, "2026-09-01")
		st.orders["wo1"].Status = core.StatusAssigned
		st.orders["wo1"].AssignedToID = "t1"
		st.orders["wo1"].ScheduledStart = &prior
		st.orders["wo1"].EstimatedHours = 2
		st.slots["t1|2026-09-01"].ScheduledHours = 6

		// Other orders hold 4 of the 6 booked hours, so bumping this one to
		// 6 projects 10/8 and is still rejected.
		_, err := svc.Assign(ctx, "default", AssignmentRequest{
			WorkOrderID:        "wo1",
			AssignedToID:       "t1",
			ScheduledStartDate: day(t, "2026-09-01"),
			EstimatedHours:     6,
		})
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		require.Equal(t, "CONFLICT", appErr.Code)
		require.Empty(t, st.applied)
	})
}
