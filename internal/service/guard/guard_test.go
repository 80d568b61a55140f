package guard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dteedee/medix-scheduling/internal/model"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/interval"
)

type stubRepo struct {
	occupiedRange   bool
	occupiedWeekday bool
	err             error
}

func (r *stubRepo) Create(context.Context, *model.Appointment) error { return nil }
func (r *stubRepo) Get(context.Context, uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NotFound("appointment", nil)
}
func (r *stubRepo) Update(context.Context, *model.Appointment) error { return nil }
func (r *stubRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *stubRepo) GetByDoctor(context.Context, uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (r *stubRepo) CheckConflict(context.Context, uuid.UUID, time.Time, time.Time, *uuid.UUID) (bool, error) {
	return false, nil
}
func (r *stubRepo) HasAppointmentsInTimeRange(context.Context, uuid.UUID, time.Time, time.Time) (bool, error) {
	return r.occupiedRange, r.err
}
func (r *stubRepo) HasFutureWeekdayBookings(context.Context, uuid.UUID, time.Weekday, interval.TimeOfDay, interval.TimeOfDay) (bool, error) {
	return r.occupiedWeekday, r.err
}

func window() (time.Time, time.Time) {
	start := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	return start, start.Add(50 * time.Minute)
}

func TestAssertNoFutureBookingPassesWhenFree(t *testing.T) {
	g := NewGuard(&stubRepo{})
	start, end := window()

	err := g.AssertNoFutureBooking(context.Background(), uuid.New(), start, end)
	assert.NoError(t, err)
}

func TestAssertNoFutureBookingBlocksOccupiedWindow(t *testing.T) {
	g := NewGuard(&stubRepo{occupiedRange: true})
	start, end := window()

	err := g.AssertNoFutureBooking(context.Background(), uuid.New(), start, end)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrLockedByFutureBooking))
}

func TestAssertNoFutureWeekdayBookingBlocksOccupiedSlot(t *testing.T) {
	g := NewGuard(&stubRepo{occupiedWeekday: true})

	tod := func(s string) interval.TimeOfDay {
		v, err := interval.ParseTimeOfDay(s)
		require.NoError(t, err)
		return v
	}

	err := g.AssertNoFutureWeekdayBooking(context.Background(), uuid.New(), time.Monday, tod("09:00"), tod("09:50"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrLockedByFutureBooking))
}

// A storage timeout must surface as a retryable failure, not as a pass.
func TestGuardTimeoutIsServiceUnavailable(t *testing.T) {
	g := NewGuard(&stubRepo{err: context.DeadlineExceeded})
	start, end := window()

	err := g.AssertNoFutureBooking(context.Background(), uuid.New(), start, end)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrServiceUnavailable))
}
