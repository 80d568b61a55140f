package schedule

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/service/guard"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/interval"
	"github.com/dteedee/medix-scheduling/pkg/lock"
	"github.com/dteedee/medix-scheduling/pkg/logger"
)

type fakeSlotRepo struct {
	slots map[uuid.UUID]*model.WeeklySlot
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[uuid.UUID]*model.WeeklySlot)}
}

func (r *fakeSlotRepo) Create(_ context.Context, slot *model.WeeklySlot) error {
	slot.ID = uuid.New()
	r.slots[slot.ID] = slot
	return nil
}

func (r *fakeSlotRepo) CreateMany(ctx context.Context, slots []*model.WeeklySlot) error {
	for _, slot := range slots {
		if err := r.Create(ctx, slot); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeSlotRepo) Get(_ context.Context, id uuid.UUID) (*model.WeeklySlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, apperrors.NotFound("weekly slot", nil)
	}
	return slot, nil
}

func (r *fakeSlotRepo) Update(_ context.Context, slot *model.WeeklySlot) error {
	r.slots[slot.ID] = slot
	return nil
}

func (r *fakeSlotRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.slots, id)
	return nil
}

func (r *fakeSlotRepo) ListByDoctorAndDay(_ context.Context, doctorID uuid.UUID, day int) ([]*model.WeeklySlot, error) {
	var out []*model.WeeklySlot
	for _, slot := range r.slots {
		if slot.DoctorID != doctorID {
			continue
		}
		if day >= 0 && int(slot.DayOfWeek) != day {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

type fakeAppointmentTimes struct {
	futureWeekday bool
	futureRange   bool
}

func (f *fakeAppointmentTimes) Create(context.Context, *model.Appointment) error { return nil }
func (f *fakeAppointmentTimes) Get(context.Context, uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NotFound("appointment", nil)
}
func (f *fakeAppointmentTimes) Update(context.Context, *model.Appointment) error { return nil }
func (f *fakeAppointmentTimes) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentTimes) GetByDoctor(context.Context, uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *fakeAppointmentTimes) CheckConflict(context.Context, uuid.UUID, time.Time, time.Time, *uuid.UUID) (bool, error) {
	return false, nil
}
func (f *fakeAppointmentTimes) HasAppointmentsInTimeRange(context.Context, uuid.UUID, time.Time, time.Time) (bool, error) {
	return f.futureRange, nil
}
func (f *fakeAppointmentTimes) HasFutureWeekdayBookings(context.Context, uuid.UUID, time.Weekday, interval.TimeOfDay, interval.TimeOfDay) (bool, error) {
	return f.futureWeekday, nil
}

type passLocker struct{}

func (passLocker) WithDoctorLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type busyLocker struct{}

func (busyLocker) WithDoctorLock(context.Context, uuid.UUID, func(ctx context.Context) error) error {
	return lock.ErrLockNotAcquired
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func newTestService(repo *fakeSlotRepo, apts *fakeAppointmentTimes) *Service {
	return NewService(repo, guard.NewGuard(apts), passLocker{}, testLogger())
}

func slotRequest(doctorID uuid.UUID, day int, start, end string) *model.CreateWeeklySlotRequest {
	return &model.CreateWeeklySlotRequest{
		DoctorID:  doctorID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
	}
}

func TestCreateSlotExactDuration(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), &fakeAppointmentTimes{})
	doctorID := uuid.New()

	slot, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)
	assert.Equal(t, time.Monday, slot.DayOfWeek)
	assert.Equal(t, "09:00", slot.StartTime.String())
	assert.Equal(t, "09:50", slot.EndTime.String())
}

func TestCreateSlotRejectsWrongDuration(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), &fakeAppointmentTimes{})
	doctorID := uuid.New()

	tests := []struct {
		name       string
		start, end string
	}{
		{"49 minutes", "09:00", "09:49"},
		{"51 minutes", "09:00", "09:51"},
		{"one hour", "09:00", "10:00"},
		{"zero length", "09:00", "09:00"},
		{"inverted", "10:00", "09:10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, tt.start, tt.end))
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSchedule))
		})
	}
}

func TestCreateSlotRejectsOverlap(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), &fakeAppointmentTimes{})
	doctorID := uuid.New()

	_, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	_, err = svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:20", "10:10"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverlapsExistingSlot))
}

func TestCreateSlotAllowsAdjacent(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), &fakeAppointmentTimes{})
	doctorID := uuid.New()

	_, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	// Shared boundary is not an overlap.
	_, err = svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:50", "10:40"))
	assert.NoError(t, err)
}

func TestCreateSlotAllowsSameWindowDifferentDay(t *testing.T) {
	svc := newTestService(newFakeSlotRepo(), &fakeAppointmentTimes{})
	doctorID := uuid.New()

	_, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	_, err = svc.CreateSlot(context.Background(), slotRequest(doctorID, 2, "09:00", "09:50"))
	assert.NoError(t, err)
}

func TestCreateSlotsRejectsIntraBatchOverlap(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, &fakeAppointmentTimes{})
	doctorID := uuid.New()

	_, err := svc.CreateSlots(context.Background(), &model.BulkCreateWeeklySlotsRequest{
		DoctorID: doctorID,
		Slots: []model.CreateWeeklySlotRequest{
			{DayOfWeek: 3, StartTime: "10:00", EndTime: "10:50"},
			{DayOfWeek: 3, StartTime: "10:30", EndTime: "11:20"},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverlapsExistingSlot))

	// Nothing from the rejected batch was committed.
	assert.Empty(t, repo.slots)
}

func TestCreateSlotsCommitsValidBatch(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, &fakeAppointmentTimes{})
	doctorID := uuid.New()

	slots, err := svc.CreateSlots(context.Background(), &model.BulkCreateWeeklySlotsRequest{
		DoctorID: doctorID,
		Slots: []model.CreateWeeklySlotRequest{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "09:50"},
			{DayOfWeek: 1, StartTime: "10:00", EndTime: "10:50"},
			{DayOfWeek: 2, StartTime: "09:00", EndTime: "09:50"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, slots, 3)
	assert.Len(t, repo.slots, 3)
}

func TestUpdateSlotBlockedByFutureBooking(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, &fakeAppointmentTimes{futureWeekday: true})
	doctorID := uuid.New()

	slot, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	newStart := "11:00"
	newEnd := "11:50"
	_, err = svc.UpdateSlot(context.Background(), slot.ID, &model.UpdateWeeklySlotRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrLockedByFutureBooking))

	// Slot is untouched.
	kept, err := repo.Get(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", kept.StartTime.String())
}

func TestUpdateSlotMovesWindow(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, &fakeAppointmentTimes{})
	doctorID := uuid.New()

	slot, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	newStart := "11:00"
	newEnd := "11:50"
	updated, err := svc.UpdateSlot(context.Background(), slot.ID, &model.UpdateWeeklySlotRequest{
		StartTime: &newStart,
		EndTime:   &newEnd,
	})
	require.NoError(t, err)
	assert.Equal(t, "11:00", updated.StartTime.String())
}

func TestUpdateSlotRejectsOutOfRangeDay(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, &fakeAppointmentTimes{})
	doctorID := uuid.New()

	slot, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	for _, day := range []int{-1, 7, 9} {
		day := day
		_, err = svc.UpdateSlot(context.Background(), slot.ID, &model.UpdateWeeklySlotRequest{
			DayOfWeek: &day,
		})
		require.Error(t, err, "day_of_week=%d", day)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSchedule))
	}

	// Slot keeps its original day.
	kept, err := repo.Get(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Monday, kept.DayOfWeek)
}

func TestDeleteSlotBlockedByFutureBooking(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, &fakeAppointmentTimes{futureWeekday: true})
	doctorID := uuid.New()

	slot, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	err = svc.DeleteSlot(context.Background(), slot.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrLockedByFutureBooking))
	assert.Len(t, repo.slots, 1)
}

func TestCreateSlotLockContention(t *testing.T) {
	svc := NewService(newFakeSlotRepo(), guard.NewGuard(&fakeAppointmentTimes{}), busyLocker{}, testLogger())
	doctorID := uuid.New()

	_, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrServiceUnavailable))
}

func TestListByDoctorAndDayCachesUntilWrite(t *testing.T) {
	repo := newFakeSlotRepo()
	svc := newTestService(repo, &fakeAppointmentTimes{})
	doctorID := uuid.New()

	_, err := svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "09:00", "09:50"))
	require.NoError(t, err)

	first, err := svc.ListByDoctorAndDay(context.Background(), doctorID, 1)
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = svc.CreateSlot(context.Background(), slotRequest(doctorID, 1, "10:00", "10:50"))
	require.NoError(t, err)

	second, err := svc.ListByDoctorAndDay(context.Background(), doctorID, 1)
	require.NoError(t, err)
	assert.Len(t, second, 2)
}
