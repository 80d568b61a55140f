package override

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
	"github.com/dteedee/medix-scheduling/pkg/logger"
)

type fakeOverrideRepo struct {
	overrides map[uuid.UUID]*model.Override
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{overrides: make(map[uuid.UUID]*model.Override)}
}

func (r *fakeOverrideRepo) Create(_ context.Context, o *model.Override) error {
	o.ID = uuid.New()
	r.overrides[o.ID] = o
	return nil
}

func (r *fakeOverrideRepo) Get(_ context.Context, id uuid.UUID) (*model.Override, error) {
	o, ok := r.overrides[id]
	if !ok {
		return nil, apperrors.NotFound("override", nil)
	}
	return o, nil
}

func (r *fakeOverrideRepo) Update(_ context.Context, o *model.Override) error {
	r.overrides[o.ID] = o
	return nil
}

func (r *fakeOverrideRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.overrides, id)
	return nil
}

func (r *fakeOverrideRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Override, error) {
	var out []*model.Override
	for _, o := range r.overrides {
		if o.DoctorID == doctorID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOverrideRepo) ApplyReconcile(ctx context.Context, inserts, updates []*model.Override, deletes []uuid.UUID) error {
	for _, id := range deletes {
		delete(r.overrides, id)
	}
	for _, o := range updates {
		r.overrides[o.ID] = o
	}
	for _, o := range inserts {
		if err := r.Create(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

type fixedSlotRepo struct {
	slots []*model.WeeklySlot
}

func (r *fixedSlotRepo) Create(context.Context, *model.WeeklySlot) error     { return nil }
func (r *fixedSlotRepo) CreateMany(context.Context, []*model.WeeklySlot) error { return nil }
func (r *fixedSlotRepo) Get(context.Context, uuid.UUID) (*model.WeeklySlot, error) {
	return nil, apperrors.NotFound("weekly slot", nil)
}
func (r *fixedSlotRepo) Update(context.Context, *model.WeeklySlot) error { return nil }
func (r *fixedSlotRepo) Delete(context.Context, uuid.UUID) error         { return nil }
func (r *fixedSlotRepo) ListByDoctorAndDay(_ context.Context, _ uuid.UUID, day int) ([]*model.WeeklySlot, error) {
	var out []*model.WeeklySlot
	for _, slot := range r.slots {
		if day < 0 || int(slot.DayOfWeek) == day {
			out = append(out, slot)
		}
	}
	return out, nil
}

type stubAppointments struct {
	booked bool
}

func (f *stubAppointments) Create(context.Context, *model.Appointment) error { return nil }
func (f *stubAppointments) Get(context.Context, uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NotFound("appointment", nil)
}
func (f *stubAppointments) Update(context.Context, *model.Appointment) error { return nil }
func (f *stubAppointments) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *stubAppointments) GetByDoctor(context.Context, uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}
func (f *stubAppointments) CheckConflict(context.Context, uuid.UUID, time.Time, time.Time, *uuid.UUID) (bool, error) {
	return false, nil
}
func (f *stubAppointments) HasAppointmentsInTimeRange(context.Context, uuid.UUID, time.Time, time.Time) (bool, error) {
	return f.booked, nil
}
func (f *stubAppointments) HasFutureWeekdayBookings(context.Context, uuid.UUID, time.Weekday, interval.TimeOfDay, interval.TimeOfDay) (bool, error) {
	return f.booked, nil
}

type passthroughLocker struct{}

func (passthroughLocker) WithDoctorLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newOverrideService(repo *fakeOverrideRepo, slots *fixedSlotRepo, apts *stubAppointments) *Service {
	l := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	return NewService(repo, slots, guard.NewGuard(apts), passthroughLocker{}, l)
}

func overrideRequest(doctorID uuid.UUID, date, start, end string, typ model.OverrideType) *model.CreateOverrideRequest {
	day, _ := time.Parse("2006-01-02", date)
	return &model.CreateOverrideRequest{
		DoctorID:     doctorID,
		OverrideDate: day,
		StartTime:    start,
		EndTime:      end,
		OverrideType: typ,
	}
}

func TestCreateOvertimeOutsideWeeklySchedule(t *testing.T) {
	// Monday slot 09:00-09:50; overtime on a Monday evening is clear of it.
	slots := &fixedSlotRepo{slots: []*model.WeeklySlot{{
		DayOfWeek: time.Monday,
		StartTime: mustTOD(t, "09:00"),
		EndTime:   mustTOD(t, "09:50"),
	}}}
	svc := newOverrideService(newFakeOverrideRepo(), slots, &stubAppointments{})
	doctorID := uuid.New()

	// 2024-06-10 is a Monday.
	ov, err := svc.Create(context.Background(), overrideRequest(doctorID, "2024-06-10", "18:00", "20:00", model.OverrideTypeOvertime))
	require.NoError(t, err)
	assert.True(t, ov.IsAvailable)
}

func TestCreateOvertimeRejectedOverWeeklySlot(t *testing.T) {
	slots := &fixedSlotRepo{slots: []*model.WeeklySlot{{
		DayOfWeek: time.Monday,
		StartTime: mustTOD(t, "09:00"),
		EndTime:   mustTOD(t, "09:50"),
	}}}
	svc := newOverrideService(newFakeOverrideRepo(), slots, &stubAppointments{})
	doctorID := uuid.New()

	_, err := svc.Create(context.Background(), overrideRequest(doctorID, "2024-06-10", "09:30", "10:30", model.OverrideTypeOvertime))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrOverlapsFixedSchedule))
}

func TestCreateDayOffIgnoresWeeklySchedule(t *testing.T) {
	slots := &fixedSlotRepo{slots: []*model.WeeklySlot{{
		DayOfWeek: time.Monday,
		StartTime: mustTOD(t, "09:00"),
		EndTime:   mustTOD(t, "09:50"),
	}}}
	svc := newOverrideService(newFakeOverrideRepo(), slots, &stubAppointments{})
	doctorID := uuid.New()

	_, err := svc.Create(context.Background(), overrideRequest(doctorID, "2024-06-10", "00:00", "23:59", model.OverrideTypeDayOff))
	assert.NoError(t, err)
}

func TestCreateOverrideRejectsInvalidWindow(t *testing.T) {
	svc := newOverrideService(newFakeOverrideRepo(), &fixedSlotRepo{}, &stubAppointments{})
	doctorID := uuid.New()

	_, err := svc.Create(context.Background(), overrideRequest(doctorID, "2024-06-10", "12:00", "09:00", model.OverrideTypeOvertime))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidSchedule))
}

func TestDeleteOverrideBlockedByBookedWindow(t *testing.T) {
	repo := newFakeOverrideRepo()
	svc := newOverrideService(repo, &fixedSlotRepo{}, &stubAppointments{booked: true})
	doctorID := uuid.New()

	ov := makeOverride(t, "2024-06-10", "18:00", "20:00", model.OverrideTypeOvertime)
	ov.DoctorID = doctorID
	require.NoError(t, repo.Create(context.Background(), ov))

	err := svc.Delete(context.Background(), ov.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrLockedByFutureBooking))
	assert.Len(t, repo.overrides, 1)
}

func TestUpsertManyReplacesSet(t *testing.T) {
	repo := newFakeOverrideRepo()
	svc := newOverrideService(repo, &fixedSlotRepo{}, &stubAppointments{})
	doctorID := uuid.New()

	stale := makeOverride(t, "2024-06-01", "08:00", "10:00", model.OverrideTypeOvertime)
	stale.DoctorID = doctorID
	require.NoError(t, repo.Create(context.Background(), stale))

	diff, err := svc.UpsertMany(context.Background(), doctorID, []model.CreateOverrideRequest{
		*overrideRequest(doctorID, "2024-06-10", "18:00", "20:00", model.OverrideTypeOvertime),
		*overrideRequest(doctorID, "2024-06-11", "00:00", "23:59", model.OverrideTypeDayOff),
	})
	require.NoError(t, err)

	assert.Len(t, diff.Inserts, 2)
	assert.Len(t, diff.Deletes, 1)
	assert.Len(t, repo.overrides, 2)
}

func TestUpsertManyIdempotent(t *testing.T) {
	repo := newFakeOverrideRepo()
	svc := newOverrideService(repo, &fixedSlotRepo{}, &stubAppointments{})
	doctorID := uuid.New()

	reqs := []model.CreateOverrideRequest{
		*overrideRequest(doctorID, "2024-06-10", "18:00", "20:00", model.OverrideTypeOvertime),
	}

	first, err := svc.UpsertMany(context.Background(), doctorID, reqs)
	require.NoError(t, err)
	require.Len(t, first.Inserts, 1)

	second, err := svc.UpsertMany(context.Background(), doctorID, reqs)
	require.NoError(t, err)
	assert.Empty(t, second.Inserts)
	assert.Empty(t, second.Deletes)
	assert.Len(t, second.Updates, 1)
	assert.Len(t, repo.overrides, 1)
}

func TestUpsertManyBlockedWhenDeleteTouchesBookedWindow(t *testing.T) {
	repo := newFakeOverrideRepo()
	svc := newOverrideService(repo, &fixedSlotRepo{}, &stubAppointments{booked: true})
	doctorID := uuid.New()

	existing := makeOverride(t, "2024-06-10", "18:00", "20:00", model.OverrideTypeOvertime)
	existing.DoctorID = doctorID
	require.NoError(t, repo.Create(context.Background(), existing))

	// Empty desired set would delete the booked window.
	_, err := svc.UpsertMany(context.Background(), doctorID, nil)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrLockedByFutureBooking))
	assert.Len(t, repo.overrides, 1)
}
