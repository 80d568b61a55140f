package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/pkg/interval"
)

// All repository interfaces in one file
type (
	// WeeklySlotRepository owns a doctor's recurring availability rows.
	WeeklySlotRepository interface {
		Create(ctx context.Context, slot *model.WeeklySlot) error
		CreateMany(ctx context.Context, slots []*model.WeeklySlot) error
		Get(ctx context.Context, id uuid.UUID) (*model.WeeklySlot, error)
		Update(ctx context.Context, slot *model.WeeklySlot) error
		Delete(ctx context.Context, id uuid.UUID) error
		// ListByDoctorAndDay returns all days when day is -1.
		ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day int) ([]*model.WeeklySlot, error)
	}

	OverrideRepository interface {
		Create(ctx context.Context, override *model.Override) error
		Get(ctx context.Context, id uuid.UUID) (*model.Override, error)
		Update(ctx context.Context, override *model.Override) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Override, error)
		// ApplyReconcile runs the precomputed diff in a single transaction.
		ApplyReconcile(ctx context.Context, inserts, updates []*model.Override, deletes []uuid.UUID) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		GetByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		CheckConflict(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
		// HasAppointmentsInTimeRange covers non-cancelled appointments.
		HasAppointmentsInTimeRange(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (bool, error)
		// HasFutureWeekdayBookings finds future on_progressing appointments whose
		// time of day intersects [startTOD, endTOD) on the given weekday.
		HasFutureWeekdayBookings(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday, startTOD, endTOD interval.TimeOfDay) (bool, error)
	}

	// ReminderRepository is the durable queue behind the deferred executor.
	ReminderRepository interface {
		// Enqueue inserts the job unless one with the same
		// (patient_id, appointment_id, scheduled_at) tuple is already queued.
		Enqueue(ctx context.Context, job *model.ReminderJob) (bool, error)
		GetDuePendingWithLock(ctx context.Context, due time.Time, limit int) ([]*model.ReminderJob, error)
		MarkFired(ctx context.Context, id uuid.UUID, firedAt time.Time) error
		MarkSuperseded(ctx context.Context, id uuid.UUID) error
		CountPending(ctx context.Context) (int64, error)
	}
)
