package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/repository"
	"github.com/dteedee/medix-scheduling/internal/service/reminder"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/interval"
	"github.com/dteedee/medix-scheduling/pkg/lock"
	"github.com/dteedee/medix-scheduling/pkg/logger"
	"github.com/dteedee/medix-scheduling/pkg/metrics"
)

// defaultCheckTimeout bounds the guard's read inside a booking request.
const defaultCheckTimeout = 5 * time.Second

type Service struct {
	appointments repository.AppointmentRepository
	reminders    *reminder.Service
	locker       lock.Locker
	metrics      *metrics.Metrics
	logger       *logger.Logger
	checkTimeout time.Duration
}

func NewService(appointments repository.AppointmentRepository, reminders *reminder.Service, locker lock.Locker, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		appointments: appointments,
		reminders:    reminders,
		locker:       locker,
		metrics:      m,
		logger:       l,
		checkTimeout: defaultCheckTimeout,
	}
}

// CheckConflict reports whether any of the doctor's unresolved
// appointments overlaps the proposed half-open window.
func (s *Service) CheckConflict(ctx context.Context, doctorID uuid.UUID, proposedStart, proposedEnd time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()

	appointments, err := s.appointments.GetByDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return false, apperrors.ServiceUnavailable(err)
		}
		return false, fmt.Errorf("failed to load doctor appointments: %w", err)
	}

	for _, apt := range appointments {
		if apt.Status != model.AppointmentStatusOnProgressing {
			continue
		}
		if interval.Overlap(proposedStart, proposedEnd, apt.StartTime, apt.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

// Create books an appointment. The conflict check and the insert run as
// one unit under the doctor's lock, so two concurrent bookings for
// overlapping windows cannot both observe "no conflict".
func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	apt := &model.Appointment{
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Status:    model.AppointmentStatusOnProgressing,
		Notes:     req.Notes,
	}

	err := s.locker.WithDoctorLock(ctx, req.DoctorID, func(ctx context.Context) error {
		// Snapshot reads are re-validated here, immediately before the
		// paired write commits.
		conflict, err := s.appointments.CheckConflict(ctx, req.DoctorID, req.StartTime, req.EndTime, nil)
		if err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}
		if conflict {
			s.metrics.BookingConflicts.Inc()
			return apperrors.ConflictDetected("requested window is already booked")
		}
		return s.appointments.Create(ctx, apt)
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			s.metrics.BookingLockFailures.Inc()
			return nil, apperrors.ConflictDetected("another booking for this doctor is in flight")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.ServiceUnavailable(err)
		}
		return nil, err
	}

	// Reminders are best-effort at booking time; the queue is retried by
	// the caller with the same idempotency tuple on ServiceUnavailable.
	if err := s.reminders.ScheduleAppointmentReminders(ctx, apt); err != nil {
		s.logger.Error(err, "failed to schedule appointment reminders", "appointment_id", apt.ID.String())
	}

	s.logger.Info("appointment booked",
		"appointment_id", apt.ID.String(),
		"doctor_id", apt.DoctorID.String(),
	)
	return apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Update edits an appointment window or resolves its status. Terminal
// appointments are never re-opened.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status.Terminal() {
		return nil, apperrors.BadRequest("appointment is already resolved", nil)
	}

	if req.Status != nil {
		if err := validateTransition(apt.Status, *req.Status); err != nil {
			return nil, err
		}
	}

	newStart := apt.StartTime
	newEnd := apt.EndTime
	if req.StartTime != nil {
		newStart = *req.StartTime
	}
	if req.EndTime != nil {
		newEnd = *req.EndTime
	}
	rescheduled := !newStart.Equal(apt.StartTime) || !newEnd.Equal(apt.EndTime)
	if rescheduled {
		if err := validateWindow(newStart, newEnd); err != nil {
			return nil, err
		}
	}

	err = s.locker.WithDoctorLock(ctx, apt.DoctorID, func(ctx context.Context) error {
		if rescheduled {
			conflict, err := s.appointments.CheckConflict(ctx, apt.DoctorID, newStart, newEnd, &apt.ID)
			if err != nil {
				return fmt.Errorf("failed to check conflicts: %w", err)
			}
			if conflict {
				s.metrics.BookingConflicts.Inc()
				return apperrors.ConflictDetected("requested window is already booked")
			}
			apt.StartTime = newStart
			apt.EndTime = newEnd
		}

		if req.Status != nil {
			apt.Status = *req.Status
		}
		if req.Notes != nil {
			apt.Notes = *req.Notes
		}
		if req.CancelReason != nil {
			apt.CancelReason = req.CancelReason
		}

		return s.appointments.Update(ctx, apt)
	})
	if err != nil {
		if errors.Is(err, lock.ErrLockNotAcquired) {
			return nil, apperrors.ConflictDetected("another change for this doctor is in flight")
		}
		return nil, err
	}

	if rescheduled {
		// A moved appointment gets a fresh reminder set; jobs for the old
		// window suppress themselves at fire time.
		if err := s.reminders.ScheduleAppointmentReminders(ctx, apt); err != nil {
			s.logger.Error(err, "failed to reschedule appointment reminders", "appointment_id", apt.ID.String())
		}
	}

	return apt, nil
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	status := model.AppointmentStatusCancelled
	return s.Update(ctx, id, &model.UpdateAppointmentRequest{
		Status:       &status,
		CancelReason: &reason,
	})
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	status := model.AppointmentStatusCompleted
	return s.Update(ctx, id, &model.UpdateAppointmentRequest{Status: &status})
}

func validateWindow(start, end time.Time) error {
	if !start.Before(end) {
		return apperrors.InvalidSchedule("appointment start must be before end")
	}
	return nil
}

func validateTransition(from, to model.AppointmentStatus) error {
	if from == to {
		return nil
	}
	if from != model.AppointmentStatusOnProgressing {
		return apperrors.BadRequest(fmt.Sprintf("cannot transition from %s", from), nil)
	}
	if to != model.AppointmentStatusCompleted && to != model.AppointmentStatusCancelled {
		return apperrors.BadRequest(fmt.Sprintf("invalid status %s", to), nil)
	}
	return nil
}
