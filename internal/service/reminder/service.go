package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/pkg/logger"
	"github.com/dteedee/medix-scheduling/pkg/metrics"
)

// morningHour is the local hour at which day-granular reminders fire.
const morningHour = 8

// Scheduler is the deferred-execution primitive this core depends on but
// does not implement: jobs enqueued through it surface in the firing
// worker at their due instant.
type Scheduler interface {
	ScheduleAt(ctx context.Context, at time.Time, job *model.ReminderJob) error
	EnqueueNow(ctx context.Context, job *model.ReminderJob) error
}

// Service derives deferred notification jobs from committed appointments
// and created prescriptions. Eligibility is re-checked at fire time, not
// here.
type Service struct {
	scheduler Scheduler
	metrics   *metrics.Metrics
	logger    *logger.Logger
	now       func() time.Time
}

func NewService(scheduler Scheduler, m *metrics.Metrics, l *logger.Logger) *Service {
	return &Service{
		scheduler: scheduler,
		metrics:   m,
		logger:    l,
		now:       time.Now,
	}
}

// AppointmentReminderTimes returns the candidate reminder instants for an
// appointment start: the day before at 08:00, four hours before, and two
// hours before.
func AppointmentReminderTimes(start time.Time) [3]time.Time {
	dayBefore := time.Date(start.Year(), start.Month(), start.Day(), morningHour, 0, 0, 0, start.Location()).AddDate(0, 0, -1)
	return [3]time.Time{
		dayBefore,
		start.Add(-4 * time.Hour),
		start.Add(-2 * time.Hour),
	}
}

// ScheduleAppointmentReminders enqueues the three follow-up reminders for
// an appointment. Instants already in the past are treated as already due
// and dispatched immediately.
func (s *Service) ScheduleAppointmentReminders(ctx context.Context, apt *model.Appointment) error {
	now := s.now()

	for _, at := range AppointmentReminderTimes(apt.StartTime) {
		aptID := apt.ID
		job := &model.ReminderJob{
			Title:         "Appointment reminder",
			Description:   fmt.Sprintf("You have an appointment at %s", apt.StartTime.Format("15:04 02/01/2006")),
			PatientID:     apt.PatientID,
			AppointmentID: &aptID,
			ReminderType:  model.ReminderTypeFollowUp,
			ScheduledAt:   at,
		}

		var err error
		if at.After(now) {
			err = s.scheduler.ScheduleAt(ctx, at, job)
		} else {
			err = s.scheduler.EnqueueNow(ctx, job)
		}
		if err != nil {
			return fmt.Errorf("failed to schedule appointment reminder: %w", err)
		}
		s.metrics.RemindersScheduled.WithLabelValues(string(model.ReminderTypeFollowUp)).Inc()
	}

	s.logger.Debug("appointment reminders scheduled", "appointment_id", apt.ID.String())
	return nil
}

// ScheduleMedicationReminders enqueues one daily 08:00 reminder for each
// day of the parsed prescription duration, starting the day after the
// prescription date. Instants already past are skipped, not retro-fired.
func (s *Service) ScheduleMedicationReminders(ctx context.Context, p *model.Prescription) (int, error) {
	days, err := ParseDurationDays(p.Duration)
	if err != nil {
		return 0, err
	}

	now := s.now()
	base := p.CreatedDate
	if base.IsZero() {
		base = now
	}

	description := fmt.Sprintf("Take %s", p.Medication)
	if p.Dosage != "" {
		description += fmt.Sprintf(", dosage %s", p.Dosage)
	}
	if p.Frequency != "" {
		description += fmt.Sprintf(", %s", p.Frequency)
	}

	scheduled := 0
	for day := 1; day <= days; day++ {
		at := time.Date(base.Year(), base.Month(), base.Day(), morningHour, 0, 0, 0, base.Location()).AddDate(0, 0, day)
		if !at.After(now) {
			continue
		}

		job := &model.ReminderJob{
			Title:         "Medication reminder",
			Description:   description,
			PatientID:     p.PatientID,
			AppointmentID: p.AppointmentID,
			ReminderType:  model.ReminderTypeMedication,
			ScheduledAt:   at,
		}
		if err := s.scheduler.ScheduleAt(ctx, at, job); err != nil {
			return scheduled, fmt.Errorf("failed to schedule medication reminder: %w", err)
		}
		s.metrics.RemindersScheduled.WithLabelValues(string(model.ReminderTypeMedication)).Inc()
		scheduled++
	}

	s.logger.Debug("medication reminders scheduled",
		"patient_id", p.PatientID.String(),
		"days", days,
		"scheduled", scheduled,
	)
	return scheduled, nil
}
