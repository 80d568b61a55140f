package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dteedee/medix-scheduling/internal/email"
	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/repository"
	"github.com/dteedee/medix-scheduling/internal/service/notification"
	"github.com/dteedee/medix-scheduling/internal/service/reminder"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/logger"
	"github.com/dteedee/medix-scheduling/pkg/metrics"
)

type ReminderProcessorConfig struct {
	BatchSize     int
	PollInterval  time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
}

// ReminderProcessor wakes due reminder jobs and fires them. A job's
// eligibility is recomputed from current appointment state at fire time;
// the state captured at schedule time is never trusted.
type ReminderProcessor struct {
	reminders    repository.ReminderRepository
	appointments repository.AppointmentRepository
	notifier     notification.Service
	alerts       email.Service
	config       ReminderProcessorConfig
	logger       *logger.Logger
	metrics      *metrics.Metrics
}

func NewReminderProcessor(
	reminders repository.ReminderRepository,
	appointments repository.AppointmentRepository,
	notifier notification.Service,
	alerts email.Service,
	config ReminderProcessorConfig,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *ReminderProcessor {
	if config.BatchSize <= 0 {
		panic("BatchSize must be greater than 0")
	}
	if config.PollInterval <= 0 {
		panic("PollInterval must be greater than 0")
	}
	if config.RetryAttempts <= 0 {
		panic("RetryAttempts must be greater than 0")
	}
	if config.RetryDelay <= 0 {
		panic("RetryDelay must be greater than 0")
	}

	return &ReminderProcessor{
		reminders:    reminders,
		appointments: appointments,
		notifier:     notifier,
		alerts:       alerts,
		config:       config,
		logger:       logger,
		metrics:      metrics,
	}
}

func (p *ReminderProcessor) Start(ctx context.Context) {
	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.logger.Info("Starting reminder processor")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down reminder processor")
			return
		case <-ticker.C:
			if err := p.ProcessDue(ctx); err != nil {
				p.logger.Error(err, "Failed to process due reminders")
			}
		}
	}
}

// ProcessDue claims one batch of due jobs and fires each in turn. A job
// whose delivery fails stays pending and is retried next tick: firing may
// be delayed, never dropped.
func (p *ReminderProcessor) ProcessDue(ctx context.Context) error {
	timer := prometheus.NewTimer(p.metrics.ReminderFireLatency)
	defer timer.ObserveDuration()

	jobs, err := p.reminders.GetDuePendingWithLock(ctx, time.Now(), p.config.BatchSize)
	if err != nil {
		p.metrics.DatabaseOperations.WithLabelValues("get_due_reminders", "error").Inc()
		return fmt.Errorf("failed to get due reminder jobs: %w", err)
	}
	p.metrics.DatabaseOperations.WithLabelValues("get_due_reminders", "success").Inc()

	for _, job := range jobs {
		if err := p.processJob(ctx, job); err != nil {
			p.logger.Error(err, "Failed to process reminder job",
				"job_id", job.ID.String(),
				"reminder_type", string(job.ReminderType))
		}
	}

	if pending, err := p.reminders.CountPending(ctx); err == nil {
		p.metrics.ReminderQueueDepth.Set(float64(pending))
	}

	return nil
}

func (p *ReminderProcessor) processJob(ctx context.Context, job *model.ReminderJob) error {
	eligible, reason, err := p.checkEligibility(ctx, job)
	if err != nil {
		return err
	}
	if !eligible {
		p.metrics.RemindersSuppressed.WithLabelValues(reason).Inc()
		if err := p.reminders.MarkSuperseded(ctx, job.ID); err != nil {
			return fmt.Errorf("failed to supersede reminder job: %w", err)
		}
		return nil
	}

	err = retry(p.config.RetryAttempts, p.config.RetryDelay, func() error {
		return p.notifier.Deliver(ctx, job)
	})
	if err != nil {
		p.metrics.RemindersFailed.Inc()
		if alertErr := p.alerts.SendAlert(ctx,
			"reminder delivery failing",
			fmt.Sprintf("job %s for patient %s failed after %d attempts: %v",
				job.ID, job.PatientID, p.config.RetryAttempts, err),
		); alertErr != nil {
			p.logger.Error(alertErr, "Failed to send delivery alert")
		}
		// Left pending; next tick retries.
		return err
	}

	p.metrics.RemindersFired.Inc()
	if err := p.reminders.MarkFired(ctx, job.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark reminder fired: %w", err)
	}

	return nil
}

// checkEligibility re-fetches the related appointment for follow-up
// reminders. Only appointments resolved as completed get their reminders
// delivered; everything else is suppressed.
func (p *ReminderProcessor) checkEligibility(ctx context.Context, job *model.ReminderJob) (bool, string, error) {
	if job.ReminderType != model.ReminderTypeFollowUp || job.AppointmentID == nil {
		return true, "", nil
	}

	apt, err := p.appointments.Get(ctx, *job.AppointmentID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return false, "appointment_missing", nil
		}
		return false, "", fmt.Errorf("failed to load appointment for eligibility: %w", err)
	}

	if apt.Status != model.AppointmentStatusCompleted {
		return false, "status_" + string(apt.Status), nil
	}

	// A rescheduled appointment leaves its old jobs behind; they no longer
	// match the current start and must not fire.
	if !matchesReminderTimes(job.ScheduledAt, apt.StartTime) {
		return false, "rescheduled", nil
	}

	return true, "", nil
}

func matchesReminderTimes(scheduledAt, start time.Time) bool {
	for _, at := range reminder.AppointmentReminderTimes(start) {
		if scheduledAt.Equal(at) {
			return true
		}
	}
	return false
}

func retry(attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts-1 {
			time.Sleep(delay)
		}
	}
	return err
}
