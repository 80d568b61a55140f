package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
)

const reminderColumns = `
	id, title, description, patient_id, appointment_id,
	reminder_type, scheduled_at, status, fired_at, created_at, updated_at
`

// Enqueue inserts a pending job. The unique index on
// (patient_id, appointment_id, scheduled_at) makes retried commits
// idempotent; a duplicate insert is reported, not an error.
func (r *reminderRepository) Enqueue(ctx context.Context, job *model.ReminderJob) (bool, error) {
	query := `
		INSERT INTO reminder_jobs (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (patient_id, COALESCE(appointment_id, '00000000-0000-0000-0000-000000000000'::uuid), scheduled_at) DO NOTHING
	`
	job.ID = uuid.New()
	job.Status = model.ReminderStatusPending
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		job.ID,
		job.Title,
		job.Description,
		job.PatientID,
		job.AppointmentID,
		job.ReminderType,
		job.ScheduledAt,
		job.Status,
		job.FiredAt,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to enqueue reminder job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows > 0, nil
}

// GetDuePendingWithLock selects due pending jobs with SKIP LOCKED so
// overlapping polls pass over rows another statement holds. The row
// locks last only for the statement; the pending guard in markStatus
// is what stops a job from being marked twice.
func (r *reminderRepository) GetDuePendingWithLock(ctx context.Context, due time.Time, limit int) ([]*model.ReminderJob, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminder_jobs
		WHERE status = 'pending'
		AND scheduled_at <= $1
		ORDER BY scheduled_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`
	var jobs []*model.ReminderJob
	err := r.db.SelectContext(ctx, &jobs, query, due, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due reminder jobs: %w", err)
	}
	return jobs, nil
}

func (r *reminderRepository) MarkFired(ctx context.Context, id uuid.UUID, firedAt time.Time) error {
	return r.markStatus(ctx, id, model.ReminderStatusFired, &firedAt)
}

func (r *reminderRepository) MarkSuperseded(ctx context.Context, id uuid.UUID) error {
	return r.markStatus(ctx, id, model.ReminderStatusSuperseded, nil)
}

func (r *reminderRepository) markStatus(ctx context.Context, id uuid.UUID, status model.ReminderStatus, firedAt *time.Time) error {
	query := `
		UPDATE reminder_jobs
		SET status = $1, fired_at = $2, updated_at = $3
		WHERE id = $4 AND status = 'pending'
	`
	result, err := r.db.ExecContext(ctx, query, status, firedAt, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark reminder job %s: %w", status, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("pending reminder job", nil)
	}

	return nil
}

func (r *reminderRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reminder_jobs WHERE status = 'pending'`)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending reminder jobs: %w", err)
	}
	return count, nil
}
