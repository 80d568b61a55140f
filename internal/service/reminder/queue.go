package reminder

import (
	"context"
	"time"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/repository"
)

// queueScheduler backs the Scheduler primitive with the durable
// reminder_jobs queue. Duplicate enqueues of the same
// (patient, appointment, instant) tuple are absorbed by the store.
type queueScheduler struct {
	repo repository.ReminderRepository
}

func NewQueueScheduler(repo repository.ReminderRepository) Scheduler {
	return &queueScheduler{repo: repo}
}

func (q *queueScheduler) ScheduleAt(ctx context.Context, at time.Time, job *model.ReminderJob) error {
	job.ScheduledAt = at
	_, err := q.repo.Enqueue(ctx, job)
	return err
}

// EnqueueNow keeps the job's original due instant when one is set, so a
// retried commit dedupes against the same idempotency tuple; the worker
// picks anything past-due on its next tick regardless.
func (q *queueScheduler) EnqueueNow(ctx context.Context, job *model.ReminderJob) error {
	if job.ScheduledAt.IsZero() {
		job.ScheduledAt = time.Now()
	}
	_, err := q.repo.Enqueue(ctx, job)
	return err
}
