package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/pkg/logger"
	"github.com/dteedee/medix-scheduling/pkg/messaging"
)

const notificationsChannel = "notifications"

// Service is the outbound delivery boundary. This core decides timing and
// eligibility only; transport (push, SMS, email fan-out) is consumed by
// downstream subscribers of the notifications channel.
type Service interface {
	Deliver(ctx context.Context, job *model.ReminderJob) error
}

type service struct {
	broker messaging.Broker
	logger *logger.Logger
}

func NewService(broker messaging.Broker, l *logger.Logger) Service {
	return &service{
		broker: broker,
		logger: l,
	}
}

func (s *service) Deliver(ctx context.Context, job *model.ReminderJob) error {
	notification := &model.Notification{
		ID:        uuid.New(),
		PatientID: job.PatientID,
		Title:     job.Title,
		Body:      job.Description,
		Channel:   model.NotificationChannelPush,
		SentAt:    time.Now(),
	}

	msg := messaging.Message{
		Type:    fmt.Sprintf("reminder.%s", job.ReminderType),
		Payload: notification,
	}
	if err := s.broker.Publish(ctx, notificationsChannel, msg); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	s.logger.Debug("notification dispatched",
		"patient_id", job.PatientID.String(),
		"reminder_type", string(job.ReminderType),
	)
	return nil
}
