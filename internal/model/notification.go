package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationChannel string

const (
	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelPush  NotificationChannel = "push"
)

// Notification is the outbound payload handed to the delivery boundary.
type Notification struct {
	ID        uuid.UUID           `json:"id"`
	PatientID uuid.UUID           `json:"patient_id"`
	Title     string              `json:"title"`
	Body      string              `json:"body"`
	Channel   NotificationChannel `json:"channel"`
	SentAt    time.Time           `json:"sent_at"`
}
