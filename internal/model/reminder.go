package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderType string

const (
	ReminderTypeFollowUp   ReminderType = "follow_up"
	ReminderTypeMedication ReminderType = "medication"
)

type ReminderStatus string

const (
	ReminderStatusPending    ReminderStatus = "pending"
	ReminderStatusFired      ReminderStatus = "fired"
	ReminderStatusSuperseded ReminderStatus = "superseded"
)

// ReminderJob is a deferred one-shot notification. It stays pending in the
// queue until its ScheduledAt instant, then the worker re-checks the related
// appointment before delivering.
type ReminderJob struct {
	Base
	Title         string         `db:"title" json:"title"`
	Description   string         `db:"description" json:"description"`
	PatientID     uuid.UUID      `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID     `db:"appointment_id" json:"appointment_id,omitempty"`
	ReminderType  ReminderType   `db:"reminder_type" json:"reminder_type"`
	ScheduledAt   time.Time      `db:"scheduled_at" json:"scheduled_at"`
	Status        ReminderStatus `db:"status" json:"status"`
	FiredAt       *time.Time     `db:"fired_at" json:"fired_at,omitempty"`
}

// Prescription carries the fields the medication-reminder derivation needs.
// The prescription aggregate itself lives outside this service.
type Prescription struct {
	PatientID     uuid.UUID  `json:"patient_id" validate:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id,omitempty"`
	Medication    string     `json:"medication" validate:"required"`
	Dosage        string     `json:"dosage"`
	Frequency     string     `json:"frequency"`
	Duration      string     `json:"duration" validate:"required"`
	CreatedDate   time.Time  `json:"created_date"`
}
