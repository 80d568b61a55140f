package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	// AppointmentStatusOnProgressing means booked, not yet resolved.
	AppointmentStatusOnProgressing AppointmentStatus = "on_progressing"
	AppointmentStatusCompleted     AppointmentStatus = "completed"
	AppointmentStatusCancelled     AppointmentStatus = "cancelled"
)

// Terminal reports whether the status can no longer transition.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

type Appointment struct {
	Base
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CancelReason *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

type CreateAppointmentRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	PatientID uuid.UUID `json:"patient_id" validate:"required"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Notes     string    `json:"notes" validate:"max=1000"`
}

type UpdateAppointmentRequest struct {
	StartTime    *time.Time         `json:"start_time"`
	EndTime      *time.Time         `json:"end_time"`
	Status       *AppointmentStatus `json:"status" validate:"omitempty,oneof=on_progressing completed cancelled"`
	Notes        *string            `json:"notes"`
	CancelReason *string            `json:"cancel_reason"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
	Pagination
}
