package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/pkg/interval"
)

// SlotDuration is the fixed length of every weekly availability slot.
const SlotDuration = 50 * time.Minute

// WeeklySlot is a recurring weekly availability window for a doctor.
// DayOfWeek follows time.Weekday (Sunday = 0).
type WeeklySlot struct {
	Base
	DoctorID  uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	DayOfWeek time.Weekday       `db:"day_of_week" json:"day_of_week"`
	StartTime interval.TimeOfDay `db:"start_time" json:"start_time"`
	EndTime   interval.TimeOfDay `db:"end_time" json:"end_time"`
}

type CreateWeeklySlotRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	DayOfWeek int       `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string    `json:"start_time" validate:"required"`
	EndTime   string    `json:"end_time" validate:"required"`
}

type UpdateWeeklySlotRequest struct {
	DayOfWeek *int    `json:"day_of_week" validate:"omitempty,min=0,max=6"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type BulkCreateWeeklySlotsRequest struct {
	DoctorID uuid.UUID                 `json:"doctor_id" validate:"required"`
	Slots    []CreateWeeklySlotRequest `json:"slots" validate:"required,min=1,dive"`
}
