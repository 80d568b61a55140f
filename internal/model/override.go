package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/pkg/interval"
)

type OverrideType string

const (
	OverrideTypeDayOff   OverrideType = "day_off"
	OverrideTypeOvertime OverrideType = "overtime"
)

// Override is a date-specific exception to a doctor's weekly availability,
// either removing a day (day_off) or adding capacity (overtime).
type Override struct {
	Base
	DoctorID     uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	OverrideDate time.Time          `db:"override_date" json:"override_date"`
	StartTime    interval.TimeOfDay `db:"start_time" json:"start_time"`
	EndTime      interval.TimeOfDay `db:"end_time" json:"end_time"`
	OverrideType OverrideType       `db:"override_type" json:"override_type"`
	IsAvailable  bool               `db:"is_available" json:"is_available"`
	Reason       string             `db:"reason" json:"reason,omitempty"`
}

// Key identifies an override within one doctor's set for bulk reconcile.
func (o *Override) Key() string {
	return fmt.Sprintf("%s|%s|%s", o.OverrideDate.Format("2006-01-02"), o.StartTime, o.EndTime)
}

type CreateOverrideRequest struct {
	DoctorID     uuid.UUID    `json:"doctor_id" validate:"required"`
	OverrideDate time.Time    `json:"override_date" validate:"required"`
	StartTime    string       `json:"start_time" validate:"required"`
	EndTime      string       `json:"end_time" validate:"required"`
	OverrideType OverrideType `json:"override_type" validate:"required,oneof=day_off overtime"`
	Reason       string       `json:"reason" validate:"max=500"`
}

type UpsertOverridesRequest struct {
	Overrides []CreateOverrideRequest `json:"overrides" validate:"dive"`
}
