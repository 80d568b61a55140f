package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/dteedee/medix-scheduling/internal/repository"
)

type weeklySlotRepository struct {
	db *sqlx.DB
}

type overrideRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type reminderRepository struct {
	db *sqlx.DB
}

func NewWeeklySlotRepository(db *sqlx.DB) repository.WeeklySlotRepository {
	return &weeklySlotRepository{db: db}
}

func NewOverrideRepository(db *sqlx.DB) repository.OverrideRepository {
	return &overrideRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}
