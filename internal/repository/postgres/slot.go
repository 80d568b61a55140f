package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dteedee/medix-scheduling/internal/model"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
)

func (r *weeklySlotRepository) Create(ctx context.Context, slot *model.WeeklySlot) error {
	query := `
		INSERT INTO weekly_slots (
			id, doctor_id, day_of_week, start_time, end_time,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	slot.ID = uuid.New()
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.DayOfWeek,
		slot.StartTime,
		slot.EndTime,
		slot.CreatedAt,
		slot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create weekly slot: %w", err)
	}
	return nil
}

func (r *weeklySlotRepository) CreateMany(ctx context.Context, slots []*model.WeeklySlot) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO weekly_slots (
				id, doctor_id, day_of_week, start_time, end_time,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		now := time.Now()
		for _, slot := range slots {
			slot.ID = uuid.New()
			slot.CreatedAt = now
			slot.UpdatedAt = now
			if _, err := tx.ExecContext(ctx, query,
				slot.ID,
				slot.DoctorID,
				slot.DayOfWeek,
				slot.StartTime,
				slot.EndTime,
				slot.CreatedAt,
				slot.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to create weekly slot batch: %w", err)
			}
		}
		return nil
	})
}

func (r *weeklySlotRepository) Get(ctx context.Context, id uuid.UUID) (*model.WeeklySlot, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time,
			   created_at, updated_at
		FROM weekly_slots
		WHERE id = $1
	`
	var slot model.WeeklySlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("weekly slot", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly slot: %w", err)
	}
	return &slot, nil
}

func (r *weeklySlotRepository) Update(ctx context.Context, slot *model.WeeklySlot) error {
	query := `
		UPDATE weekly_slots
		SET day_of_week = $1, start_time = $2, end_time = $3, updated_at = $4
		WHERE id = $5
	`
	slot.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		slot.DayOfWeek,
		slot.StartTime,
		slot.EndTime,
		slot.UpdatedAt,
		slot.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update weekly slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("weekly slot", nil)
	}

	return nil
}

func (r *weeklySlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM weekly_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete weekly slot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("weekly slot", nil)
	}

	return nil
}

func (r *weeklySlotRepository) ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day int) ([]*model.WeeklySlot, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time,
			   created_at, updated_at
		FROM weekly_slots
		WHERE doctor_id = $1
	`
	args := []interface{}{doctorID}

	if day >= 0 {
		query += " AND day_of_week = $2"
		args = append(args, day)
	}

	query += " ORDER BY day_of_week, start_time ASC"

	var slots []*model.WeeklySlot
	err := r.db.SelectContext(ctx, &slots, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly slots: %w", err)
	}
	return slots, nil
}
