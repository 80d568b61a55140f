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

const overrideColumns = `
	id, doctor_id, override_date, start_time, end_time,
	override_type, is_available, reason, created_at, updated_at
`

func (r *overrideRepository) Create(ctx context.Context, override *model.Override) error {
	override.ID = uuid.New()
	override.CreatedAt = time.Now()
	override.UpdatedAt = time.Now()

	if err := insertOverride(ctx, r.db, override); err != nil {
		return fmt.Errorf("failed to create override: %w", err)
	}
	return nil
}

func (r *overrideRepository) Get(ctx context.Context, id uuid.UUID) (*model.Override, error) {
	query := `SELECT ` + overrideColumns + ` FROM schedule_overrides WHERE id = $1`

	var override model.Override
	err := r.db.GetContext(ctx, &override, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("override", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get override: %w", err)
	}
	return &override, nil
}

func (r *overrideRepository) Update(ctx context.Context, override *model.Override) error {
	override.UpdatedAt = time.Now()

	result, err := updateOverride(ctx, r.db, override)
	if err != nil {
		return fmt.Errorf("failed to update override: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("override", nil)
	}

	return nil
}

func (r *overrideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM schedule_overrides WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("override", nil)
	}

	return nil
}

func (r *overrideRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Override, error) {
	query := `
		SELECT ` + overrideColumns + `
		FROM schedule_overrides
		WHERE doctor_id = $1
		ORDER BY override_date, start_time ASC
	`
	var overrides []*model.Override
	err := r.db.SelectContext(ctx, &overrides, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	return overrides, nil
}

// ApplyReconcile commits a precomputed insert/update/delete diff atomically,
// so a partially applied bulk upsert is never visible.
func (r *overrideRepository) ApplyReconcile(ctx context.Context, inserts, updates []*model.Override, deletes []uuid.UUID) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := time.Now()

		for _, id := range deletes {
			if _, err := tx.ExecContext(ctx, `DELETE FROM schedule_overrides WHERE id = $1`, id); err != nil {
				return fmt.Errorf("failed to delete override %s: %w", id, err)
			}
		}

		for _, override := range updates {
			override.UpdatedAt = now
			if _, err := updateOverride(ctx, tx, override); err != nil {
				return fmt.Errorf("failed to update override %s: %w", override.ID, err)
			}
		}

		for _, override := range inserts {
			override.ID = uuid.New()
			override.CreatedAt = now
			override.UpdatedAt = now
			if err := insertOverride(ctx, tx, override); err != nil {
				return fmt.Errorf("failed to insert override: %w", err)
			}
		}

		return nil
	})
}

func insertOverride(ctx context.Context, ext sqlx.ExtContext, override *model.Override) error {
	query := `
		INSERT INTO schedule_overrides (` + overrideColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := ext.ExecContext(ctx, query,
		override.ID,
		override.DoctorID,
		override.OverrideDate,
		override.StartTime,
		override.EndTime,
		override.OverrideType,
		override.IsAvailable,
		override.Reason,
		override.CreatedAt,
		override.UpdatedAt,
	)
	return err
}

func updateOverride(ctx context.Context, ext sqlx.ExtContext, override *model.Override) (sql.Result, error) {
	query := `
		UPDATE schedule_overrides
		SET override_date = $1, start_time = $2, end_time = $3,
			override_type = $4, is_available = $5, reason = $6, updated_at = $7
		WHERE id = $8
	`
	return ext.ExecContext(ctx, query,
		override.OverrideDate,
		override.StartTime,
		override.EndTime,
		override.OverrideType,
		override.IsAvailable,
		override.Reason,
		override.UpdatedAt,
		override.ID,
	)
}
