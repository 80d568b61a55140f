package override

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/repository"
	"github.com/dteedee/medix-scheduling/internal/service/guard"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/interval"
	"github.com/dteedee/medix-scheduling/pkg/lock"
	"github.com/dteedee/medix-scheduling/pkg/logger"
)

// Service owns date-specific schedule exceptions (day off or overtime)
// per doctor.
type Service struct {
	overrides repository.OverrideRepository
	slots     repository.WeeklySlotRepository
	guard     *guard.Guard
	locker    lock.Locker
	logger    *logger.Logger
}

func NewService(overrides repository.OverrideRepository, slots repository.WeeklySlotRepository, g *guard.Guard, locker lock.Locker, l *logger.Logger) *Service {
	return &Service{
		overrides: overrides,
		slots:     slots,
		guard:     g,
		locker:    locker,
		logger:    l,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateOverrideRequest) (*model.Override, error) {
	override, err := overrideFromRequest(req)
	if err != nil {
		return nil, err
	}

	err = s.withDoctorLock(ctx, override.DoctorID, func(ctx context.Context) error {
		if err := s.validateOverride(ctx, override); err != nil {
			return err
		}
		if err := s.assertWindowFree(ctx, override); err != nil {
			return err
		}
		return s.overrides.Create(ctx, override)
	})
	if err != nil {
		return nil, err
	}

	return override, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.CreateOverrideRequest) (*model.Override, error) {
	current, err := s.overrides.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := overrideFromRequest(req)
	if err != nil {
		return nil, err
	}
	updated.Base = current.Base
	updated.DoctorID = current.DoctorID

	err = s.withDoctorLock(ctx, current.DoctorID, func(ctx context.Context) error {
		// The window being vacated is checked too: shrinking away from a
		// booked appointment is as destructive as deleting.
		if err := s.assertWindowFree(ctx, current); err != nil {
			return err
		}
		if err := s.validateOverride(ctx, updated); err != nil {
			return err
		}
		if err := s.assertWindowFree(ctx, updated); err != nil {
			return err
		}
		return s.overrides.Update(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.overrides.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.withDoctorLock(ctx, current.DoctorID, func(ctx context.Context) error {
		if err := s.assertWindowFree(ctx, current); err != nil {
			return err
		}
		return s.overrides.Delete(ctx, id)
	})
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Override, error) {
	return s.overrides.ListByDoctor(ctx, doctorID)
}

// UpsertMany replaces a doctor's override set with the desired one. The
// insert/update/delete plan is computed as a set difference up front and
// applied in a single transaction.
func (s *Service) UpsertMany(ctx context.Context, doctorID uuid.UUID, reqs []model.CreateOverrideRequest) (Diff, error) {
	desired := make([]*model.Override, 0, len(reqs))
	for i := range reqs {
		req := reqs[i]
		req.DoctorID = doctorID
		override, err := overrideFromRequest(&req)
		if err != nil {
			return Diff{}, err
		}
		desired = append(desired, override)
	}

	var diff Diff
	err := s.withDoctorLock(ctx, doctorID, func(ctx context.Context) error {
		existing, err := s.overrides.ListByDoctor(ctx, doctorID)
		if err != nil {
			return fmt.Errorf("failed to load existing overrides: %w", err)
		}

		diff = Reconcile(existing, desired)

		existingByID := make(map[uuid.UUID]*model.Override, len(existing))
		for _, o := range existing {
			existingByID[o.ID] = o
		}

		for _, override := range diff.Inserts {
			if err := s.validateOverride(ctx, override); err != nil {
				return err
			}
			if err := s.assertWindowFree(ctx, override); err != nil {
				return err
			}
		}
		for _, override := range diff.Updates {
			if err := s.validateOverride(ctx, override); err != nil {
				return err
			}
			if err := s.assertWindowFree(ctx, override); err != nil {
				return err
			}
		}
		for _, id := range diff.Deletes {
			if err := s.assertWindowFree(ctx, existingByID[id]); err != nil {
				return err
			}
		}

		return s.overrides.ApplyReconcile(ctx, diff.Inserts, diff.Updates, diff.Deletes)
	})
	if err != nil {
		return Diff{}, err
	}

	s.logger.Info("overrides reconciled",
		"doctor_id", doctorID.String(),
		"inserted", len(diff.Inserts),
		"updated", len(diff.Updates),
		"deleted", len(diff.Deletes),
	)
	return diff, nil
}

// validateOverride rejects overtime windows that intersect the doctor's
// fixed weekly schedule on the same weekday. Day-off overrides remove
// availability, so they cannot conflict with it.
func (s *Service) validateOverride(ctx context.Context, override *model.Override) error {
	if override.OverrideType != model.OverrideTypeOvertime {
		return nil
	}

	weekday := override.OverrideDate.Weekday()
	slots, err := s.slots.ListByDoctorAndDay(ctx, override.DoctorID, int(weekday))
	if err != nil {
		return fmt.Errorf("failed to load weekly slots: %w", err)
	}

	for _, slot := range slots {
		if interval.OverlapMinutes(override.StartTime, override.EndTime, slot.StartTime, slot.EndTime) {
			return apperrors.OverlapsFixedSchedule(fmt.Sprintf(
				"overtime %s-%s overlaps weekly slot %s-%s",
				override.StartTime, override.EndTime, slot.StartTime, slot.EndTime,
			))
		}
	}
	return nil
}

func (s *Service) assertWindowFree(ctx context.Context, override *model.Override) error {
	windowStart := override.StartTime.At(override.OverrideDate)
	windowEnd := override.EndTime.At(override.OverrideDate)
	return s.guard.AssertNoFutureBooking(ctx, override.DoctorID, windowStart, windowEnd)
}

func (s *Service) withDoctorLock(ctx context.Context, doctorID uuid.UUID, fn func(ctx context.Context) error) error {
	if s.locker == nil {
		return fn(ctx)
	}
	err := s.locker.WithDoctorLock(ctx, doctorID, fn)
	if errors.Is(err, lock.ErrLockNotAcquired) {
		return apperrors.ServiceUnavailable(err)
	}
	return err
}

func overrideFromRequest(req *model.CreateOverrideRequest) (*model.Override, error) {
	start, err := interval.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, apperrors.InvalidSchedule(err.Error())
	}
	end, err := interval.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, apperrors.InvalidSchedule(err.Error())
	}
	if start >= end {
		return nil, apperrors.InvalidSchedule("start time must be before end time")
	}
	if req.OverrideType != model.OverrideTypeDayOff && req.OverrideType != model.OverrideTypeOvertime {
		return nil, apperrors.InvalidSchedule(fmt.Sprintf("unknown override type %q", req.OverrideType))
	}

	return &model.Override{
		DoctorID:     req.DoctorID,
		OverrideDate: req.OverrideDate,
		StartTime:    start,
		EndTime:      end,
		OverrideType: req.OverrideType,
		// Overrides are always written available; absence of a row is the
		// unavailable state.
		IsAvailable: true,
		Reason:      req.Reason,
	}, nil
}
