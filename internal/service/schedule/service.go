package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/dteedee/medix-scheduling/internal/model"
	"github.com/dteedee/medix-scheduling/internal/repository"
	"github.com/dteedee/medix-scheduling/internal/service/guard"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/interval"
	"github.com/dteedee/medix-scheduling/pkg/lock"
	"github.com/dteedee/medix-scheduling/pkg/logger"
)

const (
	listCacheTTL     = 5 * time.Minute
	listCacheCleanup = 10 * time.Minute
)

// Service owns a doctor's recurring Monday-Sunday slot set.
type Service struct {
	slots  repository.WeeklySlotRepository
	guard  *guard.Guard
	locker lock.Locker
	cache  *cache.Cache
	logger *logger.Logger
}

func NewService(slots repository.WeeklySlotRepository, g *guard.Guard, locker lock.Locker, l *logger.Logger) *Service {
	return &Service{
		slots:  slots,
		guard:  g,
		locker: locker,
		cache:  cache.New(listCacheTTL, listCacheCleanup),
		logger: l,
	}
}

func (s *Service) CreateSlot(ctx context.Context, req *model.CreateWeeklySlotRequest) (*model.WeeklySlot, error) {
	slot, err := slotFromRequest(req)
	if err != nil {
		return nil, err
	}

	err = s.withDoctorLock(ctx, slot.DoctorID, func(ctx context.Context) error {
		existing, err := s.slots.ListByDoctorAndDay(ctx, slot.DoctorID, int(slot.DayOfWeek))
		if err != nil {
			return fmt.Errorf("failed to load existing slots: %w", err)
		}
		if err := assertNoSlotOverlap(slot, existing, uuid.Nil); err != nil {
			return err
		}
		return s.slots.Create(ctx, slot)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(slot.DoctorID)
	return slot, nil
}

// CreateSlots validates the full resulting set (existing plus new) before
// committing any row, so a partial batch is never visible.
func (s *Service) CreateSlots(ctx context.Context, req *model.BulkCreateWeeklySlotsRequest) ([]*model.WeeklySlot, error) {
	slots := make([]*model.WeeklySlot, 0, len(req.Slots))
	for i := range req.Slots {
		slotReq := req.Slots[i]
		slotReq.DoctorID = req.DoctorID
		slot, err := slotFromRequest(&slotReq)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	err := s.withDoctorLock(ctx, req.DoctorID, func(ctx context.Context) error {
		existing, err := s.slots.ListByDoctorAndDay(ctx, req.DoctorID, -1)
		if err != nil {
			return fmt.Errorf("failed to load existing slots: %w", err)
		}

		combined := existing
		for _, slot := range slots {
			if err := assertNoSlotOverlap(slot, combined, uuid.Nil); err != nil {
				return err
			}
			combined = append(combined, slot)
		}

		return s.slots.CreateMany(ctx, slots)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(req.DoctorID)
	s.logger.Info("weekly slots created", "doctor_id", req.DoctorID.String(), "count", len(slots))
	return slots, nil
}

func (s *Service) UpdateSlot(ctx context.Context, id uuid.UUID, req *model.UpdateWeeklySlotRequest) (*model.WeeklySlot, error) {
	slot, err := s.slots.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.withDoctorLock(ctx, slot.DoctorID, func(ctx context.Context) error {
		// The committed window is protected before any reshaping.
		if err := s.guard.AssertNoFutureWeekdayBooking(ctx, slot.DoctorID, slot.DayOfWeek, slot.StartTime, slot.EndTime); err != nil {
			return err
		}

		if req.DayOfWeek != nil {
			if *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
				return apperrors.InvalidSchedule("day of week must be between 0 and 6")
			}
			slot.DayOfWeek = time.Weekday(*req.DayOfWeek)
		}
		if req.StartTime != nil {
			tod, err := interval.ParseTimeOfDay(*req.StartTime)
			if err != nil {
				return apperrors.InvalidSchedule(err.Error())
			}
			slot.StartTime = tod
		}
		if req.EndTime != nil {
			tod, err := interval.ParseTimeOfDay(*req.EndTime)
			if err != nil {
				return apperrors.InvalidSchedule(err.Error())
			}
			slot.EndTime = tod
		}

		if err := validateSlotWindow(slot.StartTime, slot.EndTime); err != nil {
			return err
		}

		existing, err := s.slots.ListByDoctorAndDay(ctx, slot.DoctorID, int(slot.DayOfWeek))
		if err != nil {
			return fmt.Errorf("failed to load existing slots: %w", err)
		}
		if err := assertNoSlotOverlap(slot, existing, slot.ID); err != nil {
			return err
		}

		return s.slots.Update(ctx, slot)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateListCache(slot.DoctorID)
	return slot, nil
}

func (s *Service) DeleteSlot(ctx context.Context, id uuid.UUID) error {
	slot, err := s.slots.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.withDoctorLock(ctx, slot.DoctorID, func(ctx context.Context) error {
		if err := s.guard.AssertNoFutureWeekdayBooking(ctx, slot.DoctorID, slot.DayOfWeek, slot.StartTime, slot.EndTime); err != nil {
			return err
		}
		return s.slots.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.invalidateListCache(slot.DoctorID)
	return nil
}

// ListByDoctorAndDay returns the doctor's slots for one weekday, or for the
// whole week when day is -1. Reads are served from a short-lived cache that
// every write invalidates.
func (s *Service) ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, day int) ([]*model.WeeklySlot, error) {
	key := listCacheKey(doctorID, day)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.WeeklySlot), nil
	}

	slots, err := s.slots.ListByDoctorAndDay(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly slots: %w", err)
	}

	s.cache.Set(key, slots, cache.DefaultExpiration)
	return slots, nil
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

func (s *Service) invalidateListCache(doctorID uuid.UUID) {
	for day := -1; day <= 6; day++ {
		s.cache.Delete(listCacheKey(doctorID, day))
	}
}

func listCacheKey(doctorID uuid.UUID, day int) string {
	return fmt.Sprintf("slots:%s:%d", doctorID, day)
}

func slotFromRequest(req *model.CreateWeeklySlotRequest) (*model.WeeklySlot, error) {
	start, err := interval.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return nil, apperrors.InvalidSchedule(err.Error())
	}
	end, err := interval.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return nil, apperrors.InvalidSchedule(err.Error())
	}
	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return nil, apperrors.InvalidSchedule("day of week must be between 0 and 6")
	}
	if err := validateSlotWindow(start, end); err != nil {
		return nil, err
	}

	return &model.WeeklySlot{
		DoctorID:  req.DoctorID,
		DayOfWeek: time.Weekday(req.DayOfWeek),
		StartTime: start,
		EndTime:   end,
	}, nil
}

// Every slot is exactly SlotDuration long; 49 or 51 minutes is rejected.
func validateSlotWindow(start, end interval.TimeOfDay) error {
	if start >= end {
		return apperrors.InvalidSchedule("start time must be before end time")
	}
	if time.Duration(end-start)*time.Minute != model.SlotDuration {
		return apperrors.InvalidSchedule(fmt.Sprintf("slot duration must be exactly %v", model.SlotDuration))
	}
	return nil
}

func assertNoSlotOverlap(candidate *model.WeeklySlot, existing []*model.WeeklySlot, excludeID uuid.UUID) error {
	for _, other := range existing {
		if excludeID != uuid.Nil && other.ID == excludeID {
			continue
		}
		if other.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if interval.OverlapMinutes(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			return apperrors.OverlapsExistingSlot(fmt.Sprintf(
				"slot %s-%s overlaps existing slot %s-%s",
				candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime,
			))
		}
	}
	return nil
}
