package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dteedee/medix-scheduling/internal/repository"
	apperrors "github.com/dteedee/medix-scheduling/pkg/errors"
	"github.com/dteedee/medix-scheduling/pkg/interval"
)

// Guard blocks schedule mutations over windows already occupied by a
// committed appointment. Once a patient has booked against a window the
// doctor cannot unilaterally remove that availability; the appointment
// must be cancelled through its own lifecycle first.
type Guard struct {
	appointments repository.AppointmentRepository
}

func NewGuard(appointments repository.AppointmentRepository) *Guard {
	return &Guard{appointments: appointments}
}

// AssertNoFutureBooking fails with LockedByFutureBooking if a non-cancelled
// appointment overlaps [windowStart, windowEnd).
func (g *Guard) AssertNoFutureBooking(ctx context.Context, doctorID uuid.UUID, windowStart, windowEnd time.Time) error {
	occupied, err := g.appointments.HasAppointmentsInTimeRange(ctx, doctorID, windowStart, windowEnd)
	if err != nil {
		return classify(fmt.Errorf("failed to check booked window: %w", err))
	}
	if occupied {
		return apperrors.LockedByFutureBooking("window is occupied by a booked appointment")
	}
	return nil
}

// AssertNoFutureWeekdayBooking protects recurring slots: it fails if any
// future on_progressing appointment falls inside [startTOD, endTOD) on the
// given weekday.
func (g *Guard) AssertNoFutureWeekdayBooking(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday, startTOD, endTOD interval.TimeOfDay) error {
	occupied, err := g.appointments.HasFutureWeekdayBookings(ctx, doctorID, weekday, startTOD, endTOD)
	if err != nil {
		return classify(fmt.Errorf("failed to check future weekday bookings: %w", err))
	}
	if occupied {
		return apperrors.LockedByFutureBooking("a future appointment falls inside this slot; use an override instead")
	}
	return nil
}

// Storage timeouts surface as retryable ServiceUnavailable, never as a
// silent pass.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.ServiceUnavailable(err)
	}
	return err
}
