package booking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

type SetStatusInput struct {
	ActorID   uint
	BookingID uint
	Status    string
}

type SetStatus struct {
	repo    domain.Repository
	cache   SlotCache
	clock   domain.Clock
	audit   *audit.Dispatcher
	metrics Recorder
	log     *zap.Logger
}

func NewSetStatus(
	repo domain.Repository,
	cache SlotCache,
	clock domain.Clock,
	audit *audit.Dispatcher,
	metrics Recorder,
	log *zap.Logger,
) *SetStatus {
	return &SetStatus{
		repo:    repo,
		cache:   cache,
		clock:   clock,
		audit:   audit,
		metrics: recorderOrNop(metrics),
		log:     log,
	}
}

// Execute writes the new status and, in the same transaction, releases the
// slot on cancellation or re-claims it when a cancelled booking is revived.
// Setting the current status again changes nothing.
func (uc *SetStatus) Execute(
	ctx context.Context,
	in SetStatusInput,
) (*models.Booking, error) {

	to, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	var (
		from   domain.Status
		effect domain.SlotEffect
	)

	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		b, err := tx.GetBookingForUpdate(ctx, in.BookingID)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		from = domain.Status(b.Status)
		if from == to {
			return nil
		}

		effect = domain.ApplyStatus(b, to, uc.clock.Now())

		if err := tx.UpdateBookingStatus(ctx, b); err != nil {
			return conflictOr(err)
		}

		switch effect {
		case domain.SlotRelease:
			return tx.ReleaseSlot(ctx, b.SlotID)
		case domain.SlotReclaim:
			ok, err := tx.MarkSlotBooked(ctx, b.SlotID)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrSlotConflict
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) || errors.Is(err, domain.ErrSlotConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("set booking %d status: %w", in.BookingID, err)
	}

	b, err := uc.repo.GetBooking(ctx, in.BookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", in.BookingID, err)
	}

	if from == to {
		return b, nil
	}

	uc.metrics.ObserveTransition(string(from), string(to))
	if effect != domain.SlotUnchanged {
		invalidateDay(ctx, uc.cache, uc.log, b.Slot.StartAt, uc.clock.Location())
	}

	actor := in.ActorID
	uc.audit.Dispatch(audit.Event{
		UserID:   &actor,
		Action:   audit.ActionBookingStatusChanged,
		Entity:   "booking",
		EntityID: &b.ID,
		Metadata: map[string]any{"from": from, "to": to},
	})

	return b, nil
}
