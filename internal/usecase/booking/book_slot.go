package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/audit"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type BookSlotInput struct {
	UserID  uint
	StartAt string
	EndAt   string
	Notes   string
}

// ======================================================
// USE CASE
// ======================================================

type BookSlot struct {
	repo    domain.Repository
	cache   SlotCache
	clock   domain.Clock
	audit   *audit.Dispatcher
	metrics Recorder
	log     *zap.Logger
}

func NewBookSlot(
	repo domain.Repository,
	cache SlotCache,
	clock domain.Clock,
	audit *audit.Dispatcher,
	metrics Recorder,
	log *zap.Logger,
) *BookSlot {
	return &BookSlot{
		repo:    repo,
		cache:   cache,
		clock:   clock,
		audit:   audit,
		metrics: recorderOrNop(metrics),
		log:     log,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *BookSlot) Execute(
	ctx context.Context,
	in BookSlotInput,
) (*models.Booking, error) {

	loc := uc.clock.Location()

	// --------------------------------------------------
	// 1. Validation
	// --------------------------------------------------
	window, err := domain.ValidateRequest(in.StartAt, in.EndAt, uc.clock.Now(), loc)
	if err != nil {
		uc.metrics.ObserveClaim(OutcomeInvalid)
		return nil, err
	}

	notes := strings.TrimSpace(in.Notes)
	if err := domain.ValidateNotes(notes); err != nil {
		uc.metrics.ObserveClaim(OutcomeInvalid)
		return nil, err
	}

	// --------------------------------------------------
	// 2. Claim (slot + booking in one transaction)
	// --------------------------------------------------
	var created *models.Booking
	err = uc.repo.WithinTx(ctx, func(tx domain.Repository) error {
		b, err := claim(ctx, tx, in.UserID, window, notes)
		created = b
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrSlotConflict) {
			uc.metrics.ObserveClaim(OutcomeConflict)
			uc.audit.Dispatch(audit.Event{
				UserID: &in.UserID,
				Action: audit.ActionBookingConflict,
				Entity: "slot",
				Metadata: map[string]any{
					"startAt": window.Start,
					"endAt":   window.End,
				},
			})
			return nil, err
		}
		uc.metrics.ObserveClaim(OutcomeError)
		return nil, fmt.Errorf("claim slot: %w", err)
	}

	uc.metrics.ObserveClaim(OutcomeSuccess)
	invalidateDay(ctx, uc.cache, uc.log, window.Start, loc)

	// --------------------------------------------------
	// 3. Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Event{
		UserID:   &in.UserID,
		Action:   audit.ActionBookingCreated,
		Entity:   "booking",
		EntityID: &created.ID,
		Metadata: map[string]any{"slotId": created.SlotID},
	})

	// --------------------------------------------------
	// 4. Reload with user and slot
	// --------------------------------------------------
	b, err := uc.repo.GetBooking(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("load booking %d: %w", created.ID, err)
	}
	return b, nil
}

// claim marks the (start, end) slot booked and binds a booking to it.
// Uniqueness violations from storage surface as ErrSlotConflict.
func claim(
	ctx context.Context,
	tx domain.Repository,
	userID uint,
	window domain.Window,
	notes string,
) (*models.Booking, error) {

	slot, err := tx.FindSlot(ctx, window.Start, window.End)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		slot = &models.Slot{StartAt: window.Start, EndAt: window.End, IsBooked: true}
		if err := tx.CreateSlot(ctx, slot); err != nil {
			return nil, conflictOr(err)
		}

	case err != nil:
		return nil, err

	case slot.IsBooked:
		return nil, domain.ErrSlotConflict

	default:
		ok, err := tx.MarkSlotBooked(ctx, slot.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrSlotConflict
		}
	}

	b := domain.NewBooking(userID, slot, notes)
	if err := tx.CreateBooking(ctx, b); err != nil {
		return nil, conflictOr(err)
	}
	return b, nil
}

func conflictOr(err error) error {
	if errors.Is(err, domain.ErrDuplicate) {
		return domain.ErrSlotConflict
	}
	return err
}
