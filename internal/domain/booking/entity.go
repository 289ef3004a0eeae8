package booking

import (
	"time"

	"github.com/BruksfildServices01/slot-booking/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// NewBooking builds a confirmed booking for a claimed slot.
func NewBooking(userID uint, slot *models.Slot, notes string) *models.Booking {
	return &models.Booking{
		UserID: userID,
		SlotID: slot.ID,
		Status: string(InitialStatus()),
		Notes:  notes,
	}
}

// ApplyStatus sets the status and its timestamp, returning the slot effect.
func ApplyStatus(b *models.Booking, to Status, now time.Time) SlotEffect {
	effect := EffectOf(Status(b.Status), to)
	if Status(b.Status) == to {
		return effect
	}

	b.Status = string(to)
	switch to {
	case StatusCancelled:
		b.CancelledAt = &now
	case StatusCompleted:
		b.CompletedAt = &now
	case StatusConfirmed:
		b.CancelledAt = nil
	}
	return effect
}
