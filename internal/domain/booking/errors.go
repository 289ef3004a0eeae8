package booking

import (
	"errors"

	"github.com/BruksfildServices01/slot-booking/internal/httperr"
)

// Storage sentinels. Repositories return these; use cases translate them.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("unique constraint violated")
)

var (
	ErrInvalidRange = httperr.ErrBusiness(httperr.KindInvalidRange, "invalid_range")

	ErrInvalidTimestamp     = httperr.ErrValidation("invalid_timestamp")
	ErrPastSlot             = httperr.ErrValidation("past_slot")
	ErrOutsideBusinessHours = httperr.ErrValidation("outside_business_hours")
	ErrInvalidDuration      = httperr.ErrValidation("invalid_duration")
	ErrMisalignedSlot       = httperr.ErrValidation("misaligned_slot")
	ErrNotesTooLong         = httperr.ErrValidation("notes_too_long")

	ErrSlotConflict    = httperr.ErrBusiness(httperr.KindSlotConflict, "slot_conflict")
	ErrBookingNotFound = httperr.ErrBusiness(httperr.KindNotFound, "booking_not_found")
)
