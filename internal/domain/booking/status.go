package booking

import "github.com/BruksfildServices01/slot-booking/internal/httperr"

// ===============================
// Booking Status
// ===============================

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

func InitialStatus() Status {
	return StatusConfirmed
}

// ParseStatus accepts only the three known statuses.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// IsActive reports whether a booking in this status holds its slot.
func (s Status) IsActive() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

// ===============================
// Transitions
// ===============================

// SlotEffect is what a status change does to the referenced slot.
type SlotEffect int

const (
	SlotUnchanged SlotEffect = iota
	SlotRelease
	SlotReclaim
)

// EffectOf returns the slot effect of moving from -> to.
// Any transition between known statuses is allowed.
func EffectOf(from, to Status) SlotEffect {
	switch {
	case from == to:
		return SlotUnchanged
	case to == StatusCancelled && from.IsActive():
		return SlotRelease
	case from == StatusCancelled && to.IsActive():
		return SlotReclaim
	default:
		return SlotUnchanged
	}
}

// ErrInvalidStatus is returned for any status outside the known set.
var ErrInvalidStatus = httperr.ErrBusiness(httperr.KindInvalidStatus, "invalid_status")
