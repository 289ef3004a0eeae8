package booking

import (
	"context"
	"time"

	"github.com/BruksfildServices01/slot-booking/internal/models"
)

// ListFilter narrows the admin listing. An empty Status means all.
type ListFilter struct {
	Status Status
	Offset int
	Limit  int
}

type Repository interface {
	// WithinTx runs fn in a single storage transaction. Any error rolls back.
	WithinTx(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Slot --------
	FindSlot(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) (*models.Slot, error)

	// CreateSlot returns ErrDuplicate when the (start, end) pair exists.
	CreateSlot(
		ctx context.Context,
		slot *models.Slot,
	) error

	// MarkSlotBooked flips is_booked false -> true. It reports false when
	// the slot was already booked.
	MarkSlotBooked(
		ctx context.Context,
		slotID uint,
	) (bool, error)

	ReleaseSlot(
		ctx context.Context,
		slotID uint,
	) error

	ListBookedSlots(
		ctx context.Context,
		from time.Time,
		to time.Time,
	) ([]models.Slot, error)

	// -------- Booking --------

	// CreateBooking returns ErrDuplicate when another active booking holds the slot.
	CreateBooking(
		ctx context.Context,
		b *models.Booking,
	) error

	// GetBooking loads a booking with User and Slot populated.
	GetBooking(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	// GetBookingForUpdate loads and locks a booking row.
	GetBookingForUpdate(
		ctx context.Context,
		id uint,
	) (*models.Booking, error)

	// UpdateBookingStatus returns ErrDuplicate when reactivation collides
	// with another active booking on the same slot.
	UpdateBookingStatus(
		ctx context.Context,
		b *models.Booking,
	) error

	ListBookingsByUser(
		ctx context.Context,
		userID uint,
	) ([]models.Booking, error)

	ListBookings(
		ctx context.Context,
		filter ListFilter,
	) ([]models.Booking, int64, error)
}

type UserRepository interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateUser returns ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, u *models.User) error
}

// Clock is the source of "now" for validation and the listing clamp.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}
