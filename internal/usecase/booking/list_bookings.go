package booking

import (
	"context"
	"errors"
	"fmt"
	"math"

	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ======================================================
// MY BOOKINGS
// ======================================================

type ListMyBookings struct {
	repo domain.Repository
}

func NewListMyBookings(repo domain.Repository) *ListMyBookings {
	return &ListMyBookings{repo: repo}
}

// Execute returns the caller's bookings ordered by slot start, earliest first.
func (uc *ListMyBookings) Execute(ctx context.Context, userID uint) ([]models.Booking, error) {
	list, err := uc.repo.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %d: %w", userID, err)
	}
	return list, nil
}

// ======================================================
// ALL BOOKINGS (admin)
// ======================================================

type ListAllBookingsInput struct {
	Page   int
	Limit  int
	Status string
}

type BookingPage struct {
	Items []models.Booking
	Page  int
	Limit int
	Total int64
}

type ListAllBookings struct {
	repo domain.Repository
}

func NewListAllBookings(repo domain.Repository) *ListAllBookings {
	return &ListAllBookings{repo: repo}
}

// Execute pages through all bookings, latest slot first. Unknown status
// filters are ignored.
func (uc *ListAllBookings) Execute(
	ctx context.Context,
	in ListAllBookingsInput,
) (*BookingPage, error) {

	page, limit := NormalizePage(in.Page, in.Limit)

	filter := domain.ListFilter{
		Offset: Offset(page, limit),
		Limit:  limit,
	}
	if st, err := domain.ParseStatus(in.Status); err == nil {
		filter.Status = st
	}

	items, total, err := uc.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return &BookingPage{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}

func NormalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = DefaultPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// Offset is the number of rows before page. Pages past the addressable range
// saturate at math.MaxInt and so read as empty.
func Offset(page, limit int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// ======================================================
// SINGLE BOOKING
// ======================================================

type GetBooking struct {
	repo domain.Repository
}

func NewGetBooking(repo domain.Repository) *GetBooking {
	return &GetBooking{repo: repo}
}

// Execute returns the booking when the viewer owns it or is an admin.
// Anyone else gets not found.
func (uc *GetBooking) Execute(
	ctx context.Context,
	viewer *models.User,
	id uint,
) (*models.Booking, error) {

	b, err := uc.repo.GetBooking(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("get booking %d: %w", id, err)
	}

	if b.UserID != viewer.ID && !viewer.IsAdmin() {
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}
