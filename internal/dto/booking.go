package dto

import (
	"time"

	"github.com/BruksfildServices01/slot-booking/internal/models"
)

type UserView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type BookingSlotView struct {
	ID         uint      `json:"id"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	IsBooked   bool      `json:"isBooked"`
	TimeString string    `json:"timeString"`
	DateString string    `json:"dateString"`
}

type BookingView struct {
	ID          uint            `json:"id"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
	User        UserView        `json:"user"`
	Slot        BookingSlotView `json:"slot"`
	CancelledAt *time.Time      `json:"cancelledAt,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func NewUserView(u *models.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewBookingView renders slot times in loc.
func NewBookingView(b *models.Booking, loc *time.Location) BookingView {
	start := b.Slot.StartAt.In(loc)
	return BookingView{
		ID:     b.ID,
		Status: b.Status,
		Notes:  b.Notes,
		User:   NewUserView(&b.User),
		Slot: BookingSlotView{
			ID:         b.Slot.ID,
			StartAt:    start,
			EndAt:      b.Slot.EndAt.In(loc),
			IsBooked:   b.Slot.IsBooked,
			TimeString: start.Format("15:04"),
			DateString: start.Format("2006-01-02"),
		},
		CancelledAt: b.CancelledAt,
		CompletedAt: b.CompletedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func NewBookingViews(list []models.Booking, loc *time.Location) []BookingView {
	out := make([]BookingView, 0, len(list))
	for i := range list {
		out = append(out, NewBookingView(&list[i], loc))
	}
	return out
}
