package dto

import (
	"fmt"
	"time"
)

type SlotView struct {
	// ID is a synthetic handle for available slots and null once booked.
	ID         *string   `json:"id"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	IsBooked   bool      `json:"isBooked"`
	TimeString string    `json:"timeString"`
	DateString string    `json:"dateString"`
}

func NewSlotView(start, end time.Time, booked bool) SlotView {
	v := SlotView{
		StartAt:    start,
		EndAt:      end,
		IsBooked:   booked,
		TimeString: start.Format("15:04"),
		DateString: start.Format("2006-01-02"),
	}
	if !booked {
		id := fmt.Sprintf("slot_%d", start.UnixMilli())
		v.ID = &id
	}
	return v
}

type SlotListResponse struct {
	Slots     []SlotView `json:"slots"`
	Total     int        `json:"total"`
	Available int        `json:"available"`
	Booked    int        `json:"booked"`
}
