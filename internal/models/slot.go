package models

import "time"

// Slot is a persisted 30-minute unit. Rows are created on first claim and never deleted.
type Slot struct {
	ID uint `gorm:"primaryKey" json:"id"`

	StartAt time.Time `gorm:"not null;uniqueIndex:idx_slots_window,priority:1" json:"startAt"`
	EndAt   time.Time `gorm:"not null;uniqueIndex:idx_slots_window,priority:2" json:"endAt"`

	IsBooked bool `gorm:"not null;default:false;index" json:"isBooked"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
