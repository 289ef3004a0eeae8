package models

import "time"

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID uint `gorm:"not null;index" json:"userId"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"user"`

	// At most one non-cancelled booking may reference a slot.
	SlotID uint `gorm:"not null;index:idx_bookings_active_slot,unique,where:status <> 'cancelled'" json:"slotId"`
	Slot   Slot `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"slot"`

	Status string `gorm:"size:20;not null;default:'confirmed';index" json:"status"`
	Notes  string `gorm:"size:500" json:"notes"`

	CancelledAt *time.Time `json:"cancelledAt"`
	CompletedAt *time.Time `json:"completedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
