package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/BruksfildServices01/slot-booking/internal/models"
)

const (
	ActionBookingCreated       = "booking_created"
	ActionBookingConflict      = "booking_conflict"
	ActionBookingStatusChanged = "booking_status_changed"
	ActionUserRegistered       = "user_registered"
)

// Query filters the audit listing. Zero values mean no filter.
type Query struct {
	Action string
	Entity string
	From   *time.Time
	To     *time.Time
	Offset int
	Limit  int
}

type Store interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
	ListAuditLogs(ctx context.Context, q Query) ([]models.AuditLog, int64, error)
}

type Logger struct {
	store Store
}

func New(store Store) *Logger {
	return &Logger{store: store}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	log := models.AuditLog{
		UserID:   ev.UserID,
		Action:   ev.Action,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Metadata: metaJSON,
	}

	return l.store.CreateAuditLog(ctx, &log)
}
