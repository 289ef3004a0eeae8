package booking

import (
	"context"

	"github.com/BruksfildServices01/slot-booking/internal/cache"
)

// SlotCache holds the booked overlay of a calendar day. Optional.
// SetDay must drop the write when the day was invalidated after gen was read.
type SlotCache interface {
	GetDay(ctx context.Context, day string) ([]cache.BookedWindow, bool, error)
	Generation(ctx context.Context, day string) (int64, error)
	SetDay(ctx context.Context, day string, gen int64, booked []cache.BookedWindow) error
	InvalidateDay(ctx context.Context, day string) error
}

// Recorder receives claim and transition outcomes. Optional.
type Recorder interface {
	ObserveClaim(outcome string)
	ObserveTransition(from, to string)
}

const (
	OutcomeSuccess  = "success"
	OutcomeConflict = "conflict"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

type nopRecorder struct{}

func (nopRecorder) ObserveClaim(string)              {}
func (nopRecorder) ObserveTransition(string, string) {}

func recorderOrNop(r Recorder) Recorder {
	if r == nil {
		return nopRecorder{}
	}
	return r
}
