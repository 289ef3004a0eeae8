package booking

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/slot-booking/internal/cache"
	domain "github.com/BruksfildServices01/slot-booking/internal/domain/booking"
	"github.com/BruksfildServices01/slot-booking/internal/dto"
)

type ListSlotsInput struct {
	From string
	To   string
}

type ListSlots struct {
	repo  domain.Repository
	cache SlotCache
	clock domain.Clock
	log   *zap.Logger
}

func NewListSlots(
	repo domain.Repository,
	cache SlotCache,
	clock domain.Clock,
	log *zap.Logger,
) *ListSlots {
	return &ListSlots{
		repo:  repo,
		cache: cache,
		clock: clock,
		log:   log,
	}
}

// Execute builds the 30-minute grid for [From, To] and overlays booked slots.
// Output is clamped to the seven days starting today.
func (uc *ListSlots) Execute(
	ctx context.Context,
	in ListSlotsInput,
) (*dto.SlotListResponse, error) {

	loc := uc.clock.Location()

	requested, err := domain.ParseRange(in.From, in.To, loc)
	if err != nil {
		return nil, err
	}

	out := &dto.SlotListResponse{Slots: []dto.SlotView{}}

	window := requested.Intersect(domain.LookAhead(uc.clock.Now(), loc))
	if window.Empty() {
		return out, nil
	}

	booked, err := uc.bookedIndex(ctx, window, loc)
	if err != nil {
		return nil, fmt.Errorf("list booked slots: %w", err)
	}

	for _, w := range domain.Grid(window, loc) {
		_, isBooked := booked[windowOf(w.Start, w.End)]
		out.Slots = append(out.Slots, dto.NewSlotView(w.Start, w.End, isBooked))
		if isBooked {
			out.Booked++
		} else {
			out.Available++
		}
	}
	out.Total = len(out.Slots)

	return out, nil
}

func windowOf(start, end time.Time) cache.BookedWindow {
	return cache.BookedWindow{Start: start.UnixMilli(), End: end.UnixMilli()}
}

func (uc *ListSlots) bookedIndex(
	ctx context.Context,
	window domain.Window,
	loc *time.Location,
) (map[cache.BookedWindow]struct{}, error) {

	index := map[cache.BookedWindow]struct{}{}

	if uc.cache == nil {
		slots, err := uc.repo.ListBookedSlots(ctx, window.Start, window.End)
		if err != nil {
			return nil, err
		}
		for _, s := range slots {
			index[windowOf(s.StartAt, s.EndAt)] = struct{}{}
		}
		return index, nil
	}

	for day := window.Start; day.Before(window.End); day = day.AddDate(0, 0, 1) {
		key := day.In(loc).Format(domain.DateLayout)

		hit, ok, err := uc.cache.GetDay(ctx, key)
		if err != nil {
			uc.log.Warn("slot cache read failed", zap.String("day", key), zap.Error(err))
		}
		if ok {
			for _, w := range hit {
				index[w] = struct{}{}
			}
			continue
		}

		// Read the generation before storage so a booking committed in
		// between makes the write below a no-op.
		gen, genErr := uc.cache.Generation(ctx, key)
		if genErr != nil {
			uc.log.Warn("slot cache generation read failed", zap.String("day", key), zap.Error(genErr))
		}

		slots, err := uc.repo.ListBookedSlots(ctx, day, day.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		windows := make([]cache.BookedWindow, 0, len(slots))
		for _, s := range slots {
			w := windowOf(s.StartAt, s.EndAt)
			windows = append(windows, w)
			index[w] = struct{}{}
		}
		if genErr != nil {
			continue
		}
		if err := uc.cache.SetDay(ctx, key, gen, windows); err != nil {
			uc.log.Warn("slot cache write failed", zap.String("day", key), zap.Error(err))
		}
	}

	return index, nil
}

// invalidateDay drops the cached overlay for the day containing t.
func invalidateDay(ctx context.Context, c SlotCache, log *zap.Logger, t time.Time, loc *time.Location) {
	if c == nil {
		return
	}
	key := t.In(loc).Format(domain.DateLayout)
	if err := c.InvalidateDay(ctx, key); err != nil {
		log.Warn("slot cache invalidate failed", zap.String("day", key), zap.Error(err))
	}
}
