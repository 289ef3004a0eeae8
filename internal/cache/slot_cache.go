package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix = "slots:booked:"
	genPrefix = "slots:gen:"

	// genTTL outlives any overlay so a day's generation never resets while
	// a stale write could still land.
	genTTL = 8 * 24 * time.Hour
)

// BookedWindow is one booked slot as unix milliseconds.
type BookedWindow struct {
	Start int64 `json:"s"`
	End   int64 `json:"e"`
}

// SlotCache keeps the booked overlay of a calendar day (YYYY-MM-DD).
//
// Every invalidation bumps the day's generation. Readers take the
// generation before loading from storage and SetDay only writes when it
// is unchanged, so an overlay read before a booking committed is never
// stored after that booking's invalidation.
type SlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlotCache(client *redis.Client, ttl time.Duration) *SlotCache {
	return &SlotCache{client: client, ttl: ttl}
}

func Key(day string) string {
	return keyPrefix + day
}

func GenKey(day string) string {
	return genPrefix + day
}

// GetDay reports ok=false on a cache miss.
func (c *SlotCache) GetDay(ctx context.Context, day string) ([]BookedWindow, bool, error) {
	raw, err := c.client.Get(ctx, Key(day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var out []BookedWindow
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Generation returns the day's invalidation counter, zero when unset.
func (c *SlotCache) Generation(ctx context.Context, day string) (int64, error) {
	gen, err := c.client.Get(ctx, GenKey(day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// SetDay stores booked when the day's generation still equals gen.
// A newer generation means the overlay is stale and the write is skipped.
func (c *SlotCache) SetDay(ctx context.Context, day string, gen int64, booked []BookedWindow) error {
	if booked == nil {
		booked = []BookedWindow{}
	}
	raw, err := json.Marshal(booked)
	if err != nil {
		return err
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, GenKey(day)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, Key(day), raw, c.ttl)
			return nil
		})
		return err
	}, GenKey(day))

	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateDay bumps the generation and drops the overlay.
func (c *SlotCache) InvalidateDay(ctx context.Context, day string) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, GenKey(day))
		p.Expire(ctx, GenKey(day), genTTL)
		p.Del(ctx, Key(day))
		return nil
	})
	return err
}
