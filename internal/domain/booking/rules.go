package booking

import (
	"time"
	"unicode/utf8"
)

const (
	OpenHour       = 9
	CloseHour      = 17
	SlotDuration   = 30 * time.Minute
	SlotsPerDay    = (CloseHour - OpenHour) * int(time.Hour/SlotDuration)
	LookAheadDays  = 7
	MaxNotesLength = 500

	DateLayout = "2006-01-02"
)

// Window is a [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Empty() bool {
	return !w.End.After(w.Start)
}

// Intersect returns the overlap of w and o, possibly empty.
func (w Window) Intersect(o Window) Window {
	out := w
	if o.Start.After(out.Start) {
		out.Start = o.Start
	}
	if o.End.Before(out.End) {
		out.End = o.End
	}
	return out
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// LookAhead is the listing clamp: today 00:00 up to today+7d 00:00.
func LookAhead(now time.Time, loc *time.Location) Window {
	today := startOfDay(now, loc)
	return Window{Start: today, End: today.AddDate(0, 0, LookAheadDays)}
}

// ParseRange parses an inclusive YYYY-MM-DD range into [from 00:00, to+1 00:00).
func ParseRange(from, to string, loc *time.Location) (Window, error) {
	f, err := time.ParseInLocation(DateLayout, from, loc)
	if err != nil {
		return Window{}, ErrInvalidRange
	}
	t, err := time.ParseInLocation(DateLayout, to, loc)
	if err != nil {
		return Window{}, ErrInvalidRange
	}
	if f.After(t) {
		return Window{}, ErrInvalidRange
	}
	return Window{Start: f, End: t.AddDate(0, 0, 1)}, nil
}

// DayGrid returns the 16 half-hour windows between 09:00 and 17:00 of day.
func DayGrid(day time.Time, loc *time.Location) []Window {
	d := day.In(loc)
	out := make([]Window, 0, SlotsPerDay)
	for i := 0; i < SlotsPerDay; i++ {
		start := time.Date(d.Year(), d.Month(), d.Day(), OpenHour, i*30, 0, 0, loc)
		end := start.Add(SlotDuration)
		if end.After(closeOf(start, loc)) {
			break
		}
		out = append(out, Window{Start: start, End: end})
	}
	return out
}

// Grid returns every grid window whose start falls inside w.
func Grid(w Window, loc *time.Location) []Window {
	var out []Window
	for day := startOfDay(w.Start, loc); day.Before(w.End); day = day.AddDate(0, 0, 1) {
		for _, s := range DayGrid(day, loc) {
			if s.Start.Before(w.Start) || !s.Start.Before(w.End) {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

func openOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), OpenHour, 0, 0, 0, loc)
}

func closeOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), CloseHour, 0, 0, 0, loc)
}

// ParseTimestamp accepts RFC 3339 with optional fractional seconds.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, ErrInvalidTimestamp
	}
	return t, nil
}

// ValidateRequest runs the claim checks in order: timestamps, future,
// business hours, duration, grid alignment.
func ValidateRequest(startAt, endAt string, now time.Time, loc *time.Location) (Window, error) {
	start, err := ParseTimestamp(startAt)
	if err != nil {
		return Window{}, err
	}
	end, err := ParseTimestamp(endAt)
	if err != nil {
		return Window{}, err
	}

	if !start.After(now) {
		return Window{}, ErrPastSlot
	}

	if start.Before(openOf(start, loc)) || end.After(closeOf(start, loc)) {
		return Window{}, ErrOutsideBusinessHours
	}

	if end.Sub(start) != SlotDuration {
		return Window{}, ErrInvalidDuration
	}

	local := start.In(loc)
	if local.Minute()%30 != 0 || local.Second() != 0 || local.Nanosecond() != 0 {
		return Window{}, ErrMisalignedSlot
	}

	return Window{Start: start.In(loc), End: end.In(loc)}, nil
}

func ValidateNotes(notes string) error {
	if utf8.RuneCountInString(notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}
