package timezone

import "time"

// Local is the server-local zone name accepted by Location.
const Local = "Local"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz, falling back to the server-local zone.
func Location(tz string) *time.Location {
	if tz == "" || tz == Local {
		return time.Local
	}
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc
	}
	return time.Local
}

// Clock reads wall time in a fixed location.
type Clock struct {
	loc *time.Location
}

func NewClock(tz string) *Clock {
	return &Clock{loc: Location(tz)}
}

func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// FixedClock always returns the same instant. Used by tests and the seed command.
type FixedClock struct {
	At  time.Time
	Loc *time.Location
}

func (c FixedClock) Now() time.Time {
	return c.At.In(c.Location())
}

func (c FixedClock) Location() *time.Location {
	if c.Loc == nil {
		return time.UTC
	}
	return c.Loc
}
