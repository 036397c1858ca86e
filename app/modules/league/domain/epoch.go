package leaguedomain

import (
	"fmt"
	"time"
)

// EpochKey is the canonical identifier of one competition week, e.g. "2025-W05".
// Keys for adjacent weeks sort lexicographically in time order, which the
// rollover job relies on when it derives "the most recently closed epoch".
type EpochKey string

func (k EpochKey) String() string {
	return string(k)
}

// Before reports whether k identifies an earlier week than other.
// Valid because the key format is zero-padded and year-prefixed.
func (k EpochKey) Before(other EpochKey) bool {
	return k < other
}

// KeyFor maps an instant to its epoch key: the ISO-8601 week (Monday start)
// the instant falls in, evaluated in the given business timezone. Pure and
// storage-free; rooms created under one key and the rollover trigger must
// use the same function or closed rooms would be orphaned.
func KeyFor(instant time.Time, loc *time.Location) EpochKey {
	year, week := instant.In(loc).ISOWeek()
	return EpochKey(fmt.Sprintf("%04d-W%02d", year, week))
}

// EpochBounds returns the half-open [opensAt, closesAt) interval of the
// epoch in the business timezone: Monday 00:00 to the following Monday 00:00.
func EpochBounds(key EpochKey, loc *time.Location) (time.Time, time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(string(key), "%04d-W%02d", &year, &week); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("malformed epoch key %q: %w", key, err)
	}
	if week < 1 || week > 53 {
		return time.Time{}, time.Time{}, fmt.Errorf("epoch key %q: week out of range", key)
	}

	// January 4th is always inside ISO week 1 of its year.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	weekday := int(jan4.Weekday())
	if weekday == 0 { // Sunday
		weekday = 7
	}
	monday := jan4.AddDate(0, 0, -(weekday - 1))
	opensAt := monday.AddDate(0, 0, (week-1)*7)
	closesAt := opensAt.AddDate(0, 0, 7)
	return opensAt, closesAt, nil
}

// PreviousKey returns the key of the week immediately before the one
// containing instant. Used at rollover time to name the epoch being closed.
func PreviousKey(instant time.Time, loc *time.Location) EpochKey {
	return KeyFor(instant.In(loc).AddDate(0, 0, -7), loc)
}
