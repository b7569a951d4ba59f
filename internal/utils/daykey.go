package utils

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitlit/internal/constants"
)

// DayKey identifies one calendar day as YYYY-MM-DD. Keys compare
// chronologically with plain string comparison.
type DayKey string

// DayKeyOf returns the calendar day of t in t's own location.
// Convert with t.In(loc) first to key by a specific timezone.
func DayKeyOf(t time.Time) DayKey {
	return DayKey(t.Format(constants.DateFormat))
}

// ParseDayKey validates s and returns it as a DayKey.
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q (expected YYYY-MM-DD): %w", s, err)
	}
	return DayKeyOf(t), nil
}

// MustDayKey is ParseDayKey for literals; it panics on malformed input.
func MustDayKey(s string) DayKey {
	k, err := ParseDayKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

func (k DayKey) String() string {
	return string(k)
}

// utc returns midnight UTC of the key. Working in UTC keeps day arithmetic
// free of DST transitions.
func (k DayKey) utc() time.Time {
	t, err := time.Parse(constants.DateFormat, string(k))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Time returns local midnight of the key in loc.
func (k DayKey) Time(loc *time.Location) time.Time {
	t := k.utc()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// AddDays returns the key n calendar days after k (n may be negative).
func (k DayKey) AddDays(n int) DayKey {
	return DayKeyOf(k.utc().AddDate(0, 0, n))
}

// Before reports whether k is an earlier day than other.
func (k DayKey) Before(other DayKey) bool {
	return k < other
}

// DaysBetween returns the signed number of calendar days from a to b.
// DaysBetween(k, k.AddDays(n)) == n.
func DaysBetween(a, b DayKey) int {
	return int(b.utc().Sub(a.utc()).Hours() / 24)
}
