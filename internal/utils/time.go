package utils

import (
	"fmt"
	"regexp"
	"time"
)

var timeOfDayPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// IsValidTimeOfDay reports whether s is a wall-clock time in HH:MM form.
func IsValidTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}

// CombineDateTime resolves a pool's date plus its HH:MM departure time into a
// single instant in the date's location.
func CombineDateTime(date time.Time, timeOfDay string) (time.Time, error) {
	if !IsValidTimeOfDay(timeOfDay) {
		return time.Time{}, fmt.Errorf("invalid time of day %q", timeOfDay)
	}

	var hour, minute int
	if _, err := fmt.Sscanf(timeOfDay, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: %w", timeOfDay, err)
	}

	year, month, day := date.Date()
	return time.Date(year, month, day, hour, minute, 0, 0, date.Location()), nil
}

func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 23, 59, 59, 999999999, t.Location())
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func FormatTimeISO(t time.Time) string {
	return t.Format(time.RFC3339)
}

func ParseTimeISO(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// ParseDateOnly accepts the YYYY-MM-DD form clients send for date filters.
func ParseDateOnly(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}
