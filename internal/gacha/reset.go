package gacha

import (
	"fmt"
	"time"
)

// ShouldReset reports whether a session last reset at `last` is due for
// a reset at `now`. Boundaries sit at the top of every wall-clock hour:
// the session resets when the hour-of-day or the calendar day changed,
// not when a full hour elapsed.
func ShouldReset(last, now time.Time) bool {
	if last.IsZero() {
		return true
	}
	return now.Hour() != last.Hour() || now.Day() != last.Day()
}

// NextReset returns the next top-of-hour boundary after now.
func NextReset(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}

// Countdown formats the time remaining until the next boundary as
// "m:ss" with zero-padded seconds.
func Countdown(now time.Time) string {
	remaining := NextReset(now).Sub(now)
	minutes := int(remaining.Minutes())
	seconds := int(remaining.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}
