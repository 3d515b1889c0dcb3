package utils

import "time"

// TruncateToDate drops the time-of-day component in the given location.
func TruncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysToExpiry returns the integer day difference between expiration and the
// reference time. Both are truncated to calendar dates first, so every
// evaluation within the same day yields the same DTE.
func DaysToExpiry(expiration, ref time.Time) int {
	exp := TruncateToDate(expiration.UTC())
	now := TruncateToDate(ref.UTC())
	return int(exp.Sub(now).Hours() / 24)
}
