package util

import (
	"strconv"
	"time"
)

// ParseTime accepts RFC3339 (with or without fractional seconds) or unix
// seconds. Scan history queries arrive in both shapes.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil && secs > 0 {
		return time.Unix(secs, 0), true
	}
	return time.Time{}, false
}

// ParseTimeDefault falls back to def on empty or unparseable input.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// ClampRange swaps an inverted range and bounds it to max by moving from
// forward. A zero max leaves the span untouched.
func ClampRange(from, to time.Time, max time.Duration) (time.Time, time.Time) {
	if from.After(to) {
		from, to = to, from
	}
	if max > 0 && to.Sub(from) > max {
		from = to.Add(-max)
	}
	return from, to
}
