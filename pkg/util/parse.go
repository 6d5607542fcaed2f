package util

import "strconv"

// ParseIntDefault reads an int out of an env-style string, falling back to
// def when the value is empty or malformed.
func ParseIntDefault(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
