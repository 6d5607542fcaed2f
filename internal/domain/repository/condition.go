package repository

// Condition represents a book's physical condition grade.
type Condition string

const (
	CondNew        Condition = "new"
	CondLikeNew    Condition = "like_new"
	CondVeryGood   Condition = "very_good"
	CondGood       Condition = "good"
	CondAcceptable Condition = "acceptable"
	CondPoor       Condition = "poor"
)

// IsValidCondition returns true if c is a supported condition grade.
func IsValidCondition(c Condition) bool {
	switch c {
	case CondNew, CondLikeNew, CondVeryGood, CondGood, CondAcceptable, CondPoor:
		return true
	default:
		return false
	}
}

// DefaultCondition returns the default condition grade.
func DefaultCondition() Condition { return CondGood }

// NormalizeCondition converts raw string to a valid condition (or default).
func NormalizeCondition(s string) Condition {
	if s == "" {
		return DefaultCondition()
	}
	c := Condition(s)
	if IsValidCondition(c) {
		return c
	}
	return DefaultCondition()
}
