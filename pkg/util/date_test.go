package util

import (
	"fmt"
	"testing"
	"time"
)

func TestParseTimeFormats(t *testing.T) {
	want := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC)
	inputs := []string{
		"2024-10-10T10:10:10Z",
		fmt.Sprintf("%d", want.Unix()),
	}
	for _, in := range inputs {
		got, ok := ParseTime(in)
		if !ok {
			t.Fatalf("%q should parse", in)
		}
		if got.Unix() != want.Unix() {
			t.Fatalf("%q parsed to %v, want %v", in, got, want)
		}
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "yesterday", "-5"} {
		if _, ok := ParseTime(in); ok {
			t.Fatalf("%q should not parse", in)
		}
	}
}

func TestParseTimeDefaultFallsBack(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if got := ParseTimeDefault("not-a-time", def); !got.Equal(def) {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestClampRangeSwapsInverted(t *testing.T) {
	to := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	from := to.Add(24 * time.Hour)
	gotFrom, gotTo := ClampRange(from, to, 0)
	if gotFrom.After(gotTo) {
		t.Fatalf("range not swapped: %v > %v", gotFrom, gotTo)
	}
}

func TestClampRangeBoundsSpan(t *testing.T) {
	to := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	from := to.Add(-100 * 24 * time.Hour)
	gotFrom, gotTo := ClampRange(from, to, 24*time.Hour)
	if gotTo.Sub(gotFrom) != 24*time.Hour {
		t.Fatalf("unexpected span %v", gotTo.Sub(gotFrom))
	}
	if !gotTo.Equal(to) {
		t.Fatalf("to should anchor the window, moved to %v", gotTo)
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("8080", 1); got != 8080 {
		t.Fatalf("got %d", got)
	}
	if got := ParseIntDefault("", 9090); got != 9090 {
		t.Fatalf("empty should fall back, got %d", got)
	}
	if got := ParseIntDefault("abc", 7); got != 7 {
		t.Fatalf("garbage should fall back, got %d", got)
	}
}
