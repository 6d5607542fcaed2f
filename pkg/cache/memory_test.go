package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	m := NewMemoryCache(10)
	defer m.Close()
	ctx := context.Background()

	type rec struct {
		ISBN string
		N    int
	}
	if err := m.Set(ctx, "k", rec{ISBN: "9780000000001", N: 3}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got rec
	if err := m.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ISBN != "9780000000001" || got.N != 3 {
		t.Fatalf("unexpected value %+v", got)
	}
}

func TestMemoryCacheMiss(t *testing.T) {
	m := NewMemoryCache(10)
	defer m.Close()

	var dest string
	if err := m.Get(context.Background(), "absent", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	m := NewMemoryCache(10)
	defer m.Close()
	ctx := context.Background()

	if err := m.Set(ctx, "k", "v", time.Nanosecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	var dest string
	if err := m.Get(ctx, "k", &dest); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestKey(t *testing.T) {
	got := Key("freshness", "9780000000001", "market")
	if got != "freshness:9780000000001:market" {
		t.Fatalf("unexpected key %q", got)
	}
	if Key("solo") != "solo" {
		t.Fatalf("prefix-only key broken")
	}
}
