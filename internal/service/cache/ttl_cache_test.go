package cache

import (
	"bytes"
	"testing"
	"time"
)

func TestTTLCacheStoresAndExpires(t *testing.T) {
	c := NewTTLCache()
	if err := c.SetBytes("eval:123", []byte(`{"verdict":"buy"}`), 50*time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, ok, err := c.GetBytes("eval:123")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, []byte(`{"verdict":"buy"}`)) {
		t.Fatalf("unexpected payload %q", got)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok, _ := c.GetBytes("eval:123"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestTTLCacheMiss(t *testing.T) {
	c := NewTTLCache()
	if _, ok, err := c.GetBytes("absent"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestTTLCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewTTLCache()
	if err := c.SetBytes("pinned", []byte("x"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, _ := c.GetBytes("pinned"); !ok {
		t.Fatalf("zero-ttl entry should persist")
	}
}
