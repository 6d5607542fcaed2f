package freshness

import (
	"testing"
	"time"

	"ShelfScout/internal/domain/models"
)

func TestTTLPerCategory(t *testing.T) {
	cases := []struct {
		category models.DataCategory
		want     time.Duration
	}{
		{models.CategoryMarket, 7 * 24 * time.Hour},
		{models.CategoryVendorOffers, 14 * 24 * time.Hour},
		{models.CategoryMetadata, 90 * 24 * time.Hour},
		{models.DataCategory("bogus"), 7 * 24 * time.Hour},
	}
	for _, c := range cases {
		if got := TTL(c.category); got != c.want {
			t.Fatalf("%s: got %v want %v", c.category, got, c.want)
		}
	}
}

func TestIsStaleBoundary(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	// One second past the TTL is stale.
	if !IsStale(models.CategoryMarket, now.Add(-MarketTTL-time.Second), now) {
		t.Fatalf("expected stale past the ttl")
	}
	// Exactly at the TTL is still fresh.
	if IsStale(models.CategoryMarket, now.Add(-MarketTTL), now) {
		t.Fatalf("exactly at ttl should be fresh")
	}
	if IsStale(models.CategoryMarket, now.Add(-6*24*time.Hour), now) {
		t.Fatalf("six days should be fresh")
	}
}

func TestIsStaleZeroTime(t *testing.T) {
	if !IsStale(models.CategoryMetadata, time.Time{}, time.Now()) {
		t.Fatalf("never-fetched must be stale")
	}
}

func TestNeedsRefreshFilters(t *testing.T) {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []models.FreshnessRecord{
		{ISBN: "1", Category: models.CategoryMarket, FetchedAt: now.Add(-8 * 24 * time.Hour)},
		{ISBN: "1", Category: models.CategoryVendorOffers, FetchedAt: now.Add(-8 * 24 * time.Hour)},
		{ISBN: "1", Category: models.CategoryMetadata},
	}
	stale := NeedsRefresh(records, now)
	if len(stale) != 2 {
		t.Fatalf("expected 2 stale, got %v", stale)
	}
	if stale[0].Category != models.CategoryMarket || stale[1].Category != models.CategoryMetadata {
		t.Fatalf("unexpected order %v", stale)
	}
}
