package freshness

import (
	"time"

	"ShelfScout/internal/domain/models"
)

// Per-category TTLs. A cached record older than its TTL is untrustworthy and
// must be refreshed before feeding the profit calculator or decision engine.
const (
	MarketTTL       = 7 * 24 * time.Hour
	VendorOffersTTL = 14 * 24 * time.Hour
	MetadataTTL     = 90 * 24 * time.Hour
)

// TTL returns the staleness budget for a data category. Unknown categories get
// the tightest budget.
func TTL(category models.DataCategory) time.Duration {
	switch category {
	case models.CategoryMarket:
		return MarketTTL
	case models.CategoryVendorOffers:
		return VendorOffersTTL
	case models.CategoryMetadata:
		return MetadataTTL
	default:
		return MarketTTL
	}
}

// IsStale reports whether a record fetched at fetchedAt must be refreshed as of
// now. A zero fetchedAt (never fetched) is always stale.
func IsStale(category models.DataCategory, fetchedAt time.Time, now time.Time) bool {
	if fetchedAt.IsZero() {
		return true
	}
	return now.Sub(fetchedAt) > TTL(category)
}

// NeedsRefresh filters records down to the stale ones, preserving order. The
// refresh itself belongs to the external scheduler; this is only the
// determination.
func NeedsRefresh(records []models.FreshnessRecord, now time.Time) []models.FreshnessRecord {
	stale := make([]models.FreshnessRecord, 0, len(records))
	for _, r := range records {
		if IsStale(r.Category, r.FetchedAt, now) {
			stale = append(stale, r)
		}
	}
	return stale
}
