package models

import "time"

// DataCategory names a cached per-book data family with its own staleness rule.
type DataCategory string

const (
	CategoryMarket       DataCategory = "market"
	CategoryVendorOffers DataCategory = "vendor_offers"
	CategoryMetadata     DataCategory = "metadata"
)

// FreshnessRecord tracks when one (isbn, category) pair was last fetched. The
// cache layer owns these records; the core only reads them to decide staleness.
type FreshnessRecord struct {
	ISBN      string       `json:"isbn"`
	Category  DataCategory `json:"category"`
	FetchedAt time.Time    `json:"fetched_at"` // zero value means never fetched
}
