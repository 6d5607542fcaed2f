package repository

import (
	"context"
	"time"

	"ShelfScout/internal/domain/models"
)

// CatalogStore provides read access to accepted catalog items.
type CatalogStore interface {
	// CountBySeries counts accepted items whose series name matches exactly
	// after case normalization.
	CountBySeries(ctx context.Context, seriesName string) (int, error)

	// AcceptedISBNsBySeries lists the ISBNs of accepted items in the series,
	// used to keep an ISBN from being counted twice across stores.
	AcceptedISBNsBySeries(ctx context.Context, seriesName string) ([]string, error)
}

// ScanHistoryStore provides read access to the append-only scan history.
type ScanHistoryStore interface {
	// RejectedBySeries returns rejected same-series scans with scanned_at on or
	// after since, most-recent-first.
	RejectedBySeries(ctx context.Context, seriesName string, since time.Time) ([]models.PreviousSeriesScan, error)

	// CountRejectedBySeries counts all-time rejections for audit reporting,
	// unaffected by any relevance window.
	CountRejectedBySeries(ctx context.Context, seriesName string) (int, error)
}

// FreshnessStore reads last-fetched markers for a book's data categories. The
// cache layer writes them when vendor data lands; the core only reads.
type FreshnessStore interface {
	Records(ctx context.Context, isbn string) ([]models.FreshnessRecord, error)
	Touch(ctx context.Context, rec models.FreshnessRecord) error
}
