package freshness

import (
	"context"
	"fmt"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
	applogger "ShelfScout/pkg/logger"
	"ShelfScout/pkg/queue"
)

// RefreshMessageType is the queue message type for vendor refresh jobs.
const RefreshMessageType = "vendor_refresh"

// RefreshJobPayload asks a refresh worker to re-fetch one (isbn, category) pair.
// SeriesName rides along because the metadata vendor is queried by series, not
// by ISBN; it is empty for books outside any series.
type RefreshJobPayload struct {
	ISBN       string              `json:"isbn"`
	SeriesName string              `json:"series_name,omitempty"`
	Category   models.DataCategory `json:"category"`
}

// Scheduler turns staleness determinations into queued refresh jobs. It never
// performs the refresh itself; workers behind the queue own that.
type Scheduler struct {
	store domrepo.FreshnessStore
	q     queue.QueueService
	l     *applogger.Logger
	now   func() time.Time
}

func NewScheduler(store domrepo.FreshnessStore, q queue.QueueService, l *applogger.Logger) *Scheduler {
	return &Scheduler{store: store, q: q, l: l, now: time.Now}
}

// SetClock overrides the clock, for tests.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// Stale reads the book's freshness records and returns the stale subset.
func (s *Scheduler) Stale(ctx context.Context, isbn string) ([]models.FreshnessRecord, error) {
	recs, err := s.store.Records(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("freshness records: %w", err)
	}
	// Categories with no record at all count as never fetched.
	have := make(map[models.DataCategory]bool, len(recs))
	for _, r := range recs {
		have[r.Category] = true
	}
	for _, cat := range []models.DataCategory{models.CategoryMarket, models.CategoryVendorOffers, models.CategoryMetadata} {
		if !have[cat] {
			recs = append(recs, models.FreshnessRecord{ISBN: isbn, Category: cat})
		}
	}
	return NeedsRefresh(recs, s.now()), nil
}

// Sweep enqueues a refresh job for every stale category of the book and returns
// the records it flagged.
func (s *Scheduler) Sweep(ctx context.Context, isbn, seriesName string) ([]models.FreshnessRecord, error) {
	stale, err := s.Stale(ctx, isbn)
	if err != nil {
		return nil, err
	}
	for _, rec := range stale {
		payload := RefreshJobPayload{ISBN: rec.ISBN, SeriesName: seriesName, Category: rec.Category}
		if err := s.q.PublishMessage(ctx, RefreshMessageType, payload); err != nil {
			if s.l != nil {
				s.l.Warn("refresh enqueue failed",
					applogger.String("isbn", rec.ISBN),
					applogger.String("category", string(rec.Category)),
					applogger.Error(err))
			}
			return stale, fmt.Errorf("enqueue refresh: %w", err)
		}
	}
	if len(stale) > 0 && s.l != nil {
		s.l.Debug("refresh jobs enqueued",
			applogger.String("isbn", isbn), applogger.Int("count", len(stale)))
	}
	return stale, nil
}
