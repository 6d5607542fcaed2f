package usecase

import (
	"context"
	"fmt"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/internal/freshness"
	"ShelfScout/pkg/logger"
	"ShelfScout/pkg/queue"
)

// RefreshWorker handles queued vendor refresh jobs: it re-pulls the stale data
// category for a book and advances its freshness marker.
type RefreshWorker struct {
	comps   domsvc.CompsFetcher
	offers  domsvc.OfferFetcher
	meta    domsvc.MetadataFetcher
	fresh   domrepo.FreshnessStore
	metrics domrepo.Metrics
	l       *logger.Logger
	now     func() time.Time
}

func NewRefreshWorker(
	compsF domsvc.CompsFetcher,
	offers domsvc.OfferFetcher,
	meta domsvc.MetadataFetcher,
	fresh domrepo.FreshnessStore,
	metrics domrepo.Metrics,
	l *logger.Logger,
) *RefreshWorker {
	return &RefreshWorker{
		comps:   compsF,
		offers:  offers,
		meta:    meta,
		fresh:   fresh,
		metrics: metrics,
		l:       l,
		now:     time.Now,
	}
}

func (w *RefreshWorker) Name() string { return "vendor_refresh_worker" }

func (w *RefreshWorker) Type() string { return freshness.RefreshMessageType }

func (w *RefreshWorker) Handle(ctx context.Context, payload interface{}) error {
	job, err := queue.ParsePayload[freshness.RefreshJobPayload](payload)
	if err != nil {
		return fmt.Errorf("parse refresh payload: %w", err)
	}
	if job.ISBN == "" {
		return fmt.Errorf("refresh job without isbn")
	}

	start := w.now()
	switch job.Category {
	case models.CategoryMarket:
		if _, err := w.comps.FetchComps(ctx, job.ISBN, string(domrepo.DefaultCondition())); err != nil {
			w.metrics.RecordError("refresh_market")
			return fmt.Errorf("refresh market for %s: %w", job.ISBN, err)
		}
	case models.CategoryVendorOffers:
		if _, err := w.offers.FetchOffers(ctx, job.ISBN, string(domrepo.DefaultCondition())); err != nil {
			w.metrics.RecordError("refresh_offers")
			return fmt.Errorf("refresh offers for %s: %w", job.ISBN, err)
		}
	case models.CategoryMetadata:
		// Metadata is keyed by series name. A book outside any series has no
		// metadata to refresh; the marker still advances below.
		if w.meta != nil && job.SeriesName != "" {
			if _, err := w.meta.FetchSeriesTotal(ctx, job.SeriesName); err != nil {
				w.metrics.RecordError("refresh_metadata")
				return fmt.Errorf("refresh metadata for %s: %w", job.SeriesName, err)
			}
		}
	default:
		return fmt.Errorf("unknown refresh category %q", job.Category)
	}

	rec := models.FreshnessRecord{
		ISBN:      job.ISBN,
		Category:  job.Category,
		FetchedAt: w.now(),
	}
	if err := w.fresh.Touch(ctx, rec); err != nil {
		return fmt.Errorf("touch freshness for %s/%s: %w", job.ISBN, job.Category, err)
	}

	w.metrics.RecordLatency("vendor_refresh", w.now().Sub(start).Seconds())
	w.l.Debug("vendor data refreshed",
		logger.String("isbn", job.ISBN),
		logger.String("category", string(job.Category)))
	return nil
}

var _ queue.Job = (*RefreshWorker)(nil)
