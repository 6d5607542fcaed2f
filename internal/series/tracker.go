package series

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
	domsvc "ShelfScout/internal/domain/service"
	applogger "ShelfScout/pkg/logger"
)

// RelevanceWindow bounds how old a rejection may be and still count toward a
// recommendation. Audit reporting ignores it; it is a policy knob, keep it named.
const RelevanceWindow = 30 * 24 * time.Hour

// Tracker merges the accepted catalog and the scan history into a per-scan
// series view. Both stores are independently owned; the merge step is pure.
type Tracker struct {
	catalog  domrepo.CatalogStore
	history  domrepo.ScanHistoryStore
	metadata domsvc.MetadataFetcher // optional
	l        *applogger.Logger

	now func() time.Time
}

func NewTracker(catalog domrepo.CatalogStore, history domrepo.ScanHistoryStore) *Tracker {
	return &Tracker{catalog: catalog, history: history, now: time.Now}
}

// SetMetadataFetcher wires the optional external series-metadata source.
func (t *Tracker) SetMetadataFetcher(m domsvc.MetadataFetcher) { t.metadata = m }

// SetLogger injects a structured logger.
func (t *Tracker) SetLogger(l *applogger.Logger) { t.l = l }

// SetClock overrides the clock, for tests.
func (t *Tracker) SetClock(now func() time.Time) { t.now = now }

// CheckSeries builds the consolidated series snapshot for one scan. An empty
// series name is the terminal case. The catalog and history queries have no
// ordering dependency and run in parallel; the merge waits for both.
func (t *Tracker) CheckSeries(ctx context.Context, snap *models.BookEvaluationSnapshot) (models.SeriesCompletionCheck, error) {
	name := NormalizeName(snap.SeriesName)
	if name == "" {
		return models.SeriesCompletionCheck{}, nil
	}

	since := t.now().Add(-RelevanceWindow)

	var (
		wg       sync.WaitGroup
		accepted []string
		count    int
		rejected []models.PreviousSeriesScan
		allTime  int
		catErr   error
		histErr  error
		auditErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		count, catErr = t.catalog.CountBySeries(ctx, name)
		if catErr == nil {
			accepted, catErr = t.catalog.AcceptedISBNsBySeries(ctx, name)
		}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		rejected, histErr = t.history.RejectedBySeries(ctx, name, since)
		allTime, auditErr = t.history.CountRejectedBySeries(ctx, name)
	}()
	wg.Wait()

	if catErr != nil {
		return models.SeriesCompletionCheck{}, fmt.Errorf("series catalog query: %w", catErr)
	}
	if histErr != nil {
		return models.SeriesCompletionCheck{}, fmt.Errorf("series history query: %w", histErr)
	}
	if auditErr != nil && t.l != nil {
		// Audit count is reporting-only; the recommendation survives without it.
		t.l.Warn("series audit count failed", applogger.Error(auditErr))
	}

	check := Merge(snap.SeriesName, count, accepted, rejected)
	check.TotalRejections = allTime

	if t.metadata != nil {
		if total, err := t.metadata.FetchSeriesTotal(ctx, name); err == nil && total > 0 {
			check.TotalInSeries = total
			if missing := total - check.BooksInSeries; missing > 0 {
				check.MissingCount = missing
			}
		} else if err != nil && t.l != nil {
			t.l.Warn("series metadata fetch failed",
				applogger.String("series", name), applogger.Error(err))
		}
	}
	return check, nil
}

// Merge is the pure dedup/order step. An ISBN present in both the accepted set
// and the rejected history counts once, under accepted, and is dropped from
// PreviousScans. Repeated rejections of one ISBN keep only the newest scan.
func Merge(seriesName string, acceptedCount int, acceptedISBNs []string, rejected []models.PreviousSeriesScan) models.SeriesCompletionCheck {
	acceptedSet := make(map[string]struct{}, len(acceptedISBNs))
	for _, isbn := range acceptedISBNs {
		acceptedSet[isbn] = struct{}{}
	}

	prev := make([]models.PreviousSeriesScan, 0, len(rejected))
	seen := make(map[string]int, len(rejected))
	for _, r := range rejected {
		if _, ok := acceptedSet[r.ISBN]; ok {
			continue
		}
		if i, ok := seen[r.ISBN]; ok {
			if r.ScannedAt.After(prev[i].ScannedAt) {
				prev[i] = r
			}
			continue
		}
		seen[r.ISBN] = len(prev)
		prev = append(prev, r)
	}
	sort.SliceStable(prev, func(i, j int) bool {
		return prev[i].ScannedAt.After(prev[j].ScannedAt)
	})

	return models.SeriesCompletionCheck{
		IsPartOfSeries: acceptedCount > 0 || len(prev) > 0,
		SeriesName:     seriesName,
		BooksInSeries:  acceptedCount,
		PreviousScans:  prev,
	}
}

// NormalizeName case-normalizes a series name for exact matching.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
