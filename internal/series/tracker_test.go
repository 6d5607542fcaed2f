package series

import (
	"context"
	"testing"
	"time"

	"ShelfScout/internal/domain/models"
)

type fakeCatalog struct {
	count int
	isbns []string
}

func (f *fakeCatalog) CountBySeries(ctx context.Context, name string) (int, error) {
	return f.count, nil
}

func (f *fakeCatalog) AcceptedISBNsBySeries(ctx context.Context, name string) ([]string, error) {
	return f.isbns, nil
}

type fakeHistory struct {
	rejected []models.PreviousSeriesScan
	allTime  int
	gotSince time.Time
}

func (f *fakeHistory) RejectedBySeries(ctx context.Context, name string, since time.Time) ([]models.PreviousSeriesScan, error) {
	f.gotSince = since
	out := make([]models.PreviousSeriesScan, 0, len(f.rejected))
	for _, r := range f.rejected {
		if !r.ScannedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeHistory) CountRejectedBySeries(ctx context.Context, name string) (int, error) {
	return f.allTime, nil
}

type fakeMetadata struct {
	total int
}

func (f *fakeMetadata) FetchSeriesTotal(ctx context.Context, name string) (int, error) {
	return f.total, nil
}

func TestCheckSeriesEmptyName(t *testing.T) {
	tr := NewTracker(&fakeCatalog{}, &fakeHistory{})
	check, err := tr.CheckSeries(context.Background(), &models.BookEvaluationSnapshot{SeriesName: "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.IsPartOfSeries {
		t.Fatalf("blank name should not be a series")
	}
}

func TestCheckSeriesMergesStores(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	hist := &fakeHistory{
		rejected: []models.PreviousSeriesScan{
			{ISBN: "1", ScannedAt: now.Add(-2 * 24 * time.Hour)},
			{ISBN: "2", ScannedAt: now.Add(-40 * 24 * time.Hour)}, // outside window
		},
		allTime: 7,
	}
	tr := NewTracker(&fakeCatalog{count: 3, isbns: []string{"10", "11", "12"}}, hist)
	tr.SetClock(func() time.Time { return now })

	check, err := tr.CheckSeries(context.Background(), &models.BookEvaluationSnapshot{SeriesName: "Discworld"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.IsPartOfSeries {
		t.Fatalf("expected series membership")
	}
	if check.BooksInSeries != 3 {
		t.Fatalf("unexpected accepted count %d", check.BooksInSeries)
	}
	if len(check.PreviousScans) != 1 || check.PreviousScans[0].ISBN != "1" {
		t.Fatalf("window should keep only recent rejections, got %v", check.PreviousScans)
	}
	if check.TotalRejections != 7 {
		t.Fatalf("audit count must ignore the window, got %d", check.TotalRejections)
	}
	wantSince := now.Add(-RelevanceWindow)
	if !hist.gotSince.Equal(wantSince) {
		t.Fatalf("unexpected since %v, want %v", hist.gotSince, wantSince)
	}
}

func TestCheckSeriesMetadataEnrichment(t *testing.T) {
	tr := NewTracker(&fakeCatalog{count: 3}, &fakeHistory{})
	tr.SetMetadataFetcher(&fakeMetadata{total: 7})
	check, err := tr.CheckSeries(context.Background(), &models.BookEvaluationSnapshot{SeriesName: "dune"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if check.TotalInSeries != 7 || check.MissingCount != 4 {
		t.Fatalf("unexpected enrichment %d/%d", check.TotalInSeries, check.MissingCount)
	}
}

func TestMergeAcceptedWins(t *testing.T) {
	now := time.Now()
	check := Merge("dune", 2, []string{"1", "2"}, []models.PreviousSeriesScan{
		{ISBN: "2", ScannedAt: now}, // also accepted, must drop
		{ISBN: "3", ScannedAt: now.Add(-time.Hour)},
	})
	if check.BooksInSeries != 2 {
		t.Fatalf("unexpected count %d", check.BooksInSeries)
	}
	if len(check.PreviousScans) != 1 || check.PreviousScans[0].ISBN != "3" {
		t.Fatalf("accepted isbn should not appear in previous scans: %v", check.PreviousScans)
	}
}

func TestMergeDedupsRepeatedRejections(t *testing.T) {
	now := time.Now()
	check := Merge("dune", 0, nil, []models.PreviousSeriesScan{
		{ISBN: "5", ScannedAt: now.Add(-3 * time.Hour), LocationName: "old"},
		{ISBN: "5", ScannedAt: now.Add(-time.Hour), LocationName: "new"},
	})
	if len(check.PreviousScans) != 1 {
		t.Fatalf("expected one entry per isbn, got %v", check.PreviousScans)
	}
	if check.PreviousScans[0].LocationName != "new" {
		t.Fatalf("newest rejection should win, got %v", check.PreviousScans[0])
	}
}

func TestMergeOrdersMostRecentFirst(t *testing.T) {
	now := time.Now()
	check := Merge("dune", 0, nil, []models.PreviousSeriesScan{
		{ISBN: "1", ScannedAt: now.Add(-3 * time.Hour)},
		{ISBN: "2", ScannedAt: now.Add(-time.Hour)},
		{ISBN: "3", ScannedAt: now.Add(-2 * time.Hour)},
	})
	got := []string{check.PreviousScans[0].ISBN, check.PreviousScans[1].ISBN, check.PreviousScans[2].ISBN}
	if got[0] != "2" || got[1] != "3" || got[2] != "1" {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestMergeEmptyIsTerminal(t *testing.T) {
	check := Merge("dune", 0, nil, nil)
	if check.IsPartOfSeries {
		t.Fatalf("no catalog items and no scans should not be a series")
	}
}

func TestNormalizeName(t *testing.T) {
	if got := NormalizeName("  The Expanse "); got != "the expanse" {
		t.Fatalf("unexpected %q", got)
	}
}
