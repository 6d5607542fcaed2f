package usecase

import (
	"context"
	"testing"

	"ShelfScout/internal/domain/models"
	"ShelfScout/internal/freshness"
)

type recordingMeta struct {
	queried []string
	total   int
}

func (m *recordingMeta) FetchSeriesTotal(ctx context.Context, seriesName string) (int, error) {
	m.queried = append(m.queried, seriesName)
	return m.total, nil
}

type recordingFreshness struct {
	touched []models.FreshnessRecord
}

func (s *recordingFreshness) Records(ctx context.Context, isbn string) ([]models.FreshnessRecord, error) {
	return nil, nil
}

func (s *recordingFreshness) Touch(ctx context.Context, rec models.FreshnessRecord) error {
	s.touched = append(s.touched, rec)
	return nil
}

func TestRefreshWorkerMetadataQueriesBySeries(t *testing.T) {
	meta := &recordingMeta{total: 7}
	fresh := &recordingFreshness{}
	w := NewRefreshWorker(&fakeComps{}, &fakeOffers{}, meta, fresh, &fakeMetrics{}, testLogger(t))

	job := freshness.RefreshJobPayload{
		ISBN:       "9780000000001",
		SeriesName: "Bosch",
		Category:   models.CategoryMetadata,
	}
	if err := w.Handle(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.queried) != 1 || meta.queried[0] != "Bosch" {
		t.Fatalf("metadata vendor queried with %v, want series name", meta.queried)
	}
	if len(fresh.touched) != 1 || fresh.touched[0].Category != models.CategoryMetadata {
		t.Fatalf("freshness marker not advanced: %+v", fresh.touched)
	}
}

func TestRefreshWorkerMetadataWithoutSeries(t *testing.T) {
	meta := &recordingMeta{}
	fresh := &recordingFreshness{}
	w := NewRefreshWorker(&fakeComps{}, &fakeOffers{}, meta, fresh, &fakeMetrics{}, testLogger(t))

	// No series: nothing to query, but the marker still advances so the book
	// does not come up stale on every sweep.
	job := freshness.RefreshJobPayload{ISBN: "9780000000002", Category: models.CategoryMetadata}
	if err := w.Handle(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meta.queried) != 0 {
		t.Fatalf("unexpected metadata query %v", meta.queried)
	}
	if len(fresh.touched) != 1 {
		t.Fatalf("freshness marker not advanced")
	}
}

func TestRefreshWorkerMarket(t *testing.T) {
	fresh := &recordingFreshness{}
	w := NewRefreshWorker(&fakeComps{}, &fakeOffers{}, &recordingMeta{}, fresh, &fakeMetrics{}, testLogger(t))

	job := freshness.RefreshJobPayload{ISBN: "9780000000003", Category: models.CategoryMarket}
	if err := w.Handle(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fresh.touched) != 1 || fresh.touched[0].Category != models.CategoryMarket {
		t.Fatalf("freshness marker not advanced: %+v", fresh.touched)
	}
}
