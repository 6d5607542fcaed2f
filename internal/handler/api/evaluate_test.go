package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ShelfScout/internal/domain/models"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/internal/series"
	"ShelfScout/internal/usecase"
	applogger "ShelfScout/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubComps struct {
	view models.ChannelMarketView
}

func (s *stubComps) FetchComps(ctx context.Context, isbn, condition string) (models.ChannelMarketView, error) {
	return s.view, nil
}

type stubOffers struct{}

func (s *stubOffers) FetchOffers(ctx context.Context, isbn, condition string) (models.BuybackView, error) {
	return models.BuybackView{}, nil
}

type stubEstimator struct {
	score int
}

func (s *stubEstimator) Estimate(ctx context.Context, isbn, condition string, market models.ChannelMarketView) (domsvc.SaleEstimate, error) {
	return domsvc.SaleEstimate{ProbabilityScore: s.score, ProbabilityLabel: "medium"}, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordScanIngested(backend, location string)     {}
func (stubMetrics) RecordDecision(verdict string)                   {}
func (stubMetrics) RecordError(kind string)                         {}
func (stubMetrics) RecordBestProfit(channel string, profit float64) {}
func (stubMetrics) RecordLatency(op string, seconds float64)        {}

type stubCatalog struct {
	count int
	isbns []string
}

func (s *stubCatalog) CountBySeries(ctx context.Context, name string) (int, error) {
	return s.count, nil
}

func (s *stubCatalog) AcceptedISBNsBySeries(ctx context.Context, name string) ([]string, error) {
	return s.isbns, nil
}

type stubHistory struct{}

func (stubHistory) RejectedBySeries(ctx context.Context, name string, since time.Time) ([]models.PreviousSeriesScan, error) {
	return nil, nil
}

func (stubHistory) CountRejectedBySeries(ctx context.Context, name string) (int, error) {
	return 0, nil
}

func newTestHandler(t *testing.T) *EvaluateHandler {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	tracker := series.NewTracker(&stubCatalog{count: 1, isbns: []string{"9780000000009"}}, stubHistory{})
	eval := usecase.NewEvaluateUseCase(
		&stubComps{view: models.ChannelMarketView{SoldCompsMedian: 20.0, SoldCompsCount: 6, ActiveCount: 2}},
		&stubOffers{},
		&stubEstimator{score: 55},
		tracker, nil, nil, stubMetrics{}, models.DefaultThresholds(), l,
	)
	return NewEvaluateHandler(l, eval, nil, tracker, nil, models.DefaultThresholds())
}

func TestEvaluateEndpointCarriesSeries(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e)

	// Net on eBay: 20 - (20*0.1325 + 0.30) - 10.05 = 7.00. With one accepted
	// book already in the series, the series rule fires ahead of the
	// confidence-gated profit rules.
	body := `{"isbn":"9780000000001","cost":10.05,"series":"Bosch","series_index":2}`
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data usecase.Evaluation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	res := envelope.Data
	if res.Snapshot == nil || res.Snapshot.SeriesName != "Bosch" {
		t.Fatalf("series name did not reach the snapshot: %+v", res.Snapshot)
	}
	if res.Decision.Verdict != models.VerdictBuy || !strings.HasPrefix(res.Decision.Reason, "Series: Bosch") {
		t.Fatalf("expected series buy, got %s (%s)", res.Decision.Verdict, res.Decision.Reason)
	}
	if res.Series.BooksInSeries != 1 {
		t.Fatalf("unexpected series check: %+v", res.Series)
	}
}

func TestEvaluateEndpointWithoutSeries(t *testing.T) {
	h := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/api/evaluate?isbn=9780000000002&cost=10.05", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data usecase.Evaluation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Same economics, no series: the 55% confidence carries the conditional rule.
	res := envelope.Data
	if strings.HasPrefix(res.Decision.Reason, "Series:") {
		t.Fatalf("series rule fired without a series: %s", res.Decision.Reason)
	}
	if res.Decision.Verdict != models.VerdictBuy {
		t.Fatalf("expected conditional buy, got %s (%s)", res.Decision.Verdict, res.Decision.Reason)
	}
}
