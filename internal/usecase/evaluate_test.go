package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ShelfScout/internal/domain/models"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/internal/series"
	"ShelfScout/pkg/logger"
)

type fakeComps struct {
	view models.ChannelMarketView
	err  error
}

func (f *fakeComps) FetchComps(ctx context.Context, isbn, condition string) (models.ChannelMarketView, error) {
	return f.view, f.err
}

type fakeOffers struct {
	view models.BuybackView
	err  error
}

func (f *fakeOffers) FetchOffers(ctx context.Context, isbn, condition string) (models.BuybackView, error) {
	return f.view, f.err
}

type fakeEstimator struct {
	est domsvc.SaleEstimate
	err error
}

func (f *fakeEstimator) Estimate(ctx context.Context, isbn, condition string, market models.ChannelMarketView) (domsvc.SaleEstimate, error) {
	return f.est, f.err
}

type fakeMetrics struct {
	decisions []string
	errors    []string
}

func (f *fakeMetrics) RecordScanIngested(backend, location string)     {}
func (f *fakeMetrics) RecordDecision(verdict string)                   { f.decisions = append(f.decisions, verdict) }
func (f *fakeMetrics) RecordError(kind string)                         { f.errors = append(f.errors, kind) }
func (f *fakeMetrics) RecordBestProfit(channel string, profit float64) {}
func (f *fakeMetrics) RecordLatency(op string, seconds float64)        {}

type emptyCatalog struct{}

func (emptyCatalog) CountBySeries(ctx context.Context, name string) (int, error) { return 0, nil }
func (emptyCatalog) AcceptedISBNsBySeries(ctx context.Context, name string) ([]string, error) {
	return nil, nil
}

type emptyHistory struct{}

func (emptyHistory) RejectedBySeries(ctx context.Context, name string, since time.Time) ([]models.PreviousSeriesScan, error) {
	return nil, nil
}
func (emptyHistory) CountRejectedBySeries(ctx context.Context, name string) (int, error) {
	return 0, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func newTestUseCase(t *testing.T, comps *fakeComps, offers *fakeOffers, est *fakeEstimator, m *fakeMetrics) *EvaluateUseCase {
	t.Helper()
	tracker := series.NewTracker(emptyCatalog{}, emptyHistory{})
	return NewEvaluateUseCase(comps, offers, est, tracker, nil, nil, m, models.DefaultThresholds(), testLogger(t))
}

func TestEvaluateStrongBuy(t *testing.T) {
	m := &fakeMetrics{}
	uc := newTestUseCase(t,
		&fakeComps{view: models.ChannelMarketView{SoldCompsMedian: 25.0, SoldCompsCount: 6, ActiveCount: 2}},
		&fakeOffers{},
		&fakeEstimator{est: domsvc.SaleEstimate{ProbabilityScore: 70, ProbabilityLabel: "high", TimeToSellDays: 20}},
		m,
	)

	res, err := uc.Evaluate(context.Background(), EvaluateParams{ISBN: "9780000000001", AcquisitionCost: 5.0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", res.Decision.Verdict, res.Decision.Reason)
	}
	if res.Profit.BestChannel != models.ChannelEBay {
		t.Fatalf("unexpected channel %s", res.Profit.BestChannel)
	}
	if len(m.decisions) != 1 || m.decisions[0] != string(models.VerdictBuy) {
		t.Fatalf("decision not recorded: %v", m.decisions)
	}
	if res.Errors != nil {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
}

func TestEvaluateVendorFailureDegrades(t *testing.T) {
	m := &fakeMetrics{}
	uc := newTestUseCase(t,
		&fakeComps{err: errors.New("ebay down")},
		&fakeOffers{view: models.BuybackView{BestOffer: 6.0, VendorName: "booksrun"}},
		&fakeEstimator{est: domsvc.SaleEstimate{ProbabilityScore: 55}},
		m,
	)

	res, err := uc.Evaluate(context.Background(), EvaluateParams{ISBN: "9780000000002", AcquisitionCost: 1.0})
	if err != nil {
		t.Fatalf("vendor failure must not fail the pass: %v", err)
	}
	if res.Errors["comps"] == "" {
		t.Fatalf("expected comps error recorded, got %v", res.Errors)
	}
	// Buyback offer alone still produces a guaranteed-profit buy.
	if res.Decision.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", res.Decision.Verdict, res.Decision.Reason)
	}
}

func TestEvaluateNoDataNeedsReview(t *testing.T) {
	m := &fakeMetrics{}
	uc := newTestUseCase(t, &fakeComps{}, &fakeOffers{}, &fakeEstimator{}, m)

	res, err := uc.Evaluate(context.Background(), EvaluateParams{ISBN: "9780000000003"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Decision.Verdict != models.VerdictNeedsReview {
		t.Fatalf("expected needs_review, got %s (%s)", res.Decision.Verdict, res.Decision.Reason)
	}
}

func TestEvaluateRequiresISBN(t *testing.T) {
	uc := newTestUseCase(t, &fakeComps{}, &fakeOffers{}, &fakeEstimator{}, &fakeMetrics{})
	if _, err := uc.Evaluate(context.Background(), EvaluateParams{}); err == nil {
		t.Fatalf("expected error for missing isbn")
	}
}

func TestEvaluatePerCallThresholdOverride(t *testing.T) {
	m := &fakeMetrics{}
	uc := newTestUseCase(t,
		&fakeComps{view: models.ChannelMarketView{SoldCompsMedian: 20.0, SoldCompsCount: 5}},
		&fakeOffers{},
		&fakeEstimator{est: domsvc.SaleEstimate{ProbabilityScore: 60}},
		m,
	)

	// Net is 12.05 at cost 5. With the default bar it is a strong buy; pushing
	// the floor to 13 demotes it below even the conditional bar, and at 60%
	// confidence the thin-margin rule passes on it too.
	res, err := uc.Evaluate(context.Background(), EvaluateParams{
		ISBN:             "9780000000004",
		AcquisitionCost:  5.0,
		MinAutobuyProfit: 13.0,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.HasPrefix(res.Decision.Reason, "Strong profit") {
		t.Fatalf("override ignored: %s", res.Decision.Reason)
	}
	if res.Decision.Verdict != models.VerdictPass {
		t.Fatalf("expected pass under the raised floor, got %s (%s)", res.Decision.Verdict, res.Decision.Reason)
	}
}
