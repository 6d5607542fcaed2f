package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ShelfScout/internal/decision"
	"ShelfScout/internal/domain/models"
	drepo "ShelfScout/internal/domain/repository"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/internal/freshness"
	"ShelfScout/internal/series"
	"ShelfScout/internal/services/comps"
	"ShelfScout/internal/valuation"
	"ShelfScout/pkg/logger"
)

// EvaluateUseCase runs one full valuation pass: pull vendor data, build the
// snapshot, compute per-channel profit, check series completion and decide.
type EvaluateUseCase struct {
	comps     domsvc.CompsFetcher
	offers    domsvc.OfferFetcher
	estimator domsvc.SaleEstimator
	tracker   *series.Tracker
	scheduler *freshness.Scheduler
	fresh     drepo.FreshnessStore
	metrics   drepo.Metrics
	l         *logger.Logger

	thresholds models.DecisionThresholds
	timeout    time.Duration
	now        func() time.Time
}

func NewEvaluateUseCase(
	compsF domsvc.CompsFetcher,
	offers domsvc.OfferFetcher,
	estimator domsvc.SaleEstimator,
	tracker *series.Tracker,
	scheduler *freshness.Scheduler,
	fresh drepo.FreshnessStore,
	metrics drepo.Metrics,
	thresholds models.DecisionThresholds,
	l *logger.Logger,
) *EvaluateUseCase {
	return &EvaluateUseCase{
		comps:      compsF,
		offers:     offers,
		estimator:  estimator,
		tracker:    tracker,
		scheduler:  scheduler,
		fresh:      fresh,
		metrics:    metrics,
		thresholds: thresholds.Normalize(),
		timeout:    10 * time.Second,
		l:          l,
		now:        time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (uc *EvaluateUseCase) SetClock(now func() time.Time) { uc.now = now }

// EvaluateParams carries one evaluation request into the use case.
type EvaluateParams struct {
	ISBN            string
	Condition       string
	AcquisitionCost float64
	SeriesName      string
	SeriesIndex     int

	// MinAutobuyProfit > 0 overrides the configured floor for this call only.
	MinAutobuyProfit float64
}

// Evaluation is the full result of one pass.
type Evaluation struct {
	Snapshot  *models.BookEvaluationSnapshot `json:"snapshot"`
	Profit    *models.ProfitBreakdown        `json:"profit"`
	Series    models.SeriesCompletionCheck   `json:"series"`
	Decision  models.BuyDecision             `json:"decision"`
	Stale     []models.FreshnessRecord       `json:"stale,omitempty"`
	Errors    map[string]string              `json:"errors,omitempty"`
	Timestamp time.Time                      `json:"timestamp"`
}

func (uc *EvaluateUseCase) Evaluate(ctx context.Context, p EvaluateParams) (*Evaluation, error) {
	if p.ISBN == "" {
		return nil, fmt.Errorf("isbn required")
	}
	p.Condition = string(drepo.NormalizeCondition(p.Condition))

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	start := uc.now()
	res := &Evaluation{
		Timestamp: start,
		Errors:    map[string]string{},
	}

	snap, fetchErrs := uc.buildSnapshot(ctx, p)
	for k, v := range fetchErrs {
		res.Errors[k] = v
	}
	res.Snapshot = snap

	breakdown, err := valuation.ComputeProfit(snap, p.AcquisitionCost)
	if err != nil {
		return nil, fmt.Errorf("compute profit for %s: %w", p.ISBN, err)
	}
	res.Profit = breakdown
	if breakdown.BestChannel != "" {
		uc.metrics.RecordBestProfit(string(breakdown.BestChannel), breakdown.BestProfit)
	}

	check, err := uc.tracker.CheckSeries(ctx, snap)
	if err != nil {
		res.Errors["series"] = err.Error()
	}
	res.Series = check

	th := uc.thresholds
	if p.MinAutobuyProfit > 0 {
		th.MinAutobuyProfit = p.MinAutobuyProfit
		th = th.Normalize()
	}
	res.Decision = decision.Decide(decision.Input{
		Breakdown:        breakdown,
		ProbabilityScore: snap.ProbabilityScore,
		ProbabilityLabel: snap.ProbabilityLabel,
		TimeToSellDays:   snap.TimeToSellDays,
		AmazonSalesRank:  snap.Buyback.AmazonSalesRank,
		TotalComps:       comps.TotalComps(snap.Market.SoldCompsCount, snap.Market.ActiveCount),
		Series:           check,
		Thresholds:       th,
	})
	uc.metrics.RecordDecision(string(res.Decision.Verdict))

	if uc.scheduler != nil {
		stale, err := uc.scheduler.Sweep(ctx, p.ISBN, p.SeriesName)
		if err != nil {
			res.Errors["freshness"] = err.Error()
		}
		res.Stale = stale
	}

	uc.metrics.RecordLatency("evaluate", uc.now().Sub(start).Seconds())
	uc.l.Info("book evaluated",
		logger.String("isbn", p.ISBN),
		logger.String("verdict", string(res.Decision.Verdict)),
		logger.Float64("best_profit", breakdown.BestProfit))

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

// buildSnapshot pulls the market and vendor views in parallel, then scores the
// result. Vendor failures degrade the snapshot instead of failing the pass.
func (uc *EvaluateUseCase) buildSnapshot(ctx context.Context, p EvaluateParams) (*models.BookEvaluationSnapshot, map[string]string) {
	snap := &models.BookEvaluationSnapshot{
		ISBN:        p.ISBN,
		Condition:   p.Condition,
		SeriesName:  p.SeriesName,
		SeriesIndex: p.SeriesIndex,
		FetchedAt:   uc.now(),
	}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.comps.FetchComps(ctx, p.ISBN, p.Condition)
		ch <- item{"comps", v, err}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err := uc.offers.FetchOffers(ctx, p.ISBN, p.Condition)
		ch <- item{"offers", v, err}
	}()

	go func() { wg.Wait(); close(ch) }()

	errs := map[string]string{}
	for it := range ch {
		if it.err != nil {
			errs[it.name] = it.err.Error()
			uc.metrics.RecordError("vendor_" + it.name)
			continue
		}
		switch it.name {
		case "comps":
			snap.Market = it.val.(models.ChannelMarketView)
		case "offers":
			snap.Buyback = it.val.(models.BuybackView)
		}
	}

	// The estimator needs the market view, so it runs after the fan-out.
	est, err := uc.estimator.Estimate(ctx, p.ISBN, p.Condition, snap.Market)
	if err != nil {
		errs["estimator"] = err.Error()
		uc.metrics.RecordError("vendor_estimator")
	} else {
		snap.ProbabilityScore = est.ProbabilityScore
		snap.ProbabilityLabel = est.ProbabilityLabel
		snap.TimeToSellDays = est.TimeToSellDays
		snap.Justification = est.Justification
	}

	if uc.fresh != nil {
		for _, cat := range []models.DataCategory{models.CategoryMarket, models.CategoryVendorOffers} {
			rec := models.FreshnessRecord{ISBN: p.ISBN, Category: cat, FetchedAt: snap.FetchedAt}
			if err := uc.fresh.Touch(ctx, rec); err != nil {
				uc.l.Warn("freshness touch failed",
					logger.String("isbn", p.ISBN),
					logger.String("category", string(cat)),
					logger.Error(err))
			}
		}
	}

	return snap, errs
}
