package decision

import (
	"fmt"

	"ShelfScout/internal/domain/models"
)

// amazonFastRank is the sales-rank ceiling below which Amazon velocity alone
// satisfies the conditional-profit confidence check.
const amazonFastRank = 100_000

// seriesMaxLoss is how far below zero the near-complete-series sub-rule will go.
const seriesMaxLoss = -2.0

// nearCompleteSeriesCount is the accepted-item count at which a series is
// treated as near-complete.
const nearCompleteSeriesCount = 3

// highConfidenceOverride lets a thin margin through on a very strong score.
const highConfidenceOverride = 80

// Input carries everything one decision pass consumes. All fields are read-only.
type Input struct {
	Breakdown        *models.ProfitBreakdown
	ProbabilityScore int
	ProbabilityLabel string
	TimeToSellDays   int // 0 means unknown
	AmazonSalesRank  int // 0 means unknown
	TotalComps       int // sold + active comparable listings
	Series           models.SeriesCompletionCheck
	Thresholds       models.DecisionThresholds
}

// rule is one (predicate, action) pair. Rules evaluate top-to-bottom with early
// exit, so priority stays explicit and each rule is testable in isolation.
type rule struct {
	name  string
	apply func(in *Input, c *concerns) (models.BuyDecision, bool)
}

// Decide runs the ordered rule list over one evaluation. First match wins. The
// engine never errors for valid inputs; malformed thresholds are normalized
// away at load time, and a nil breakdown flows through as "no profit data".
func Decide(in Input) models.BuyDecision {
	in.Thresholds = in.Thresholds.Normalize()
	c := &concerns{}
	for _, r := range ruleList {
		if d, ok := r.apply(&in, c); ok {
			return d
		}
	}
	return models.Pass("Profit too low")
}

var ruleList = []rule{
	{name: "guaranteed_buyback", apply: ruleGuaranteedBuyback},
	{name: "series_completion", apply: ruleSeriesCompletion},
	{name: "near_complete_series", apply: ruleNearCompleteSeries},
	{name: "insufficient_comps", apply: ruleInsufficientComps},
	{name: "strong_profit", apply: ruleStrongProfit},
	{name: "conditional_profit", apply: ruleConditionalProfit},
	{name: "thin_margin", apply: ruleThinMargin},
	{name: "slow_velocity", apply: ruleSlowVelocity},
	{name: "no_profit_data", apply: ruleNoProfitData},
	{name: "loss", apply: ruleLoss},
}

// Rule 1: a profitable buyback offer carries no market-timing risk, so it wins
// over everything.
func ruleGuaranteedBuyback(in *Input, _ *concerns) (models.BuyDecision, bool) {
	bb := in.Breakdown.Channel(models.ChannelBuyback)
	if bb.Available && bb.Net > 0 {
		return models.Buy(fmt.Sprintf("Guaranteed buyback profit $%.2f via %s", bb.Net, bb.Channel)), true
	}
	return models.BuyDecision{}, false
}

// Rule 2: any series membership relaxes the profit bar to the uncertainty floor.
func ruleSeriesCompletion(in *Input, _ *concerns) (models.BuyDecision, bool) {
	if !in.Series.IsPartOfSeries || !in.Breakdown.HasProfitData() {
		return models.BuyDecision{}, false
	}
	if in.Breakdown.BestProfit >= in.Thresholds.UncertaintyProfitFloor {
		count := in.Series.BooksInSeries + len(in.Series.PreviousScans)
		return models.Buy(fmt.Sprintf("Series: %s (%d books/scans) + $%.2f profit",
			in.Series.SeriesName, count, in.Breakdown.BestProfit)), true
	}
	return models.BuyDecision{}, false
}

// Rule 2b: near-complete series tolerate a small loss. Kept as its own rule
// because its loss tolerance is unique in the tree.
func ruleNearCompleteSeries(in *Input, _ *concerns) (models.BuyDecision, bool) {
	if !in.Series.IsPartOfSeries || !in.Breakdown.HasProfitData() {
		return models.BuyDecision{}, false
	}
	if in.Series.BooksInSeries >= nearCompleteSeriesCount &&
		in.ProbabilityScore >= in.Thresholds.SeriesLossConfidenceFloor &&
		in.Breakdown.BestProfit >= seriesMaxLoss {
		return models.Buy(fmt.Sprintf("Near-complete series: %s (%d accepted) at $%.2f",
			in.Series.SeriesName, in.Series.BooksInSeries, in.Breakdown.BestProfit)), true
	}
	return models.BuyDecision{}, false
}

// Rule 6 runs as a guard before the profit rules: it overrides rules 3-5 but
// not 1-2.
func ruleInsufficientComps(in *Input, c *concerns) (models.BuyDecision, bool) {
	if in.TotalComps < in.Thresholds.MinCompsRequired {
		c.add(fmt.Sprintf("only %d comparable listings found", in.TotalComps))
		if in.Breakdown.HasProfitData() {
			c.add(fmt.Sprintf("estimated profit $%.2f rests on thin evidence", in.Breakdown.BestProfit))
		}
		return models.NeedsReview(
			fmt.Sprintf("Only %d comparable listings found", in.TotalComps), c.list()), true
	}
	return models.BuyDecision{}, false
}

// Rule 3.
func ruleStrongProfit(in *Input, _ *concerns) (models.BuyDecision, bool) {
	if !in.Breakdown.HasProfitData() {
		return models.BuyDecision{}, false
	}
	if in.Breakdown.BestProfit >= 2*in.Thresholds.MinAutobuyProfit {
		return models.Buy(fmt.Sprintf("Strong profit $%.2f via %s",
			in.Breakdown.BestProfit, in.Breakdown.BestChannel)), true
	}
	return models.BuyDecision{}, false
}

// Rule 4: moderate profit needs either model confidence or Amazon velocity.
func ruleConditionalProfit(in *Input, c *concerns) (models.BuyDecision, bool) {
	if !in.Breakdown.HasProfitData() || in.Breakdown.BestProfit < in.Thresholds.MinAutobuyProfit {
		return models.BuyDecision{}, false
	}
	confident := in.ProbabilityScore >= in.Thresholds.MinConfidence
	fastRank := in.AmazonSalesRank > 0 && in.AmazonSalesRank < amazonFastRank
	if confident || fastRank {
		return models.Buy(fmt.Sprintf("Profit $%.2f via %s with %d%% confidence",
			in.Breakdown.BestProfit, in.Breakdown.BestChannel, in.ProbabilityScore)), true
	}
	c.add(fmt.Sprintf("confidence %d%% below %d%%", in.ProbabilityScore, in.Thresholds.MinConfidence))
	if in.AmazonSalesRank >= amazonFastRank {
		c.add(fmt.Sprintf("amazon sales rank %d above %d", in.AmazonSalesRank, amazonFastRank))
	} else if in.AmazonSalesRank == 0 {
		c.add("amazon sales rank unknown")
	}
	return models.NeedsReview("Moderate profit but low confidence", c.list()), true
}

// Rule 5: thin margin between the uncertainty floor and the autobuy bar.
func ruleThinMargin(in *Input, _ *concerns) (models.BuyDecision, bool) {
	if !in.Breakdown.HasProfitData() {
		return models.BuyDecision{}, false
	}
	p := in.Breakdown.BestProfit
	if p < in.Thresholds.UncertaintyProfitFloor || p >= in.Thresholds.MinAutobuyProfit {
		return models.BuyDecision{}, false
	}
	if in.ProbabilityScore >= highConfidenceOverride {
		return models.Buy(fmt.Sprintf("Thin margin $%.2f carried by %d%% confidence",
			p, in.ProbabilityScore)), true
	}
	if in.ProbabilityScore < in.Thresholds.MinConfidence {
		return models.Pass(fmt.Sprintf("Only $%.2f - needs higher confidence", p)), true
	}
	return models.BuyDecision{}, false
}

// Rule 7.
func ruleSlowVelocity(in *Input, c *concerns) (models.BuyDecision, bool) {
	if in.TimeToSellDays <= in.Thresholds.MaxSlowMovingTTSDays {
		return models.BuyDecision{}, false
	}
	if in.Breakdown.HasProfitData() && in.Breakdown.BestProfit >= in.Thresholds.SlowMovingProfitFloor {
		return models.BuyDecision{}, false
	}
	c.add(fmt.Sprintf("estimated %d days to sell", in.TimeToSellDays))
	if in.Breakdown.HasProfitData() {
		c.add(fmt.Sprintf("profit $%.2f below slow-moving floor $%.2f",
			in.Breakdown.BestProfit, in.Thresholds.SlowMovingProfitFloor))
	}
	return models.NeedsReview("Slow velocity + thin margin", c.list()), true
}

// Rule 8: missing data is a normal, decision-relevant case, not a failure.
func ruleNoProfitData(in *Input, c *concerns) (models.BuyDecision, bool) {
	if in.Breakdown.HasProfitData() || !in.Thresholds.RequireProfitData {
		return models.BuyDecision{}, false
	}
	c.add("no usable price on any channel")
	return models.NeedsReview("No profit data available", c.list()), true
}

// Rule 9.
func ruleLoss(in *Input, _ *concerns) (models.BuyDecision, bool) {
	if in.Breakdown.HasProfitData() && in.Breakdown.BestProfit <= 0 {
		return models.Pass("Loss after fees"), true
	}
	return models.BuyDecision{}, false
}

// concerns accumulates failed soft-checks across rule evaluation, ordered and
// deduplicated.
type concerns struct {
	seen  map[string]struct{}
	items []string
}

func (c *concerns) add(s string) {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[s]; ok {
		return
	}
	c.seen[s] = struct{}{}
	c.items = append(c.items, s)
}

func (c *concerns) list() []string { return c.items }
