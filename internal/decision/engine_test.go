package decision

import (
	"strings"
	"testing"

	"ShelfScout/internal/domain/models"
)

func bd(ch models.Channel, net float64) *models.ProfitBreakdown {
	return &models.ProfitBreakdown{
		Channels: map[models.Channel]models.ChannelProfit{
			ch: {Channel: ch, Available: true, Net: net},
		},
		BestChannel: ch,
		BestProfit:  net,
	}
}

func baseInput() Input {
	return Input{
		Breakdown:  &models.ProfitBreakdown{Channels: map[models.Channel]models.ChannelProfit{}},
		TotalComps: 10,
		Thresholds: models.DefaultThresholds(),
	}
}

func TestGuaranteedBuybackWins(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelBuyback, 2.0)
	in.TotalComps = 0 // even insufficient comps cannot override a buyback
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", d.Verdict, d.Reason)
	}
	if !strings.Contains(d.Reason, "Guaranteed buyback") {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestSeriesCompletionRelaxesProfitBar(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 3.5) // below autobuy bar, above uncertainty floor
	in.Series = models.SeriesCompletionCheck{IsPartOfSeries: true, SeriesName: "discworld", BooksInSeries: 1}
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", d.Verdict, d.Reason)
	}
	if !strings.Contains(d.Reason, "Series") {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestSeriesOverridesInsufficientComps(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 4.0)
	in.TotalComps = 1
	in.Series = models.SeriesCompletionCheck{IsPartOfSeries: true, SeriesName: "dune", BooksInSeries: 2}
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("series rule should fire before comps guard, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestNearCompleteSeriesToleratesSmallLoss(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, -1.0)
	in.ProbabilityScore = 70
	in.Series = models.SeriesCompletionCheck{IsPartOfSeries: true, SeriesName: "narnia", BooksInSeries: 4}
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestNearCompleteSeriesLossFloor(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, -3.0) // beyond the tolerated loss
	in.ProbabilityScore = 70
	in.Series = models.SeriesCompletionCheck{IsPartOfSeries: true, SeriesName: "narnia", BooksInSeries: 4}
	d := Decide(in)
	if d.Verdict != models.VerdictPass {
		t.Fatalf("expected pass, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestNearCompleteSeriesNeedsConfidence(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, -1.0)
	in.ProbabilityScore = 40 // below the series loss confidence floor
	in.Series = models.SeriesCompletionCheck{IsPartOfSeries: true, SeriesName: "narnia", BooksInSeries: 4}
	d := Decide(in)
	if d.Verdict == models.VerdictBuy {
		t.Fatalf("low confidence loss should not buy, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestInsufficientCompsGuard(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 50.0) // would be a strong buy otherwise
	in.TotalComps = 2
	d := Decide(in)
	if d.Verdict != models.VerdictNeedsReview {
		t.Fatalf("expected needs_review, got %s (%s)", d.Verdict, d.Reason)
	}
	if len(d.Concerns) != 2 {
		t.Fatalf("expected 2 concerns, got %v", d.Concerns)
	}
}

func TestStrongProfit(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 10.0) // 2x the autobuy bar
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", d.Verdict, d.Reason)
	}
	if !strings.Contains(d.Reason, "Strong profit") {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestConditionalProfitWithConfidence(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 6.0)
	in.ProbabilityScore = 60
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestConditionalProfitWithFastAmazonRank(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelAmazon, 6.0)
	in.ProbabilityScore = 20
	in.AmazonSalesRank = 50_000
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("fast rank should substitute for confidence, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestConditionalProfitLowConfidence(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 6.0)
	in.ProbabilityScore = 20
	in.AmazonSalesRank = 500_000
	d := Decide(in)
	if d.Verdict != models.VerdictNeedsReview {
		t.Fatalf("expected needs_review, got %s (%s)", d.Verdict, d.Reason)
	}
	if len(d.Concerns) != 2 {
		t.Fatalf("expected confidence + rank concerns, got %v", d.Concerns)
	}
}

func TestThinMarginHighConfidenceOverride(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 4.0)
	in.ProbabilityScore = 85
	d := Decide(in)
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestThinMarginLowConfidencePasses(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 4.0)
	in.ProbabilityScore = 40
	d := Decide(in)
	if d.Verdict != models.VerdictPass {
		t.Fatalf("expected pass, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestThinMarginMiddleBandDefaultsToPass(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 4.0)
	in.ProbabilityScore = 60 // confident but not enough to carry a thin margin
	d := Decide(in)
	if d.Verdict != models.VerdictPass {
		t.Fatalf("expected pass, got %s (%s)", d.Verdict, d.Reason)
	}
	if d.Reason != "Profit too low" {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestSlowVelocity(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 1.0)
	in.TimeToSellDays = 200
	d := Decide(in)
	if d.Verdict != models.VerdictNeedsReview {
		t.Fatalf("expected needs_review, got %s (%s)", d.Verdict, d.Reason)
	}
	if !strings.Contains(d.Reason, "Slow velocity") {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestNoProfitData(t *testing.T) {
	in := baseInput()
	d := Decide(in)
	if d.Verdict != models.VerdictNeedsReview {
		t.Fatalf("expected needs_review, got %s (%s)", d.Verdict, d.Reason)
	}
	if d.Reason != "No profit data available" {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestNoProfitDataOptional(t *testing.T) {
	in := baseInput()
	in.Thresholds.RequireProfitData = false
	d := Decide(in)
	if d.Verdict != models.VerdictPass {
		t.Fatalf("expected pass, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestNilBreakdownTreatedAsNoData(t *testing.T) {
	in := baseInput()
	in.Breakdown = nil
	d := Decide(in)
	if d.Verdict != models.VerdictNeedsReview {
		t.Fatalf("expected needs_review, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestLossPasses(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, -2.5)
	d := Decide(in)
	if d.Verdict != models.VerdictPass {
		t.Fatalf("expected pass, got %s (%s)", d.Verdict, d.Reason)
	}
	if d.Reason != "Loss after fees" {
		t.Fatalf("unexpected reason %q", d.Reason)
	}
}

func TestInvalidThresholdsFallBackToDefaults(t *testing.T) {
	in := baseInput()
	in.Breakdown = bd(models.ChannelEBay, 10.0)
	in.Thresholds = models.DecisionThresholds{MinAutobuyProfit: 1.0, UncertaintyProfitFloor: 2.0} // inverted
	d := Decide(in)
	// Defaults restore the 5.0 bar: 10.0 is a strong buy under them.
	if d.Verdict != models.VerdictBuy {
		t.Fatalf("expected buy under defaults, got %s (%s)", d.Verdict, d.Reason)
	}
}

func TestConcernsDeduplicated(t *testing.T) {
	c := &concerns{}
	c.add("a")
	c.add("b")
	c.add("a")
	got := c.list()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected concerns %v", got)
	}
}
