package models

import (
	"fmt"

	"github.com/creasty/defaults"
)

// Verdict tags a BuyDecision variant.
type Verdict string

const (
	VerdictBuy         Verdict = "buy"
	VerdictPass        Verdict = "pass"
	VerdictNeedsReview Verdict = "needs_review"
)

// BuyDecision is the tagged result of one decision pass. Concerns is populated
// only for the NeedsReview variant and lists every failed soft-check, ordered
// and deduplicated.
type BuyDecision struct {
	Verdict  Verdict
	Reason   string
	Concerns []string
}

// Buy builds the Buy variant.
func Buy(reason string) BuyDecision {
	return BuyDecision{Verdict: VerdictBuy, Reason: reason}
}

// Pass builds the Pass variant.
func Pass(reason string) BuyDecision {
	return BuyDecision{Verdict: VerdictPass, Reason: reason}
}

// NeedsReview builds the NeedsReview variant with its concern list.
func NeedsReview(reason string, concerns []string) BuyDecision {
	return BuyDecision{Verdict: VerdictNeedsReview, Reason: reason, Concerns: concerns}
}

// DecisionThresholds is the configuration value object for the decision engine.
// One instance is active per caller; it is passed by value into every decision,
// never held as a shared global.
type DecisionThresholds struct {
	MinAutobuyProfit       float64 `yaml:"min_autobuy_profit" default:"5.0"`
	SlowMovingProfitFloor  float64 `yaml:"slow_moving_profit_floor" default:"8.0"`
	UncertaintyProfitFloor float64 `yaml:"uncertainty_profit_floor" default:"3.0"`
	MinConfidence          int     `yaml:"min_confidence" default:"50"`
	LowConfidenceFloor     int     `yaml:"low_confidence_floor" default:"30"`
	MinCompsRequired       int     `yaml:"min_comps_required" default:"3"`
	MaxSlowMovingTTSDays   int     `yaml:"max_slow_moving_tts_days" default:"180"`
	RequireProfitData      bool    `yaml:"require_profit_data" default:"true"`

	// SeriesLossConfidenceFloor gates the near-complete-series loss tolerance.
	// Kept configurable; sources disagree on the canonical value.
	SeriesLossConfidenceFloor int `yaml:"series_loss_confidence_floor" default:"60"`
}

// DefaultThresholds returns the stock threshold set.
func DefaultThresholds() DecisionThresholds {
	var t DecisionThresholds
	_ = defaults.Set(&t)
	return t
}

// Validate rejects malformed thresholds. Negative money values and the
// min_autobuy < uncertainty_floor inversion are load-time errors.
func (t DecisionThresholds) Validate() error {
	if t.MinAutobuyProfit < 0 || t.SlowMovingProfitFloor < 0 || t.UncertaintyProfitFloor < 0 {
		return fmt.Errorf("thresholds: negative profit floor")
	}
	if t.MinConfidence < 0 || t.MinConfidence > 100 || t.LowConfidenceFloor < 0 || t.LowConfidenceFloor > 100 {
		return fmt.Errorf("thresholds: confidence out of range 0-100")
	}
	if t.SeriesLossConfidenceFloor < 0 || t.SeriesLossConfidenceFloor > 100 {
		return fmt.Errorf("thresholds: series loss confidence out of range 0-100")
	}
	if t.MinCompsRequired < 0 || t.MaxSlowMovingTTSDays < 0 {
		return fmt.Errorf("thresholds: negative count")
	}
	if t.MinAutobuyProfit < t.UncertaintyProfitFloor {
		return fmt.Errorf("thresholds: min_autobuy_profit %.2f below uncertainty_profit_floor %.2f",
			t.MinAutobuyProfit, t.UncertaintyProfitFloor)
	}
	return nil
}

// Normalize returns t when valid, the defaults otherwise.
func (t DecisionThresholds) Normalize() DecisionThresholds {
	if err := t.Validate(); err != nil {
		return DefaultThresholds()
	}
	return t
}
