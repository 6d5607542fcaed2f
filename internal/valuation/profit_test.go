package valuation

import (
	"errors"
	"testing"

	"ShelfScout/internal/domain/models"
)

func TestComputeProfitEBayBest(t *testing.T) {
	snap := &models.BookEvaluationSnapshot{
		ISBN: "9780000000001",
		Market: models.ChannelMarketView{
			SoldCompsMedian: 20.0,
			SoldCompsCount:  5,
		},
	}
	b, err := ComputeProfit(snap, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.BestChannel != models.ChannelEBay {
		t.Fatalf("expected ebay, got %s", b.BestChannel)
	}
	// 20 - (20*0.1325 + 0.30) - 5 = 12.05
	if !almostEqual(b.BestProfit, 12.05) {
		t.Fatalf("unexpected best profit %v", b.BestProfit)
	}
}

func TestComputeProfitUnavailableChannelsExcluded(t *testing.T) {
	snap := &models.BookEvaluationSnapshot{
		Buyback: models.BuybackView{BestOffer: 4.0},
	}
	b, err := ComputeProfit(snap, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Channel(models.ChannelEBay).Available {
		t.Fatalf("ebay should be unavailable with no comps")
	}
	if b.BestChannel != models.ChannelBuyback {
		t.Fatalf("expected buyback, got %s", b.BestChannel)
	}
	if !almostEqual(b.BestProfit, 3.0) {
		t.Fatalf("unexpected best profit %v", b.BestProfit)
	}
}

func TestComputeProfitAllUnavailable(t *testing.T) {
	b, err := ComputeProfit(&models.BookEvaluationSnapshot{}, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.HasProfitData() {
		t.Fatalf("expected no profit data")
	}
	if b.BestChannel != "" || b.BestProfit != 0 {
		t.Fatalf("expected empty best channel, got %s/%v", b.BestChannel, b.BestProfit)
	}
}

func TestComputeProfitTieBreakByPriority(t *testing.T) {
	// Pick grosses so ebay and buyback net exactly the same; the earlier
	// priority channel must win on the tie.
	// ebay: gross g -> net g*0.8675 - 0.30. buyback: net = gross.
	// g = 20 -> ebay net 17.05; buyback offer 17.05 matches it.
	snap := &models.BookEvaluationSnapshot{
		Market:  models.ChannelMarketView{SoldCompsMedian: 20.0},
		Buyback: models.BuybackView{BestOffer: 17.05},
	}
	b, err := ComputeProfit(snap, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.BestChannel != models.ChannelEBay {
		t.Fatalf("tie should go to ebay, got %s", b.BestChannel)
	}
}

func TestComputeProfitNegativeCost(t *testing.T) {
	if _, err := ComputeProfit(&models.BookEvaluationSnapshot{}, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestComputeProfitNilSnapshot(t *testing.T) {
	if _, err := ComputeProfit(nil, 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestComputeProfitNegativeNetStillAvailable(t *testing.T) {
	snap := &models.BookEvaluationSnapshot{
		Market: models.ChannelMarketView{SoldCompsMedian: 2.0},
	}
	b, err := ComputeProfit(snap, 5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !b.HasProfitData() {
		t.Fatalf("a losing channel is still profit data")
	}
	if b.BestProfit >= 0 {
		t.Fatalf("expected a loss, got %v", b.BestProfit)
	}
}
