package valuation

import (
	"fmt"

	"ShelfScout/internal/domain/models"
)

// ComputeProfit turns a snapshot's per-channel prices into a ProfitBreakdown.
// acquisitionCost is what the book would cost to buy (0 if unknown). Channels
// with no usable gross price are marked unavailable and excluded from
// best-channel selection. Ties on net profit resolve by ChannelPriority.
func ComputeProfit(snap *models.BookEvaluationSnapshot, acquisitionCost float64) (*models.ProfitBreakdown, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidInput)
	}
	if acquisitionCost < 0 {
		return nil, fmt.Errorf("%w: negative acquisition cost %.2f", ErrInvalidInput, acquisitionCost)
	}

	b := &models.ProfitBreakdown{Channels: make(map[models.Channel]models.ChannelProfit, 3)}

	if err := addChannel(b, models.ChannelEBay, snap.Market.SoldCompsMedian, EBayFees, acquisitionCost); err != nil {
		return nil, err
	}
	if err := addChannel(b, models.ChannelAmazon, snap.Buyback.AmazonLowestPrice, AmazonFees, acquisitionCost); err != nil {
		return nil, err
	}
	if err := addChannel(b, models.ChannelBuyback, snap.Buyback.BestOffer, BuybackFees, acquisitionCost); err != nil {
		return nil, err
	}

	// Priority order makes the tie-break deterministic: strict > keeps the
	// earlier channel on equal nets.
	for _, ch := range models.ChannelPriority {
		cp := b.Channels[ch]
		if !cp.Available {
			continue
		}
		if b.BestChannel == "" || cp.Net > b.BestProfit {
			b.BestChannel = ch
			b.BestProfit = cp.Net
		}
	}
	return b, nil
}

type feeFunc func(gross float64) (float64, error)

func addChannel(b *models.ProfitBreakdown, ch models.Channel, gross float64, fees feeFunc, cost float64) error {
	if gross < 0 {
		return fmt.Errorf("%w: negative gross %.2f on %s", ErrInvalidInput, gross, ch)
	}
	if gross == 0 {
		b.Channels[ch] = models.ChannelProfit{Channel: ch}
		return nil
	}
	f, err := fees(gross)
	if err != nil {
		return err
	}
	b.Channels[ch] = models.ChannelProfit{
		Channel:   ch,
		Available: true,
		Gross:     gross,
		Fees:      f,
		Net:       gross - f - cost,
	}
	return nil
}
