package models

// Channel is a sales/disposal route for a book.
type Channel string

const (
	ChannelEBay    Channel = "ebay"
	ChannelAmazon  Channel = "amazon"
	ChannelBuyback Channel = "buyback"
)

// ChannelPriority ranks channels for tie-breaks. eBay exposure is considered the
// most reliable read of market value; guaranteed buyback is a floor, not the
// ceiling, so it ranks last.
var ChannelPriority = []Channel{ChannelEBay, ChannelAmazon, ChannelBuyback}

// ChannelProfit is the (gross, fees, net) triple for one channel. Available is
// false when the channel had no usable gross price; such channels are excluded
// from best-channel selection rather than treated as zero profit.
type ChannelProfit struct {
	Channel   Channel
	Available bool
	Gross     float64
	Fees      float64
	Net       float64
}

// ProfitBreakdown is the per-channel profit view for one snapshot. Derived,
// never persisted on its own.
type ProfitBreakdown struct {
	Channels map[Channel]ChannelProfit

	// BestChannel is empty only when every channel is unavailable.
	BestChannel Channel
	BestProfit  float64
}

// Channel returns the profit entry for ch, zero-valued if absent.
func (b *ProfitBreakdown) Channel(ch Channel) ChannelProfit {
	if b == nil || b.Channels == nil {
		return ChannelProfit{Channel: ch}
	}
	return b.Channels[ch]
}

// HasProfitData reports whether at least one channel produced a usable price.
func (b *ProfitBreakdown) HasProfitData() bool {
	return b != nil && b.BestChannel != ""
}
