package models

import "time"

// ChannelMarketView is the eBay-style market view for one book: what comparable
// copies sold for and how fast they move.
type ChannelMarketView struct {
	SoldCompsMedian float64 // 0 means no sold comps available
	SoldCompsCount  int
	ActiveCount     int
	SellThroughRate float64
}

// BuybackView holds the best guaranteed vendor offer plus the Amazon marketplace
// signals that ride along with it.
type BuybackView struct {
	BestOffer         float64 // 0 means no offer
	VendorName        string
	AmazonLowestPrice float64 // 0 means no Amazon listing
	AmazonSalesRank   int     // 0 means unknown
}

// BookEvaluationSnapshot is the read-only input to one valuation/decision pass.
// It is assembled by the snapshot provider and never mutated by the core.
type BookEvaluationSnapshot struct {
	ISBN      string
	Condition string

	Market  ChannelMarketView
	Buyback BuybackView

	ProbabilityScore int // 0-100, from the external estimation model
	ProbabilityLabel string
	TimeToSellDays   int // 0 means unknown

	SeriesName  string
	SeriesIndex int // 0 means unknown

	Justification []string

	FetchedAt time.Time
}
