package service

import (
	"context"

	"ShelfScout/internal/domain/models"
)

// CompsFetcher pulls the sold/active comparable view for a book from the market
// channel (eBay).
type CompsFetcher interface {
	FetchComps(ctx context.Context, isbn string, condition string) (models.ChannelMarketView, error)
}

// OfferFetcher pulls the best guaranteed buyback offer plus Amazon marketplace
// signals (BookScouter/BooksRun).
type OfferFetcher interface {
	FetchOffers(ctx context.Context, isbn string, condition string) (models.BuybackView, error)
}

// MetadataFetcher pulls series metadata (Hardcover): how many books the series
// has in total.
type MetadataFetcher interface {
	FetchSeriesTotal(ctx context.Context, seriesName string) (int, error)
}

// SaleEstimate is the black-box model's read on one book.
type SaleEstimate struct {
	ProbabilityScore int // 0-100
	ProbabilityLabel string
	TimeToSellDays   int // 0 means unknown
	Justification    []string
}

// SaleEstimator scores a snapshot with the trained price-estimation model,
// consumed as an opaque service.
type SaleEstimator interface {
	Estimate(ctx context.Context, isbn string, condition string, market models.ChannelMarketView) (SaleEstimate, error)
}
