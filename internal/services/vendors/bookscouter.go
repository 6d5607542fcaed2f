package vendors

import (
	"context"
	"fmt"

	"ShelfScout/internal/domain/models"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/pkg/config"
)

// HTTPOfferFetcher pulls vendor buyback offers (BookScouter aggregates
// BooksRun and friends) plus the Amazon marketplace signals.
type HTTPOfferFetcher struct{ base *HTTPServiceBase }

func NewHTTPOfferFetcher(cfg *config.Config) *HTTPOfferFetcher {
	return &HTTPOfferFetcher{base: NewHTTPServiceBase(cfg.Vendors.BookScouterURL, cfg.Vendors.Timeout)}
}

type offerResp struct {
	Offers []struct {
		Vendor string  `json:"vendor"`
		Price  float64 `json:"price"`
	} `json:"offers"`
	AmazonLowestPrice float64 `json:"amazon_lowest_price"`
	AmazonSalesRank   int     `json:"amazon_sales_rank"`
}

func (f *HTTPOfferFetcher) FetchOffers(ctx context.Context, isbn string, condition string) (models.BuybackView, error) {
	var or offerResp
	q := map[string][]string{"isbn": {isbn}, "condition": {condition}}
	if err := f.base.GetJSON(ctx, "/prices", q, &or); err != nil {
		return models.BuybackView{}, fmt.Errorf("get offers: %w", err)
	}
	view := models.BuybackView{
		AmazonLowestPrice: or.AmazonLowestPrice,
		AmazonSalesRank:   or.AmazonSalesRank,
	}
	for _, o := range or.Offers {
		if o.Price > view.BestOffer {
			view.BestOffer = o.Price
			view.VendorName = o.Vendor
		}
	}
	return view, nil
}

var _ domsvc.OfferFetcher = (*HTTPOfferFetcher)(nil)
