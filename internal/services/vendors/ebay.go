package vendors

import (
	"context"
	"fmt"

	"ShelfScout/internal/domain/models"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/internal/services/comps"
	"ShelfScout/pkg/config"
)

// HTTPCompsFetcher pulls sold/active comparable listings from the eBay proxy
// and condenses them into a ChannelMarketView.
type HTTPCompsFetcher struct{ base *HTTPServiceBase }

func NewHTTPCompsFetcher(cfg *config.Config) *HTTPCompsFetcher {
	return &HTTPCompsFetcher{base: NewHTTPServiceBase(cfg.Vendors.EBayURL, cfg.Vendors.Timeout)}
}

type compsReq struct {
	ISBN      string `json:"isbn"`
	Condition string `json:"condition"`
}

type compsResp struct {
	SoldPrices  []float64 `json:"sold_prices"`
	ActiveCount int       `json:"active_count"`
}

func (f *HTTPCompsFetcher) FetchComps(ctx context.Context, isbn string, condition string) (models.ChannelMarketView, error) {
	var cr compsResp
	if err := f.base.PostJSONWithRetry(ctx, "/comps/search", compsReq{ISBN: isbn, Condition: condition}, &cr, 3); err != nil {
		return models.ChannelMarketView{}, fmt.Errorf("post comps: %w", err)
	}
	return models.ChannelMarketView{
		SoldCompsMedian: comps.Median(cr.SoldPrices),
		SoldCompsCount:  len(cr.SoldPrices),
		ActiveCount:     cr.ActiveCount,
		SellThroughRate: comps.SellThroughRate(len(cr.SoldPrices), cr.ActiveCount),
	}, nil
}

var _ domsvc.CompsFetcher = (*HTTPCompsFetcher)(nil)
