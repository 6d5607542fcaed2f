package vendors

import (
	"context"
	"fmt"

	"ShelfScout/internal/domain/models"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/pkg/config"
)

// HTTPSaleEstimator scores a book with the trained estimation model service.
// The model is a black box to this service: features in, score out.
type HTTPSaleEstimator struct{ base *HTTPServiceBase }

func NewHTTPSaleEstimator(cfg *config.Config) *HTTPSaleEstimator {
	return &HTTPSaleEstimator{base: NewHTTPServiceBase(cfg.Vendors.EstimatorURL, cfg.Vendors.Timeout)}
}

type estimateReq struct {
	ISBN            string  `json:"isbn"`
	Condition       string  `json:"condition"`
	SoldCompsMedian float64 `json:"sold_comps_median"`
	SoldCompsCount  int     `json:"sold_comps_count"`
	ActiveCount     int     `json:"active_count"`
	SellThroughRate float64 `json:"sell_through_rate"`
}

type estimateResp struct {
	Score          int      `json:"score"`
	Label          string   `json:"label"`
	TimeToSellDays int      `json:"time_to_sell_days"`
	Justification  []string `json:"justification"`
}

func (e *HTTPSaleEstimator) Estimate(ctx context.Context, isbn string, condition string, market models.ChannelMarketView) (domsvc.SaleEstimate, error) {
	req := estimateReq{
		ISBN:            isbn,
		Condition:       condition,
		SoldCompsMedian: market.SoldCompsMedian,
		SoldCompsCount:  market.SoldCompsCount,
		ActiveCount:     market.ActiveCount,
		SellThroughRate: market.SellThroughRate,
	}
	var er estimateResp
	if err := e.base.PostJSONWithRetry(ctx, "/estimate", req, &er, 3); err != nil {
		return domsvc.SaleEstimate{}, fmt.Errorf("post estimate: %w", err)
	}
	return domsvc.SaleEstimate{
		ProbabilityScore: er.Score,
		ProbabilityLabel: er.Label,
		TimeToSellDays:   er.TimeToSellDays,
		Justification:    er.Justification,
	}, nil
}

var _ domsvc.SaleEstimator = (*HTTPSaleEstimator)(nil)
