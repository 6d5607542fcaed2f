package vendors

import (
	"context"
	"fmt"

	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/pkg/config"
)

// HTTPMetadataFetcher resolves series metadata through the Hardcover proxy.
type HTTPMetadataFetcher struct{ base *HTTPServiceBase }

func NewHTTPMetadataFetcher(cfg *config.Config) *HTTPMetadataFetcher {
	return &HTTPMetadataFetcher{base: NewHTTPServiceBase(cfg.Vendors.HardcoverURL, cfg.Vendors.Timeout)}
}

type seriesLookupReq struct {
	Series string `json:"series"`
}

type seriesLookupResp struct {
	TotalBooks int `json:"total_books"`
}

func (f *HTTPMetadataFetcher) FetchSeriesTotal(ctx context.Context, seriesName string) (int, error) {
	var sr seriesLookupResp
	if err := f.base.PostJSON(ctx, "/series/lookup", seriesLookupReq{Series: seriesName}, &sr); err != nil {
		return 0, fmt.Errorf("post series lookup: %w", err)
	}
	return sr.TotalBooks, nil
}

var _ domsvc.MetadataFetcher = (*HTTPMetadataFetcher)(nil)
