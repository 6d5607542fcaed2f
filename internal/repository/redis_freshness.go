package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
	pkgcache "ShelfScout/pkg/cache"
)

// freshnessKeyTTL bounds how long a marker survives in Redis; well past the
// longest staleness window so markers never vanish while still fresh.
const freshnessKeyTTL = 180 * 24 * time.Hour

// RedisFreshnessStore keeps per-(isbn, category) last-fetched markers in Redis.
type RedisFreshnessStore struct {
	cache pkgcache.Service
}

func NewRedisFreshnessStore(cache pkgcache.Service) *RedisFreshnessStore {
	return &RedisFreshnessStore{cache: cache}
}

func freshnessKey(isbn string, cat models.DataCategory) string {
	return pkgcache.Key("freshness", isbn, cat)
}

func (s *RedisFreshnessStore) Records(ctx context.Context, isbn string) ([]models.FreshnessRecord, error) {
	cats := []models.DataCategory{models.CategoryMarket, models.CategoryVendorOffers, models.CategoryMetadata}
	var recs []models.FreshnessRecord
	for _, cat := range cats {
		var rec models.FreshnessRecord
		err := s.cache.Get(ctx, freshnessKey(isbn, cat), &rec)
		if err != nil {
			if isCacheMiss(err) {
				continue
			}
			return nil, fmt.Errorf("freshness get %s/%s: %w", isbn, cat, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func (s *RedisFreshnessStore) Touch(ctx context.Context, rec models.FreshnessRecord) error {
	if rec.ISBN == "" || rec.Category == "" {
		return fmt.Errorf("freshness touch: missing isbn or category")
	}
	if err := s.cache.Set(ctx, freshnessKey(rec.ISBN, rec.Category), rec, freshnessKeyTTL); err != nil {
		return fmt.Errorf("freshness set %s/%s: %w", rec.ISBN, rec.Category, err)
	}
	return nil
}

func isCacheMiss(err error) bool {
	return errors.Is(err, pkgcache.ErrCacheMiss)
}

var _ domrepo.FreshnessStore = (*RedisFreshnessStore)(nil)
