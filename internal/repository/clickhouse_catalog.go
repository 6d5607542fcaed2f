package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domrepo "ShelfScout/internal/domain/repository"
	pkgch "ShelfScout/pkg/clickhouse"
	applogger "ShelfScout/pkg/logger"
)

// CHCatalogStore implements CatalogStore over the accepted_catalog table.
type CHCatalogStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCatalogStore(ch *pkgch.Client) *CHCatalogStore {
	return &CHCatalogStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHCatalogStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHCatalogStore) CountBySeries(ctx context.Context, seriesName string) (int, error) {
	start := time.Now()
	const q = `
        SELECT count()
        FROM accepted_catalog
        WHERE lowerUTF8(series_name) = lowerUTF8(?)
    `
	var n uint64
	if err := s.db.QueryRowContext(ctx, q, seriesName).Scan(&n); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse catalog count error",
				applogger.String("series", seriesName),
				applogger.Error(err),
			)
		}
		return 0, fmt.Errorf("count catalog by series: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse catalog count",
			applogger.String("series", seriesName),
			applogger.Int("count", int(n)),
			applogger.Duration("took", time.Since(start)),
		)
	}
	return int(n), nil
}

func (s *CHCatalogStore) AcceptedISBNsBySeries(ctx context.Context, seriesName string) ([]string, error) {
	const q = `
        SELECT DISTINCT isbn
        FROM accepted_catalog
        WHERE lowerUTF8(series_name) = lowerUTF8(?)
    `
	rows, err := s.db.QueryContext(ctx, q, seriesName)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse catalog isbns error",
				applogger.String("series", seriesName),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("catalog isbns by series: %w", err)
	}
	defer rows.Close()

	var isbns []string
	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, fmt.Errorf("catalog isbns scan: %w", err)
		}
		isbns = append(isbns, isbn)
	}
	return isbns, rows.Err()
}

var _ domrepo.CatalogStore = (*CHCatalogStore)(nil)
