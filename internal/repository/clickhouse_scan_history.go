package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
	pkgch "ShelfScout/pkg/clickhouse"
	applogger "ShelfScout/pkg/logger"
)

// CHScanHistoryStore implements ScanHistoryStore over the scan_events table.
type CHScanHistoryStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHScanHistoryStore(ch *pkgch.Client, table string) *CHScanHistoryStore {
	if table == "" {
		table = "scan_events"
	}
	return &CHScanHistoryStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHScanHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHScanHistoryStore) RejectedBySeries(ctx context.Context, seriesName string, since time.Time) ([]models.PreviousSeriesScan, error) {
	start := time.Now()
	const qtpl = `
        SELECT isbn, title, series_index, ts, location, estimated_price
        FROM %s
        WHERE lowerUTF8(series_name) = lowerUTF8(?)
          AND decision = 'rejected'
          AND ts >= ?
        ORDER BY ts DESC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, seriesName, since)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse scan history query error",
				applogger.String("series", seriesName),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("rejected by series: %w", err)
	}
	defer rows.Close()

	var scans []models.PreviousSeriesScan
	for rows.Next() {
		var p models.PreviousSeriesScan
		if err := rows.Scan(&p.ISBN, &p.Title, &p.SeriesIndex, &p.ScannedAt, &p.LocationName, &p.EstimatedPrice); err != nil {
			return nil, fmt.Errorf("rejected by series scan: %w", err)
		}
		p.Decision = models.DecisionRejected
		scans = append(scans, p)
	}
	if s.l != nil {
		s.l.Debug("clickhouse scan history query",
			applogger.String("series", seriesName),
			applogger.Int("rows", len(scans)),
			applogger.Duration("took", time.Since(start)),
		)
	}
	return scans, rows.Err()
}

func (s *CHScanHistoryStore) CountRejectedBySeries(ctx context.Context, seriesName string) (int, error) {
	const qtpl = `
        SELECT count()
        FROM %s
        WHERE lowerUTF8(series_name) = lowerUTF8(?)
          AND decision = 'rejected'
    `
	q := fmt.Sprintf(qtpl, s.table)
	var n uint64
	if err := s.db.QueryRowContext(ctx, q, seriesName).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rejected by series: %w", err)
	}
	return int(n), nil
}

var _ domrepo.ScanHistoryStore = (*CHScanHistoryStore)(nil)
