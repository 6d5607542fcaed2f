package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ShelfScout/internal/domain/models"
	"ShelfScout/internal/domain/repository"
	pkgkafka "ShelfScout/pkg/kafka"
)

// ClickHouseScanStorage implements Storage over the scan_events table.
type ClickHouseScanStorage struct {
	db    *sql.DB
	table string
}

func NewClickHouseScanStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseScanStorage{db: db, table: table}
}

func (s *ClickHouseScanStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseScanStorage) Store(ctx context.Context, e *models.ScanEvent) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, event_id, isbn, title, condition, series_name, series_index, location, decision, estimated_price) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		time.Unix(e.Timestamp, 0),
		e.EventID,
		e.ISBN,
		e.Title,
		e.Condition,
		e.SeriesName,
		e.SeriesIndex,
		e.LocationName,
		string(e.Decision),
		e.EstimatedPrice,
	)
	return err
}

func (s *ClickHouseScanStorage) StoreBatch(ctx context.Context, events []*models.ScanEvent) error {
	if len(events) == 0 {
		return nil
	}
	// Multi-row VALUES inserts, chunked to bound statement size.
	const chunkSize = 2000
	for start := 0; start < len(events); start += chunkSize {
		end := start + chunkSize
		if end > len(events) {
			end = len(events)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*10)
		for _, e := range events[start:end] {
			if e == nil || e.ISBN == "" || e.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(e.Timestamp, 0),
				e.EventID,
				e.ISBN,
				e.Title,
				e.Condition,
				e.SeriesName,
				e.SeriesIndex,
				e.LocationName,
				string(e.Decision),
				e.EstimatedPrice,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, event_id, isbn, title, condition, series_name, series_index, location, decision, estimated_price) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseScanStorage) Query(ctx context.Context, location string, from, to time.Time, limit int) ([]*models.ScanEvent, error) {
	var (
		where []string
		args  []interface{}
	)
	where = append(where, "ts >= ?", "ts <= ?")
	args = append(args, from, to)
	if location != "" {
		where = append(where, "location = ?")
		args = append(args, location)
	}
	args = append(args, limit)

	q := fmt.Sprintf("SELECT ts, event_id, isbn, title, condition, series_name, series_index, location, decision, estimated_price FROM %s WHERE %s ORDER BY ts DESC LIMIT ?",
		s.table, strings.Join(where, " AND "))
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*models.ScanEvent
	for rows.Next() {
		var (
			e        models.ScanEvent
			ts       time.Time
			decision string
		)
		if err := rows.Scan(&ts, &e.EventID, &e.ISBN, &e.Title, &e.Condition, &e.SeriesName, &e.SeriesIndex, &e.LocationName, &decision, &e.EstimatedPrice); err != nil {
			return nil, err
		}
		e.Timestamp = ts.Unix()
		e.Decision = models.ScanDecision(decision)
		events = append(events, &e)
	}
	return events, rows.Err()
}

func (s *ClickHouseScanStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseScanStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka. Events are keyed by ISBN so
// one book's scans stay ordered within a partition.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.ScanEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.ISBN), e)
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, events []*models.ScanEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i, e := range events {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(e.ISBN),
			Value: e,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
