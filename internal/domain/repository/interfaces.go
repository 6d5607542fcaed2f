// Package repository defines the ports the scan pipeline is built against.
package repository

import (
	"context"
	"time"

	"ShelfScout/internal/domain/models"
)

// ScanStream is the inbound feed of shelf scans from handheld scanners.
type ScanStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	// Read returns the event and error channels; both close when the
	// stream shuts down.
	Read(ctx context.Context) (<-chan *models.ScanEvent, <-chan error)
	Reconnect(ctx context.Context) error
	IsConnected() bool
	Close() error
}

// Publisher forwards scan events to the message bus.
type Publisher interface {
	Publish(ctx context.Context, e *models.ScanEvent) error
	PublishBatch(ctx context.Context, events []*models.ScanEvent) error
	Close() error
}

// Storage persists scan events and serves location-scoped history queries.
type Storage interface {
	// Init creates tables if needed; safe to call on every boot.
	Init(ctx context.Context) error
	Store(ctx context.Context, e *models.ScanEvent) error
	StoreBatch(ctx context.Context, events []*models.ScanEvent) error
	Query(ctx context.Context, location string, from, to time.Time, limit int) ([]*models.ScanEvent, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics is the pipeline's counter surface; the Prometheus recorder is the
// only production implementation.
type Metrics interface {
	RecordScanIngested(backend, location string)
	RecordDecision(verdict string)
	RecordError(kind string)
	RecordBestProfit(channel string, profit float64)
	RecordLatency(op string, seconds float64)
}
