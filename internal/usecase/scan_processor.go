package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ShelfScout/internal/domain/models"
	drepo "ShelfScout/internal/domain/repository"
	"ShelfScout/pkg/logger"
)

const (
	backendKafka      = "kafka"
	backendClickhouse = "clickhouse"

	defaultBatchSize     = 200
	defaultFlushInterval = 2 * time.Second
)

// ScanProcessor routes incoming scan events to the configured backend.
// With the kafka backend events are published one by one; with the
// clickhouse backend they are buffered and flushed in batches.
type ScanProcessor struct {
	backend   string
	publisher drepo.Publisher
	storage   drepo.Storage
	metrics   drepo.Metrics
	l         *logger.Logger

	mu      sync.Mutex
	batch   []*models.ScanEvent
	stopCh  chan struct{}
	started bool
}

func NewScanProcessor(backend string, publisher drepo.Publisher, storage drepo.Storage, metrics drepo.Metrics, l *logger.Logger) *ScanProcessor {
	return &ScanProcessor{
		backend:   backend,
		publisher: publisher,
		storage:   storage,
		metrics:   metrics,
		l:         l,
		batch:     make([]*models.ScanEvent, 0, defaultBatchSize),
		stopCh:    make(chan struct{}),
	}
}

// Start launches the periodic flush loop for the clickhouse backend.
func (p *ScanProcessor) Start(ctx context.Context) {
	if p.backend != backendClickhouse || p.started {
		return
	}
	p.started = true
	go func() {
		ticker := time.NewTicker(defaultFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				p.flush(context.Background())
				return
			case <-p.stopCh:
				p.flush(context.Background())
				return
			case <-ticker.C:
				p.flush(ctx)
			}
		}
	}()
}

func (p *ScanProcessor) Process(ctx context.Context, e *models.ScanEvent) error {
	switch p.backend {
	case backendKafka:
		if err := p.publisher.Publish(ctx, e); err != nil {
			p.metrics.RecordError("publish")
			return fmt.Errorf("publish scan %s: %w", e.ISBN, err)
		}
	case backendClickhouse:
		p.mu.Lock()
		p.batch = append(p.batch, e)
		full := len(p.batch) >= defaultBatchSize
		p.mu.Unlock()
		if full {
			p.flush(ctx)
		}
	default:
		return fmt.Errorf("unknown backend %q", p.backend)
	}
	p.metrics.RecordScanIngested(p.backend, e.LocationName)
	return nil
}

func (p *ScanProcessor) flush(ctx context.Context) {
	p.mu.Lock()
	if len(p.batch) == 0 {
		p.mu.Unlock()
		return
	}
	pending := p.batch
	p.batch = make([]*models.ScanEvent, 0, defaultBatchSize)
	p.mu.Unlock()

	if err := p.storage.StoreBatch(ctx, pending); err != nil {
		p.metrics.RecordError("store_batch")
		p.l.Error("scan batch store failed",
			logger.Int("count", len(pending)),
			logger.Error(err))
		return
	}
	p.l.Debug("scan batch stored", logger.Int("count", len(pending)))
}

func (p *ScanProcessor) Stop() {
	if p.started {
		close(p.stopCh)
		p.started = false
	}
}
