package usecase

import (
	"context"

	"ShelfScout/internal/domain/models"
	drepo "ShelfScout/internal/domain/repository"
	mid "ShelfScout/internal/middleware"
)

// ScanCollector collects scan events from the scanner-gateway stream and
// processes them.
type ScanCollector struct {
	stream  drepo.ScanStream
	proc    *ScanProcessor
	metrics drepo.Metrics
	pipe    *mid.ScanPipeline
}

// NewScanCollector creates a new ScanCollector instance.
func NewScanCollector(stream drepo.ScanStream, proc *ScanProcessor, metrics drepo.Metrics, pipe *mid.ScanPipeline) *ScanCollector {
	return &ScanCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the scanner stream is connected.
func (c *ScanCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *ScanCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	evCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, evCh, errCh)
	return nil
}

func (c *ScanCollector) consume(ctx context.Context, evCh <-chan *models.ScanEvent, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case e := <-evCh:
			if e == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, e)
			} else {
				_ = c.proc.Process(ctx, e)
			}
		}
	}
}

func (c *ScanCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying ScanProcessor for lifecycle management.
func (c *ScanCollector) Processor() *ScanProcessor { return c.proc }

// Shutdown stops pipeline and closes stream.
func (c *ScanCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
