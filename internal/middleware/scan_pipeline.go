package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, e *models.ScanEvent) error
}

// ScanPipeline sits between the scanner-gateway stream and the backend.
// It validates, throttles chatty locations, optionally transforms, and buffers
// when downstream is unavailable.
type ScanPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.ScanEvent
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-location last accepted time
	// simple format transform hook (optional)
	transform func(*models.ScanEvent) *models.ScanEvent
	// metrics
	bufDepthGauge func(int)
	throttleWarn  func(string)
}

type PipelineOption func(*ScanPipeline)

// WithMaxRPS sets the max scans per second per location.
func WithMaxRPS(n int) PipelineOption {
	return func(p *ScanPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *ScanPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewScanPipeline creates a new pipeline.
func NewScanPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *ScanPipeline {
	p := &ScanPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   20,   // default throttle per location
		bufSize:  1000, // default buffer
		bufCh:    make(chan *models.ScanEvent, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.ScanEvent, p.bufSize)
	}
	// metrics hooks using domain metrics if available
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	p.throttleWarn = func(loc string) { p.metrics.RecordError("pipeline_throttle_" + loc) }
	return p
}

// Start launches background flushing of buffered scans.
func (p *ScanPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case e := <-p.bufCh:
				if e == nil {
					continue
				}
				if err := p.proc.Process(ctx, e); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- e:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *ScanPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards the scan downstream, buffering on errors.
func (p *ScanPipeline) Process(ctx context.Context, e *models.ScanEvent) error {
	start := time.Now()
	if err := validateScan(e); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		e = p.transform(e)
		if err := validateScan(e); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.allow(e.LocationName, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		if p.throttleWarn != nil {
			p.throttleWarn(e.LocationName)
		}
		return nil
	}

	if err := p.proc.Process(ctx, e); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- e:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

// WithTransform sets a transformation hook to modify scan format.
func WithTransform(fn func(*models.ScanEvent) *models.ScanEvent) PipelineOption {
	return func(p *ScanPipeline) { p.transform = fn }
}

func validateScan(e *models.ScanEvent) error {
	if e == nil {
		return fmt.Errorf("scan nil")
	}
	if e.ISBN == "" {
		return fmt.Errorf("isbn empty")
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("timestamp invalid")
	}
	if e.EstimatedPrice < 0 {
		return fmt.Errorf("negative estimated price")
	}
	return nil
}

func (p *ScanPipeline) allow(location string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	// simple throttle: ensure at most maxRPS per second
	last := p.lastSeen[location]
	if last.IsZero() {
		p.lastSeen[location] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[location] = now
	return true
}
