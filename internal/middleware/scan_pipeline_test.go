package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"ShelfScout/internal/domain/models"
)

type recordProc struct {
	events []*models.ScanEvent
	err    error
}

func (p *recordProc) Process(ctx context.Context, e *models.ScanEvent) error {
	p.events = append(p.events, e)
	return p.err
}

type nopMetrics struct{ errs []string }

func (m *nopMetrics) RecordScanIngested(backend, location string)     {}
func (m *nopMetrics) RecordDecision(verdict string)                   {}
func (m *nopMetrics) RecordError(kind string)                         { m.errs = append(m.errs, kind) }
func (m *nopMetrics) RecordBestProfit(channel string, profit float64) {}
func (m *nopMetrics) RecordLatency(op string, seconds float64)        {}

func scan(isbn, loc string) *models.ScanEvent {
	return &models.ScanEvent{ISBN: isbn, LocationName: loc, Timestamp: time.Now().Unix()}
}

func TestPipelineForwardsValidScan(t *testing.T) {
	proc := &recordProc{}
	p := NewScanPipeline(proc, &nopMetrics{})
	if err := p.Process(context.Background(), scan("9780000000001", "downtown")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(proc.events) != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", len(proc.events))
	}
}

func TestPipelineRejectsInvalidScan(t *testing.T) {
	proc := &recordProc{}
	m := &nopMetrics{}
	p := NewScanPipeline(proc, m)

	cases := []*models.ScanEvent{
		nil,
		{LocationName: "downtown", Timestamp: 100},
		{ISBN: "9780000000001", LocationName: "downtown"},
		{ISBN: "9780000000001", LocationName: "downtown", Timestamp: 100, EstimatedPrice: -1},
	}
	for i, e := range cases {
		if err := p.Process(context.Background(), e); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if len(proc.events) != 0 {
		t.Fatalf("invalid scans must not reach the processor")
	}
}

func TestPipelineThrottlesPerLocation(t *testing.T) {
	proc := &recordProc{}
	p := NewScanPipeline(proc, &nopMetrics{}, WithMaxRPS(1))

	// Same location back-to-back: second scan dropped without error.
	if err := p.Process(context.Background(), scan("9780000000001", "downtown")); err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if err := p.Process(context.Background(), scan("9780000000002", "downtown")); err != nil {
		t.Fatalf("throttled scan must drop silently: %v", err)
	}
	// Different location is still allowed.
	if err := p.Process(context.Background(), scan("9780000000003", "warehouse")); err != nil {
		t.Fatalf("other location: %v", err)
	}
	if len(proc.events) != 2 {
		t.Fatalf("expected 2 forwarded events, got %d", len(proc.events))
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &recordProc{err: errors.New("backend down")}
	p := NewScanPipeline(proc, &nopMetrics{}, WithBufferSize(4))

	if err := p.Process(context.Background(), scan("9780000000001", "downtown")); err == nil {
		t.Fatalf("expected downstream error surfaced")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected 1 buffered event, got %d", len(p.bufCh))
	}
}

func TestPipelineTransform(t *testing.T) {
	proc := &recordProc{}
	p := NewScanPipeline(proc, &nopMetrics{}, WithTransform(func(e *models.ScanEvent) *models.ScanEvent {
		e.Condition = "good"
		return e
	}))
	if err := p.Process(context.Background(), scan("9780000000001", "downtown")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.events[0].Condition != "good" {
		t.Fatalf("transform not applied")
	}
}
