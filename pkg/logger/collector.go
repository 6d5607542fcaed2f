package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"
)

// Publisher ships aggregated log batches to a topic. The Kafka producer is
// the production implementation.
type Publisher interface {
	PublishMessage(ctx context.Context, topic string, payload interface{}) error
}

// CollectionConfig tunes the error-log aggregator.
type CollectionConfig struct {
	TimeInterval   time.Duration
	CountThreshold int
	Topic          string
	Publisher      Publisher
}

// AggregatedLogEntry is one deduplicated log line with its repeat count.
type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogCollector deduplicates error logs in memory and flushes batches either
// on a timer or when the map grows past CountThreshold. A vendor outage that
// fails every lookup produces one entry with a large count instead of a
// flood.
type LogCollector struct {
	cfg     *CollectionConfig
	mu      sync.Mutex
	pending map[uint64]*AggregatedLogEntry
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewLogCollector(cfg *CollectionConfig) *LogCollector {
	ctx, cancel := context.WithCancel(context.Background())
	c := &LogCollector{
		cfg:     cfg,
		pending: make(map[uint64]*AggregatedLogEntry),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go c.run(ctx)
	return c
}

// AddLog folds one log line into the pending batch.
func (c *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	key := entryKey(level, message, fields, caller)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.pending[key]; ok {
		e.Count++
		e.LastSeen = now
	} else {
		c.pending[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}
	if len(c.pending) >= c.cfg.CountThreshold {
		c.flushLocked()
	}
}

// Close flushes whatever is pending and stops the timer.
func (c *LogCollector) Close() {
	c.cancel()
	<-c.done
}

func (c *LogCollector) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.cfg.TimeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
		case <-ctx.Done():
			c.mu.Lock()
			c.flushLocked()
			c.mu.Unlock()
			return
		}
	}
}

func (c *LogCollector) flushLocked() {
	if len(c.pending) == 0 {
		return
	}
	batch := make([]AggregatedLogEntry, 0, len(c.pending))
	for _, e := range c.pending {
		batch = append(batch, *e)
	}
	c.pending = make(map[uint64]*AggregatedLogEntry)

	// Publish off the lock; a slow broker must not block logging.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.cfg.Publisher.PublishMessage(ctx, c.cfg.Topic, batch); err != nil {
			fmt.Printf("log collector: publish failed: %v\n", err)
		}
	}()
}

func entryKey(level, message string, fields map[string]interface{}, caller string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(level))
	h.Write([]byte(message))
	h.Write([]byte(caller))
	if len(fields) > 0 {
		data, _ := json.Marshal(fields)
		h.Write(data)
	}
	return h.Sum64()
}
