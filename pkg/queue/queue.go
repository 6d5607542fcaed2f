package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// QueueService is the producer-side surface. The freshness scheduler enqueues
// refresh jobs through it without seeing the worker machinery.
type QueueService interface {
	PublishMessage(ctx context.Context, msgType string, payload interface{}) error
}

// Job consumes one message type. The refresh worker is the canonical
// implementation.
type Job interface {
	Name() string
	Type() string
	Handle(ctx context.Context, payload interface{}) error
}

// QueueConfig tunes worker count and redelivery.
type QueueConfig struct {
	Workers    int
	RetryLimit int           // redeliveries before a message is parked in the DLQ
	RetryDelay time.Duration // wait before a failed message is retried
}

// Message is the envelope stored in Redis.
type Message struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Attempts  int         `json:"attempts"`
	Timestamp time.Time   `json:"timestamp"`
}

// ParsePayload recovers a typed payload from whatever shape the transport
// delivered: the original struct when enqueued in-process, raw JSON or a
// generic map after a Redis round trip.
func ParsePayload[T any](payload interface{}) (*T, error) {
	switch p := payload.(type) {
	case *T:
		return p, nil
	case T:
		return &p, nil
	case json.RawMessage:
		var out T
		if err := json.Unmarshal(p, &out); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		return &out, nil
	case map[string]interface{}:
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("re-encode payload map: %w", err)
		}
		var out T
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("decode payload map: %w", err)
		}
		return &out, nil
	default:
		return nil, fmt.Errorf("unsupported payload type %T", payload)
	}
}
