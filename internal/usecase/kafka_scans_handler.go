package usecase

import (
	"context"
	"encoding/json"
	"time"

	"ShelfScout/internal/domain/models"
	domrepo "ShelfScout/internal/domain/repository"
	pkgkafka "ShelfScout/pkg/kafka"
)

// KafkaScansHandler consumes scan events from Kafka and writes them to storage.
type KafkaScansHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaScansHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaScansHandler {
	return &KafkaScansHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaScansHandler) Topic() string { return h.topic }

func (h *KafkaScansHandler) Handle(ctx context.Context, b []byte) error {
	var m models.ScanEvent
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.Timestamp > 1e11 { // ms
		m.Timestamp = m.Timestamp / 1000
	}
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.Timestamp, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &m)
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordScanIngested("clickhouse", m.LocationName)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaScansHandler)(nil)
