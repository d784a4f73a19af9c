package usecase

import (
	"context"
	"encoding/json"
	"time"

	"KPIPulse/internal/domain/models"
	domrepo "KPIPulse/internal/domain/repository"
	pkgkafka "KPIPulse/pkg/kafka"
)

// KafkaObservationsHandler consumes Kafka messages and writes to storage.
type KafkaObservationsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaObservationsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaObservationsHandler {
	return &KafkaObservationsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaObservationsHandler) Topic() string { return h.topic }

// incoming message schema: {scope_id, category, value, period}
func (h *KafkaObservationsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ScopeID  string  `json:"scope_id"`
		Category string  `json:"category"`
		Value    float64 `json:"value"`
		Period   int64   `json:"period"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.Period > 1e11 { // ms
		m.Period = m.Period / 1000
	}
	// E2E latency from observation period to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.Period, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Observation{
		ScopeID:  m.ScopeID,
		Category: m.Category,
		Value:    m.Value,
		Period:   time.Unix(m.Period, 0).UTC(),
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordObservation("clickhouse", m.ScopeID)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaObservationsHandler)(nil)
