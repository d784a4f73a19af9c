package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"KPIPulse/internal/domain/models"
	"KPIPulse/internal/domain/repository"
	pkgkafka "KPIPulse/pkg/kafka"
	"KPIPulse/pkg/util"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, o *models.Observation) error {
	q := fmt.Sprintf("INSERT INTO %s (period, scope_id, category, value, source, event_id) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	// Periods land on month starts so ReplacingMergeTree dedups restatements.
	period := util.AlignPeriod(o.Period, "month")
	eventID := fmt.Sprintf("%s-%s-%d", o.ScopeID, o.Category, period.Unix())
	_, err := s.db.ExecContext(ctx, q,
		period,
		o.ScopeID,
		o.Category,
		o.Value,
		"kpifeed",
		eventID,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(obs); start += chunkSize {
		end := start + chunkSize
		if end > len(obs) {
			end = len(obs)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, o := range obs[start:end] {
			if o == nil || o.ScopeID == "" || o.Period.IsZero() {
				continue
			}
			period := util.AlignPeriod(o.Period, "month")
			eventID := fmt.Sprintf("%s-%s-%d", o.ScopeID, o.Category, period.Unix())
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				period,
				o.ScopeID,
				o.Category,
				o.Value,
				"kpifeed",
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (period, scope_id, category, value, source, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, scopeID, category string, from, to time.Time, limit int) ([]*models.Observation, error) {
	q := fmt.Sprintf("SELECT scope_id, category, value, period FROM %s WHERE scope_id = ? AND period >= ? AND period <= ? ORDER BY period DESC LIMIT ?", s.table)
	args := []interface{}{scopeID, from, to, limit}
	if category != "" {
		q = fmt.Sprintf("SELECT scope_id, category, value, period FROM %s WHERE scope_id = ? AND category = ? AND period >= ? AND period <= ? ORDER BY period DESC LIMIT ?", s.table)
		args = []interface{}{scopeID, category, from, to, limit}
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var obs []*models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.ScopeID, &o.Category, &o.Value, &o.Period); err != nil {
			return nil, err
		}
		obs = append(obs, &o)
	}
	return obs, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, o *models.Observation) error {
	return p.producer.Publish(ctx, p.topic, []byte(o.ScopeID), map[string]interface{}{
		"scope_id": o.ScopeID,
		"category": o.Category,
		"value":    o.Value,
		"period":   o.Period.Unix(),
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, obs []*models.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(obs))
	for i, o := range obs {
		msgs[i] = pkgkafka.Message{
			Key: []byte(o.ScopeID),
			Value: map[string]interface{}{
				"scope_id": o.ScopeID,
				"category": o.Category,
				"value":    o.Value,
				"period":   o.Period.Unix(),
			},
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

// KafkaForecastEventPublisher announces completed forecast runs on a
// dedicated topic.
type KafkaForecastEventPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaForecastEventPublisher(producer *pkgkafka.Producer, topic string) repository.ForecastEventPublisher {
	return &KafkaForecastEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaForecastEventPublisher) PublishGenerated(ctx context.Context, evt models.ForecastEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(evt.ScopeID), evt)
}
