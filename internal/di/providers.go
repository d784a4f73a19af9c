package di

import (
	"context"
	"fmt"
	"time"

	"KPIPulse/internal/domain/repository"
	"KPIPulse/internal/handler/api"
	mid "KPIPulse/internal/middleware"
	internalrepo "KPIPulse/internal/repository"
	icache "KPIPulse/internal/service/cache"
	"KPIPulse/internal/service/kpifeed"
	"KPIPulse/internal/services/forecast"
	"KPIPulse/internal/usecase"
	pkgch "KPIPulse/pkg/clickhouse"
	"KPIPulse/pkg/config"
	pkgkafka "KPIPulse/pkg/kafka"
	applogger "KPIPulse/pkg/logger"
	"KPIPulse/pkg/metrics"
	"KPIPulse/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS kpipulse",
		"CREATE TABLE IF NOT EXISTS kpipulse.kpi_observations (period DateTime, scope_id String, category String, value Float64, source String, event_id String) ENGINE=ReplacingMergeTree ORDER BY (scope_id, category, period)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideObservationStorage creates ClickHouse storage repository.
func ProvideObservationStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".kpi_observations")
}

// ProvideObservationPublisher creates Kafka publisher repository.
func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaObservationsHandler registers handler for the observations topic.
func ProvideKafkaObservationsHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaObservationsHandler {
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideFeedStream creates the KPI feed WebSocket stream.
func ProvideFeedStream(cfg *config.Config) repository.ObservationStream {
	return kpifeed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.Scopes,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideObservationProcessor creates observation processor use case.
func ProvideObservationProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideObservationCollector creates observation collector use case.
func ProvideObservationCollector(
	stream repository.ObservationStream,
	processor *usecase.ObservationProcessor,
	metrics repository.Metrics,
) *usecase.ObservationCollector {
	// Build middleware pipeline between WebSocket and Kafka
	pipe := mid.NewIngestPipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewObservationCollector(stream, processor, metrics, pipe)
}

// ProvideForecastEngine creates the forecast engine with the configured
// sufficiency policy.
func ProvideForecastEngine(cfg *config.Config) *forecast.Engine {
	opts := []forecast.Option{}
	if cfg.Forecast.SufficiencyPolicy == "per_category" {
		opts = append(opts, forecast.WithSufficiencyPolicy(forecast.SufficiencyPerCategory))
	}
	return forecast.NewEngine(opts...)
}

// ProvideObservationStore creates the ClickHouse read store for forecasts.
func ProvideObservationStore(chClient *pkgch.Client, cfg *config.Config) *internalrepo.CHObservationStore {
	return internalrepo.NewCHObservationStore(chClient, cfg.ClickHouse.Database+".kpi_observations")
}

// ProvideForecastService creates the forecast use case.
func ProvideForecastService(
	store *internalrepo.CHObservationStore,
	engine *forecast.Engine,
	metrics repository.Metrics,
	producer *pkgkafka.Producer,
	cfg *config.Config,
) *usecase.ForecastService {
	svc := usecase.NewForecastService(store, engine, metrics)
	if cfg.Forecast.HistoryLimit > 0 {
		svc.SetHistoryLimit(cfg.Forecast.HistoryLimit)
	}
	if cfg.Kafka.EventsTopic != "" {
		svc.SetEventPublisher(internalrepo.NewKafkaForecastEventPublisher(producer, cfg.Kafka.EventsTopic))
	}
	return svc
}

// ProvideObservationsQuery creates the raw observations listing use case.
func ProvideObservationsQuery(storage repository.Storage) *usecase.ObservationsQuery {
	return usecase.NewObservationsQuery(storage)
}

// logPublisher adapts the Kafka producer to the log collector's publisher.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p *logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideForecastHandler creates the Echo HTTP handler for forecasts.
func ProvideForecastHandler(svc *usecase.ForecastService, obs *usecase.ObservationsQuery, storage repository.Storage, producer *pkgkafka.Producer, cfg *config.Config) (*api.ForecastEchoHandler, error) {
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if cfg.Kafka.LogsTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogsTopic,
			Publisher:      &logPublisher{producer: producer},
		})
	}

	h := api.NewForecastEchoHandler(l, svc)
	h.SetObservationsQuery(obs)
	h.SetHealthCheck(storage.Health)
	if cfg.Forecast.Redis.Enabled {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Forecast.Redis.Addr,
			Password: cfg.Forecast.Redis.Password,
			DB:       cfg.Forecast.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	if cfg.Forecast.CacheTTL > 0 {
		h.SetCacheTTL(cfg.Forecast.CacheTTL)
	}
	return h, nil
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.ObservationCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaObservationsHandler,
	chClient *pkgch.Client,
	fh *api.ForecastEchoHandler,
) *server.App {
	// Attach hook to consumer: example NoopHook for now; can be replaced via config
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(fh)
	// attach observation processor to app for closing resources via collector
	if collector != nil {
		app.ObservationProc = collector.Processor()
	}
	return app
}
