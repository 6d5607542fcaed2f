package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"ShelfScout/internal/domain/repository"
	domsvc "ShelfScout/internal/domain/service"
	"ShelfScout/internal/freshness"
	mid "ShelfScout/internal/middleware"
	internalrepo "ShelfScout/internal/repository"
	"ShelfScout/internal/series"
	"ShelfScout/internal/service/scanfeed"
	"ShelfScout/internal/services/vendors"
	"ShelfScout/internal/usecase"
	pkgcache "ShelfScout/pkg/cache"
	pkgch "ShelfScout/pkg/clickhouse"
	"ShelfScout/pkg/config"
	pkgkafka "ShelfScout/pkg/kafka"
	applogger "ShelfScout/pkg/logger"
	"ShelfScout/pkg/metrics"
	"ShelfScout/pkg/queue"
	"ShelfScout/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	level := "info"
	format := "console"
	if cfg.Environment == "production" {
		level = "warn"
		format = "json"
	}
	return applogger.New(&applogger.Config{Level: level, Format: format, Output: "stdout"})
}

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

	db := cfg.ClickHouse.Database
	if db == "" {
		db = "shelfscout"
	}
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".scan_events (ts DateTime, event_id String, isbn String, title String, condition String, series_name String, series_index Int32, location String, decision String, estimated_price Float64) ENGINE=MergeTree ORDER BY (location, ts)",
		"CREATE TABLE IF NOT EXISTS " + db + ".accepted_catalog (isbn String, title String, series_name String, series_index Int32, accepted_at DateTime) ENGINE=ReplacingMergeTree(accepted_at) ORDER BY isbn",
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

// ProvideScanStorage creates ClickHouse storage for scan events.
func ProvideScanStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseScanStorage(chClient.DB(), cfg.ClickHouse.Database+".scan_events")
}

// ProvideScanPublisher creates Kafka publisher for scan events.
func ProvideScanPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
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

// ProvideKafkaScansHandler registers handler for the scans topic.
func ProvideKafkaScansHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaScansHandler {
	return usecase.NewKafkaScansHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideScanStream creates the scanner-gateway WebSocket stream.
func ProvideScanStream(cfg *config.Config) repository.ScanStream {
	return scanfeed.New(
		cfg.Scanner.Token,
		cfg.Scanner.WebSocketURL,
		cfg.Scanner.Locations,
		cfg.Scanner.ReconnectDelay,
		cfg.Scanner.PingInterval,
	)
}

// ProvideScanProcessor creates the scan processor use case.
func ProvideScanProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.ScanProcessor {
	return usecase.NewScanProcessor(cfg.Backend.Type, pub, store, metrics, l)
}

// ProvideScanCollector creates the scan collector use case.
func ProvideScanCollector(
	stream repository.ScanStream,
	processor *usecase.ScanProcessor,
	metrics repository.Metrics,
) *usecase.ScanCollector {
	// Middleware pipeline between WebSocket and the backend
	pipe := mid.NewScanPipeline(processor, metrics,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewScanCollector(stream, processor, metrics, pipe)
}

// ProvideCompsFetcher creates the eBay comps client.
func ProvideCompsFetcher(cfg *config.Config) domsvc.CompsFetcher {
	return vendors.NewHTTPCompsFetcher(cfg)
}

func ProvideOfferFetcher(cfg *config.Config) domsvc.OfferFetcher {
	return vendors.NewHTTPOfferFetcher(cfg)
}

func ProvideMetadataFetcher(cfg *config.Config) domsvc.MetadataFetcher {
	return vendors.NewHTTPMetadataFetcher(cfg)
}

func ProvideSaleEstimator(cfg *config.Config) domsvc.SaleEstimator {
	return vendors.NewHTTPSaleEstimator(cfg)
}

// ProvideRedisCache creates the shared Redis cache client.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	host, port := splitHostPort(cfg.Vendors.Redis.Addr)
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Vendors.Redis.Password),
		pkgcache.WithRedisDB(cfg.Vendors.Redis.DB),
	)
}

// ProvideFreshnessStore creates the freshness store. Redis stays authoritative;
// the memory layer only absorbs repeated Records reads inside one evaluation.
func ProvideFreshnessStore(cache *pkgcache.RedisCache) repository.FreshnessStore {
	return internalrepo.NewRedisFreshnessStore(pkgcache.NewLayeredCache(cache))
}

// ProvideRefreshQueue creates the Redis queue for vendor refresh jobs.
func ProvideRefreshQueue(cache *pkgcache.RedisCache, l *applogger.Logger) *queue.RedisQueue {
	return queue.NewRedisQueue(l, &queue.QueueConfig{Workers: 2, RetryLimit: 3}, cache.Client())
}

// ProvideFreshnessScheduler creates the staleness sweep scheduler.
func ProvideFreshnessScheduler(store repository.FreshnessStore, q *queue.RedisQueue, l *applogger.Logger) *freshness.Scheduler {
	return freshness.NewScheduler(store, q, l)
}

// ProvideSeriesTracker creates the series completion tracker.
func ProvideSeriesTracker(
	chClient *pkgch.Client,
	meta domsvc.MetadataFetcher,
	cfg *config.Config,
	l *applogger.Logger,
) *series.Tracker {
	catalog := internalrepo.NewCHCatalogStore(chClient)
	catalog.SetLogger(l)
	history := internalrepo.NewCHScanHistoryStore(chClient, cfg.ClickHouse.Database+".scan_events")
	history.SetLogger(l)
	t := series.NewTracker(catalog, history)
	t.SetMetadataFetcher(meta)
	t.SetLogger(l)
	return t
}

// ProvideEvaluateUseCase creates the valuation use case.
func ProvideEvaluateUseCase(
	compsF domsvc.CompsFetcher,
	offers domsvc.OfferFetcher,
	estimator domsvc.SaleEstimator,
	tracker *series.Tracker,
	scheduler *freshness.Scheduler,
	fresh repository.FreshnessStore,
	metrics repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.EvaluateUseCase {
	return usecase.NewEvaluateUseCase(compsF, offers, estimator, tracker, scheduler, fresh, metrics, cfg.Thresholds, l)
}

// ProvideRefreshWorker creates the queue worker for vendor refresh jobs.
func ProvideRefreshWorker(
	compsF domsvc.CompsFetcher,
	offers domsvc.OfferFetcher,
	meta domsvc.MetadataFetcher,
	fresh repository.FreshnessStore,
	metrics repository.Metrics,
	l *applogger.Logger,
) *usecase.RefreshWorker {
	return usecase.NewRefreshWorker(compsF, offers, meta, fresh, metrics, l)
}

// ProvideScanQueryUseCase creates the scan history query use case.
func ProvideScanQueryUseCase(store repository.Storage) *usecase.ScanQueryUseCase {
	return usecase.NewScanQueryUseCase(store)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.ScanCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaScansHandler,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
	eval *usecase.EvaluateUseCase,
	scanQuery *usecase.ScanQueryUseCase,
	tracker *series.Tracker,
	scheduler *freshness.Scheduler,
	refreshQ *queue.RedisQueue,
	refreshWorker *usecase.RefreshWorker,
	l *applogger.Logger,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	if cfg.Environment == "production" && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".errors",
			Publisher:      kafkaLogPublisher{producer},
		})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, l)
	app.SetEvaluation(eval, scanQuery, tracker, scheduler)
	app.SetRefreshQueue(refreshQ, refreshWorker)
	if collector != nil {
		app.ScanProc = collector.Processor()
	}
	return app
}

// kafkaLogPublisher adapts the Kafka producer to the log collector's sink.
type kafkaLogPublisher struct {
	p *pkgkafka.Producer
}

func (k kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return k.p.Publish(ctx, topic, nil, payload)
}

func splitHostPort(addr string) (string, int) {
	if addr == "" {
		return "localhost", 6379
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}
	return host, port
}
