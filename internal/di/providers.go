package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domrepo "FeatureMill/internal/domain/repository"
	"FeatureMill/internal/handler/api"
	internalrepo "FeatureMill/internal/repository"
	"FeatureMill/internal/scheduler"
	"FeatureMill/internal/service/marketdata"
	"FeatureMill/internal/service/model"
	"FeatureMill/internal/stats"
	"FeatureMill/internal/usecase"
	"FeatureMill/pkg/cache"
	pkgch "FeatureMill/pkg/clickhouse"
	"FeatureMill/pkg/config"
	xhttp "FeatureMill/pkg/http"
	pkgkafka "FeatureMill/pkg/kafka"
	applogger "FeatureMill/pkg/logger"
	"FeatureMill/pkg/metrics"
	"FeatureMill/pkg/queue"
	"FeatureMill/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates the ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideCandleStore creates the ClickHouse-backed store and ensures
// the schema.
func ProvideCandleStore(client *pkgch.Client, l *applogger.Logger) (*internalrepo.CHCandleStore, error) {
	store := internalrepo.NewCHCandleStore(client)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("candle store: %w", err)
	}
	return store, nil
}

// ProvideCandleSource picks the configured market-data backend.
func ProvideCandleSource(cfg *config.Config, store *internalrepo.CHCandleStore, l *applogger.Logger) domrepo.CandleSource {
	if cfg.MarketData.Source == "http" {
		src := marketdata.NewChartSource(
			xhttp.NewClient(xhttp.WithTimeout(cfg.MarketData.Timeout)),
			cfg.MarketData.BaseURL,
		)
		src.SetLogger(l)
		return src
	}
	return store
}

// ProvideKafkaPublisher creates the dataset-event publisher, or nil
// when Kafka is disabled.
func ProvideKafkaPublisher(cfg *config.Config, l *applogger.Logger) (domrepo.Publisher, error) {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	// Error-log aggregation ships over the same producer.
	l.AddCollector(&applogger.CollectionConfig{
		TimeInterval:   time.Minute,
		CountThreshold: 100,
		Topic:          cfg.Kafka.LogTopic,
		Publisher:      producer,
	})

	pub := internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	pub.SetLogger(l)
	return pub, nil
}

// ProvideRedisClient creates the shared Redis client, or nil when
// Redis is disabled.
func ProvideRedisClient(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// ProvideCache builds the cache stack: layered over Redis when
// available, in-process otherwise.
func ProvideCache(rdb *redis.Client) cache.Cache {
	local := cache.NewMemory(time.Minute)
	if rdb == nil {
		return local
	}
	return cache.NewLayered(local, cache.NewRedis(rdb, "featuremill:cache"))
}

// ProvideQueue creates the Redis job queue, or nil without Redis.
func ProvideQueue(cfg *config.Config, rdb *redis.Client, l *applogger.Logger) *queue.RedisQueue {
	if rdb == nil {
		return nil
	}
	return queue.NewRedisQueue(l, queue.Config{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, rdb, cfg.Queue.KeyPrefix)
}

// ProvidePreparer wires the full pipeline usecase.
func ProvidePreparer(
	cfg *config.Config,
	source domrepo.CandleSource,
	store *internalrepo.CHCandleStore,
	publisher domrepo.Publisher,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.DatasetPreparer {
	prep := usecase.NewDatasetPreparer(cfg, source)
	prep.SetLogger(l)
	prep.SetStore(store)
	prep.SetMetrics(m)
	if publisher != nil {
		prep.SetPublisher(publisher)
	}
	return prep
}

// ProvideModelClient creates the model-service client.
func ProvideModelClient(cfg *config.Config, l *applogger.Logger) *model.Client {
	mc := model.NewClient(
		xhttp.NewClient(xhttp.WithTimeout(cfg.Model.Timeout)),
		cfg.Model.BaseURL,
	)
	mc.SetLogger(l)
	return mc
}

// ProvideTrainer wires the training usecase.
func ProvideTrainer(cfg *config.Config, prep *usecase.DatasetPreparer, mc *model.Client, l *applogger.Logger) *usecase.Trainer {
	t := usecase.NewTrainer(cfg, prep, mc)
	t.SetLogger(l)
	return t
}

// ProvidePredictor wires the forecasting usecase.
func ProvidePredictor(cfg *config.Config, prep *usecase.DatasetPreparer, mc *model.Client, l *applogger.Logger) *usecase.Predictor {
	p := usecase.NewPredictor(cfg, prep, mc)
	p.SetLogger(l)
	return p
}

// ProvideStatsProvider wires the statistics usecase with caching.
func ProvideStatsProvider(cfg *config.Config, source domrepo.CandleSource, c cache.Cache, l *applogger.Logger) *usecase.StatsProvider {
	calc := stats.NewCalculator()
	calc.SetLogger(l)

	sp := usecase.NewStatsProvider(cfg, source, calc)
	sp.SetLogger(l)
	sp.SetCache(c)
	return sp
}

// ProvideHandler wires the HTTP surface.
func ProvideHandler(
	l *applogger.Logger,
	prep *usecase.DatasetPreparer,
	trainer *usecase.Trainer,
	predictor *usecase.Predictor,
	sp *usecase.StatsProvider,
	q *queue.RedisQueue,
) xhttp.Handler {
	h := api.NewDatasetHandler(l, prep, trainer, predictor, sp)
	if q != nil {
		h.SetQueue(q)
	}
	return h
}

// ProvideApp assembles the application with its background runners.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	q *queue.RedisQueue,
	prep *usecase.DatasetPreparer,
	store *internalrepo.CHCandleStore,
	publisher domrepo.Publisher,
) *server.App {
	app := server.New(cfg, l, handler)

	if q != nil {
		q.RegisterJob(usecase.NewPrepareJob(prep, l))
		app.AddRunner(q)

		if cfg.Scheduler.Enabled && len(cfg.Scheduler.Symbols) > 0 {
			app.AddRunner(scheduler.New(cfg, q, l))
		}
	}

	app.AddCloser(store)
	if publisher != nil {
		app.AddCloser(publisher)
	}
	return app
}
