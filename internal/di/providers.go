package di

import (
	"context"
	"fmt"
	"time"

	domrepo "CryptoCast/internal/domain/repository"
	domsvc "CryptoCast/internal/domain/service"
	"CryptoCast/internal/handler/api"
	"CryptoCast/internal/middleware"
	"CryptoCast/internal/registry"
	internalrepo "CryptoCast/internal/repository"
	"CryptoCast/internal/service/predictor"
	"CryptoCast/internal/service/ratelimit"
	"CryptoCast/internal/usecase"
	"CryptoCast/pkg/cache"
	pkgch "CryptoCast/pkg/clickhouse"
	"CryptoCast/pkg/config"
	xhttp "CryptoCast/pkg/http"
	pkgkafka "CryptoCast/pkg/kafka"
	applogger "CryptoCast/pkg/logger"
	"CryptoCast/pkg/metrics"
	"CryptoCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeStores groups the archive sinks with the read side of whichever
// backends are enabled. Reader and History may be nil.
type OutcomeStores struct {
	Archive *internalrepo.MultiArchive
	Reader  domrepo.OutcomeReader
	History domrepo.OutcomeHistory
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideRegistry builds the asset and timeframe catalog.
func ProvideRegistry(cfg *config.Config) (*registry.Registry, error) {
	reg, err := registry.New(registry.WithHost(cfg.Prediction.Host))
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return reg, nil
}

// ProvidePredictionClient creates the HTTP client for the prediction services.
func ProvidePredictionClient(cfg *config.Config, l *applogger.Logger) domsvc.PredictionClient {
	return predictor.New(
		predictor.WithPath(cfg.Prediction.Path),
		predictor.WithTimeout(cfg.Prediction.Timeout),
		predictor.WithLogger(l),
	)
}

// ProvideCache creates the configured cache backend, nil for "none".
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "none":
		return nil, nil
	case "memory":
		return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemorySize)), nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPool(cfg.Cache.Redis.PoolSize, 1, 4*time.Second),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	if cfg.Cache.Backend == "layered" {
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemorySize)), nil
	}
	return rc, nil
}

// ProvideKafkaProducer creates a Kafka producer, nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchTimeout(cfg.Kafka.BatchTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideClickHouseClient creates a ClickHouse client, nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.OutcomeSchema(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
	}
	return client, nil
}

// ProvideOutcomeStores wires every enabled backend into the archive. The
// cache answers "latest" when present; ClickHouse serves history. Remote
// sinks get a retry buffer so a short outage does not lose outcomes.
func ProvideOutcomeStores(
	cfg *config.Config,
	l *applogger.Logger,
	m domrepo.Metrics,
	c cache.Service,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
) *OutcomeStores {
	var (
		sinks  []domrepo.OutcomeArchive
		stores OutcomeStores
	)
	if c != nil {
		ca := internalrepo.NewCacheOutcomeArchive(c, cfg.Cache.TTL)
		sinks = append(sinks, ca)
		stores.Reader = ca
	}
	if producer != nil {
		ka := internalrepo.NewKafkaOutcomeArchive(producer, cfg.Kafka.Topic)
		sinks = append(sinks, middleware.NewRetryBuffer(ka, m,
			middleware.WithBufferSize(cfg.Archive.RetryBuffer),
			middleware.WithAttemptTimeout(cfg.Archive.Timeout),
		))
	}
	if ch != nil {
		ca := internalrepo.NewClickHouseOutcomeArchive(ch, cfg.ClickHouse.Database)
		ca.SetLogger(l)
		sinks = append(sinks, middleware.NewRetryBuffer(ca, m,
			middleware.WithBufferSize(cfg.Archive.RetryBuffer),
			middleware.WithAttemptTimeout(cfg.Archive.Timeout),
		))

		hist := internalrepo.NewClickHouseOutcomeHistory(ch, cfg.ClickHouse.Database)
		hist.SetLogger(l)
		stores.History = hist
		if stores.Reader == nil {
			stores.Reader = hist
		}
	}
	stores.Archive = internalrepo.NewMultiArchive(sinks...)
	l.Info("outcome archive ready", applogger.Int("sinks", stores.Archive.Len()))
	return &stores
}

// ProvideController creates the request controller use case.
func ProvideController(
	cfg *config.Config,
	reg *registry.Registry,
	client domsvc.PredictionClient,
	stores *OutcomeStores,
	m domrepo.Metrics,
	l *applogger.Logger,
) *usecase.RequestController {
	opts := []usecase.ControllerOption{
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithArchiveTimeout(cfg.Archive.Timeout),
	}
	if stores.Archive.Len() > 0 {
		opts = append(opts, usecase.WithArchive(stores.Archive))
	}
	return usecase.NewRequestController(reg, client, opts...)
}

// ProvideRateLimiter creates the per-client submit throttle.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideHandler creates the presentation API handler.
func ProvideHandler(
	l *applogger.Logger,
	reg *registry.Registry,
	ctrl *usecase.RequestController,
	stores *OutcomeStores,
	limiter *ratelimit.Limiter,
) *api.PredictionHandler {
	h := api.NewPredictionHandler(l, reg, ctrl, stores.Reader, limiter)
	if stores.History != nil {
		h.SetHistory(stores.History)
	}
	return h
}

// ProvideHTTPServer creates the Echo server with the handler's routes.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, h *api.PredictionHandler) *xhttp.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return xhttp.NewServer(h,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(cfg.Server.SlowRequest),
		xhttp.WithCORS(cfg.Server.CORS),
		xhttp.WithLogger(l),
		xhttp.WithMetrics(metricsPath, prometheus.DefaultRegisterer, prometheus.DefaultGatherer),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	ctrl *usecase.RequestController,
	stores *OutcomeStores,
	ch *pkgch.Client,
) *server.App {
	app := server.New(cfg, l, srv, ctrl, stores.Archive)
	// The cache and Kafka sinks close their clients; the ClickHouse pool is
	// shared by the archive and the history reader.
	if ch != nil {
		app.AddCloser("clickhouse", ch)
	}
	return app
}
