package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/config"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/database"
	kafkainfra "github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/kafka"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/logger"
	redisinfra "github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/redis"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/security"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/telemetry"
	postgresrepo "github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/repository/postgres"
	redisrepo "github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/repository/redis"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/transport/http/routes"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/usecase"
)

// Application owns the revocation service instance, its eviction scheduler,
// and the HTTP surface, with explicit lifecycle instead of package-level
// singletons.
type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	producer  *kafkainfra.Producer
	scheduler *usecase.EvictionScheduler
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	metrics, err := telemetry.NewRevocationMetrics(telemetry.RevocationMetricsOptions{
		Namespace: cfg.Telemetry.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	app := &Application{cfg: cfg, logger: log}

	var store port.RevocationStore
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		app.pool = pool
		store = postgresrepo.NewRevocationRepository(pool)
	case config.StoreBackendRedis:
		redisClient, err := redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, fmt.Errorf("init redis: %w", err)
		}
		app.redis = redisClient
		store = redisrepo.NewRevocationRepository(redisClient.Client(), cfg.Redis.RevocationPrefix)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			app.producer = producer
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	cache := security.NewMembershipCache()

	revocationService := usecase.NewRevocationService(
		store,
		cache,
		eventPublisher,
		metrics,
		cfg.Revocation.StoreTimeout,
		log,
	)

	app.scheduler = usecase.NewEvictionScheduler(store, cache, metrics, log, usecase.EvictionSchedulerOptions{
		Interval: cfg.Revocation.CleanupInterval,
		Warmup:   cfg.Revocation.WarmupOnStart,
	})

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		Revocations: revocationService,
	}
	if app.pool != nil {
		deps.Database = app.pool
	}
	if app.redis != nil {
		deps.Cache = app.redis
	}

	app.engine = routes.Register(deps)

	return app, nil
}

// Run starts the eviction scheduler and the HTTP server, blocking until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
		}
	}()

	a.scheduler.Start(ctx)
	defer a.scheduler.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting revocation API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
		zap.String("store_backend", a.cfg.Store.Backend),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
