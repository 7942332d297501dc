package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/memledger/internal/adapter/http"
	"github.com/iho/memledger/internal/adapter/http/handler"
	"github.com/iho/memledger/internal/adapter/http/middleware"
	"github.com/iho/memledger/internal/adapter/notification"
	"github.com/iho/memledger/internal/adapter/repository/memory"
	redisRepo "github.com/iho/memledger/internal/adapter/repository/redis"
	"github.com/iho/memledger/internal/infrastructure/config"
	"github.com/iho/memledger/internal/infrastructure/logger"
	"github.com/iho/memledger/internal/infrastructure/metrics"
	"github.com/iho/memledger/internal/infrastructure/redis"
	"github.com/iho/memledger/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// app is the wired service.
type app struct {
	handler     http.Handler
	notifier    *notification.AsyncNotifier
	rateLimiter *middleware.RateLimiter
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, redis.DefaultConnectTimeout)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
		log.Info().Msg("connected to redis")
	}

	var extraSinks []usecase.Notifier
	if cfg.RabbitMQURL != "" {
		rabbit, err := notification.DialRabbitMQ(notification.RabbitMQConfig{
			URL:        cfg.RabbitMQURL,
			Exchange:   cfg.RabbitMQExchange,
			RoutingKey: cfg.RabbitMQRoutingKey,
		})
		if err != nil {
			return err
		}
		defer rabbit.Close()
		extraSinks = append(extraSinks, rabbit)
		log.Info().Str("exchange", cfg.RabbitMQExchange).Msg("connected to rabbitmq")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := newApp(cfg, log, registry, redisClient, extraSinks...)

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	if a.rateLimiter != nil {
		go a.rateLimiter.StartCleanup(cleanupCtx, 10*time.Minute, time.Hour)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Bool("strict_debit", cfg.TransferStrictDebit).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if err := a.notifier.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("notifications not fully delivered")
	}

	log.Info().Msg("server stopped")

	return nil
}

func newApp(cfg *config.Config, log zerolog.Logger, registry *prometheus.Registry, redisClient *goredis.Client, extraSinks ...usecase.Notifier) *app {
	m := metrics.New(registry)

	// Notifications: log always, Redis pub/sub and RabbitMQ when configured
	sinks := []usecase.Notifier{notification.NewLogNotifier(log)}
	if redisClient != nil {
		sinks = append(sinks, notification.NewRedisNotifier(redisClient, cfg.NotificationChannel))
	}
	sinks = append(sinks, extraSinks...)
	notifier := notification.NewAsyncNotifier(notification.AsyncConfig{
		Next:            notification.NewMultiNotifier(sinks...),
		Logger:          log,
		Recorder:        m,
		Workers:         cfg.NotificationWorkers,
		QueueSize:       cfg.NotificationQueueSize,
		MaxRetries:      cfg.NotificationMaxRetries,
		InitialInterval: cfg.NotificationRetryDelay,
	})

	accountRepo := memory.NewAccountRepository(cfg.StoreShards)

	accountUC := usecase.NewAccountUseCase(accountRepo, m, log)
	transferUC := usecase.NewTransferUseCase(accountRepo, notifier,
		usecase.WithStrictDebit(cfg.TransferStrictDebit),
		usecase.WithMetrics(m),
		usecase.WithLogger(log),
	)
	ledgerUC := usecase.NewLedgerUseCase(accountRepo)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:  handler.NewAccountHandler(accountUC),
		TransferHandler: handler.NewTransferHandler(transferUC),
		LedgerHandler:   handler.NewLedgerHandler(ledgerUC),
		HealthHandler:   handler.NewHealthHandler(nil),
		IdempotencyTTL:  cfg.IdempotencyTTL,
		Metrics:         m,
		MetricsHandler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:          log,
	}

	if redisClient != nil {
		routerCfg.HealthHandler = handler.NewHealthHandler(handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m.RateLimitHits)
		routerCfg.RateLimiter = rateLimiter
	}

	return &app{
		handler:     httpAdapter.NewRouter(routerCfg),
		notifier:    notifier,
		rateLimiter: rateLimiter,
	}
}
