package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/kasa/internal/adapter/http"
	"github.com/iho/kasa/internal/adapter/http/handler"
	postgresRepo "github.com/iho/kasa/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/kasa/internal/adapter/repository/redis"
	"github.com/iho/kasa/internal/infrastructure/config"
	"github.com/iho/kasa/internal/infrastructure/eventpublisher"
	"github.com/iho/kasa/internal/infrastructure/logger"
	"github.com/iho/kasa/internal/infrastructure/metrics"
	"github.com/iho/kasa/internal/infrastructure/postgres"
	"github.com/iho/kasa/internal/infrastructure/redis"
	"github.com/iho/kasa/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	log.Logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	zerolog.DefaultContextLogger = &log.Logger

	ctx := context.Background()

	// Connect to PostgreSQL
	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	connectCancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	paymentRepo := postgresRepo.NewPaymentRepository(pool)
	transferRepo := postgresRepo.NewTransferRepository(pool)
	eventRepo := postgresRepo.NewBalanceEventRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool)
	itemRepo := postgresRepo.NewItemRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	numGen := postgresRepo.NewDocumentNumberGenerator()
	retrier := postgresRepo.NewRetrier()
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	rateUC := usecase.NewRateUseCase(txManager, rateRepo, outboxRepo, auditRepo, idGen, cache)
	accountUC := usecase.NewAccountUseCase(accountRepo, auditRepo, idGen)
	paymentUC := usecase.NewPaymentUseCase(
		txManager, accountRepo, paymentRepo, eventRepo, outboxRepo, auditRepo,
		rateUC, idGen, numGen, retrier, cache,
	)
	transferUC := usecase.NewTransferUseCase(
		txManager, accountRepo, transferRepo, eventRepo, outboxRepo, auditRepo,
		rateUC, idGen, numGen, retrier,
	)
	profitUC := usecase.NewProfitUseCase(itemRepo, accountRepo, rateUC, idGen)
	ledgerUC := usecase.NewLedgerUseCase(accountRepo, eventRepo)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC),
		PaymentHandler:   handler.NewPaymentHandler(paymentUC),
		TransferHandler:  handler.NewTransferHandler(transferUC),
		RateHandler:      handler.NewRateHandler(rateUC),
		ReportHandler:    handler.NewReportHandler(profitUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC),
		HealthHandler:    handler.NewHealthHandler(pool, redisClient),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Logger:           log.Logger,
	})

	// Create server
	server := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	// Outbox publisher
	if cfg.OutboxEnabled {
		publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  eventpublisher.NewLogPublisher(log.Logger),
			Logger:     log.Logger,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})

		go func() {
			if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	// Connection pool gauge
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				appMetrics.DBConnections.Set(float64(pool.Stat().TotalConns()))
			}
		}
	}()

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func listenAddr(port string) string {
	if port == "" {
		port = "8080"
	}

	return ":" + port
}
