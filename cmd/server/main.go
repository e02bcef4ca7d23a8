package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/finvola/cardledger/internal/adapter/http"
	"github.com/finvola/cardledger/internal/adapter/http/handler"
	"github.com/finvola/cardledger/internal/adapter/http/middleware"
	postgresRepo "github.com/finvola/cardledger/internal/adapter/repository/postgres"
	redisRepo "github.com/finvola/cardledger/internal/adapter/repository/redis"
	"github.com/finvola/cardledger/internal/infrastructure/config"
	"github.com/finvola/cardledger/internal/infrastructure/eventpublisher"
	"github.com/finvola/cardledger/internal/infrastructure/logger"
	"github.com/finvola/cardledger/internal/infrastructure/metrics"
	"github.com/finvola/cardledger/internal/infrastructure/postgres"
	"github.com/finvola/cardledger/internal/infrastructure/redis"
	"github.com/finvola/cardledger/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	log := logger.New(logger.Config{
		Service: "cardledger",
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Run migrations
	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	retrier := postgresRepo.NewRetrier(log)
	idGen := postgresRepo.NewULIDGenerator()
	ledgerAccountRepo := postgresRepo.NewLedgerAccountRepository(pool)
	journalRepo := postgresRepo.NewJournalRepository(pool)
	accountRepo := postgresRepo.NewAccountRepository(pool)
	adjustmentRepo := postgresRepo.NewAdjustmentRepository(pool)
	holdRepo := postgresRepo.NewHoldRepository(pool)
	messageRepo := postgresRepo.NewNetworkMessageRepository(pool)
	allocationRepo := postgresRepo.NewAllocationRepository(pool)
	cardRepo := postgresRepo.NewCardRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	balanceCache := redisRepo.NewBalanceCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	overdraft := usecase.OverdraftPolicy(cfg.OverdraftPolicy())

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(
		txManager, ledgerAccountRepo, journalRepo, accountRepo, outboxRepo,
		idGen, balanceCache, m,
	)
	accountUC := usecase.NewAccountUseCase(
		txManager, accountRepo, ledgerAccountRepo, holdRepo, idGen,
	)
	adjustmentUC := usecase.NewAdjustmentUseCase(
		txManager, accountRepo, ledgerAccountRepo, journalRepo, adjustmentRepo,
		outboxRepo, auditRepo, idGen, balanceCache, retrier, m, overdraft,
	)
	networkUC := usecase.NewNetworkUseCase(
		txManager, cardRepo, accountRepo, ledgerAccountRepo, journalRepo,
		adjustmentRepo, holdRepo, messageRepo, outboxRepo, auditRepo,
		idGen, balanceCache, m,
	)
	allocationUC := usecase.NewAllocationUseCase(
		txManager, allocationRepo, accountRepo, ledgerAccountRepo, journalRepo,
		adjustmentRepo, outboxRepo, auditRepo, idGen, balanceCache, retrier,
		m, overdraft, adjustmentUC,
	)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo, journalRepo, log)

	// Initialize handlers
	ledgerHandler := handler.NewLedgerHandler(ledgerUC)
	accountHandler := handler.NewAccountHandler(accountUC, adjustmentUC)
	allocationHandler := handler.NewAllocationHandler(allocationUC)
	networkHandler := handler.NewNetworkHandler(networkUC)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		LedgerHandler:         ledgerHandler,
		AccountHandler:        accountHandler,
		AllocationHandler:     allocationHandler,
		NetworkHandler:        networkHandler,
		ReconciliationHandler: reconciliationHandler,
		HealthHandler:         healthHandler,
		IdempotencyStore:      idempotencyStore,
		RateLimiter:           rateLimiter,
		Logger:                log,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Outbox publisher
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := publisher.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server exited with error")
	}

	log.Info().Msg("server stopped")
}
