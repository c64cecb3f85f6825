package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowpay/paycore/internal/adapters/alert"
	"github.com/flowpay/paycore/internal/adapters/processor"
	"github.com/flowpay/paycore/internal/adapters/rest"
	"github.com/flowpay/paycore/internal/config"
	"github.com/flowpay/paycore/internal/core/ports"
	"github.com/flowpay/paycore/internal/core/service"
	"github.com/flowpay/paycore/internal/store/bolt"
	"github.com/flowpay/paycore/internal/store/memory"
	"github.com/flowpay/paycore/internal/store/postgres"
	"github.com/flowpay/paycore/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting paycore service",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()

	var (
		transactions ports.TransactionRepository
		wallets      ports.WalletRepository
		idempotency  ports.IdempotencyStore
		auditLog     ports.AuditLog
	)

	switch cfg.Storage.Driver {
	case "postgres":
		db, err := postgres.Connect(ctx, &cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := db.ApplySchema(ctx); err != nil {
			logger.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}

		transactions = postgres.NewTransactionRepository(db)
		wallets = postgres.NewWalletRepository(db)
		idempotency = postgres.NewIdempotencyRepository(db)
		auditLog = postgres.NewAuditRepository(db)

	case "bolt":
		store, err := bolt.Open(cfg.Storage.BoltPath)
		if err != nil {
			logger.Error("failed to open bolt store", "error", err, "path", cfg.Storage.BoltPath)
			os.Exit(1)
		}
		defer store.Close()

		// Bolt persists the idempotency and audit state that must survive a
		// restart; transactions and wallets stay in memory in this mode.
		transactions = memory.NewTransactionRepository()
		wallets = memory.NewWalletRepository()
		idempotency = store
		auditLog = store

	default:
		transactions = memory.NewTransactionRepository()
		wallets = memory.NewWalletRepository()
		idempotency = memory.NewIdempotencyStore()
		auditLog = memory.NewAuditLog()
	}

	processorClient := processor.NewHTTPClient(cfg.Processor)
	guardedProcessor := processor.NewBreakerClient(processorClient, logger)

	alerter := alert.NewWebhookAlerter(cfg.Alert, logger)

	svc := service.NewPaymentService(
		transactions,
		wallets,
		idempotency,
		auditLog,
		guardedProcessor,
		alerter,
		logger,
	)
	svc.ResultTTL = cfg.Idempotency.ResultTTL

	router := rest.NewRouter(svc, logger)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sweeper := worker.NewSweeper(idempotency, cfg.Idempotency.SweepInterval, logger)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go sweeper.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
