// Package service orchestrates the payment core: payment intents, refunds,
// wallet transactions and status updates, each guarded by amount validation,
// idempotency-key deduplication and the audit trail.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/flowpay/paycore/internal/core/ports"
	"github.com/flowpay/paycore/internal/metrics"
)

// How long a caller losing the reservation race waits for the winner's result.
const (
	resultPollInterval = 100 * time.Millisecond
	resultPollTimeout  = 5 * time.Second
)

type PaymentService struct {
	transactions ports.TransactionRepository
	wallets      ports.WalletRepository
	idempotency  ports.IdempotencyStore
	auditLog     ports.AuditLog
	processor    ports.PaymentProcessor
	alerter      ports.Alerter
	logger       *slog.Logger

	// ResultTTL is how long a completed idempotent result stays replayable.
	ResultTTL time.Duration
}

func NewPaymentService(
	transactions ports.TransactionRepository,
	wallets ports.WalletRepository,
	idempotency ports.IdempotencyStore,
	auditLog ports.AuditLog,
	processor ports.PaymentProcessor,
	alerter ports.Alerter,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		transactions: transactions,
		wallets:      wallets,
		idempotency:  idempotency,
		auditLog:     auditLog,
		processor:    processor,
		alerter:      alerter,
		logger:       logger,
		ResultTTL:    domain.DefaultIdempotencyTTL,
	}
}

// GetTransaction returns a transaction by ID.
func (s *PaymentService) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.transactions.FindByID(ctx, id)
}

// ListTransactions returns a user's transactions, newest first.
func (s *PaymentService) ListTransactions(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	return s.transactions.FindByUserID(ctx, userID, limit, offset)
}

// GetWalletBalance returns a user's wallet balance.
func (s *PaymentService) GetWalletBalance(ctx context.Context, userID string) (*domain.WalletBalance, error) {
	return s.wallets.Balance(ctx, userID)
}

// QueryAuditLog exposes the audit trail with optional filters.
func (s *PaymentService) QueryAuditLog(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	return s.auditLog.Query(ctx, filter)
}

func (s *PaymentService) observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
