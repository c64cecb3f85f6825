package service

import (
	"io"
	"log/slog"

	"github.com/flowpay/paycore/internal/store/memory"
)

// testEnv wires a PaymentService onto in-memory stores and mocks.
type testEnv struct {
	svc          *PaymentService
	processor    *MockProcessor
	alerter      *MockAlerter
	transactions *memory.TransactionRepository
	wallets      *memory.WalletRepository
	idempotency  *memory.IdempotencyStore
	auditLog     *memory.AuditLog
}

func newTestEnv() *testEnv {
	env := &testEnv{
		processor:    &MockProcessor{},
		alerter:      &MockAlerter{},
		transactions: memory.NewTransactionRepository(),
		wallets:      memory.NewWalletRepository(),
		idempotency:  memory.NewIdempotencyStore(),
		auditLog:     memory.NewAuditLog(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.svc = NewPaymentService(
		env.transactions,
		env.wallets,
		env.idempotency,
		env.auditLog,
		env.processor,
		env.alerter,
		logger,
	)
	return env
}
