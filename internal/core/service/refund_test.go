package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpay/paycore/internal/core/domain"
)

// seedCompletedTransaction stores a completed transaction ready to be refunded.
func seedCompletedTransaction(t *testing.T, env *testEnv, id string, amount int64) {
	t.Helper()
	tx, err := domain.NewTransaction(id, "cust-1", amount, domain.CurrencyUSD, domain.TypeCredit, "card", "")
	require.NoError(t, err)
	require.NoError(t, tx.TransitionTo(domain.StatusProcessing))
	require.NoError(t, tx.TransitionTo(domain.StatusCompleted))
	require.NoError(t, env.transactions.Create(context.Background(), tx))
}

func TestProcessRefund_FullRefundByDefault(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedCompletedTransaction(t, env, "tx-1", 50000)

	result, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Reason:         "requested_by_customer",
		IdempotencyKey: "idem-refund-1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.RefundID)
	assert.Equal(t, int64(50000), result.Amount)

	tx, err := env.transactions.FindByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, tx.Status)

	entries, err := env.auditLog.Query(ctx, domain.AuditFilter{Action: domain.ActionRefundCompleted})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessRefund_PartialRefund(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedCompletedTransaction(t, env, "tx-1", 50000)

	result, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Amount:         20000,
		Reason:         "duplicate",
		IdempotencyKey: "idem-refund-1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(20000), result.Amount)
}

func TestProcessRefund_RejectsAmountOverOriginal(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedCompletedTransaction(t, env, "tx-1", 50000)

	_, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Amount:         50001,
		Reason:         "other",
		IdempotencyKey: "idem-refund-1",
	})

	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidRefundAmount))
	assert.Equal(t, 0, env.processor.GetCalls("Refund"))

	tx, ferr := env.transactions.FindByID(ctx, "tx-1")
	require.NoError(t, ferr)
	assert.Equal(t, domain.StatusCompleted, tx.Status)
}

func TestProcessRefund_RejectsInvalidReasonAndMissingTransaction(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Reason:         "buyer_remorse",
		IdempotencyKey: "idem-1",
	})
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidRefundReason))

	_, err = env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-missing",
		Reason:         "other",
		IdempotencyKey: "idem-2",
	})
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransactionNotFound))
}

func TestProcessRefund_RejectsNonRefundableStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tx, err := domain.NewTransaction("tx-pending", "cust-1", 1000, domain.CurrencyUSD, domain.TypeCredit, "card", "")
	require.NoError(t, err)
	require.NoError(t, env.transactions.Create(ctx, tx))

	_, err = env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-pending",
		Reason:         "other",
		IdempotencyKey: "idem-1",
	})
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))
	assert.Equal(t, 0, env.processor.GetCalls("Refund"))
}

func TestProcessRefund_ReplayReturnsFirstResult(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedCompletedTransaction(t, env, "tx-1", 50000)

	first, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Reason:         "other",
		IdempotencyKey: "idem-1",
	})
	require.NoError(t, err)

	second, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Reason:         "other",
		IdempotencyKey: "idem-1",
	})
	require.NoError(t, err)
	assert.Equal(t, first.RefundID, second.RefundID)
	assert.Equal(t, 1, env.processor.GetCalls("Refund"))
}

func TestProcessRefund_ProcessorFailureReleasesKey(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	seedCompletedTransaction(t, env, "tx-1", 50000)

	env.processor.RefundFn = func(ctx context.Context, req domain.ProcessorRefundRequest, idempotencyKey string) (*domain.ProcessorRefundResponse, error) {
		return nil, errors.New("processor unavailable")
	}

	_, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Reason:         "other",
		IdempotencyKey: "idem-1",
	})
	require.Error(t, err)
	assert.Equal(t, ErrCodeRefundFailed, ToErrorCode(err))

	// The transaction is untouched and a retry with the same key proceeds.
	tx, ferr := env.transactions.FindByID(ctx, "tx-1")
	require.NoError(t, ferr)
	assert.Equal(t, domain.StatusCompleted, tx.Status)

	env.processor.RefundFn = nil
	result, err := env.svc.ProcessRefund(ctx, RefundRequest{
		TransactionID:  "tx-1",
		Reason:         "other",
		IdempotencyKey: "idem-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.RefundID)
}
