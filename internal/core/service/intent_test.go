package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpay/paycore/internal/core/domain"
)

func intentRequest(key string) CreateIntentRequest {
	return CreateIntentRequest{
		Amount:         50000,
		Currency:       "USD",
		PaymentMethod:  "card",
		CustomerID:     "cust-1",
		Description:    "order 42",
		IdempotencyKey: key,
	}
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	result, err := env.svc.CreatePaymentIntent(ctx, intentRequest("idem-1"))

	require.NoError(t, err)
	assert.NotEmpty(t, result.PaymentIntentID)
	assert.NotEmpty(t, result.ClientSecret)
	assert.Equal(t, 1, env.processor.GetCalls("CreateIntent"))

	// A pending transaction is recorded against the intent.
	txs, err := env.transactions.FindByUserID(ctx, "cust-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.StatusPending, txs[0].Status)
	require.NotNil(t, txs[0].ReferenceID)
	assert.Equal(t, result.PaymentIntentID, *txs[0].ReferenceID)

	// Attempt and created entries land in the audit trail.
	entries, err := env.auditLog.Query(ctx, domain.AuditFilter{UserID: "cust-1"})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.ActionPaymentIntentAttempt, entries[0].Action)
	assert.Equal(t, domain.ActionPaymentIntentCreated, entries[1].Action)
}

func TestCreatePaymentIntent_ValidationFailures(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	t.Run("zero amount", func(t *testing.T) {
		req := intentRequest("idem-1")
		req.Amount = 0
		_, err := env.svc.CreatePaymentIntent(ctx, req)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))
	})

	t.Run("amount over cap", func(t *testing.T) {
		req := intentRequest("idem-2")
		req.Amount = domain.MaxAmountMinorUnits + 1
		_, err := env.svc.CreatePaymentIntent(ctx, req)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidAmount))
	})

	t.Run("unsupported currency", func(t *testing.T) {
		req := intentRequest("idem-3")
		req.Currency = "JPY"
		_, err := env.svc.CreatePaymentIntent(ctx, req)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidCurrency))
	})

	t.Run("missing payment method", func(t *testing.T) {
		req := intentRequest("idem-4")
		req.PaymentMethod = ""
		_, err := env.svc.CreatePaymentIntent(ctx, req)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField))
	})

	t.Run("missing idempotency key", func(t *testing.T) {
		req := intentRequest("")
		_, err := env.svc.CreatePaymentIntent(ctx, req)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidIdempotencyKey))
	})

	// None of the rejected requests reached the processor.
	assert.Equal(t, 0, env.processor.GetCalls("CreateIntent"))
}

func TestCreatePaymentIntent_ReplayReturnsFirstResult(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, err := env.svc.CreatePaymentIntent(ctx, intentRequest("idem-1"))
	require.NoError(t, err)

	// Same key, different payload: the stored result is returned verbatim and
	// the processor is not called again.
	replay := intentRequest("idem-1")
	replay.Amount = 99
	replay.Description = "something else entirely"

	second, err := env.svc.CreatePaymentIntent(ctx, replay)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentIntentID, second.PaymentIntentID)
	assert.Equal(t, first.ClientSecret, second.ClientSecret)
	assert.Equal(t, 1, env.processor.GetCalls("CreateIntent"))

	// Only one transaction exists.
	txs, err := env.transactions.FindByUserID(ctx, "cust-1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestCreatePaymentIntent_ProcessorFailure(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	env.processor.CreateIntentFn = func(ctx context.Context, req domain.ProcessorIntentRequest, idempotencyKey string) (*domain.ProcessorIntentResponse, error) {
		return nil, errors.New("card declined")
	}

	_, err := env.svc.CreatePaymentIntent(ctx, intentRequest("idem-1"))
	require.Error(t, err)
	assert.Equal(t, ErrCodePaymentIntentFailed, ToErrorCode(err))

	// The failure is audited.
	entries, qerr := env.auditLog.Query(ctx, domain.AuditFilter{Action: domain.ActionPaymentIntentFailed})
	require.NoError(t, qerr)
	assert.Len(t, entries, 1)

	// The key was released, so a retry executes rather than replaying the failure.
	env.processor.CreateIntentFn = nil
	result, err := env.svc.CreatePaymentIntent(ctx, intentRequest("idem-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.PaymentIntentID)
	assert.Equal(t, 2, env.processor.GetCalls("CreateIntent"))
}
