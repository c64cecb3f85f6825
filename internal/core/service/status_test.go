package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpay/paycore/internal/core/domain"
)

func TestUpdateTransactionStatus_AllowedTransition(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tx, err := domain.NewTransaction("tx-1", "user-1", 1000, domain.CurrencyUSD, domain.TypeCredit, "card", "")
	require.NoError(t, err)
	require.NoError(t, env.transactions.Create(ctx, tx))

	updated, err := env.svc.UpdateTransactionStatus(ctx, "tx-1", "processing", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, updated.Status)

	stored, err := env.transactions.FindByID(ctx, "tx-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, stored.Status)

	entries, err := env.auditLog.Query(ctx, domain.AuditFilter{Action: domain.ActionStatusChanged})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pending", entries[0].Metadata["from_status"])
}

func TestUpdateTransactionStatus_IllegalTransitionRejected(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	tx, err := domain.NewTransaction("tx-1", "user-1", 1000, domain.CurrencyUSD, domain.TypeCredit, "card", "")
	require.NoError(t, err)
	require.NoError(t, tx.TransitionTo(domain.StatusProcessing))
	require.NoError(t, tx.TransitionTo(domain.StatusCompleted))
	require.NoError(t, env.transactions.Create(ctx, tx))

	_, err = env.svc.UpdateTransactionStatus(ctx, "tx-1", "processing", "user-1")
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidTransition))

	// The stored record is untouched and the rejection is audited.
	stored, ferr := env.transactions.FindByID(ctx, "tx-1")
	require.NoError(t, ferr)
	assert.Equal(t, domain.StatusCompleted, stored.Status)

	entries, aerr := env.auditLog.Query(ctx, domain.AuditFilter{Action: domain.ActionStatusChangeRejected})
	require.NoError(t, aerr)
	require.Len(t, entries, 1)
	assert.Equal(t, "processing", entries[0].Metadata["requested_status"])
}

func TestUpdateTransactionStatus_UnknownStatusAndMissingTransaction(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.UpdateTransactionStatus(ctx, "tx-1", "shipped", "user-1")
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeInvalidStatus))

	_, err = env.svc.UpdateTransactionStatus(ctx, "tx-missing", "processing", "user-1")
	assert.True(t, domain.IsErrorCode(err, domain.ErrCodeTransactionNotFound))
}
