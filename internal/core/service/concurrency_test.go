package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpay/paycore/internal/core/domain"
)

func TestProcessWalletTransaction_ConcurrentDebitsDrainToZero(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const numDebits = 20
	const debitAmount = int64(100)

	_, err := env.svc.ProcessWalletTransaction(ctx, WalletTransactionRequest{
		UserID:         "user-1",
		Amount:         numDebits * debitAmount,
		Type:           "credit",
		Currency:       "USD",
		IdempotencyKey: "idem-credit",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, numDebits)
	for i := 0; i < numDebits; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.svc.ProcessWalletTransaction(ctx, WalletTransactionRequest{
				UserID:         "user-1",
				Amount:         debitAmount,
				Type:           "debit",
				Currency:       "USD",
				IdempotencyKey: fmt.Sprintf("idem-debit-%d", n),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := env.wallets.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance.AvailableBalance)

	txs, err := env.transactions.FindByUserID(ctx, "user-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, txs, numDebits+1)
}

func TestCreatePaymentIntent_ConcurrentSameKeySingleExecution(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	// Slow processor to widen the race window.
	env.processor.Delay = 100 * time.Millisecond

	const numRequests = 5
	var wg sync.WaitGroup
	type outcome struct {
		result *PaymentIntentResult
		err    error
	}
	results := make(chan outcome, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := env.svc.CreatePaymentIntent(ctx, intentRequest("idem-concurrent"))
			results <- outcome{r, err}
		}()
	}
	wg.Wait()
	close(results)

	var firstID string
	for o := range results {
		require.NoError(t, o.err)
		if firstID == "" {
			firstID = o.result.PaymentIntentID
		}
		assert.Equal(t, firstID, o.result.PaymentIntentID)
	}

	// The side effect ran exactly once.
	assert.Equal(t, 1, env.processor.GetCalls("CreateIntent"))

	txs, err := env.transactions.FindByUserID(ctx, "cust-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestProcessWalletTransaction_ConcurrentSameKeyAppliesOnce(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	_, err := env.svc.ProcessWalletTransaction(ctx, WalletTransactionRequest{
		UserID:         "user-1",
		Amount:         50000,
		Type:           "credit",
		Currency:       "USD",
		IdempotencyKey: "idem-credit",
	})
	require.NoError(t, err)

	const numRequests = 5
	var wg sync.WaitGroup
	errs := make(chan error, numRequests)
	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.ProcessWalletTransaction(ctx, WalletTransactionRequest{
				UserID:         "user-1",
				Amount:         20000,
				Type:           "debit",
				Currency:       "USD",
				IdempotencyKey: "idem-debit",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	balance, err := env.wallets.Balance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), balance.AvailableBalance)

	// Only one debit completion was audited.
	entries, err := env.auditLog.Query(ctx, domain.AuditFilter{Action: domain.ActionWalletTxCompleted})
	require.NoError(t, err)
	debitCompletions := 0
	for _, e := range entries {
		if e.Metadata["type"] == string(domain.TypeDebit) {
			debitCompletions++
		}
	}
	assert.Equal(t, 1, debitCompletions)
}
