package worker

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowpay/paycore/internal/store/memory"
)

func TestSweeper_RemovesExpiredRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.NewIdempotencyStore()

	require.NoError(t, store.Reserve(ctx, "expires-now", "op"))
	require.NoError(t, store.Complete(ctx, "expires-now", json.RawMessage(`{}`), -time.Second))
	require.NoError(t, store.Reserve(ctx, "lives-on", "op"))
	require.NoError(t, store.Complete(ctx, "lives-on", json.RawMessage(`{}`), time.Hour))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewSweeper(store, 10*time.Millisecond, logger)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		sweeper.Start(runCtx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return store.Len() == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after context cancellation")
	}
}
