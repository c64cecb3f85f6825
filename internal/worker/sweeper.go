// Package worker hosts the background loops of the payment core.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowpay/paycore/internal/core/ports"
	"github.com/flowpay/paycore/internal/metrics"
)

// Sweeper periodically removes expired idempotency records so completed
// results do not outlive their TTL and abandoned reservations do not poison
// retries forever.
type Sweeper struct {
	store    ports.IdempotencyStore
	interval time.Duration
	logger   *slog.Logger
}

func NewSweeper(store ports.IdempotencyStore, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		logger:   logger,
	}
}

func (w *Sweeper) Start(ctx context.Context) {
	w.logger.Info("idempotency sweeper started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("idempotency sweeper stopping")
			return
		case <-ticker.C:
			removed, err := w.store.Sweep(ctx, time.Now())
			if err != nil {
				w.logger.Error("idempotency sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				metrics.IdempotencySwept.Add(float64(removed))
				w.logger.Debug("swept expired idempotency records", "removed", removed)
			}
		}
	}
}
