package processor

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/flowpay/paycore/internal/core/ports"
	"github.com/flowpay/paycore/internal/metrics"
)

// BreakerClient wraps a PaymentProcessor with a circuit breaker so a dead
// rail fails fast instead of tying up request workers until timeout.
type BreakerClient struct {
	next    ports.PaymentProcessor
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerClient(next ports.PaymentProcessor, logger *slog.Logger) *BreakerClient {
	name := "payment-processor"
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			state := float64(0)
			switch to {
			case gobreaker.StateOpen:
				state = 1
			case gobreaker.StateHalfOpen:
				state = 2
			}
			metrics.CircuitBreakerState.WithLabelValues(cbName).Set(state)
			logger.Info("circuit breaker state changed", "circuit", cbName, "from", from.String(), "to", to.String())
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return &BreakerClient{next: next, breaker: cb}
}

var _ ports.PaymentProcessor = (*BreakerClient)(nil)

func (b *BreakerClient) CreateIntent(ctx context.Context, req domain.ProcessorIntentRequest, idempotencyKey string) (*domain.ProcessorIntentResponse, error) {
	resp, err := b.breaker.Execute(func() (any, error) {
		return b.next.CreateIntent(ctx, req, idempotencyKey)
	})
	if err != nil {
		return nil, wrapBreakerErr(err)
	}
	return resp.(*domain.ProcessorIntentResponse), nil
}

func (b *BreakerClient) Refund(ctx context.Context, req domain.ProcessorRefundRequest, idempotencyKey string) (*domain.ProcessorRefundResponse, error) {
	resp, err := b.breaker.Execute(func() (any, error) {
		return b.next.Refund(ctx, req, idempotencyKey)
	})
	if err != nil {
		return nil, wrapBreakerErr(err)
	}
	return resp.(*domain.ProcessorRefundResponse), nil
}

// wrapBreakerErr turns an open-circuit rejection into a retryable processor
// error so callers treat it like any other transient rail failure.
func wrapBreakerErr(err error) error {
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return &ProcessorError{
			Code:       "temporarily_unavailable",
			Message:    "payment processor circuit open",
			StatusCode: 503,
			Err:        err,
		}
	}
	return err
}
