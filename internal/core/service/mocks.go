package service

import (
	"context"
	"sync"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/flowpay/paycore/internal/core/ports"
	"github.com/google/uuid"
)

// MockProcessor is a test double for the external payment processor. Set the
// Fn fields to override behavior; the defaults succeed.
type MockProcessor struct {
	mu    sync.Mutex
	calls map[string]int
	Delay time.Duration

	CreateIntentFn func(ctx context.Context, req domain.ProcessorIntentRequest, idempotencyKey string) (*domain.ProcessorIntentResponse, error)
	RefundFn       func(ctx context.Context, req domain.ProcessorRefundRequest, idempotencyKey string) (*domain.ProcessorRefundResponse, error)
}

func (m *MockProcessor) inc(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *MockProcessor) GetCalls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockProcessor) CreateIntent(ctx context.Context, req domain.ProcessorIntentRequest, idempotencyKey string) (*domain.ProcessorIntentResponse, error) {
	m.inc("CreateIntent")
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.CreateIntentFn != nil {
		return m.CreateIntentFn(ctx, req, idempotencyKey)
	}
	return &domain.ProcessorIntentResponse{
		IntentID:     "pi_" + uuid.NewString(),
		ClientSecret: "secret_" + uuid.NewString(),
		Status:       "requires_payment_method",
		CreatedAt:    time.Now(),
	}, nil
}

func (m *MockProcessor) Refund(ctx context.Context, req domain.ProcessorRefundRequest, idempotencyKey string) (*domain.ProcessorRefundResponse, error) {
	m.inc("Refund")
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
	if m.RefundFn != nil {
		return m.RefundFn(ctx, req, idempotencyKey)
	}
	return &domain.ProcessorRefundResponse{
		RefundID:   "re_" + uuid.NewString(),
		Status:     "succeeded",
		RefundedAt: time.Now(),
	}, nil
}

// MockAlerter records alerts instead of delivering them.
type MockAlerter struct {
	mu     sync.Mutex
	alerts []ports.Alert

	NotifyFn func(ctx context.Context, alert ports.Alert) error
}

func (m *MockAlerter) Notify(ctx context.Context, alert ports.Alert) error {
	m.mu.Lock()
	m.alerts = append(m.alerts, alert)
	m.mu.Unlock()
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, alert)
	}
	return nil
}

func (m *MockAlerter) Alerts() []ports.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.Alert, len(m.alerts))
	copy(out, m.alerts)
	return out
}
