// Package ports declares the interfaces the payment core consumes. The core
// depends only on these; adapters provide concrete implementations.
package ports

import (
	"context"

	"github.com/flowpay/paycore/internal/core/domain"
)

// PaymentProcessor is the external payment rail. Calls may be slow or
// duplicated on retry; dedup happens above this boundary.
type PaymentProcessor interface {
	CreateIntent(ctx context.Context, req domain.ProcessorIntentRequest, idempotencyKey string) (*domain.ProcessorIntentResponse, error)
	Refund(ctx context.Context, req domain.ProcessorRefundRequest, idempotencyKey string) (*domain.ProcessorRefundResponse, error)
}

// AlertSeverity classifies an alert event.
type AlertSeverity string

const (
	SeverityWarning AlertSeverity = "warning"
	SeverityFatal   AlertSeverity = "fatal"
)

// Alert is a fire-and-forget notification of a failure worth waking someone
// for. Delivery failure never affects the financial outcome.
type Alert struct {
	Severity  AlertSeverity
	Operation string
	Message   string
	Details   map[string]string
}

type Alerter interface {
	Notify(ctx context.Context, alert Alert) error
}
