// Package alert delivers failure notifications to an external webhook.
package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/flowpay/paycore/internal/config"
	"github.com/flowpay/paycore/internal/core/ports"
)

// WebhookAlerter posts alerts to a configured endpoint. It is fire-and-forget
// from the core's perspective: delivery failures are the caller's to log and
// never alter a financial outcome.
type WebhookAlerter struct {
	client *resty.Client
	url    string
	logger *slog.Logger
}

func NewWebhookAlerter(cfg config.AlertConfig, logger *slog.Logger) *WebhookAlerter {
	return &WebhookAlerter{
		client: resty.New().SetTimeout(cfg.Timeout),
		url:    cfg.WebhookURL,
		logger: logger,
	}
}

var _ ports.Alerter = (*WebhookAlerter)(nil)

type alertPayload struct {
	Severity  string            `json:"severity"`
	Operation string            `json:"operation"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	SentAt    time.Time         `json:"sent_at"`
}

func (a *WebhookAlerter) Notify(ctx context.Context, alert ports.Alert) error {
	if a.url == "" {
		return nil
	}

	payload := alertPayload{
		Severity:  string(alert.Severity),
		Operation: alert.Operation,
		Message:   alert.Message,
		Details:   alert.Details,
		SentAt:    time.Now(),
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(a.url)
	if err != nil {
		return fmt.Errorf("alert delivery: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("alert endpoint returned status %d", resp.StatusCode())
	}
	return nil
}

// NopAlerter discards alerts. Used when no webhook is configured.
type NopAlerter struct{}

func (NopAlerter) Notify(ctx context.Context, alert ports.Alert) error { return nil }
