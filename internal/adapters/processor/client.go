// Package processor implements the PaymentProcessor port against an
// HTTP payment rail.
package processor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/flowpay/paycore/internal/config"
	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/flowpay/paycore/internal/core/ports"
)

type HTTPClient struct {
	client *resty.Client
}

func NewHTTPClient(cfg config.ProcessorConfig) *HTTPClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &HTTPClient{client: client}
}

var _ ports.PaymentProcessor = (*HTTPClient)(nil)

func (c *HTTPClient) CreateIntent(ctx context.Context, req domain.ProcessorIntentRequest, idempotencyKey string) (*domain.ProcessorIntentResponse, error) {
	return post[domain.ProcessorIntentRequest, domain.ProcessorIntentResponse](
		c, ctx, "/v1/payment_intents", req, idempotencyKey,
	)
}

func (c *HTTPClient) Refund(ctx context.Context, req domain.ProcessorRefundRequest, idempotencyKey string) (*domain.ProcessorRefundResponse, error) {
	return post[domain.ProcessorRefundRequest, domain.ProcessorRefundResponse](
		c, ctx, "/v1/refunds", req, idempotencyKey,
	)
}

// post is a generic helper for the processor's JSON API. The idempotency key
// is forwarded so the rail can dedupe on its side as well.
func post[Req any, Resp any](c *HTTPClient, ctx context.Context, path string, req Req, idempotencyKey string) (*Resp, error) {
	var (
		result  Resp
		procErr processorErrorResponse
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", idempotencyKey).
		SetBody(req).
		SetResult(&result).
		SetError(&procErr).
		Post(path)
	if err != nil {
		return nil, fmt.Errorf("processor request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		code := procErr.Code
		if code == "" {
			code = "unknown"
		}
		message := procErr.Message
		if message == "" {
			message = resp.Status()
		}
		return nil, &ProcessorError{
			Code:       code,
			Message:    message,
			StatusCode: resp.StatusCode(),
		}
	}

	return &result, nil
}
