package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/google/uuid"
)

const opCreatePaymentIntent = "create_payment_intent"

type CreateIntentRequest struct {
	Amount         int64
	Currency       string
	PaymentMethod  string
	CustomerID     string
	Description    string
	Metadata       map[string]string
	IdempotencyKey string
}

// PaymentIntentResult is what the caller gets back, and what a replay with
// the same idempotency key gets back verbatim.
type PaymentIntentResult struct {
	PaymentIntentID string `json:"payment_intent_id"`
	ClientSecret    string `json:"client_secret"`
}

// CreatePaymentIntent validates the request, deduplicates on the idempotency
// key, obtains an intent from the external processor and records the outcome.
// Processor failures surface as PAYMENT_INTENT_FAILED and are not retried
// here; retrying is the caller's job, via idempotency key reuse.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (result *PaymentIntentResult, err error) {
	start := time.Now()
	defer func() { s.observe(opCreatePaymentIntent, start, err) }()

	if err = domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}
	if req.PaymentMethod == "" {
		return nil, domain.NewMissingRequiredFieldError("payment method")
	}

	cached, hit, err := s.replayOrReserve(ctx, req.IdempotencyKey, opCreatePaymentIntent)
	if err != nil {
		return nil, err
	}
	if hit {
		var prior PaymentIntentResult
		if err = json.Unmarshal(cached, &prior); err != nil {
			return nil, NewPaymentIntentFailedError(err)
		}
		return &prior, nil
	}

	s.audit(ctx, domain.ActionPaymentIntentAttempt, req.CustomerID, req.Amount, string(domain.StatusPending), map[string]string{
		"currency":       string(currency),
		"payment_method": req.PaymentMethod,
	})

	procReq := domain.ProcessorIntentRequest{
		Amount:        req.Amount,
		Currency:      currency,
		PaymentMethod: req.PaymentMethod,
		CustomerID:    req.CustomerID,
		Description:   req.Description,
	}
	procResp, procErr := s.processor.CreateIntent(ctx, procReq, req.IdempotencyKey)
	if procErr != nil {
		// Not a terminal outcome for the key: a retry with the same key must
		// be able to proceed rather than replay the failure.
		s.releaseKey(ctx, req.IdempotencyKey)
		s.audit(ctx, domain.ActionPaymentIntentFailed, req.CustomerID, req.Amount, string(domain.StatusFailed), map[string]string{
			"error": procErr.Error(),
		})
		s.alertFatal(opCreatePaymentIntent, "payment processor rejected intent creation", map[string]string{
			"customer_id": req.CustomerID,
			"error":       procErr.Error(),
		})
		return nil, NewPaymentIntentFailedError(procErr)
	}

	tx, err := domain.NewTransaction(uuid.NewString(), req.CustomerID, req.Amount, currency, domain.TypeCredit, req.PaymentMethod, req.Description)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}
	tx.ReferenceID = &procResp.IntentID
	tx.Metadata = req.Metadata
	if err = s.transactions.Create(ctx, tx); err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, NewPaymentIntentFailedError(err)
	}

	result = &PaymentIntentResult{
		PaymentIntentID: procResp.IntentID,
		ClientSecret:    procResp.ClientSecret,
	}

	s.audit(ctx, domain.ActionPaymentIntentCreated, req.CustomerID, req.Amount, procResp.Status, map[string]string{
		"payment_intent_id": procResp.IntentID,
		"transaction_id":    tx.ID,
	})
	s.completeIdempotent(ctx, req.IdempotencyKey, result)

	return result, nil
}
