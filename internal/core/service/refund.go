package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
)

const opProcessRefund = "process_refund"

type RefundRequest struct {
	TransactionID  string
	Amount         int64 // 0 means refund the full original amount
	Reason         string
	IdempotencyKey string
}

type RefundResult struct {
	RefundID string `json:"refund_id"`
	Amount   int64  `json:"amount"`
	Status   string `json:"status"`
}

// ProcessRefund refunds a completed transaction, fully when no amount is
// given. The refund amount may never exceed the original; the original
// transaction transitions to refunded through the status guard.
func (s *PaymentService) ProcessRefund(ctx context.Context, req RefundRequest) (result *RefundResult, err error) {
	start := time.Now()
	defer func() { s.observe(opProcessRefund, start, err) }()

	if req.TransactionID == "" {
		return nil, domain.NewMissingRequiredFieldError("transaction ID")
	}
	reason, err := domain.ParseRefundReason(req.Reason)
	if err != nil {
		return nil, err
	}
	if req.Amount != 0 {
		if err = domain.ValidateAmount(req.Amount); err != nil {
			return nil, err
		}
	}

	cached, hit, err := s.replayOrReserve(ctx, req.IdempotencyKey, opProcessRefund)
	if err != nil {
		return nil, err
	}
	if hit {
		var prior RefundResult
		if err = json.Unmarshal(cached, &prior); err != nil {
			return nil, NewRefundFailedError(err)
		}
		return &prior, nil
	}

	tx, err := s.transactions.FindByID(ctx, req.TransactionID)
	if err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}

	amount := req.Amount
	if amount == 0 {
		amount = tx.Amount
	}
	if amount > tx.Amount {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, domain.NewInvalidRefundAmountError(amount, tx.Amount)
	}
	if err = tx.CanTransitionTo(domain.StatusRefunded); err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}

	s.audit(ctx, domain.ActionRefundAttempt, tx.UserID, amount, string(tx.Status), map[string]string{
		"transaction_id": tx.ID,
		"reason":         string(reason),
	})

	procReq := domain.ProcessorRefundRequest{
		TransactionID: tx.ID,
		Amount:        amount,
	}
	procResp, procErr := s.processor.Refund(ctx, procReq, req.IdempotencyKey)
	if procErr != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		s.audit(ctx, domain.ActionRefundFailed, tx.UserID, amount, string(domain.StatusFailed), map[string]string{
			"transaction_id": tx.ID,
			"error":          procErr.Error(),
		})
		s.alertFatal(opProcessRefund, "payment processor rejected refund", map[string]string{
			"transaction_id": tx.ID,
			"error":          procErr.Error(),
		})
		return nil, NewRefundFailedError(procErr)
	}

	if err = tx.TransitionTo(domain.StatusRefunded); err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}
	if err = s.transactions.Update(ctx, tx); err != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, NewRefundFailedError(err)
	}

	result = &RefundResult{
		RefundID: procResp.RefundID,
		Amount:   amount,
		Status:   procResp.Status,
	}

	s.audit(ctx, domain.ActionRefundCompleted, tx.UserID, amount, string(domain.StatusRefunded), map[string]string{
		"transaction_id": tx.ID,
		"refund_id":      procResp.RefundID,
		"reason":         string(reason),
	})
	s.completeIdempotent(ctx, req.IdempotencyKey, result)

	return result, nil
}
