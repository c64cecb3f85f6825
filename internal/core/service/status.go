package service

import (
	"context"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
)

const opUpdateStatus = "update_transaction_status"

// UpdateTransactionStatus moves a transaction to a new status after
// consulting the transition guard. Illegal edges are rejected with
// INVALID_STATUS_TRANSITION before any mutation.
func (s *PaymentService) UpdateTransactionStatus(ctx context.Context, transactionID, newStatus, userID string) (tx *domain.Transaction, err error) {
	start := time.Now()
	defer func() { s.observe(opUpdateStatus, start, err) }()

	if transactionID == "" {
		return nil, domain.NewMissingRequiredFieldError("transaction ID")
	}
	target, err := domain.ParseTransactionStatus(newStatus)
	if err != nil {
		return nil, err
	}

	tx, err = s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	from := tx.Status
	if err = tx.TransitionTo(target); err != nil {
		s.audit(ctx, domain.ActionStatusChangeRejected, userID, tx.Amount, string(from), map[string]string{
			"transaction_id":   tx.ID,
			"requested_status": string(target),
		})
		return nil, err
	}

	if err = s.transactions.Update(ctx, tx); err != nil {
		return nil, NewStatusUpdateFailedError(err)
	}

	s.audit(ctx, domain.ActionStatusChanged, userID, tx.Amount, string(target), map[string]string{
		"transaction_id": tx.ID,
		"from_status":    string(from),
	})

	return tx, nil
}
