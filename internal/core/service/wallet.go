package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/google/uuid"
)

const opWalletTransaction = "process_wallet_transaction"

type WalletTransactionRequest struct {
	UserID         string
	Amount         int64
	Type           string // credit | debit | transfer | refund
	Currency       string
	Description    string
	IdempotencyKey string
}

type WalletTransactionResult struct {
	TransactionID string `json:"transaction_id"`
	NewBalance    int64  `json:"new_balance"`
}

// ProcessWalletTransaction applies a signed adjustment to a user's wallet and
// records a transaction for it. The balance read-modify-write is atomic per
// user inside the wallet repository, so concurrent debits and credits against
// the same wallet cannot lose updates. A debit that would drive the available
// balance negative fails with INSUFFICIENT_FUNDS and leaves it untouched.
func (s *PaymentService) ProcessWalletTransaction(ctx context.Context, req WalletTransactionRequest) (result *WalletTransactionResult, err error) {
	start := time.Now()
	defer func() { s.observe(opWalletTransaction, start, err) }()

	if req.UserID == "" {
		return nil, domain.NewMissingRequiredFieldError("user ID")
	}
	if err = domain.ValidateAmount(req.Amount); err != nil {
		return nil, err
	}
	txType, err := domain.ParseTransactionType(req.Type)
	if err != nil {
		return nil, err
	}
	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	cached, hit, err := s.replayOrReserve(ctx, req.IdempotencyKey, opWalletTransaction)
	if err != nil {
		return nil, err
	}
	if hit {
		var prior WalletTransactionResult
		if err = json.Unmarshal(cached, &prior); err != nil {
			return nil, NewWalletTransactionFailedError(err)
		}
		return &prior, nil
	}

	s.audit(ctx, domain.ActionWalletTxAttempt, req.UserID, req.Amount, string(domain.StatusPending), map[string]string{
		"type": string(txType),
	})

	delta := req.Amount
	if txType == domain.TypeDebit {
		delta = -req.Amount
	}

	balance, applyErr := s.wallets.Apply(ctx, req.UserID, delta, currency)
	if applyErr != nil {
		s.releaseKey(ctx, req.IdempotencyKey)
		s.audit(ctx, domain.ActionWalletTxFailed, req.UserID, req.Amount, string(domain.StatusFailed), map[string]string{
			"type":  string(txType),
			"error": applyErr.Error(),
		})
		if domain.IsErrorCode(applyErr, domain.ErrCodeInsufficientFunds) {
			return nil, applyErr
		}
		return nil, NewWalletTransactionFailedError(applyErr)
	}

	// The balance is already mutated. Releasing the key invites a retry, so
	// any failure from here on must undo the adjustment first or the retry
	// would apply it a second time.
	revertBalance := func() {
		if _, revertErr := s.wallets.Apply(ctx, req.UserID, -delta, balance.Currency); revertErr != nil {
			s.logger.Error("failed to revert wallet adjustment", "user_id", req.UserID, "delta", delta, "error", revertErr)
			s.alertFatal(opWalletTransaction, "wallet balance left inconsistent after failed revert", map[string]string{
				"user_id": req.UserID,
				"error":   revertErr.Error(),
			})
		}
	}

	tx, err := domain.NewTransaction(uuid.NewString(), req.UserID, req.Amount, balance.Currency, txType, "wallet", req.Description)
	if err != nil {
		revertBalance()
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, err
	}
	// Wallet transactions settle synchronously; walk the record to completed
	// through the guard rather than assigning the status directly.
	if err = tx.TransitionTo(domain.StatusProcessing); err == nil {
		err = tx.TransitionTo(domain.StatusCompleted)
	}
	if err != nil {
		revertBalance()
		s.releaseKey(ctx, req.IdempotencyKey)
		return nil, NewWalletTransactionFailedError(err)
	}
	if err = s.transactions.Create(ctx, tx); err != nil {
		revertBalance()
		s.releaseKey(ctx, req.IdempotencyKey)
		s.audit(ctx, domain.ActionWalletTxFailed, req.UserID, req.Amount, string(domain.StatusFailed), map[string]string{
			"type":  string(txType),
			"error": err.Error(),
		})
		return nil, NewWalletTransactionFailedError(err)
	}

	result = &WalletTransactionResult{
		TransactionID: tx.ID,
		NewBalance:    balance.AvailableBalance,
	}

	s.audit(ctx, domain.ActionWalletTxCompleted, req.UserID, req.Amount, string(domain.StatusCompleted), map[string]string{
		"type":           string(txType),
		"transaction_id": tx.ID,
	})
	s.completeIdempotent(ctx, req.IdempotencyKey, result)

	return result, nil
}
