package domain

import (
	"time"
)

// TransactionStatus represents the current state of a transaction in its lifecycle
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
	StatusRefunded   TransactionStatus = "refunded"
)

// ParseTransactionStatus validates a status string against the known set.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled, StatusRefunded:
		return TransactionStatus(s), nil
	}
	return "", NewInvalidStatusError(s)
}

// TransactionType classifies a wallet transaction.
type TransactionType string

const (
	TypeCredit   TransactionType = "credit"
	TypeDebit    TransactionType = "debit"
	TypeTransfer TransactionType = "transfer"
	TypeRefund   TransactionType = "refund"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(s) {
	case TypeCredit, TypeDebit, TypeTransfer, TypeRefund:
		return TransactionType(s), nil
	}
	return "", NewInvalidTransactionTypeError(s)
}

// Transaction is a financial transaction record. It is created once and only
// ever mutated through the status transition guard; terminal transactions are
// kept, never deleted.
type Transaction struct {
	ID            string
	UserID        string
	Amount        int64
	Currency      Currency
	Status        TransactionStatus
	Type          TransactionType
	PaymentMethod string
	Description   string
	ReferenceID   *string
	Metadata      map[string]string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func NewTransaction(id, userID string, amount int64, currency Currency, txType TransactionType, paymentMethod, description string) (*Transaction, error) {
	if id == "" {
		return nil, NewMissingRequiredFieldError("transaction ID")
	}
	if userID == "" {
		return nil, NewMissingRequiredFieldError("user ID")
	}
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	return &Transaction{
		ID:            id,
		UserID:        userID,
		Amount:        amount,
		Currency:      currency,
		Status:        StatusPending,
		Type:          txType,
		PaymentMethod: paymentMethod,
		Description:   description,
		CreatedAt:     time.Now(),
	}, nil
}

// CanTransitionTo validates whether the transaction can move from its current
// status to the target status. It returns nil if the transition is allowed.
//
// Valid transitions are:
//   - pending → processing, failed, cancelled
//   - processing → completed, failed
//   - completed → refunded
//   - failed → pending (retry)
//
// cancelled and refunded are terminal. The guard never coerces a status.
func (t *Transaction) CanTransitionTo(target TransactionStatus) error {
	switch t.Status {
	case StatusCancelled, StatusRefunded:
		return NewInvalidTransitionError(t.Status, target)

	case StatusPending:
		return t.allow(target, StatusProcessing, StatusFailed, StatusCancelled)
	case StatusProcessing:
		return t.allow(target, StatusCompleted, StatusFailed)
	case StatusCompleted:
		return t.allow(target, StatusRefunded)
	case StatusFailed:
		return t.allow(target, StatusPending)
	}
	return NewInvalidTransitionError(t.Status, target)
}

func (t *Transaction) allow(target TransactionStatus, allowed ...TransactionStatus) error {
	for _, s := range allowed {
		if target == s {
			return nil
		}
	}
	return NewInvalidTransitionError(t.Status, target)
}

// TransitionTo applies a status change after consulting the guard and stamps
// UpdatedAt.
func (t *Transaction) TransitionTo(target TransactionStatus) error {
	if err := t.CanTransitionTo(target); err != nil {
		return err
	}
	t.Status = target
	now := time.Now()
	t.UpdatedAt = &now
	return nil
}

// IsTerminal reports whether no further transitions are legal.
func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case StatusCancelled, StatusRefunded:
		return true
	default:
		return false
	}
}
