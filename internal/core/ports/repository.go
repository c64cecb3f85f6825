package ports

import (
	"context"

	"github.com/flowpay/paycore/internal/core/domain"
)

// TransactionRepository stores transaction records. Records are never
// deleted; status changes go through the domain transition guard before
// Update is called.
type TransactionRepository interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	FindByID(ctx context.Context, id string) (*domain.Transaction, error)
	FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error)
	Update(ctx context.Context, tx *domain.Transaction) error
}

// WalletRepository stores wallet balances. Apply must be atomic per user:
// two concurrent calls for the same userID must not interleave their
// read-modify-write, and a debit below zero returns INSUFFICIENT_FUNDS with
// the balance untouched.
type WalletRepository interface {
	Balance(ctx context.Context, userID string) (*domain.WalletBalance, error)
	Apply(ctx context.Context, userID string, delta int64, currency domain.Currency) (*domain.WalletBalance, error)
}
