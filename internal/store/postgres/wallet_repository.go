package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowpay/paycore/internal/core/domain"
)

type WalletRepository struct {
	db *DB
}

func NewWalletRepository(db *DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) Balance(ctx context.Context, userID string) (*domain.WalletBalance, error) {
	query := `
		SELECT user_id, available_balance, pending_balance, currency
		FROM wallets WHERE user_id = $1
	`

	var w domain.WalletBalance
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&w.UserID,
		&w.AvailableBalance,
		&w.PendingBalance,
		&w.Currency,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewWalletNotFoundError(userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet: %w", err)
	}
	w.TotalBalance = w.AvailableBalance + w.PendingBalance
	return &w, nil
}

// Apply adjusts a wallet balance atomically. The row is locked FOR UPDATE for
// the duration of the transaction, so concurrent adjustments against the same
// user serialize and the balance invariant is checked against a current read,
// never a stale one.
func (r *WalletRepository) Apply(ctx context.Context, userID string, delta int64, currency domain.Currency) (*domain.WalletBalance, error) {
	var result domain.WalletBalance

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin wallet transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO wallets (user_id, available_balance, pending_balance, currency)
		VALUES ($1, 0, 0, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure wallet row: %w", err)
	}

	var w domain.WalletBalance
	err = tx.QueryRow(ctx, `
		SELECT user_id, available_balance, pending_balance, currency
		FROM wallets WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&w.UserID, &w.AvailableBalance, &w.PendingBalance, &w.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet row: %w", err)
	}

	if err := w.Apply(delta); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE wallets SET available_balance = $1 WHERE user_id = $2
	`, w.AvailableBalance, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update wallet: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit wallet update: %w", err)
	}

	result = w
	return &result, nil
}
