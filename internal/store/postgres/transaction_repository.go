package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/flowpay/paycore/internal/core/domain"
)

type TransactionRepository struct {
	db *DB
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (
			id, user_id, amount_cents, currency, status, tx_type,
			payment_method, description, reference_id, metadata, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	metadata, err := marshalMetadata(tx.Metadata)
	if err != nil {
		return err
	}

	_, err = r.db.Pool.Exec(ctx, query,
		tx.ID,
		tx.UserID,
		tx.Amount,
		tx.Currency,
		tx.Status,
		tx.Type,
		tx.PaymentMethod,
		tx.Description,
		tx.ReferenceID,
		metadata,
		tx.CreatedAt,
		tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

const transactionColumns = `
	id, user_id, amount_cents, currency, status, tx_type,
	payment_method, description, reference_id, metadata, created_at, updated_at
`

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	row := r.db.Pool.QueryRow(ctx, query, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NewTransactionNotFoundError(id)
	}
	return tx, err
}

func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + `
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	query := `
		UPDATE transactions
		SET status = $1, updated_at = $2, metadata = $3
		WHERE id = $4
	`

	metadata, err := marshalMetadata(tx.Metadata)
	if err != nil {
		return err
	}

	tag, err := r.db.Pool.Exec(ctx, query, tx.Status, tx.UpdatedAt, metadata, tx.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewTransactionNotFoundError(tx.ID)
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		tx       domain.Transaction
		metadata []byte
	)
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Currency,
		&tx.Status,
		&tx.Type,
		&tx.PaymentMethod,
		&tx.Description,
		&tx.ReferenceID,
		&metadata,
		&tx.CreatedAt,
		&tx.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if metadata != nil {
		if err := json.Unmarshal(metadata, &tx.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode transaction metadata: %w", err)
		}
	}
	return &tx, nil
}

func marshalMetadata(m map[string]string) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return data, nil
}
