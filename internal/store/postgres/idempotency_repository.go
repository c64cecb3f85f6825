package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/flowpay/paycore/internal/core/domain"
)

// IdempotencyRepository enforces at-most-once semantics through the unique
// constraint on key: the insert in Reserve is the atomic check-and-reserve,
// so exactly one concurrent caller wins.
type IdempotencyRepository struct {
	db *DB
}

func NewIdempotencyRepository(db *DB) *IdempotencyRepository {
	return &IdempotencyRepository{db: db}
}

func (r *IdempotencyRepository) Check(ctx context.Context, key string) (*domain.IdempotencyRecord, bool, error) {
	query := `
		SELECT key, operation, status, result, reserved_at, expires_at
		FROM idempotency_keys WHERE key = $1
	`

	var (
		rec       domain.IdempotencyRecord
		result    []byte
		expiresAt *time.Time
	)
	err := r.db.Pool.QueryRow(ctx, query, key).Scan(
		&rec.Key,
		&rec.Operation,
		&rec.Status,
		&result,
		&rec.ReservedAt,
		&expiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to check idempotency key: %w", err)
	}

	rec.Result = json.RawMessage(result)
	if expiresAt != nil {
		rec.ExpiresAt = *expiresAt
	}
	if rec.IsExpired(time.Now()) {
		_, _ = r.db.Pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE key = $1`, key)
		return nil, false, nil
	}
	return &rec, true, nil
}

func (r *IdempotencyRepository) Reserve(ctx context.Context, key, operation string) error {
	query := `
		INSERT INTO idempotency_keys (key, operation, status, reserved_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query, key, operation, domain.IdempotencyReserved, time.Now())
	if err != nil {
		if IsUniqueViolation(err) {
			return domain.NewDuplicateKeyError(key)
		}
		return fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key string, result json.RawMessage, ttl time.Duration) error {
	query := `
		UPDATE idempotency_keys
		SET status = $1, result = $2, expires_at = $3
		WHERE key = $4 AND status = $5
	`

	_, err := r.db.Pool.Exec(ctx, query,
		domain.IdempotencyCompleted, []byte(result), time.Now().Add(ttl),
		key, domain.IdempotencyReserved,
	)
	if err != nil {
		return fmt.Errorf("failed to store idempotent result: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) Release(ctx context.Context, key string) error {
	query := `DELETE FROM idempotency_keys WHERE key = $1 AND status = $2`

	_, err := r.db.Pool.Exec(ctx, query, key, domain.IdempotencyReserved)
	if err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) Sweep(ctx context.Context, now time.Time) (int, error) {
	query := `
		DELETE FROM idempotency_keys
		WHERE (status = $1 AND expires_at <= $2)
		   OR (status = $3 AND reserved_at <= $4)
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		domain.IdempotencyCompleted, now,
		domain.IdempotencyReserved, now.Add(-domain.ReservationStaleAfter),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep idempotency keys: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
