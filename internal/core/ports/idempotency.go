package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
)

// IdempotencyStore deduplicates retried requests. The contract is
// first-writer-wins: Reserve is an atomic check-and-reserve, so for any key
// exactly one caller wins the reservation and executes the side effect;
// every other caller within the TTL observes the winner's stored result.
// Replayed payloads are not compared against the original.
type IdempotencyStore interface {
	// Check returns the record for key if one exists and has not expired.
	// Lookups never fail a financial operation; a miss simply proceeds.
	Check(ctx context.Context, key string) (*domain.IdempotencyRecord, bool, error)

	// Reserve atomically claims key for the calling operation. It returns a
	// DUPLICATE_IDEMPOTENCY_KEY domain error when the key is already
	// reserved or completed.
	Reserve(ctx context.Context, key, operation string) error

	// Complete locks in the first computed result for key with the given TTL.
	Complete(ctx context.Context, key string, result json.RawMessage, ttl time.Duration) error

	// Release drops a reservation after a non-terminal failure so a
	// legitimate retry with the same key may proceed.
	Release(ctx context.Context, key string) error

	// Sweep removes entries expired as of now and reports how many.
	Sweep(ctx context.Context, now time.Time) (int, error)
}
