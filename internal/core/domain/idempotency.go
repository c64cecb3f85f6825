package domain

import (
	"encoding/json"
	"time"
)

// MaxIdempotencyKeyLength bounds caller-supplied keys.
const MaxIdempotencyKeyLength = 255

// DefaultIdempotencyTTL is how long a completed result stays replayable.
const DefaultIdempotencyTTL = 24 * time.Hour

// ReservationStaleAfter is how long an in-flight reservation may sit without
// completing before it is treated as abandoned and eligible for takeover.
const ReservationStaleAfter = 5 * time.Minute

// IdempotencyStatus tracks the lifecycle of a key.
type IdempotencyStatus string

const (
	IdempotencyReserved  IdempotencyStatus = "reserved"
	IdempotencyCompleted IdempotencyStatus = "completed"
)

// IdempotencyRecord maps a caller-supplied key to the first result computed
// for it. Once completed the record is read-only until it expires; replays
// within the TTL return Result verbatim regardless of the replayed payload.
type IdempotencyRecord struct {
	Key        string
	Operation  string
	Status     IdempotencyStatus
	Result     json.RawMessage
	ReservedAt time.Time
	ExpiresAt  time.Time
}

// IsComplete reports whether a result has been locked in for this key.
func (r *IdempotencyRecord) IsComplete() bool {
	return r.Status == IdempotencyCompleted
}

// IsExpired reports whether the record should be treated as absent at the
// given instant. Completed records expire at ExpiresAt; reservations go stale
// after ReservationStaleAfter so a crashed holder cannot poison retries.
func (r *IdempotencyRecord) IsExpired(now time.Time) bool {
	if r.IsComplete() {
		return now.After(r.ExpiresAt)
	}
	return now.After(r.ReservedAt.Add(ReservationStaleAfter))
}

// ValidateIdempotencyKey enforces the key contract: non-empty, bounded length.
func ValidateIdempotencyKey(key string) error {
	if key == "" {
		return NewInvalidIdempotencyKeyError("key must not be empty")
	}
	if len(key) > MaxIdempotencyKeyLength {
		return NewInvalidIdempotencyKeyError("key exceeds 255 characters")
	}
	return nil
}
