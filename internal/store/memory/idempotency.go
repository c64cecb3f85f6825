// Package memory provides in-memory implementations of the core's storage
// ports. Stores are explicitly constructed and injected; there is no
// process-global state, so test runs are isolated from each other.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
)

// IdempotencyStore keeps idempotency records in a mutex-guarded map. The
// check-and-reserve step happens under the lock, so at most one caller per
// key wins the reservation. Expiry is lazy on read plus whatever Sweep the
// caller schedules.
type IdempotencyStore struct {
	mu      sync.Mutex
	records map[string]*domain.IdempotencyRecord

	now func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: make(map[string]*domain.IdempotencyRecord),
		now:     time.Now,
	}
}

func (s *IdempotencyStore) Check(ctx context.Context, key string) (*domain.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	if rec.IsExpired(s.now()) {
		delete(s.records, key)
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (s *IdempotencyStore) Reserve(ctx context.Context, key, operation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok && !rec.IsExpired(s.now()) {
		return domain.NewDuplicateKeyError(key)
	}
	s.records[key] = &domain.IdempotencyRecord{
		Key:        key,
		Operation:  operation,
		Status:     domain.IdempotencyReserved,
		ReservedAt: s.now(),
	}
	return nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, result json.RawMessage, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return domain.NewInvalidIdempotencyKeyError("completing a key that was never reserved")
	}
	if rec.IsComplete() {
		// First writer wins; a second completion is ignored.
		return nil
	}
	rec.Status = domain.IdempotencyCompleted
	rec.Result = result
	rec.ExpiresAt = s.now().Add(ttl)
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[key]; ok && !rec.IsComplete() {
		delete(s.records, key)
	}
	return nil
}

func (s *IdempotencyStore) Sweep(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, rec := range s.records {
		if rec.IsExpired(now) {
			delete(s.records, key)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of live records, for tests and diagnostics.
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
