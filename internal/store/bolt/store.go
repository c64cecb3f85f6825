// Package bolt provides a BoltDB-backed idempotency store and audit log.
//
// BoltDB is an embedded key/value store keeping all data in a single file, so
// single-node deployments get durable idempotency records and an audit trail
// without an external database process. Bolt serializes writers, which makes
// the check-and-reserve step atomic for free.
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/flowpay/paycore/internal/core/domain"
)

var (
	idempotencyBucket = []byte("idempotency")
	auditBucket       = []byte("audit")
)

// Store wraps a BoltDB database and implements the IdempotencyStore and
// AuditLog ports.
type Store struct {
	db *bolt.DB
}

// Open opens (or creates) the database at path and ensures buckets exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(idempotencyBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(auditBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Check(ctx context.Context, key string) (*domain.IdempotencyRecord, bool, error) {
	var rec domain.IdempotencyRecord
	found := false

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(idempotencyBucket)
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		if rec.IsExpired(time.Now()) {
			return b.Delete([]byte(key))
		}
		found = true
		return nil
	})
	if err != nil || !found {
		return nil, false, err
	}
	return &rec, true, nil
}

func (s *Store) Reserve(ctx context.Context, key, operation string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(idempotencyBucket)

		if v := b.Get([]byte(key)); v != nil {
			var existing domain.IdempotencyRecord
			if err := json.Unmarshal(v, &existing); err != nil {
				return err
			}
			if !existing.IsExpired(time.Now()) {
				return domain.NewDuplicateKeyError(key)
			}
		}

		rec := domain.IdempotencyRecord{
			Key:        key,
			Operation:  operation,
			Status:     domain.IdempotencyReserved,
			ReservedAt: time.Now(),
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

func (s *Store) Complete(ctx context.Context, key string, result json.RawMessage, ttl time.Duration) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(idempotencyBucket)
		v := b.Get([]byte(key))
		if v == nil {
			return domain.NewInvalidIdempotencyKeyError("completing a key that was never reserved")
		}
		var rec domain.IdempotencyRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		if rec.IsComplete() {
			// First writer wins.
			return nil
		}
		rec.Status = domain.IdempotencyCompleted
		rec.Result = result
		rec.ExpiresAt = time.Now().Add(ttl)

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(idempotencyBucket)
		v := b.Get([]byte(key))
		if v == nil {
			return nil
		}
		var rec domain.IdempotencyRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		if rec.IsComplete() {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) Sweep(ctx context.Context, now time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(idempotencyBucket)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var rec domain.IdempotencyRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.IsExpired(now) {
				if err := c.Delete(); err != nil {
					return err
				}
				removed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Append stores an audit entry under a time-ordered key so range queries walk
// the bucket in chronological order.
func (s *Store) Append(ctx context.Context, entry *domain.AuditEntry) error {
	cp := *entry
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now()
	}

	data, err := json.Marshal(&cp)
	if err != nil {
		return err
	}

	key := make([]byte, 8, 8+len(cp.ID))
	binary.BigEndian.PutUint64(key, uint64(cp.Timestamp.UnixNano()))
	key = append(key, cp.ID...)

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(auditBucket).Put(key, data)
	})
}

func (s *Store) Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	var out []*domain.AuditEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(auditBucket).ForEach(func(k, v []byte) error {
			var e domain.AuditEntry
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			if filter.Matches(&e) {
				out = append(out, &e)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
