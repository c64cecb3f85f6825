package memory

import (
	"context"
	"sync"
	"time"

	"github.com/flowpay/paycore/internal/core/domain"
	"github.com/google/uuid"
)

// AuditLog is an append-only in-memory log. Entries are copied on append and
// on query, so callers can never mutate the trail after the fact.
type AuditLog struct {
	mu      sync.Mutex
	entries []*domain.AuditEntry
}

func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

func (l *AuditLog) Append(ctx context.Context, entry *domain.AuditEntry) error {
	cp := *entry
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now()
	}
	if entry.Metadata != nil {
		cp.Metadata = make(map[string]string, len(entry.Metadata))
		for k, v := range entry.Metadata {
			cp.Metadata[k] = v
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, &cp)
	return nil
}

func (l *AuditLog) Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*domain.AuditEntry
	for _, e := range l.entries {
		if filter.Matches(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
