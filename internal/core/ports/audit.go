package ports

import (
	"context"

	"github.com/flowpay/paycore/internal/core/domain"
)

// AuditLog is the append-only trail of financial events. Appends must be safe
// for unsynchronized concurrent callers; a failed append is reported to the
// caller but must never abort the operation that produced the entry.
type AuditLog interface {
	Append(ctx context.Context, entry *domain.AuditEntry) error
	Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, error)
}
