package domain

import "time"

// AuditAction identifies what a log entry records.
type AuditAction string

const (
	ActionPaymentIntentAttempt AuditAction = "payment_intent.attempt"
	ActionPaymentIntentCreated AuditAction = "payment_intent.created"
	ActionPaymentIntentFailed  AuditAction = "payment_intent.failed"
	ActionRefundAttempt        AuditAction = "refund.attempt"
	ActionRefundCompleted      AuditAction = "refund.completed"
	ActionRefundFailed         AuditAction = "refund.failed"
	ActionWalletTxAttempt      AuditAction = "wallet_transaction.attempt"
	ActionWalletTxCompleted    AuditAction = "wallet_transaction.completed"
	ActionWalletTxFailed       AuditAction = "wallet_transaction.failed"
	ActionStatusChanged        AuditAction = "transaction.status_changed"
	ActionStatusChangeRejected AuditAction = "transaction.status_change_rejected"
)

// AuditEntry is one record in the append-only audit trail. Entries are
// self-contained and never mutated after append: the trail alone is enough to
// reconstruct what was requested, by whom, for how much, and the outcome.
type AuditEntry struct {
	ID        string
	Timestamp time.Time
	Action    AuditAction
	UserID    string
	Amount    int64
	Status    string
	Metadata  map[string]string
}

// AuditFilter narrows an audit query. Zero values match everything.
type AuditFilter struct {
	UserID string
	Action AuditAction
	Start  time.Time
	End    time.Time
}

// Matches reports whether the entry satisfies the filter.
func (f AuditFilter) Matches(e *AuditEntry) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if !f.Start.IsZero() && e.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.Timestamp.After(f.End) {
		return false
	}
	return true
}
