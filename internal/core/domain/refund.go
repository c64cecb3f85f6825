package domain

// RefundReason is the closed set of reasons accepted on a refund request.
type RefundReason string

const (
	ReasonDuplicate           RefundReason = "duplicate"
	ReasonFraudulent          RefundReason = "fraudulent"
	ReasonRequestedByCustomer RefundReason = "requested_by_customer"
	ReasonOther               RefundReason = "other"
)

func ParseRefundReason(s string) (RefundReason, error) {
	switch RefundReason(s) {
	case ReasonDuplicate, ReasonFraudulent, ReasonRequestedByCustomer, ReasonOther:
		return RefundReason(s), nil
	}
	return "", NewInvalidRefundReasonError(s)
}

// Refund records a refund against an original transaction.
// Invariant: Amount never exceeds the original transaction's amount.
type Refund struct {
	RefundID      string
	TransactionID string
	Amount        int64
	Reason        RefundReason
	Status        string
}
