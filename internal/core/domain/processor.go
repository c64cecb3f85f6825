package domain

import "time"

// Request/response shapes for the external payment processor. The processor
// is an opaque collaborator: it hands back identifiers and a client secret,
// and may be slow, fallible, or duplicative on retry.

type ProcessorIntentRequest struct {
	Amount        int64    `json:"amount"`
	Currency      Currency `json:"currency"`
	PaymentMethod string   `json:"payment_method"`
	CustomerID    string   `json:"customer_id,omitempty"`
	Description   string   `json:"description,omitempty"`
}

type ProcessorIntentResponse struct {
	IntentID     string    `json:"intent_id"`
	ClientSecret string    `json:"client_secret"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProcessorRefundRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
}

type ProcessorRefundResponse struct {
	RefundID   string    `json:"refund_id"`
	Status     string    `json:"status"`
	RefundedAt time.Time `json:"refunded_at"`
}
