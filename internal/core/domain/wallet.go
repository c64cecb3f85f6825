package domain

// WalletBalance is a user's wallet, in integer minor units.
type WalletBalance struct {
	UserID           string
	AvailableBalance int64
	PendingBalance   int64
	TotalBalance     int64
	Currency         Currency
}

func NewWalletBalance(userID string, currency Currency) *WalletBalance {
	return &WalletBalance{
		UserID:   userID,
		Currency: currency,
	}
}

// Apply adjusts the available balance by delta (negative for debits). A debit
// that would drive the available balance below zero is rejected before any
// mutation.
func (w *WalletBalance) Apply(delta int64) error {
	if w.AvailableBalance+delta < 0 {
		return NewInsufficientFundsError(w.UserID, w.AvailableBalance, -delta)
	}
	w.AvailableBalance += delta
	w.TotalBalance = w.AvailableBalance + w.PendingBalance
	return nil
}
