package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/flowpay/paycore/internal/core/domain"
)

// TransactionRepository stores transactions in a mutex-guarded map.
type TransactionRepository struct {
	mu           sync.RWMutex
	transactions map[string]*domain.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{
		transactions: make(map[string]*domain.Transaction),
	}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *tx
	r.transactions[tx.ID] = &cp
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tx, ok := r.transactions[id]
	if !ok {
		return nil, domain.NewTransactionNotFoundError(id)
	}
	cp := *tx
	return &cp, nil
}

func (r *TransactionRepository) FindByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *TransactionRepository) Update(ctx context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.transactions[tx.ID]; !ok {
		return domain.NewTransactionNotFoundError(tx.ID)
	}
	cp := *tx
	r.transactions[tx.ID] = &cp
	return nil
}

// WalletRepository keeps wallet balances with a lock per user, so concurrent
// mutations against the same wallet serialize while distinct users proceed in
// parallel. Apply is the only mutation path and checks the balance invariant
// under the user's lock, which is what rules out lost updates.
type WalletRepository struct {
	mu      sync.Mutex
	locks   map[string]*sync.Mutex
	wallets map[string]*domain.WalletBalance
}

func NewWalletRepository() *WalletRepository {
	return &WalletRepository{
		locks:   make(map[string]*sync.Mutex),
		wallets: make(map[string]*domain.WalletBalance),
	}
}

func (r *WalletRepository) userLock(userID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		r.locks[userID] = l
	}
	return l
}

func (r *WalletRepository) Balance(ctx context.Context, userID string) (*domain.WalletBalance, error) {
	l := r.userLock(userID)
	l.Lock()
	defer l.Unlock()

	w, ok := r.wallets[userID]
	if !ok {
		return nil, domain.NewWalletNotFoundError(userID)
	}
	cp := *w
	return &cp, nil
}

func (r *WalletRepository) Apply(ctx context.Context, userID string, delta int64, currency domain.Currency) (*domain.WalletBalance, error) {
	l := r.userLock(userID)
	l.Lock()
	defer l.Unlock()

	w, ok := r.wallets[userID]
	if !ok {
		w = domain.NewWalletBalance(userID, currency)
		r.wallets[userID] = w
	}
	if err := w.Apply(delta); err != nil {
		return nil, err
	}
	cp := *w
	return &cp, nil
}
