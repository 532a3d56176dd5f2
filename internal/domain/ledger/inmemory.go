package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// InMemoryRepository is the ledger store used in tests and when the service
// runs without a database. Insertion order is the slice order.
type InMemoryRepository struct {
	mu   sync.RWMutex
	txs  []Transaction
	byID map[uuid.UUID]struct{}
}

// NewInMemoryRepository creates an empty in-memory ledger.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[uuid.UUID]struct{})}
}

func (r *InMemoryRepository) Add(_ context.Context, tx Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[tx.ID]; exists {
		return fmt.Errorf("ledger: duplicate id %s", tx.ID)
	}
	r.byID[tx.ID] = struct{}{}
	r.txs = append(r.txs, tx)
	return nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Transaction, len(r.txs))
	copy(out, r.txs)
	return out, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	for i, tx := range r.txs {
		if tx.ID == id {
			r.txs = append(r.txs[:i], r.txs[i+1:]...)
			break
		}
	}
	return nil
}
