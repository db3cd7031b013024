package memory

import (
	"context"
	"sort"
	"sync"

	"tokenwise/internal/domain"
	"tokenwise/internal/storage"
)

// WalletStore is an in-memory implementation of storage.WalletStore.
type WalletStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WalletSnapshot // keyed by address
}

// NewWalletStore creates a new in-memory wallet store.
func NewWalletStore() *WalletStore {
	return &WalletStore{
		data: make(map[string]*domain.WalletSnapshot),
	}
}

// UpsertSnapshot persists a full ranking generation, last-write-wins per
// address.
func (s *WalletStore) UpsertSnapshot(_ context.Context, wallets []*domain.WalletSnapshot) error {
	for _, w := range wallets {
		if w == nil {
			return storage.ErrInvalidInput
		}
		if err := w.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range wallets {
		clone := *w
		s.data[w.Address] = &clone
	}

	return nil
}

// TopWallets retrieves up to limit wallets ordered by rank ascending.
func (s *WalletStore) TopWallets(_ context.Context, limit int) ([]*domain.WalletSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WalletSnapshot, 0, len(s.data))
	for _, w := range s.data {
		clone := *w
		result = append(result, &clone)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Rank < result[j].Rank
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.WalletStore = (*WalletStore)(nil)
