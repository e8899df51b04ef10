package memory

import (
	"context"
	"sort"
	"sync"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/storage"
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

var _ storage.WalletStore = (*WalletStore)(nil)

// Insert adds a new wallet snapshot. Returns ErrDuplicateKey if address exists.
func (s *WalletStore) Insert(_ context.Context, w *domain.WalletSnapshot) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.Address]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *w
	s.data[w.Address] = &copy
	return nil
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *WalletStore) InsertBulk(_ context.Context, wallets []*domain.WalletSnapshot) error {
	if len(wallets) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		if w == nil || w.Address == "" {
			return storage.ErrInvalidInput
		}
		if _, exists := s.data[w.Address]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[w.Address]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[w.Address] = struct{}{}
	}

	for _, w := range wallets {
		copy := *w
		s.data[w.Address] = &copy
	}

	return nil
}

// GetByAddress retrieves a snapshot by wallet address. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByAddress(_ context.Context, address string) (*domain.WalletSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[address]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *w
	return &copy, nil
}

// GetAll retrieves all snapshots, ordered by address ASC.
func (s *WalletStore) GetAll(_ context.Context) ([]*domain.WalletSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WalletSnapshot, 0, len(s.data))
	for _, w := range s.data {
		copy := *w
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}

// GetNonHighFrequency retrieves all snapshots with the high-frequency flag
// unset, ordered by address ASC.
func (s *WalletStore) GetNonHighFrequency(_ context.Context) ([]*domain.WalletSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.WalletSnapshot
	for _, w := range s.data {
		if w.IsHighFrequency {
			continue
		}
		copy := *w
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Address < result[j].Address
	})

	return result, nil
}
