package memory

import (
	"context"
	"sort"
	"sync"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/storage"
)

type txKey struct {
	txHash string
	wallet string
}

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu     sync.RWMutex
	data   map[txKey]*domain.Transaction
	nextID int64
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data:   make(map[txKey]*domain.Transaction),
		nextID: 1,
	}
}

var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a single transaction. Returns ErrDuplicateKey if (tx_hash, wallet) exists.
func (s *TransactionStore) Insert(_ context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.TxHash == "" || tx.Wallet == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := txKey{tx.TxHash, tx.Wallet}
	if _, exists := s.data[k]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *tx
	copy.ID = s.nextID
	s.nextID++
	s.data[k] = &copy
	return nil
}

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(_ context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[txKey]struct{}, len(txs))
	for _, tx := range txs {
		if tx == nil || tx.TxHash == "" || tx.Wallet == "" {
			return storage.ErrInvalidInput
		}
		k := txKey{tx.TxHash, tx.Wallet}
		if _, exists := s.data[k]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[k]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[k] = struct{}{}
	}

	for _, tx := range txs {
		copy := *tx
		copy.ID = s.nextID
		s.nextID++
		s.data[txKey{tx.TxHash, tx.Wallet}] = &copy
	}

	return nil
}

// GetTradesByWallets retrieves buy and sell transactions for the given wallets
// with block_time >= since, ordered by block_time ASC.
func (s *TransactionStore) GetTradesByWallets(_ context.Context, wallets []string, since int64) ([]*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(wallets))
	for _, w := range wallets {
		wanted[w] = struct{}{}
	}

	var result []*domain.Transaction
	for _, tx := range s.data {
		if _, ok := wanted[tx.Wallet]; !ok {
			continue
		}
		if tx.BlockTime < since {
			continue
		}
		if tx.Side != domain.SideBuy && tx.Side != domain.SideSell {
			continue
		}
		copy := *tx
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BlockTime != result[j].BlockTime {
			return result[i].BlockTime < result[j].BlockTime
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// CountByWallet returns the number of stored transactions for a wallet.
func (s *TransactionStore) CountByWallet(_ context.Context, wallet string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, tx := range s.data {
		if tx.Wallet == wallet {
			n++
		}
	}
	return n, nil
}
