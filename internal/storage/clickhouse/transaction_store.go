package clickhouse

import (
	"context"
	"fmt"
	"hash/fnv"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/storage"
)

// TransactionStore implements storage.TransactionStore on a ClickHouse
// MergeTree feed. MergeTree does not enforce uniqueness at insert time, so
// duplicate detection is done with explicit lookups before each batch.
type TransactionStore struct {
	conn *Conn
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(conn *Conn) *TransactionStore {
	return &TransactionStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// rowID derives a stable identifier from the (tx_hash, wallet) key so rows
// keep their identity across stores that do not auto-assign one.
func rowID(txHash, wallet string) int64 {
	h := fnv.New64a()
	h.Write([]byte(txHash))
	h.Write([]byte{0})
	h.Write([]byte(wallet))
	return int64(h.Sum64())
}

// Insert adds a single transaction. Returns ErrDuplicateKey if (tx_hash, wallet) exists.
func (s *TransactionStore) Insert(ctx context.Context, tx *domain.Transaction) error {
	return s.InsertBulk(ctx, []*domain.Transaction{tx})
}

// InsertBulk adds multiple transactions. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	type key struct {
		txHash string
		wallet string
	}
	seen := make(map[key]struct{}, len(txs))
	for _, tx := range txs {
		if tx == nil || tx.TxHash == "" || tx.Wallet == "" {
			return storage.ErrInvalidInput
		}
		k := key{tx.TxHash, tx.Wallet}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, tx := range txs {
		exists, err := s.exists(ctx, tx.TxHash, tx.Wallet)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO transactions_feed (
			id, tx_hash, wallet, block_time, side, balance_change, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, tx := range txs {
		err = batch.Append(
			uint64(rowID(tx.TxHash, tx.Wallet)),
			tx.TxHash, tx.Wallet, tx.BlockTime,
			tx.Side, tx.BalanceChange, tx.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetTradesByWallets retrieves buy and sell transactions for the given wallets
// with block_time >= since, ordered by block_time ASC.
func (s *TransactionStore) GetTradesByWallets(ctx context.Context, wallets []string, since int64) ([]*domain.Transaction, error) {
	if len(wallets) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, tx_hash, wallet, block_time, side, balance_change, created_at
		FROM transactions_feed
		WHERE wallet IN (?)
		  AND block_time >= ?
		  AND side IN ('buy', 'sell')
		ORDER BY block_time ASC, tx_hash ASC
	`

	rows, err := s.conn.Query(ctx, query, wallets, since)
	if err != nil {
		return nil, fmt.Errorf("query trades by wallets: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var id uint64

		err := rows.Scan(
			&id, &t.TxHash, &t.Wallet, &t.BlockTime,
			&t.Side, &t.BalanceChange, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}

		t.ID = int64(id)
		txs = append(txs, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}

// CountByWallet returns the number of stored transactions for a wallet.
func (s *TransactionStore) CountByWallet(ctx context.Context, wallet string) (int64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM transactions_feed WHERE wallet = ?`, wallet,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count transactions by wallet: %w", err)
	}
	return int64(count), nil
}

// exists checks if a transaction with the given key exists.
func (s *TransactionStore) exists(ctx context.Context, txHash, wallet string) (bool, error) {
	query := `
		SELECT count(*) FROM transactions_feed
		WHERE tx_hash = ? AND wallet = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, txHash, wallet).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
