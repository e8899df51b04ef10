package postgres

import (
	"context"
	"fmt"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

const insertTransactionQuery = `
	INSERT INTO transactions (
		tx_hash, wallet, block_time, side, balance_change, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6
	)
`

// Insert adds a single transaction. Returns ErrDuplicateKey if (tx_hash, wallet) exists.
func (s *TransactionStore) Insert(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.TxHash == "" || tx.Wallet == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertTransactionQuery,
		tx.TxHash, tx.Wallet, tx.BlockTime, tx.Side, tx.BalanceChange, tx.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// InsertBulk adds multiple transactions atomically. Fails entire batch on any duplicate.
func (s *TransactionStore) InsertBulk(ctx context.Context, txs []*domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	dbTx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx)

	for _, tx := range txs {
		if tx == nil || tx.TxHash == "" || tx.Wallet == "" {
			return storage.ErrInvalidInput
		}
		_, err := dbTx.Exec(ctx, insertTransactionQuery,
			tx.TxHash, tx.Wallet, tx.BlockTime, tx.Side, tx.BalanceChange, tx.CreatedAt,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert transaction in bulk: %w", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
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
		FROM transactions
		WHERE wallet = ANY($1)
		  AND block_time >= $2
		  AND side IN ('buy', 'sell')
		ORDER BY block_time ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, wallets, since)
	if err != nil {
		return nil, fmt.Errorf("get trades by wallets: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		err := rows.Scan(
			&t.ID, &t.TxHash, &t.Wallet, &t.BlockTime,
			&t.Side, &t.BalanceChange, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}

// CountByWallet returns the number of stored transactions for a wallet.
func (s *TransactionStore) CountByWallet(ctx context.Context, wallet string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM transactions WHERE wallet = $1`, wallet).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count transactions by wallet: %w", err)
	}
	return n, nil
}
