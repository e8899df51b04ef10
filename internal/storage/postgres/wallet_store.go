package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/storage"
)

// WalletStore implements storage.WalletStore using PostgreSQL.
type WalletStore struct {
	pool *Pool
}

// NewWalletStore creates a new WalletStore.
func NewWalletStore(pool *Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WalletStore = (*WalletStore)(nil)

const walletColumns = `
	address, name, is_high_frequency,
	pnl_30d, winrate_30d, tx_count_30d, avg_hold_time_30d,
	balance, sol_balance
`

const insertWalletQuery = `
	INSERT INTO smart_wallets (
		address, name, is_high_frequency,
		pnl_30d, winrate_30d, tx_count_30d, avg_hold_time_30d,
		balance, sol_balance
	) VALUES (
		$1, $2, $3,
		$4, $5, $6, $7,
		$8, $9
	)
`

// Insert adds a new wallet snapshot. Returns ErrDuplicateKey if address exists.
func (s *WalletStore) Insert(ctx context.Context, w *domain.WalletSnapshot) error {
	if w == nil || w.Address == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, insertWalletQuery,
		w.Address, w.Name, w.IsHighFrequency,
		w.PnL30d, w.WinRate30d, w.TxCount30d, w.AvgHoldTime30d,
		w.Balance, w.SOLBalance,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
func (s *WalletStore) InsertBulk(ctx context.Context, wallets []*domain.WalletSnapshot) error {
	if len(wallets) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, w := range wallets {
		if w == nil || w.Address == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, insertWalletQuery,
			w.Address, w.Name, w.IsHighFrequency,
			w.PnL30d, w.WinRate30d, w.TxCount30d, w.AvgHoldTime30d,
			w.Balance, w.SOLBalance,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert wallet in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByAddress retrieves a snapshot by wallet address. Returns ErrNotFound if not exists.
func (s *WalletStore) GetByAddress(ctx context.Context, address string) (*domain.WalletSnapshot, error) {
	query := `SELECT ` + walletColumns + ` FROM smart_wallets WHERE address = $1`

	row := s.pool.QueryRow(ctx, query, address)
	w, err := scanWallet(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return w, nil
}

// GetAll retrieves all snapshots, ordered by address ASC.
func (s *WalletStore) GetAll(ctx context.Context) ([]*domain.WalletSnapshot, error) {
	query := `SELECT ` + walletColumns + ` FROM smart_wallets ORDER BY address ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all wallets: %w", err)
	}
	defer rows.Close()

	return scanWallets(rows)
}

// GetNonHighFrequency retrieves all snapshots with the high-frequency flag
// unset, ordered by address ASC.
func (s *WalletStore) GetNonHighFrequency(ctx context.Context) ([]*domain.WalletSnapshot, error) {
	query := `SELECT ` + walletColumns + ` FROM smart_wallets WHERE NOT is_high_frequency ORDER BY address ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get non high frequency wallets: %w", err)
	}
	defer rows.Close()

	return scanWallets(rows)
}

// scanWallet scans a single row into a WalletSnapshot.
func scanWallet(row pgx.Row) (*domain.WalletSnapshot, error) {
	var w domain.WalletSnapshot

	err := row.Scan(
		&w.Address, &w.Name, &w.IsHighFrequency,
		&w.PnL30d, &w.WinRate30d, &w.TxCount30d, &w.AvgHoldTime30d,
		&w.Balance, &w.SOLBalance,
	)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

// scanWallets scans multiple rows into a slice of WalletSnapshot.
func scanWallets(rows pgx.Rows) ([]*domain.WalletSnapshot, error) {
	var wallets []*domain.WalletSnapshot

	for rows.Next() {
		var w domain.WalletSnapshot

		err := rows.Scan(
			&w.Address, &w.Name, &w.IsHighFrequency,
			&w.PnL30d, &w.WinRate30d, &w.TxCount30d, &w.AvgHoldTime30d,
			&w.Balance, &w.SOLBalance,
		)
		if err != nil {
			return nil, fmt.Errorf("scan wallet row: %w", err)
		}

		wallets = append(wallets, &w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet rows: %w", err)
	}

	return wallets, nil
}
