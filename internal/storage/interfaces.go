package storage

import (
	"context"

	"smart-money-lab/internal/domain"
)

// WalletStore provides access to smart_wallets storage.
type WalletStore interface {
	// Insert adds a new wallet snapshot. Returns ErrDuplicateKey if address exists.
	Insert(ctx context.Context, w *domain.WalletSnapshot) error

	// InsertBulk adds multiple snapshots atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, wallets []*domain.WalletSnapshot) error

	// GetByAddress retrieves a snapshot by wallet address. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.WalletSnapshot, error)

	// GetAll retrieves all snapshots, ordered by address ASC.
	GetAll(ctx context.Context) ([]*domain.WalletSnapshot, error)

	// GetNonHighFrequency retrieves all snapshots with the high-frequency flag
	// unset, ordered by address ASC.
	GetNonHighFrequency(ctx context.Context) ([]*domain.WalletSnapshot, error)
}

// TransactionStore provides access to raw wallet transaction storage.
type TransactionStore interface {
	// Insert adds a single transaction. Returns ErrDuplicateKey if
	// (tx_hash, wallet) exists.
	Insert(ctx context.Context, tx *domain.Transaction) error

	// InsertBulk adds multiple transactions atomically. Fails entire batch on
	// any duplicate.
	InsertBulk(ctx context.Context, txs []*domain.Transaction) error

	// GetTradesByWallets retrieves buy and sell transactions for the given
	// wallets with block_time >= since, ordered by block_time ASC. Rows with
	// other side values are excluded at the query level.
	GetTradesByWallets(ctx context.Context, wallets []string, since int64) ([]*domain.Transaction, error)

	// CountByWallet returns the number of stored transactions for a wallet.
	CountByWallet(ctx context.Context, wallet string) (int64, error)
}
