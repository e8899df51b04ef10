package postgres_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/storage"
	pgstore "smart-money-lab/internal/storage/postgres"
)

func createTestWallet(address, name string) *domain.WalletSnapshot {
	return &domain.WalletSnapshot{
		Address:        address,
		Name:           name,
		PnL30d:         15000.5,
		WinRate30d:     0.58,
		TxCount30d:     120,
		AvgHoldTime30d: 3600000,
		Balance:        25000.0,
		SOLBalance:     42.7,
	}
}

func TestWalletStore_InsertAndGetByAddress(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewWalletStore(pool)

	w := createTestWallet("wallet-addr-1", "degen whale")

	err := store.Insert(ctx, w)
	require.NoError(t, err)

	retrieved, err := store.GetByAddress(ctx, "wallet-addr-1")
	require.NoError(t, err)

	assert.Equal(t, w.Address, retrieved.Address)
	assert.Equal(t, w.Name, retrieved.Name)
	assert.False(t, retrieved.IsHighFrequency)
	assert.InDelta(t, w.PnL30d, retrieved.PnL30d, 0.0001)
	assert.InDelta(t, w.WinRate30d, retrieved.WinRate30d, 0.0001)
	assert.Equal(t, w.TxCount30d, retrieved.TxCount30d)
	assert.Equal(t, w.AvgHoldTime30d, retrieved.AvgHoldTime30d)
	assert.InDelta(t, w.SOLBalance, retrieved.SOLBalance, 0.0001)
}

func TestWalletStore_DuplicateAddress(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewWalletStore(pool)

	w := createTestWallet("wallet-addr-1", "first")
	require.NoError(t, store.Insert(ctx, w))

	err := store.Insert(ctx, createTestWallet("wallet-addr-1", "second"))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestWalletStore_GetByAddress_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewWalletStore(pool)

	_, err := store.GetByAddress(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWalletStore_InsertBulk_Atomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewWalletStore(pool)

	require.NoError(t, store.Insert(ctx, createTestWallet("wallet-dup", "existing")))

	batch := []*domain.WalletSnapshot{
		createTestWallet("wallet-new", "new"),
		createTestWallet("wallet-dup", "collides"),
	}
	err := store.InsertBulk(ctx, batch)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// The non-colliding row must have been rolled back.
	_, err = store.GetByAddress(ctx, "wallet-new")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWalletStore_GetNonHighFrequency(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewWalletStore(pool)

	var wallets []*domain.WalletSnapshot
	for i := 0; i < 4; i++ {
		w := createTestWallet(fmt.Sprintf("wallet-%d", i), fmt.Sprintf("w%d", i))
		w.IsHighFrequency = i%2 == 0
		wallets = append(wallets, w)
	}
	require.NoError(t, store.InsertBulk(ctx, wallets))

	got, err := store.GetNonHighFrequency(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "wallet-1", got[0].Address)
	assert.Equal(t, "wallet-3", got[1].Address)
}
