package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/storage"
	pgstore "smart-money-lab/internal/storage/postgres"
)

func createTestTransaction(txHash, wallet, side string, blockTime int64) *domain.Transaction {
	return &domain.Transaction{
		TxHash:        txHash,
		Wallet:        wallet,
		BlockTime:     blockTime,
		Side:          side,
		BalanceChange: `[{"symbol":"SOL","amount":-1.5,"decimals":0}]`,
		CreatedAt:     blockTime,
	}
}

func TestTransactionStore_InsertAndCount(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewTransactionStore(pool)

	require.NoError(t, store.Insert(ctx, createTestTransaction("sig-1", "w1", domain.SideBuy, 1000)))
	require.NoError(t, store.Insert(ctx, createTestTransaction("sig-2", "w1", domain.SideSell, 2000)))

	n, err := store.CountByWallet(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.CountByWallet(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTransactionStore_DuplicateHashWallet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewTransactionStore(pool)

	require.NoError(t, store.Insert(ctx, createTestTransaction("sig-1", "w1", domain.SideBuy, 1000)))

	err := store.Insert(ctx, createTestTransaction("sig-1", "w1", domain.SideBuy, 1000))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	// Same signature seen from another wallet's perspective is a new row.
	assert.NoError(t, store.Insert(ctx, createTestTransaction("sig-1", "w2", domain.SideSell, 1000)))
}

func TestTransactionStore_GetTradesByWallets(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := pgstore.NewTransactionStore(pool)

	txs := []*domain.Transaction{
		createTestTransaction("sig-1", "w1", domain.SideSell, 3000),
		createTestTransaction("sig-2", "w1", domain.SideBuy, 1000),
		createTestTransaction("sig-3", "w1", "transfer", 2000),
		createTestTransaction("sig-4", "w2", domain.SideBuy, 1500),
		createTestTransaction("sig-5", "w3", domain.SideBuy, 1600),
		createTestTransaction("sig-6", "w1", domain.SideBuy, 500),
	}
	require.NoError(t, store.InsertBulk(ctx, txs))

	got, err := store.GetTradesByWallets(ctx, []string{"w1", "w2"}, 1000)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "sig-2", got[0].TxHash)
	assert.Equal(t, "sig-4", got[1].TxHash)
	assert.Equal(t, "sig-1", got[2].TxHash)
	for _, tx := range got {
		assert.Contains(t, []string{domain.SideBuy, domain.SideSell}, tx.Side)
	}
}

func TestTransactionStore_GetTradesByWallets_Empty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pgstore.NewTransactionStore(pool)

	got, err := store.GetTradesByWallets(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
