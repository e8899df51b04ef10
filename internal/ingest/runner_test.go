package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"smart-money-lab/internal/storage/memory"
)

var testWallet = base58.Encode(make([]byte, 32))

func feedMessage(t *testing.T, txHash string, blockTime int64, side string) []byte {
	t.Helper()
	msg, err := json.Marshal(map[string]any{
		"tx_hash":    txHash,
		"wallet":     testWallet,
		"block_time": blockTime,
		"side":       side,
		"balance_change": []map[string]any{
			{"symbol": "SOL", "name": "Solana", "amount": -2.5e9, "decimals": 9, "address": "So11111111111111111111111111111111111111112"},
			{"symbol": "BONK", "name": "Bonk", "amount": 1000.0, "decimals": 0, "address": "tok-bonk"},
		},
	})
	require.NoError(t, err)
	return msg
}

func newTestRunner(t *testing.T) (*Runner, *memory.TransactionStore) {
	t.Helper()
	store := memory.NewTransactionStore()
	r, err := NewRunner(RunnerOptions{
		Store:  store,
		Logger: zap.NewNop(),
		Clock:  func() time.Time { return time.UnixMilli(1748779200000).UTC() },
	})
	require.NoError(t, err)
	return r, store
}

func runFeed(t *testing.T, r *Runner, msgs ...[]byte) {
	t.Helper()
	ch := make(chan []byte, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	close(ch)
	require.NoError(t, r.Run(context.Background(), ch))
}

func TestRunner_StoresValidTransactions(t *testing.T) {
	r, store := newTestRunner(t)

	runFeed(t, r,
		feedMessage(t, "sig-1", 1000, "buy"),
		feedMessage(t, "sig-2", 2000, "sell"),
	)

	stats := r.Stats()
	assert.Equal(t, int64(2), stats.Received)
	assert.Equal(t, int64(2), stats.Stored)
	assert.Equal(t, int64(0), stats.Rejected)

	n, err := store.CountByWallet(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	txs, err := store.GetTradesByWallets(context.Background(), []string{testWallet}, 0)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "sig-1", txs[0].TxHash)
	assert.Equal(t, int64(1748779200000), txs[0].CreatedAt)
	assert.JSONEq(t, `[
		{"symbol":"SOL","name":"Solana","amount":-2.5e9,"decimals":9,"address":"So11111111111111111111111111111111111111112"},
		{"symbol":"BONK","name":"Bonk","amount":1000,"decimals":0,"address":"tok-bonk"}
	]`, txs[0].BalanceChange)
}

func TestRunner_CountsDuplicateDeliveries(t *testing.T) {
	r, store := newTestRunner(t)

	msg := feedMessage(t, "sig-1", 1000, "buy")
	runFeed(t, r, msg, msg, msg)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Stored)
	assert.Equal(t, int64(2), stats.Duplicates)

	n, err := store.CountByWallet(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRunner_RejectsMalformedMessages(t *testing.T) {
	r, store := newTestRunner(t)

	badWallet, err := json.Marshal(map[string]any{
		"tx_hash": "sig-1", "wallet": "not-an-address",
		"block_time": 1000, "side": "buy",
		"balance_change": []map[string]any{{"symbol": "SOL"}},
	})
	require.NoError(t, err)

	badSide, err := json.Marshal(map[string]any{
		"tx_hash": "sig-2", "wallet": testWallet,
		"block_time": 1000, "side": "transfer",
		"balance_change": []map[string]any{{"symbol": "SOL"}},
	})
	require.NoError(t, err)

	runFeed(t, r,
		[]byte("{not json"),
		badWallet,
		badSide,
		feedMessage(t, "sig-3", 1000, "buy"),
	)

	stats := r.Stats()
	assert.Equal(t, int64(4), stats.Received)
	assert.Equal(t, int64(3), stats.Rejected)
	assert.Equal(t, int64(1), stats.Stored)

	n, err := store.CountByWallet(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRunner_ContextCancelStopsRun(t *testing.T) {
	r, _ := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan []byte)
	err := r.Run(ctx, ch)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRunner_RequiresStore(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	require.Error(t, err)
}

func TestBuildTransaction_Validation(t *testing.T) {
	r, _ := newTestRunner(t)

	cases := []struct {
		name string
		ev   feedEvent
	}{
		{"missing hash", feedEvent{Wallet: testWallet, BlockTime: 1, Side: "buy", BalanceChange: json.RawMessage(`[]`)}},
		{"bad wallet", feedEvent{TxHash: "s", Wallet: "x", BlockTime: 1, Side: "buy", BalanceChange: json.RawMessage(`[]`)}},
		{"zero block time", feedEvent{TxHash: "s", Wallet: testWallet, Side: "buy", BalanceChange: json.RawMessage(`[]`)}},
		{"bad side", feedEvent{TxHash: "s", Wallet: testWallet, BlockTime: 1, Side: "mint", BalanceChange: json.RawMessage(`[]`)}},
		{"no balance change", feedEvent{TxHash: "s", Wallet: testWallet, BlockTime: 1, Side: "buy"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.buildTransaction(tc.ev)
			require.Error(t, err)
		})
	}
}

func TestRunner_DistinctHashesSameWallet(t *testing.T) {
	r, store := newTestRunner(t)

	var msgs [][]byte
	for i := 0; i < 5; i++ {
		msgs = append(msgs, feedMessage(t, fmt.Sprintf("sig-%d", i), int64(1000+i), "buy"))
	}
	runFeed(t, r, msgs...)

	n, err := store.CountByWallet(context.Background(), testWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
}
