package domain

// Transaction is one raw wallet transaction row as produced by the upstream
// chain indexer. Corresponds to wallet_transactions table.
type Transaction struct {
	ID            int64  // storage primary key
	TxHash        string // transaction signature, unique
	Wallet        string // originating wallet address
	BlockTime     int64  // Unix timestamp in milliseconds
	Side          string // "buy" | "sell" (other sides are filtered upstream)
	BalanceChange string // raw JSON array of BalanceEntry
	CreatedAt     int64  // record creation timestamp (ms)
}

// Transaction side constants
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// BalanceEntry is a single balance delta attached to a transaction, in the
// exact shape the indexer emits. Amount is the raw integer amount; divide by
// 10^Decimals for the human-readable value.
type BalanceEntry struct {
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Decimals int     `json:"decimals"`
	Address  string  `json:"address"`
}
