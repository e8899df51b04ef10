package domain

// WalletSnapshot is an externally supplied profitability snapshot for one
// wallet, keyed by address. Corresponds to smart_wallets table in PostgreSQL.
// Read-only input to the analysis engine; never mutated here.
type WalletSnapshot struct {
	Address         string  // Solana wallet address (primary key)
	Name            string  // optional label, empty if unknown
	IsHighFrequency bool    // cohort filter: high-frequency wallets are excluded
	PnL30d          float64 // 30-day net profit in USD
	WinRate30d      float64 // 30-day win rate in percent
	TxCount30d      int     // 30-day transaction count
	AvgHoldTime30d  int64   // 30-day average hold time in seconds
	Balance         float64 // wallet balance in USD
	SOLBalance      float64 // SOL balance
}

// PnLSOL converts the USD-denominated 30-day PnL into SOL at the given
// reference price. Returns 0 when the price is not positive.
func (w *WalletSnapshot) PnLSOL(solPriceUSD float64) float64 {
	if solPriceUSD <= 0 {
		return 0
	}
	return w.PnL30d / solPriceUSD
}
