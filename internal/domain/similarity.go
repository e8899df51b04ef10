package domain

// TimingEdge records how closely two wallets traded the same ranked tokens
// in time. Emitted only for pairs sharing at least two ranked tokens.
// Transient: recomputed each run, no cross-run identity.
type TimingEdge struct {
	Wallet1     string
	Wallet1Name string
	Wallet2     string
	Wallet2Name string

	Score         float64  // mean of 1/(1+avg_diff) over buy and sell sides
	SharedTokens  int      // ranked tokens both wallets bought
	SharedSymbols []string // their symbols, for reporting

	AvgBuyDiffHours  *float64 // nil when no token had both first-buy times
	MaxBuyDiffHours  *float64
	AvgSellDiffHours *float64 // nil when no token had both last-sell times
	MaxSellDiffHours *float64
}

// BehaviorEdge records behavioral similarity between two profitable wallets:
// token-set overlap, position sizing and realized win rate. Emitted only when
// the composite score clears the configured floor.
type BehaviorEdge struct {
	Wallet1     string
	Wallet1Name string
	Wallet2     string
	Wallet2Name string

	Score         float64 // 0.4*jaccard + 0.3*cost + 0.3*winrate
	Jaccard       float64
	CommonTokens  int
	CommonSymbols []string
	CostSim       float64

	Wallet1WinRate float64 // realized win rate, percent
	Wallet2WinRate float64
	WinRateDiff    float64

	Wallet1Cost   float64
	Wallet2Cost   float64
	Wallet1Profit float64 // realized profit across non-holding positions
	Wallet2Profit float64
	Wallet1Tokens int
	Wallet2Tokens int
}
