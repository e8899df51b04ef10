package domain

// WalletOverview joins the external 30-day snapshot of a profitable wallet
// with the per-wallet aggregates computed from its PositionRecords.
type WalletOverview struct {
	Address string
	Name    string

	PnL30dUSD      float64
	PnL30dSOL      float64
	WinRate30d     float64
	TxCount30d     int
	AvgHoldTime30d int64
	SOLBalance     float64

	TokensTraded  int // distinct tokens with a surviving position record
	ClosedTokens  int
	PartialTokens int
	HoldingTokens int

	TotalCost          float64
	RealizedProfit     float64 // sum over realized (non-holding) positions
	RealizedWins       int     // realized positions with positive profit
	RealizedLosses     int     // realized positions with negative profit
	RealizedWinRatePct float64 // wins / (wins+losses) * 100, 0 when none realized
}

// TokenCoverage summarizes one wallet's footprint across the ranked token
// set: how many of the top tokens it bought and what it realized on them.
type TokenCoverage struct {
	Address string
	Name    string

	RankedTokensBought int
	RealizedProfit     float64
	TotalCost          float64
	TotalRevenue       float64
	MeanReturnPct      float64

	PnL30dSOL  float64
	WinRate30d float64

	// Status per ranked token address; tokens the wallet never bought are
	// absent from the map.
	StatusByToken map[string]string
}

// SkipTally counts the per-row and per-group records dropped during a run,
// by reason. Skips are expected filter outcomes, not errors; the tally is
// part of the run result so no drop is silent.
type SkipTally struct {
	Unparsable int // malformed balance-change payload or fewer than 2 legs
	NoTarget   int // no non-quote leg to attribute the trade to
	TokenSwap  int // token-for-token swap, quote present only as gas
	Dust       int // (wallet, token) group below the dust cost threshold
	NoBuys     int // group with sells but no buys in the window
}

// Total returns the number of dropped records across all reasons.
func (s SkipTally) Total() int {
	return s.Unparsable + s.NoTarget + s.TokenSwap + s.Dust + s.NoBuys
}
