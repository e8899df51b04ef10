package domain

// TokenAggregate is the cross-wallet view of one token, derived from the
// realized subset of PositionRecords with holding-only coverage joined in.
type TokenAggregate struct {
	TokenAddr   string
	TokenSymbol string

	Rank           int     // dense rank 1..N, 0 before ranking
	CompositeScore float64 // weighted min-max combination, see ranking package

	TotalRealizedProfit float64
	MeanRealizedProfit  float64
	MaxRealizedProfit   float64

	ProfitableWallets int // wallets with positive realized profit
	BuyingWallets     int // distinct wallets with a realized position

	TotalCost     float64
	TotalRevenue  float64
	MeanReturnPct float64

	HoldingWallets int     // wallets still holding (status = holding)
	HoldingCost    float64 // their aggregate unrealized cost
}
