package domain

// PositionRecord aggregates every buy and sell a single wallet made in a
// single token within the analysis window.
//
// Realized profit is defined only over the sold fraction of the position:
// for a partial exit the cost basis is allocated proportionally to the sell
// ratio, so a wallet that sold 10% at a spike is not credited with the whole
// position's gain. Full lot tracking (FIFO/LIFO) is deliberately not done.
type PositionRecord struct {
	Wallet      string
	WalletName  string
	TokenAddr   string
	TokenSymbol string

	FirstBuyTime int64  // ms, timestamp of earliest buy
	LastSellTime *int64 // ms, nil when the wallet never sold

	Status       string  // StatusHolding | StatusPartial | StatusClosed
	SellRatioPct float64 // sold_qty / bought_qty in percent, clamped to 100 for display

	Cost    float64 // total buy cost, SOL-equivalent, always >= 0
	Revenue float64 // total sell revenue, SOL-equivalent, >= 0

	RealizedProfit    float64 // SOL-equivalent profit over the sold fraction
	RealizedReturnPct float64 // realized profit over allocated cost, percent
	UnrealizedCost    float64 // cost basis still held

	BuyCount  int
	SellCount int
}

// Position status constants. Thresholds on the raw sell ratio:
// < 0.10 holding, [0.10, 0.90) partial, >= 0.90 closed.
const (
	StatusHolding = "holding"
	StatusPartial = "partial"
	StatusClosed  = "closed"
)

// Realized reports whether the record contributes realized profit, i.e. the
// position is at least partially exited.
func (p *PositionRecord) Realized() bool {
	return p.Status != StatusHolding
}
