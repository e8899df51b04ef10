package domain

// NormalizedTrade is one raw transaction reduced to a single
// (quote, target-token) pair in SOL-equivalent units.
//
// Sign convention follows the indexer balance deltas: amounts received by the
// wallet are positive, amounts spent are negative. A buy therefore carries a
// negative SOLEquivalent and a positive TokenAmount.
//
// Exactly one non-quote token per trade; token-for-token swaps and trades
// without a usable quote leg are excluded upstream and never reach this type.
// Created once per raw transaction, immutable, discarded after aggregation.
type NormalizedTrade struct {
	Wallet        string  // wallet address
	Timestamp     int64   // block time in milliseconds
	Side          string  // SideBuy | SideSell
	TokenAddress  string  // target token mint
	TokenSymbol   string  // target token symbol (fallback: name, "UNKNOWN")
	TokenAmount   float64 // signed target token amount, human-readable units
	SOLEquivalent float64 // signed SOL-equivalent amount (SOL + stables at the reference price)
}
