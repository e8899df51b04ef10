// Package analysis runs the full smart-money pipeline: cohort selection,
// trade loading, position attribution, token ranking and wallet correlation.
package analysis

import "errors"

// Params are the tunables of a single analysis run.
type Params struct {
	// SOLPriceUSD converts stablecoin legs and wallet PnL into SOL terms.
	SOLPriceUSD float64

	// WindowDays bounds how far back trades are loaded.
	WindowDays int

	// DustThreshold drops positions cheaper than this many SOL.
	DustThreshold float64

	// MinSharedTokens gates timing comparisons between wallet pairs.
	MinSharedTokens int

	// MinBehaviorScore gates behavior edges.
	MinBehaviorScore float64

	// TopN is the ranking depth.
	TopN int

	// BatchSize and Concurrency shape the trade loader.
	BatchSize   int
	Concurrency int
}

// DefaultParams returns the standard run configuration.
func DefaultParams() Params {
	return Params{
		SOLPriceUSD:      200,
		WindowDays:       30,
		DustThreshold:    0.01,
		MinSharedTokens:  2,
		MinBehaviorScore: 0.3,
		TopN:             10,
		BatchSize:        50,
		Concurrency:      4,
	}
}

// Validate rejects parameter combinations that cannot produce a meaningful run.
func (p Params) Validate() error {
	if p.SOLPriceUSD <= 0 {
		return errors.New("analysis: sol price must be positive")
	}
	if p.WindowDays <= 0 {
		return errors.New("analysis: window days must be positive")
	}
	if p.TopN <= 0 {
		return errors.New("analysis: top n must be positive")
	}
	return nil
}
