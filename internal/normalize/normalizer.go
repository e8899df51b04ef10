// Package normalize reduces raw balance-change payloads to a single
// (quote, target token) signal in SOL-equivalent units.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"smart-money-lab/internal/domain"
)

// Rejection sentinels. Both mean "no usable signal", not failure: callers
// count the transaction and move on.
var (
	// ErrTooFewLegs is returned for payloads with fewer than two balance
	// entries; a single delta cannot describe a trade.
	ErrTooFewLegs = errors.New("balance change has fewer than 2 legs")

	// ErrNoTarget is returned when every leg is a quote or stable asset.
	ErrNoTarget = errors.New("balance change has no target token leg")
)

// solSymbols and stableSymbols partition quote legs by symbol or name.
// The sets are fixed: the chain's native asset plus its wrapped form, and the
// USD-pegged assets the indexer labels consistently.
var (
	solSymbols    = map[string]bool{"SOL": true, "Wrapped SOL": true, "WSOL": true}
	stableSymbols = map[string]bool{"USDC": true, "USDT": true, "USD Coin": true}
)

// swapEpsilon is the quote-amount threshold, in SOL, below which the quote
// leg is considered gas-only for token-swap detection.
const swapEpsilon = 0.01

// LegKind tags a classified balance entry.
type LegKind int

const (
	LegQuote LegKind = iota // SOL or wrapped SOL
	LegStable               // USD-pegged asset
	LegTarget               // anything else
)

// Leg is one balance entry with its human-readable amount and classification.
type Leg struct {
	Kind    LegKind
	Symbol  string
	Name    string
	Address string
	Amount  float64 // raw amount / 10^decimals
}

// Signal is the normalized outcome for one transaction.
type Signal struct {
	TokenAddress string
	TokenSymbol  string
	TokenName    string
	TokenAmount  float64 // signed, human-readable units

	QuoteAmount   float64 // net SOL delta
	StableAmount  float64 // net stablecoin delta
	SOLEquivalent float64 // QuoteAmount + StableAmount/solPriceUSD

	// TokenSwap marks a token-for-token exchange: quote and stable legs both
	// below epsilon while another non-quote leg moved. Callers must exclude
	// these; the SOL figures describe only gas.
	TokenSwap bool
}

// ParsePayload decodes a raw balance-change JSON payload.
func ParsePayload(payload string) ([]domain.BalanceEntry, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty balance change payload")
	}
	var entries []domain.BalanceEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("decode balance change: %w", err)
	}
	return entries, nil
}

// ClassifyLeg converts one balance entry to a classified leg.
func ClassifyLeg(e domain.BalanceEntry) Leg {
	amount := e.Amount
	if e.Decimals > 0 {
		amount = e.Amount / math.Pow10(e.Decimals)
	}

	kind := LegTarget
	switch {
	case solSymbols[e.Symbol] || solSymbols[e.Name]:
		kind = LegQuote
	case stableSymbols[e.Symbol] || stableSymbols[e.Name]:
		kind = LegStable
	}

	return Leg{
		Kind:    kind,
		Symbol:  e.Symbol,
		Name:    e.Name,
		Address: e.Address,
		Amount:  amount,
	}
}

// Normalize classifies the balance entries of one transaction and computes
// the SOL-equivalent signal. solPriceUSD is the configured SOL/stable
// conversion rate.
//
// Pure function. The only rejections are ErrTooFewLegs and ErrNoTarget; a
// detected token swap is reported through Signal.TokenSwap, not an error.
//
// Known approximation, preserved from the reference behavior: a buy paid
// almost entirely in a stablecoin the symbol sets fail to recognize is
// classified as a token swap, because the unrecognized stable leg lands in
// the side list while quote and stable sums stay below epsilon.
func Normalize(entries []domain.BalanceEntry, solPriceUSD float64) (*Signal, error) {
	if len(entries) < 2 {
		return nil, ErrTooFewLegs
	}

	var (
		quoteSum  float64
		stableSum float64
		target    *Leg
		side      []Leg
	)

	for _, e := range entries {
		leg := ClassifyLeg(e)
		switch leg.Kind {
		case LegQuote:
			quoteSum += leg.Amount
		case LegStable:
			stableSum += leg.Amount
		default:
			// Keep the largest absolute amount as the target token,
			// demoting any previous candidate to the side list.
			if target == nil || math.Abs(leg.Amount) > math.Abs(target.Amount) {
				if target != nil {
					side = append(side, *target)
				}
				l := leg
				target = &l
			} else {
				side = append(side, leg)
			}
		}
	}

	if target == nil {
		return nil, ErrNoTarget
	}

	symbol := target.Symbol
	if symbol == "" {
		symbol = target.Name
	}
	if symbol == "" {
		symbol = "UNKNOWN"
	}

	sig := &Signal{
		TokenAddress:  target.Address,
		TokenSymbol:   symbol,
		TokenName:     target.Name,
		TokenAmount:   target.Amount,
		QuoteAmount:   quoteSum,
		StableAmount:  stableSum,
		SOLEquivalent: quoteSum + stableSum/solPriceUSD,
	}

	gasOnly := math.Abs(quoteSum) < swapEpsilon
	noStable := math.Abs(stableSum) < swapEpsilon
	if gasOnly && noStable {
		for _, l := range side {
			if l.Amount != 0 {
				sig.TokenSwap = true
				break
			}
		}
	}

	return sig, nil
}
