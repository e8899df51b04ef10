// Package correlation compares wallets pairwise to surface coordinated
// trading, either by entry/exit timing on ranked tokens or by overall
// behavior profile.
package correlation

import (
	"math"
	"sort"

	"smart-money-lab/internal/domain"
)

// MinSharedTokens is the minimum number of ranked tokens two wallets must
// share before a timing comparison says anything.
const MinSharedTokens = 2

const msPerHour = 3600 * 1000

type tokenTiming struct {
	firstBuy int64
	lastSell *int64
	symbol   string
}

// Timing compares every wallet pair over the ranked tokens and scores how
// close their entries and exits land. Pairs sharing fewer than minShared
// ranked tokens are dropped. Edges come back sorted by shared token count,
// then score, both descending.
func Timing(positions []domain.PositionRecord, ranked []domain.TokenAggregate, names map[string]string, minShared int) []domain.TimingEdge {
	if minShared <= 0 {
		minShared = MinSharedTokens
	}

	rankedAddrs := make(map[string]struct{}, len(ranked))
	for _, a := range ranked {
		rankedAddrs[a.TokenAddr] = struct{}{}
	}

	// wallet -> token -> timing, restricted to ranked tokens.
	timings := make(map[string]map[string]tokenTiming)
	var wallets []string
	for _, p := range positions {
		if _, ok := rankedAddrs[p.TokenAddr]; !ok {
			continue
		}
		m, ok := timings[p.Wallet]
		if !ok {
			m = make(map[string]tokenTiming)
			timings[p.Wallet] = m
			wallets = append(wallets, p.Wallet)
		}
		m[p.TokenAddr] = tokenTiming{
			firstBuy: p.FirstBuyTime,
			lastSell: p.LastSellTime,
			symbol:   p.TokenSymbol,
		}
	}
	sort.Strings(wallets)

	var edges []domain.TimingEdge
	for i := 0; i < len(wallets); i++ {
		for j := i + 1; j < len(wallets); j++ {
			w1, w2 := wallets[i], wallets[j]
			edge, ok := compareTiming(w1, w2, timings[w1], timings[w2], names, minShared)
			if ok {
				edges = append(edges, edge)
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].SharedTokens != edges[j].SharedTokens {
			return edges[i].SharedTokens > edges[j].SharedTokens
		}
		return edges[i].Score > edges[j].Score
	})

	return edges
}

func compareTiming(w1, w2 string, t1, t2 map[string]tokenTiming, names map[string]string, minShared int) (domain.TimingEdge, bool) {
	var shared []string
	for tok := range t1 {
		if _, ok := t2[tok]; ok {
			shared = append(shared, tok)
		}
	}
	if len(shared) < minShared {
		return domain.TimingEdge{}, false
	}
	sort.Strings(shared)

	var buyDiffs, sellDiffs []float64
	symbols := make([]string, 0, len(shared))
	for _, tok := range shared {
		a, b := t1[tok], t2[tok]
		symbols = append(symbols, a.symbol)

		buyDiffs = append(buyDiffs, hoursApart(a.firstBuy, b.firstBuy))
		if a.lastSell != nil && b.lastSell != nil {
			sellDiffs = append(sellDiffs, hoursApart(*a.lastSell, *b.lastSell))
		}
	}

	avgBuy, maxBuy := diffStats(buyDiffs)
	avgSell, maxSell := diffStats(sellDiffs)

	// 1/(1+diff) maps zero hours apart to 1.0 and decays toward zero. A
	// missing diff contributes nothing rather than a fake perfect match.
	var buyScore, sellScore float64
	if avgBuy != nil {
		buyScore = 1 / (1 + *avgBuy)
	}
	if avgSell != nil {
		sellScore = 1 / (1 + *avgSell)
	}

	return domain.TimingEdge{
		Wallet1:          w1,
		Wallet1Name:      names[w1],
		Wallet2:          w2,
		Wallet2Name:      names[w2],
		Score:            (buyScore + sellScore) / 2,
		SharedTokens:     len(shared),
		SharedSymbols:    symbols,
		AvgBuyDiffHours:  avgBuy,
		MaxBuyDiffHours:  maxBuy,
		AvgSellDiffHours: avgSell,
		MaxSellDiffHours: maxSell,
	}, true
}

func hoursApart(a, b int64) float64 {
	return math.Abs(float64(a-b)) / msPerHour
}

func diffStats(diffs []float64) (avg, max *float64) {
	if len(diffs) == 0 {
		return nil, nil
	}
	var sum, m float64
	for _, d := range diffs {
		sum += d
		if d > m {
			m = d
		}
	}
	a := sum / float64(len(diffs))
	return &a, &m
}
