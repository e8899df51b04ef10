package correlation

import (
	"math"
	"sort"

	"smart-money-lab/internal/domain"
)

// MinBehaviorScore is the emission threshold for behavior edges. Pairs below
// it share too little to be interesting.
const MinBehaviorScore = 0.3

// Behavior similarity weights: token overlap leads, position sizing and
// realized win rate split the remainder.
const (
	behaviorWeightJaccard = 0.4
	behaviorWeightCost    = 0.3
	behaviorWeightWinRate = 0.3
)

type walletProfile struct {
	address       string
	tokens        map[string]struct{}
	totalCost     float64
	realizedCount int
	profitable    int
	realizedProfit   float64
	holdingCount  int
	symbolOf      map[string]string
}

func (p *walletProfile) winRatePct() float64 {
	if p.realizedCount == 0 {
		return 0
	}
	return float64(p.profitable) / float64(p.realizedCount) * 100
}

// Behavior compares every wallet pair across all their positions and scores
// overall similarity of what they bought, how much they sized and how often
// they won. Edges scoring below minScore are dropped; the rest come back
// sorted by score descending.
func Behavior(positions []domain.PositionRecord, names map[string]string, minScore float64) []domain.BehaviorEdge {
	if minScore <= 0 {
		minScore = MinBehaviorScore
	}

	profiles := make(map[string]*walletProfile)
	var wallets []string
	for _, p := range positions {
		prof, ok := profiles[p.Wallet]
		if !ok {
			prof = &walletProfile{
				address:  p.Wallet,
				tokens:   make(map[string]struct{}),
				symbolOf: make(map[string]string),
			}
			profiles[p.Wallet] = prof
			wallets = append(wallets, p.Wallet)
		}

		prof.tokens[p.TokenAddr] = struct{}{}
		prof.symbolOf[p.TokenAddr] = p.TokenSymbol
		prof.totalCost += p.Cost
		if p.Realized() {
			prof.realizedCount++
			prof.realizedProfit += p.RealizedProfit
			if p.RealizedProfit > 0 {
				prof.profitable++
			}
		} else {
			prof.holdingCount++
		}
	}
	sort.Strings(wallets)

	var edges []domain.BehaviorEdge
	for i := 0; i < len(wallets); i++ {
		for j := i + 1; j < len(wallets); j++ {
			p1, p2 := profiles[wallets[i]], profiles[wallets[j]]
			edge, ok := compareBehavior(p1, p2, names, minScore)
			if ok {
				edges = append(edges, edge)
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		if edges[i].Wallet1 != edges[j].Wallet1 {
			return edges[i].Wallet1 < edges[j].Wallet1
		}
		return edges[i].Wallet2 < edges[j].Wallet2
	})

	return edges
}

func compareBehavior(p1, p2 *walletProfile, names map[string]string, minScore float64) (domain.BehaviorEdge, bool) {
	var common []string
	union := len(p2.tokens)
	for tok := range p1.tokens {
		if _, ok := p2.tokens[tok]; ok {
			common = append(common, tok)
		} else {
			union++
		}
	}

	var jaccard float64
	if union > 0 {
		jaccard = float64(len(common)) / float64(union)
	}

	var costSim float64
	if max := math.Max(p1.totalCost, p2.totalCost); max > 0 {
		costSim = math.Min(p1.totalCost, p2.totalCost) / max
	}

	wr1, wr2 := p1.winRatePct(), p2.winRatePct()
	wrDiff := math.Abs(wr1 - wr2)
	wrSim := math.Max(0, 1-wrDiff/100)

	score := jaccard*behaviorWeightJaccard + costSim*behaviorWeightCost + wrSim*behaviorWeightWinRate
	if score < minScore {
		return domain.BehaviorEdge{}, false
	}

	sort.Strings(common)
	symbols := make([]string, 0, len(common))
	for _, tok := range common {
		symbols = append(symbols, p1.symbolOf[tok])
	}

	return domain.BehaviorEdge{
		Wallet1:        p1.address,
		Wallet1Name:    names[p1.address],
		Wallet2:        p2.address,
		Wallet2Name:    names[p2.address],
		Score:          score,
		Jaccard:        jaccard,
		CommonTokens:   len(common),
		CommonSymbols:  symbols,
		CostSim:        costSim,
		Wallet1WinRate: wr1,
		Wallet2WinRate: wr2,
		WinRateDiff:    wrDiff,
		Wallet1Cost:    p1.totalCost,
		Wallet2Cost:    p2.totalCost,
		Wallet1Profit:  p1.realizedProfit,
		Wallet2Profit:  p2.realizedProfit,
		Wallet1Tokens:  len(p1.tokens),
		Wallet2Tokens:  len(p2.tokens),
	}, true
}
