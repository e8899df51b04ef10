// Package ranking scores tokens by how many wallets independently profited on
// them, weighing confirmation breadth over raw profit size.
package ranking

import (
	"sort"

	"smart-money-lab/internal/domain"
)

// DefaultTopN is the number of ranked tokens kept.
const DefaultTopN = 10

// Composite score weights. Breadth of independent confirmation counts the
// most, mean return and absolute profit split the rest.
const (
	weightWallets = 0.4
	weightReturn  = 0.3
	weightProfit  = 0.3
)

type tokenAcc struct {
	symbol          string
	totalProfit     float64
	maxProfit       float64
	profitSum       float64
	returnSum       float64
	realizedRecords int
	profitable      int
	wallets         map[string]struct{}
	totalCost       float64
	totalRevenue    float64
	holdingWallets  map[string]struct{}
	holdingCost     float64
}

// Rank aggregates realized positions per token and returns the topN tokens by
// composite score. Only positions past the holding stage contribute realized
// numbers; holding positions are joined in as open-interest context. Tokens
// whose total realized profit is not positive are excluded before scoring.
func Rank(positions []domain.PositionRecord, topN int) []domain.TokenAggregate {
	if topN <= 0 {
		topN = DefaultTopN
	}

	accs := make(map[string]*tokenAcc)

	acc := func(addr string) *tokenAcc {
		a, ok := accs[addr]
		if !ok {
			a = &tokenAcc{
				wallets:        make(map[string]struct{}),
				holdingWallets: make(map[string]struct{}),
			}
			accs[addr] = a
		}
		return a
	}

	for _, p := range positions {
		a := acc(p.TokenAddr)
		if a.symbol == "" {
			a.symbol = p.TokenSymbol
		}

		if p.Status == domain.StatusHolding {
			a.holdingWallets[p.Wallet] = struct{}{}
			a.holdingCost += p.Cost
			continue
		}

		a.totalProfit += p.RealizedProfit
		a.returnSum += p.RealizedReturnPct
		a.realizedRecords++
		if a.realizedRecords == 1 || p.RealizedProfit > a.maxProfit {
			a.maxProfit = p.RealizedProfit
		}
		if p.RealizedProfit > 0 {
			a.profitable++
		}
		a.wallets[p.Wallet] = struct{}{}
		a.totalCost += p.Cost
		a.totalRevenue += p.Revenue
	}

	var aggs []domain.TokenAggregate
	for addr, a := range accs {
		if a.realizedRecords == 0 {
			continue
		}
		if a.totalProfit <= 0 {
			continue
		}
		aggs = append(aggs, domain.TokenAggregate{
			TokenAddr:           addr,
			TokenSymbol:         a.symbol,
			TotalRealizedProfit: a.totalProfit,
			MeanRealizedProfit:  a.totalProfit / float64(a.realizedRecords),
			MaxRealizedProfit:   a.maxProfit,
			ProfitableWallets:   a.profitable,
			BuyingWallets:       len(a.wallets),
			TotalCost:           a.totalCost,
			TotalRevenue:        a.totalRevenue,
			MeanReturnPct:       a.returnSum / float64(a.realizedRecords),
			HoldingWallets:      len(a.holdingWallets),
			HoldingCost:         a.holdingCost,
		})
	}

	if len(aggs) == 0 {
		return nil
	}

	score(aggs)

	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].CompositeScore != aggs[j].CompositeScore {
			return aggs[i].CompositeScore > aggs[j].CompositeScore
		}
		return aggs[i].TokenAddr < aggs[j].TokenAddr
	})

	if len(aggs) > topN {
		aggs = aggs[:topN]
	}
	for i := range aggs {
		aggs[i].Rank = i + 1
	}

	return aggs
}

// score writes the composite score onto each aggregate using min-max
// normalized dimensions. A dimension with zero spread contributes 0.5 for
// every token so it neither rewards nor punishes anyone.
func score(aggs []domain.TokenAggregate) {
	wallets := make([]float64, len(aggs))
	returns := make([]float64, len(aggs))
	profits := make([]float64, len(aggs))
	for i, a := range aggs {
		wallets[i] = float64(a.ProfitableWallets)
		returns[i] = a.MeanReturnPct
		profits[i] = a.TotalRealizedProfit
	}

	normWallets := minMaxNormalize(wallets)
	normReturns := minMaxNormalize(returns)
	normProfits := minMaxNormalize(profits)

	for i := range aggs {
		aggs[i].CompositeScore = normWallets[i]*weightWallets +
			normReturns[i]*weightReturn +
			normProfits[i]*weightProfit
	}
}

func minMaxNormalize(values []float64) []float64 {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	norm := make([]float64, len(values))
	if max == min {
		for i := range norm {
			norm[i] = 0.5
		}
		return norm
	}
	for i, v := range values {
		norm[i] = (v - min) / (max - min)
	}
	return norm
}
