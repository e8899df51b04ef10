// Package position folds normalized trades into per wallet/token positions
// with realized and unrealized profit split by holding status.
package position

import (
	"math"
	"sort"

	"smart-money-lab/internal/domain"
)

const (
	// DefaultDustThreshold drops positions whose total buy cost is below this
	// many SOL. Such groups are gas noise, not trades.
	DefaultDustThreshold = 0.01

	// Sell-ratio boundaries for the holding status.
	holdingBelow = 0.10
	closedFrom   = 0.90
)

type groupKey struct {
	wallet string
	token  string
}

type group struct {
	symbol       string
	firstBuyTime int64
	lastSellTime *int64
	cost         float64
	revenue      float64
	boughtTokens float64
	soldTokens   float64
	buyCount     int
	sellCount    int
}

// Attribute groups trades by wallet and token and computes a position record
// for each group. Groups without a single buy are dropped: a sell with no
// observed buy has no cost basis inside the window. Groups whose cost falls
// below dustThreshold are dropped as well. Both kinds of drops are tallied.
//
// Records come back sorted by wallet then token address.
func Attribute(trades []domain.NormalizedTrade, names map[string]string, dustThreshold float64) ([]domain.PositionRecord, domain.SkipTally) {
	if dustThreshold <= 0 {
		dustThreshold = DefaultDustThreshold
	}

	groups := make(map[groupKey]*group)
	var order []groupKey

	for _, tr := range trades {
		k := groupKey{tr.Wallet, tr.TokenAddress}
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}

		switch tr.Side {
		case domain.SideBuy:
			if g.buyCount == 0 || tr.Timestamp < g.firstBuyTime {
				g.firstBuyTime = tr.Timestamp
				g.symbol = tr.TokenSymbol
			}
			g.cost += math.Abs(tr.SOLEquivalent)
			g.boughtTokens += tr.TokenAmount
			g.buyCount++
		case domain.SideSell:
			if g.lastSellTime == nil || tr.Timestamp > *g.lastSellTime {
				t := tr.Timestamp
				g.lastSellTime = &t
			}
			g.revenue += tr.SOLEquivalent
			g.soldTokens += math.Abs(tr.TokenAmount)
			g.sellCount++
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].wallet != order[j].wallet {
			return order[i].wallet < order[j].wallet
		}
		return order[i].token < order[j].token
	})

	var (
		records []domain.PositionRecord
		skips   domain.SkipTally
	)

	for _, k := range order {
		g := groups[k]

		if g.buyCount == 0 {
			skips.NoBuys++
			continue
		}
		if g.cost < dustThreshold {
			skips.Dust++
			continue
		}

		rec := buildRecord(k, g, names)
		records = append(records, rec)
	}

	return records, skips
}

func buildRecord(k groupKey, g *group, names map[string]string) domain.PositionRecord {
	bought := math.Abs(g.boughtTokens)

	var sellRatio float64
	if bought > 0 {
		sellRatio = g.soldTokens / bought
	}

	var status string
	switch {
	case sellRatio < holdingBelow:
		status = domain.StatusHolding
	case sellRatio < closedFrom:
		status = domain.StatusPartial
	default:
		status = domain.StatusClosed
	}

	var realized, realizedReturn, unrealizedCost float64
	switch status {
	case domain.StatusHolding:
		unrealizedCost = g.cost
	case domain.StatusPartial:
		soldCost := g.cost * sellRatio
		realized = g.revenue - soldCost
		if soldCost > 0 {
			realizedReturn = realized / soldCost * 100
		}
		unrealizedCost = g.cost * (1 - sellRatio)
	case domain.StatusClosed:
		realized = g.revenue - g.cost
		if g.cost > 0 {
			realizedReturn = realized / g.cost * 100
		}
	}

	return domain.PositionRecord{
		Wallet:            k.wallet,
		WalletName:        names[k.wallet],
		TokenAddr:         k.token,
		TokenSymbol:       g.symbol,
		FirstBuyTime:      g.firstBuyTime,
		LastSellTime:      g.lastSellTime,
		Status:            status,
		SellRatioPct:      math.Min(sellRatio*100, 100),
		Cost:              g.cost,
		Revenue:           g.revenue,
		RealizedProfit:    realized,
		RealizedReturnPct: realizedReturn,
		UnrealizedCost:    unrealizedCost,
		BuyCount:          g.buyCount,
		SellCount:         g.sellCount,
	}
}
