package analysis

import (
	"sort"

	"smart-money-lab/internal/domain"
)

// buildOverviews joins the profitable cohort with its per-token positions and
// produces one overview row per wallet. Wallets that produced no usable
// positions still appear with zeroed trading stats. Sorted by 30-day SOL PnL
// descending.
func buildOverviews(cohort []*domain.WalletSnapshot, positions []domain.PositionRecord, solPriceUSD float64) []domain.WalletOverview {
	type stats struct {
		tokens    int
		closed    int
		partial   int
		holding   int
		totalCost float64
		realized  float64
		wins      int
		losses    int
	}

	byWallet := make(map[string]*stats)
	for _, p := range positions {
		s, ok := byWallet[p.Wallet]
		if !ok {
			s = &stats{}
			byWallet[p.Wallet] = s
		}

		s.tokens++
		s.totalCost += p.Cost
		switch p.Status {
		case domain.StatusClosed:
			s.closed++
		case domain.StatusPartial:
			s.partial++
		case domain.StatusHolding:
			s.holding++
		}
		if p.Realized() {
			s.realized += p.RealizedProfit
			if p.RealizedProfit > 0 {
				s.wins++
			} else if p.RealizedProfit < 0 {
				s.losses++
			}
		}
	}

	overviews := make([]domain.WalletOverview, 0, len(cohort))
	for _, w := range cohort {
		o := domain.WalletOverview{
			Address:        w.Address,
			Name:           w.Name,
			PnL30dUSD:      w.PnL30d,
			PnL30dSOL:      w.PnLSOL(solPriceUSD),
			WinRate30d:     w.WinRate30d,
			TxCount30d:     w.TxCount30d,
			AvgHoldTime30d: w.AvgHoldTime30d,
			SOLBalance:     w.SOLBalance,
		}

		if s, ok := byWallet[w.Address]; ok {
			o.TokensTraded = s.tokens
			o.ClosedTokens = s.closed
			o.PartialTokens = s.partial
			o.HoldingTokens = s.holding
			o.TotalCost = s.totalCost
			o.RealizedProfit = s.realized
			o.RealizedWins = s.wins
			o.RealizedLosses = s.losses
			if denom := s.wins + s.losses; denom > 0 {
				o.RealizedWinRatePct = float64(s.wins) / float64(denom) * 100
			}
		}

		overviews = append(overviews, o)
	}

	sort.Slice(overviews, func(i, j int) bool {
		if overviews[i].PnL30dSOL != overviews[j].PnL30dSOL {
			return overviews[i].PnL30dSOL > overviews[j].PnL30dSOL
		}
		return overviews[i].Address < overviews[j].Address
	})

	return overviews
}
