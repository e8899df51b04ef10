package analysis

import (
	"sort"

	"smart-money-lab/internal/domain"
)

// buildCoverage reports, per wallet, how much of the ranked token list it
// actually bought and what that slice of its trading earned. Wallets that
// touched none of the ranked tokens are omitted. Sorted by ranked tokens
// bought descending.
func buildCoverage(cohort []*domain.WalletSnapshot, positions []domain.PositionRecord, ranked []domain.TokenAggregate, solPriceUSD float64) []domain.TokenCoverage {
	rankedSymbols := make(map[string]string, len(ranked))
	for _, a := range ranked {
		rankedSymbols[a.TokenAddr] = a.TokenSymbol
	}

	snapshots := make(map[string]*domain.WalletSnapshot, len(cohort))
	for _, w := range cohort {
		snapshots[w.Address] = w
	}

	type acc struct {
		cov       domain.TokenCoverage
		returnSum float64
		records   int
	}

	byWallet := make(map[string]*acc)
	var order []string
	for _, p := range positions {
		sym, ok := rankedSymbols[p.TokenAddr]
		if !ok {
			continue
		}

		a, ok := byWallet[p.Wallet]
		if !ok {
			a = &acc{cov: domain.TokenCoverage{
				Address:       p.Wallet,
				Name:          p.WalletName,
				StatusByToken: make(map[string]string),
			}}
			if w, ok := snapshots[p.Wallet]; ok {
				a.cov.PnL30dSOL = w.PnLSOL(solPriceUSD)
				a.cov.WinRate30d = w.WinRate30d
			}
			byWallet[p.Wallet] = a
			order = append(order, p.Wallet)
		}

		a.cov.RankedTokensBought++
		a.cov.RealizedProfit += p.RealizedProfit
		a.cov.TotalCost += p.Cost
		a.cov.TotalRevenue += p.Revenue
		a.cov.StatusByToken[sym] = p.Status
		a.returnSum += p.RealizedReturnPct
		a.records++
	}

	coverage := make([]domain.TokenCoverage, 0, len(order))
	for _, wallet := range order {
		a := byWallet[wallet]
		if a.records > 0 {
			a.cov.MeanReturnPct = a.returnSum / float64(a.records)
		}
		coverage = append(coverage, a.cov)
	}

	sort.Slice(coverage, func(i, j int) bool {
		if coverage[i].RankedTokensBought != coverage[j].RankedTokensBought {
			return coverage[i].RankedTokensBought > coverage[j].RankedTokensBought
		}
		return coverage[i].Address < coverage[j].Address
	})

	return coverage
}
