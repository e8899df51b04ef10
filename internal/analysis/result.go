package analysis

import (
	"sort"

	"smart-money-lab/internal/domain"
)

// Result is the complete output of one analysis run.
type Result struct {
	// GeneratedAt is the run timestamp in epoch milliseconds.
	GeneratedAt int64

	// Params echoes the configuration the run used.
	Params Params

	// Cohort is the profitable non-high-frequency wallet set, sorted by
	// 30-day PnL descending.
	Cohort []*domain.WalletSnapshot

	// Positions holds every attributed wallet/token position.
	Positions []domain.PositionRecord

	// Ranked is the top token list by composite score.
	Ranked []domain.TokenAggregate

	// Overviews summarizes each cohort wallet's trading in the window.
	Overviews []domain.WalletOverview

	// Coverage shows which cohort wallets bought the ranked tokens.
	Coverage []domain.TokenCoverage

	// TimingEdges and BehaviorEdges are the wallet correlation results.
	TimingEdges   []domain.TimingEdge
	BehaviorEdges []domain.BehaviorEdge

	// Skips tallies everything dropped on the way here.
	Skips domain.SkipTally
}

// RankedPositions returns the positions on ranked tokens grouped in rank
// order, each token's records sorted by realized profit descending. This is
// the per-token drill-down behind the ranking.
func (r *Result) RankedPositions() []domain.PositionRecord {
	byToken := make(map[string][]domain.PositionRecord)
	for _, p := range r.Positions {
		byToken[p.TokenAddr] = append(byToken[p.TokenAddr], p)
	}

	var out []domain.PositionRecord
	for _, agg := range r.Ranked {
		records := byToken[agg.TokenAddr]
		sort.Slice(records, func(i, j int) bool {
			if records[i].RealizedProfit != records[j].RealizedProfit {
				return records[i].RealizedProfit > records[j].RealizedProfit
			}
			return records[i].Wallet < records[j].Wallet
		})
		out = append(out, records...)
	}
	return out
}
