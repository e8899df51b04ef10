package reporting

import (
	"fmt"
	"strings"
	"time"

	"smart-money-lab/internal/analysis"
	"smart-money-lab/internal/domain"
)

func formatMs(ms int64) string {
	return time.UnixMilli(ms).UTC().Format("2006-01-02 15:04:05")
}

func formatMsPtr(ms *int64) string {
	if ms == nil {
		return ""
	}
	return formatMs(*ms)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

// csvField quotes a value when it contains a separator, quote or newline.
func csvField(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// RenderOverviewCSV renders the wallet overview sheet.
func RenderOverviewCSV(overviews []domain.WalletOverview) string {
	var sb strings.Builder

	sb.WriteString("address,name,pnl_30d_sol,pnl_30d_usd,winrate_30d,tx_count_30d,avg_hold_time_30d,sol_balance,")
	sb.WriteString("tokens_traded,closed_tokens,partial_tokens,holding_tokens,")
	sb.WriteString("realized_profit_sol,total_cost_sol,realized_wins,realized_losses,realized_winrate_pct\n")

	for _, o := range overviews {
		sb.WriteString(fmt.Sprintf("%s,%s,%.4f,%.2f,%.4f,%d,%d,%.4f,%d,%d,%d,%d,%.4f,%.4f,%d,%d,%.1f\n",
			o.Address,
			csvField(o.Name),
			o.PnL30dSOL,
			o.PnL30dUSD,
			o.WinRate30d,
			o.TxCount30d,
			o.AvgHoldTime30d,
			o.SOLBalance,
			o.TokensTraded,
			o.ClosedTokens,
			o.PartialTokens,
			o.HoldingTokens,
			o.RealizedProfit,
			o.TotalCost,
			o.RealizedWins,
			o.RealizedLosses,
			o.RealizedWinRatePct,
		))
	}

	return sb.String()
}

// RenderRankedTokensCSV renders the ranked token sheet.
func RenderRankedTokensCSV(ranked []domain.TokenAggregate) string {
	var sb strings.Builder

	sb.WriteString("rank,token_symbol,token_address,composite_score,total_realized_profit_sol,")
	sb.WriteString("mean_realized_profit_sol,max_realized_profit_sol,profitable_wallets,buying_wallets,")
	sb.WriteString("total_cost_sol,total_revenue_sol,mean_return_pct,holding_wallets,holding_cost_sol\n")

	for _, a := range ranked {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%.4f,%.4f,%.4f,%.4f,%d,%d,%.4f,%.4f,%.4f,%d,%.4f\n",
			a.Rank,
			csvField(a.TokenSymbol),
			a.TokenAddr,
			a.CompositeScore,
			a.TotalRealizedProfit,
			a.MeanRealizedProfit,
			a.MaxRealizedProfit,
			a.ProfitableWallets,
			a.BuyingWallets,
			a.TotalCost,
			a.TotalRevenue,
			a.MeanReturnPct,
			a.HoldingWallets,
			a.HoldingCost,
		))
	}

	return sb.String()
}

// RenderCoverageCSV renders the per-wallet ranked token coverage sheet. The
// status of each ranked token gets its own column, in rank order.
func RenderCoverageCSV(coverage []domain.TokenCoverage, ranked []domain.TokenAggregate) string {
	var sb strings.Builder

	sb.WriteString("address,name,ranked_tokens_bought,pnl_30d_sol,winrate_30d,")
	sb.WriteString("realized_profit_sol,total_cost_sol,total_revenue_sol,mean_return_pct")
	for _, a := range ranked {
		sb.WriteString("," + csvField(a.TokenSymbol))
	}
	sb.WriteString("\n")

	for _, c := range coverage {
		sb.WriteString(fmt.Sprintf("%s,%s,%d,%.4f,%.4f,%.4f,%.4f,%.4f,%.4f",
			c.Address,
			csvField(c.Name),
			c.RankedTokensBought,
			c.PnL30dSOL,
			c.WinRate30d,
			c.RealizedProfit,
			c.TotalCost,
			c.TotalRevenue,
			c.MeanReturnPct,
		))
		for _, a := range ranked {
			sb.WriteString("," + c.StatusByToken[a.TokenSymbol])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// RenderRankedPositionsCSV renders the per-token wallet drill-down sheet.
func RenderRankedPositionsCSV(result *analysis.Result) string {
	rankOf := make(map[string]int, len(result.Ranked))
	for _, a := range result.Ranked {
		rankOf[a.TokenAddr] = a.Rank
	}

	var sb strings.Builder

	sb.WriteString("rank,token_symbol,token_address,wallet,wallet_name,status,sell_ratio_pct,")
	sb.WriteString("first_buy_time,last_sell_time,cost_sol,revenue_sol,")
	sb.WriteString("realized_profit_sol,realized_return_pct,unrealized_cost_sol,buy_count,sell_count\n")

	for _, p := range result.RankedPositions() {
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%s,%s,%s,%.1f,%s,%s,%.4f,%.4f,%.4f,%.2f,%.4f,%d,%d\n",
			rankOf[p.TokenAddr],
			csvField(p.TokenSymbol),
			p.TokenAddr,
			p.Wallet,
			csvField(p.WalletName),
			p.Status,
			p.SellRatioPct,
			formatMs(p.FirstBuyTime),
			formatMsPtr(p.LastSellTime),
			p.Cost,
			p.Revenue,
			p.RealizedProfit,
			p.RealizedReturnPct,
			p.UnrealizedCost,
			p.BuyCount,
			p.SellCount,
		))
	}

	return sb.String()
}

// RenderTimingCSV renders the trade timing similarity sheet.
func RenderTimingCSV(edges []domain.TimingEdge) string {
	var sb strings.Builder

	sb.WriteString("wallet1,wallet1_name,wallet2,wallet2_name,score,shared_tokens,shared_symbols,")
	sb.WriteString("avg_buy_diff_hours,max_buy_diff_hours,avg_sell_diff_hours,max_sell_diff_hours\n")

	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.3f,%d,%s,%s,%s,%s,%s\n",
			e.Wallet1,
			csvField(e.Wallet1Name),
			e.Wallet2,
			csvField(e.Wallet2Name),
			e.Score,
			e.SharedTokens,
			csvField(strings.Join(e.SharedSymbols, ", ")),
			formatFloatPtr(e.AvgBuyDiffHours),
			formatFloatPtr(e.MaxBuyDiffHours),
			formatFloatPtr(e.AvgSellDiffHours),
			formatFloatPtr(e.MaxSellDiffHours),
		))
	}

	return sb.String()
}

// RenderBehaviorCSV renders the behavior similarity sheet.
func RenderBehaviorCSV(edges []domain.BehaviorEdge) string {
	var sb strings.Builder

	sb.WriteString("wallet1,wallet1_name,wallet2,wallet2_name,score,jaccard,common_tokens,common_symbols,")
	sb.WriteString("cost_sim,wallet1_winrate_pct,wallet2_winrate_pct,winrate_diff_pct,")
	sb.WriteString("wallet1_cost_sol,wallet2_cost_sol,wallet1_profit_sol,wallet2_profit_sol,")
	sb.WriteString("wallet1_tokens,wallet2_tokens\n")

	for _, e := range edges {
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.3f,%.3f,%d,%s,%.3f,%.1f,%.1f,%.1f,%.4f,%.4f,%.4f,%.4f,%d,%d\n",
			e.Wallet1,
			csvField(e.Wallet1Name),
			e.Wallet2,
			csvField(e.Wallet2Name),
			e.Score,
			e.Jaccard,
			e.CommonTokens,
			csvField(strings.Join(e.CommonSymbols, ", ")),
			e.CostSim,
			e.Wallet1WinRate,
			e.Wallet2WinRate,
			e.WinRateDiff,
			e.Wallet1Cost,
			e.Wallet2Cost,
			e.Wallet1Profit,
			e.Wallet2Profit,
			e.Wallet1Tokens,
			e.Wallet2Tokens,
		))
	}

	return sb.String()
}
