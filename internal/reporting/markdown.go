package reporting

import (
	"fmt"
	"strings"

	"smart-money-lab/internal/analysis"
)

// RenderMarkdown produces a human-readable summary of an analysis run. The
// CSV sheets carry the full data; this is the cover page.
func RenderMarkdown(result *analysis.Result) string {
	var sb strings.Builder

	sb.WriteString("# Smart Money Analysis Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s UTC\n\n", formatMs(result.GeneratedAt)))

	sb.WriteString("## Run Parameters\n\n")
	sb.WriteString(fmt.Sprintf("- Window: last %d days\n", result.Params.WindowDays))
	sb.WriteString(fmt.Sprintf("- SOL price: %.2f USD\n", result.Params.SOLPriceUSD))
	sb.WriteString(fmt.Sprintf("- Dust threshold: %.2f SOL\n", result.Params.DustThreshold))
	sb.WriteString(fmt.Sprintf("- Ranking depth: top %d tokens\n", result.Params.TopN))
	sb.WriteString("\n")

	sb.WriteString("## Cohort\n\n")
	sb.WriteString(fmt.Sprintf("- Profitable non-high-frequency wallets: %d\n", len(result.Cohort)))
	sb.WriteString(fmt.Sprintf("- Attributed positions: %d\n", len(result.Positions)))
	sb.WriteString("\n")

	sb.WriteString("## Top Tokens\n\n")
	if len(result.Ranked) == 0 {
		sb.WriteString("No token cleared the profitability filter in this window.\n\n")
	} else {
		sb.WriteString("| Rank | Token | Score | Realized Profit (SOL) | Profitable Wallets | Buying Wallets | Holding Wallets |\n")
		sb.WriteString("|------|-------|-------|----------------------|--------------------|----------------|------------------|\n")
		for _, a := range result.Ranked {
			sb.WriteString(fmt.Sprintf("| %d | %s | %.3f | %.4f | %d | %d | %d |\n",
				a.Rank, a.TokenSymbol, a.CompositeScore, a.TotalRealizedProfit,
				a.ProfitableWallets, a.BuyingWallets, a.HoldingWallets))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Wallet Correlation\n\n")
	sb.WriteString(fmt.Sprintf("- Timing pairs (>= %d shared ranked tokens): %d\n",
		result.Params.MinSharedTokens, len(result.TimingEdges)))
	sb.WriteString(fmt.Sprintf("- Behavior pairs (score >= %.2f): %d\n",
		result.Params.MinBehaviorScore, len(result.BehaviorEdges)))
	if len(result.TimingEdges) > 0 {
		top := result.TimingEdges[0]
		sb.WriteString(fmt.Sprintf("- Closest timing pair: %s / %s (%d shared, score %.3f)\n",
			top.Wallet1, top.Wallet2, top.SharedTokens, top.Score))
	}
	if len(result.BehaviorEdges) > 0 {
		top := result.BehaviorEdges[0]
		sb.WriteString(fmt.Sprintf("- Most similar behavior pair: %s / %s (score %.3f)\n",
			top.Wallet1, top.Wallet2, top.Score))
	}
	sb.WriteString("\n")

	sb.WriteString("## Dropped Records\n\n")
	sb.WriteString("| Reason | Count |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Unparsable payload | %d |\n", result.Skips.Unparsable))
	sb.WriteString(fmt.Sprintf("| No target token | %d |\n", result.Skips.NoTarget))
	sb.WriteString(fmt.Sprintf("| Token-for-token swap | %d |\n", result.Skips.TokenSwap))
	sb.WriteString(fmt.Sprintf("| Dust position | %d |\n", result.Skips.Dust))
	sb.WriteString(fmt.Sprintf("| Sells without buys | %d |\n", result.Skips.NoBuys))
	sb.WriteString(fmt.Sprintf("| **Total** | %d |\n", result.Skips.Total()))

	return sb.String()
}
