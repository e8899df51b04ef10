package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-money-lab/internal/domain"
)

func TestBuildOverviews_JoinsAndSorts(t *testing.T) {
	cohort := []*domain.WalletSnapshot{
		{Address: "small", Name: "S", PnL30d: 2000},
		{Address: "big", Name: "B", PnL30d: 40000},
	}
	positions := []domain.PositionRecord{
		{Wallet: "big", TokenAddr: "a", Status: domain.StatusClosed, Cost: 10, RealizedProfit: 5},
		{Wallet: "big", TokenAddr: "b", Status: domain.StatusClosed, Cost: 10, RealizedProfit: -2},
		{Wallet: "big", TokenAddr: "c", Status: domain.StatusPartial, Cost: 10, RealizedProfit: 0},
		{Wallet: "big", TokenAddr: "d", Status: domain.StatusHolding, Cost: 5},
	}

	got := buildOverviews(cohort, positions, 200)
	require.Len(t, got, 2)

	big := got[0]
	assert.Equal(t, "big", big.Address)
	assert.InDelta(t, 200.0, big.PnL30dSOL, 1e-9)
	assert.Equal(t, 4, big.TokensTraded)
	assert.Equal(t, 2, big.ClosedTokens)
	assert.Equal(t, 1, big.PartialTokens)
	assert.Equal(t, 1, big.HoldingTokens)
	assert.InDelta(t, 35.0, big.TotalCost, 1e-9)
	assert.InDelta(t, 3.0, big.RealizedProfit, 1e-9)
	// The break-even partial exit counts as neither win nor loss.
	assert.Equal(t, 1, big.RealizedWins)
	assert.Equal(t, 1, big.RealizedLosses)
	assert.InDelta(t, 50.0, big.RealizedWinRatePct, 1e-9)

	// Cohort wallet with no usable positions still appears, zeroed.
	small := got[1]
	assert.Equal(t, "small", small.Address)
	assert.Zero(t, small.TokensTraded)
	assert.Zero(t, small.RealizedWinRatePct)
}

func TestBuildCoverage_RestrictsToRankedTokens(t *testing.T) {
	cohort := []*domain.WalletSnapshot{
		{Address: "w1", PnL30d: 10000, WinRate30d: 0.8},
		{Address: "w2", PnL30d: 5000},
	}
	ranked := []domain.TokenAggregate{
		{TokenAddr: "hot", TokenSymbol: "HOT", Rank: 1},
	}
	positions := []domain.PositionRecord{
		{Wallet: "w1", TokenAddr: "hot", TokenSymbol: "HOT", Status: domain.StatusClosed,
			Cost: 10, Revenue: 14, RealizedProfit: 4, RealizedReturnPct: 40},
		{Wallet: "w1", TokenAddr: "cold", TokenSymbol: "COLD", Status: domain.StatusClosed,
			Cost: 99, Revenue: 0, RealizedProfit: -99},
		{Wallet: "w2", TokenAddr: "cold", TokenSymbol: "COLD", Status: domain.StatusHolding, Cost: 1},
	}

	got := buildCoverage(cohort, positions, ranked, 200)
	require.Len(t, got, 1, "w2 never touched a ranked token")

	c := got[0]
	assert.Equal(t, "w1", c.Address)
	assert.Equal(t, 1, c.RankedTokensBought)
	assert.InDelta(t, 4.0, c.RealizedProfit, 1e-9)
	assert.InDelta(t, 10.0, c.TotalCost, 1e-9)
	assert.InDelta(t, 40.0, c.MeanReturnPct, 1e-9)
	assert.InDelta(t, 50.0, c.PnL30dSOL, 1e-9)
	assert.Equal(t, domain.StatusClosed, c.StatusByToken["HOT"])
	_, hasCold := c.StatusByToken["COLD"]
	assert.False(t, hasCold)
}

func TestResult_RankedPositions(t *testing.T) {
	r := &Result{
		Ranked: []domain.TokenAggregate{
			{TokenAddr: "first", Rank: 1},
			{TokenAddr: "second", Rank: 2},
		},
		Positions: []domain.PositionRecord{
			{Wallet: "w1", TokenAddr: "second", RealizedProfit: 9},
			{Wallet: "w1", TokenAddr: "first", RealizedProfit: 1},
			{Wallet: "w2", TokenAddr: "first", RealizedProfit: 7},
			{Wallet: "w3", TokenAddr: "unranked", RealizedProfit: 100},
		},
	}

	got := r.RankedPositions()
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].TokenAddr)
	assert.Equal(t, "w2", got[0].Wallet, "within a token, biggest realized profit first")
	assert.Equal(t, "w1", got[1].Wallet)
	assert.Equal(t, "second", got[2].TokenAddr)
}
