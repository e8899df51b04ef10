package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-money-lab/internal/domain"
)

func pos(wallet, token string, firstBuy int64, lastSell *int64) domain.PositionRecord {
	status := domain.StatusHolding
	if lastSell != nil {
		status = domain.StatusClosed
	}
	return domain.PositionRecord{
		Wallet: wallet, TokenAddr: token, TokenSymbol: token,
		FirstBuyTime: firstBuy, LastSellTime: lastSell,
		Status: status, Cost: 10,
	}
}

func ranked(tokens ...string) []domain.TokenAggregate {
	var out []domain.TokenAggregate
	for i, tok := range tokens {
		out = append(out, domain.TokenAggregate{TokenAddr: tok, TokenSymbol: tok, Rank: i + 1})
	}
	return out
}

func ts(v int64) *int64 { return &v }

const hourMs = int64(3600 * 1000)

func TestTiming_PerfectOverlap(t *testing.T) {
	positions := []domain.PositionRecord{
		pos("w1", "tok-a", 0, ts(10*hourMs)),
		pos("w1", "tok-b", 0, ts(20*hourMs)),
		pos("w2", "tok-a", 0, ts(10*hourMs)),
		pos("w2", "tok-b", 0, ts(20*hourMs)),
	}

	edges := Timing(positions, ranked("tok-a", "tok-b"), nil, 0)
	require.Len(t, edges, 1)

	e := edges[0]
	assert.Equal(t, "w1", e.Wallet1)
	assert.Equal(t, "w2", e.Wallet2)
	assert.Equal(t, 2, e.SharedTokens)
	assert.Equal(t, []string{"tok-a", "tok-b"}, e.SharedSymbols)
	require.NotNil(t, e.AvgBuyDiffHours)
	assert.InDelta(t, 0.0, *e.AvgBuyDiffHours, 1e-9)
	require.NotNil(t, e.AvgSellDiffHours)
	assert.InDelta(t, 0.0, *e.AvgSellDiffHours, 1e-9)
	assert.InDelta(t, 1.0, e.Score, 1e-9, "identical timing scores a full 1.0")
}

func TestTiming_HourDiffs(t *testing.T) {
	positions := []domain.PositionRecord{
		pos("w1", "tok-a", 0, nil),
		pos("w1", "tok-b", 0, nil),
		pos("w2", "tok-a", 1*hourMs, nil),
		pos("w2", "tok-b", 3*hourMs, nil),
	}

	edges := Timing(positions, ranked("tok-a", "tok-b"), nil, 0)
	require.Len(t, edges, 1)

	e := edges[0]
	require.NotNil(t, e.AvgBuyDiffHours)
	assert.InDelta(t, 2.0, *e.AvgBuyDiffHours, 1e-9)
	require.NotNil(t, e.MaxBuyDiffHours)
	assert.InDelta(t, 3.0, *e.MaxBuyDiffHours, 1e-9)

	// No position ever sold, so the sell side is absent and contributes zero.
	assert.Nil(t, e.AvgSellDiffHours)
	assert.Nil(t, e.MaxSellDiffHours)
	assert.InDelta(t, (1.0/3.0)/2, e.Score, 1e-9)
}

func TestTiming_MinSharedTokens(t *testing.T) {
	positions := []domain.PositionRecord{
		pos("w1", "tok-a", 0, nil),
		pos("w2", "tok-a", 0, nil),
		pos("w2", "tok-b", 0, nil),
	}

	edges := Timing(positions, ranked("tok-a", "tok-b"), nil, 0)
	assert.Empty(t, edges, "one shared token is not evidence")
}

func TestTiming_IgnoresUnrankedTokens(t *testing.T) {
	positions := []domain.PositionRecord{
		pos("w1", "tok-a", 0, nil),
		pos("w1", "junk", 0, nil),
		pos("w2", "tok-a", 0, nil),
		pos("w2", "junk", 0, nil),
	}

	edges := Timing(positions, ranked("tok-a"), nil, 0)
	assert.Empty(t, edges, "overlap outside the ranked set must not count")
}

func TestTiming_SortOrder(t *testing.T) {
	positions := []domain.PositionRecord{
		// w1/w2 share three tokens with sloppy timing.
		pos("w1", "tok-a", 0, nil), pos("w2", "tok-a", 100*hourMs, nil),
		pos("w1", "tok-b", 0, nil), pos("w2", "tok-b", 100*hourMs, nil),
		pos("w1", "tok-c", 0, nil), pos("w2", "tok-c", 100*hourMs, nil),
		// w3/w4 share two tokens with tight timing.
		pos("w3", "tok-a", 0, nil), pos("w4", "tok-a", 0, nil),
		pos("w3", "tok-b", 0, nil), pos("w4", "tok-b", 0, nil),
	}

	edges := Timing(positions, ranked("tok-a", "tok-b", "tok-c"), nil, 0)
	require.NotEmpty(t, edges)

	// More shared tokens outranks a better score.
	assert.Equal(t, 3, edges[0].SharedTokens)
	assert.Equal(t, "w1", edges[0].Wallet1)
	assert.Equal(t, "w2", edges[0].Wallet2)
}

func TestTiming_NamesAttached(t *testing.T) {
	positions := []domain.PositionRecord{
		pos("w1", "tok-a", 0, nil), pos("w1", "tok-b", 0, nil),
		pos("w2", "tok-a", 0, nil), pos("w2", "tok-b", 0, nil),
	}

	edges := Timing(positions, ranked("tok-a", "tok-b"), map[string]string{"w1": "alpha"}, 0)
	require.Len(t, edges, 1)
	assert.Equal(t, "alpha", edges[0].Wallet1Name)
	assert.Empty(t, edges[0].Wallet2Name)
}

func TestTiming_Empty(t *testing.T) {
	assert.Empty(t, Timing(nil, nil, nil, 0))
}
