package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-money-lab/internal/domain"
)

const testSOLPrice = 200.0

func solLeg(amount float64) domain.BalanceEntry {
	return domain.BalanceEntry{Symbol: "SOL", Name: "Solana", Amount: amount, Decimals: 0}
}

func tokenLeg(symbol, addr string, amount float64) domain.BalanceEntry {
	return domain.BalanceEntry{Symbol: symbol, Name: symbol, Amount: amount, Decimals: 0, Address: addr}
}

func TestNormalize_Buy(t *testing.T) {
	// Quote leg -a, target leg +b: SOL equivalent must be exactly -a.
	sig, err := Normalize([]domain.BalanceEntry{
		solLeg(-2.5),
		tokenLeg("BONK", "bonk-mint", 1_000_000),
	}, testSOLPrice)
	require.NoError(t, err)

	assert.Equal(t, "bonk-mint", sig.TokenAddress)
	assert.Equal(t, "BONK", sig.TokenSymbol)
	assert.Equal(t, 1_000_000.0, sig.TokenAmount)
	assert.Equal(t, -2.5, sig.SOLEquivalent)
	assert.False(t, sig.TokenSwap)
}

func TestNormalize_RawAmountDecimals(t *testing.T) {
	sig, err := Normalize([]domain.BalanceEntry{
		{Symbol: "SOL", Amount: -1_500_000_000, Decimals: 9},
		{Symbol: "TOK", Amount: 42_000_000, Decimals: 6, Address: "tok-mint"},
	}, testSOLPrice)
	require.NoError(t, err)

	assert.InDelta(t, -1.5, sig.SOLEquivalent, 1e-9)
	assert.InDelta(t, 42.0, sig.TokenAmount, 1e-9)
}

func TestNormalize_StableConversion(t *testing.T) {
	// 400 USDC spent at 200 USD/SOL is 2 SOL-equivalent.
	sig, err := Normalize([]domain.BalanceEntry{
		{Symbol: "USDC", Amount: -400, Decimals: 0},
		tokenLeg("WIF", "wif-mint", 100),
	}, testSOLPrice)
	require.NoError(t, err)

	assert.InDelta(t, -2.0, sig.SOLEquivalent, 1e-9)
	assert.False(t, sig.TokenSwap, "stablecoin leg above epsilon is a real trade")
}

func TestNormalize_QuoteByName(t *testing.T) {
	// Wrapped SOL is recognized by name even with an unfamiliar symbol.
	sig, err := Normalize([]domain.BalanceEntry{
		{Symbol: "wsol-x", Name: "Wrapped SOL", Amount: -3, Decimals: 0},
		tokenLeg("PEPE", "pepe-mint", 5),
	}, testSOLPrice)
	require.NoError(t, err)
	assert.Equal(t, -3.0, sig.QuoteAmount)
}

func TestNormalize_LargestTargetWins(t *testing.T) {
	sig, err := Normalize([]domain.BalanceEntry{
		solLeg(-1),
		tokenLeg("SMALL", "small-mint", 10),
		tokenLeg("BIG", "big-mint", -500),
	}, testSOLPrice)
	require.NoError(t, err)
	assert.Equal(t, "big-mint", sig.TokenAddress)
	assert.Equal(t, -500.0, sig.TokenAmount)
}

func TestNormalize_TokenSwapExcluded(t *testing.T) {
	// Gas-only quote leg, no stable leg, two moving non-quote legs: swap.
	sig, err := Normalize([]domain.BalanceEntry{
		solLeg(0.001),
		tokenLeg("AAA", "aaa-mint", -300),
		tokenLeg("BBB", "bbb-mint", 900),
	}, testSOLPrice)
	require.NoError(t, err)
	assert.True(t, sig.TokenSwap)
	assert.Equal(t, "bbb-mint", sig.TokenAddress, "largest leg is still reported")
}

func TestNormalize_SingleTargetGasOnlyNotSwap(t *testing.T) {
	// One non-quote leg with gas-only SOL is kept: nothing else moved, so
	// there is no counter-token to swap with.
	sig, err := Normalize([]domain.BalanceEntry{
		solLeg(0.002),
		tokenLeg("AAA", "aaa-mint", 50),
	}, testSOLPrice)
	require.NoError(t, err)
	assert.False(t, sig.TokenSwap)
}

func TestNormalize_UnrecognizedStableMisclassified(t *testing.T) {
	// Known approximation: a buy paid in a stablecoin outside the fixed
	// symbol sets looks like a token swap. Preserved on purpose.
	sig, err := Normalize([]domain.BalanceEntry{
		solLeg(0.0005),
		tokenLeg("DAI", "dai-mint", -150),
		tokenLeg("MEME", "meme-mint", 10_000),
	}, testSOLPrice)
	require.NoError(t, err)
	assert.True(t, sig.TokenSwap)
}

func TestNormalize_TooFewLegs(t *testing.T) {
	_, err := Normalize([]domain.BalanceEntry{solLeg(-1)}, testSOLPrice)
	assert.ErrorIs(t, err, ErrTooFewLegs)

	_, err = Normalize(nil, testSOLPrice)
	assert.ErrorIs(t, err, ErrTooFewLegs)
}

func TestNormalize_NoTarget(t *testing.T) {
	_, err := Normalize([]domain.BalanceEntry{
		solLeg(-1),
		{Symbol: "USDC", Amount: 200, Decimals: 0},
	}, testSOLPrice)
	assert.ErrorIs(t, err, ErrNoTarget)
}

func TestNormalize_SymbolFallback(t *testing.T) {
	sig, err := Normalize([]domain.BalanceEntry{
		solLeg(-1),
		{Symbol: "", Name: "", Amount: 7, Address: "anon-mint"},
	}, testSOLPrice)
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN", sig.TokenSymbol)
}

func TestParsePayload(t *testing.T) {
	entries, err := ParsePayload(`[{"symbol":"SOL","amount":-1000000000,"decimals":9},{"symbol":"TOK","amount":5,"decimals":0,"address":"tok"}]`)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "SOL", entries[0].Symbol)
	assert.Equal(t, 9, entries[0].Decimals)
}

func TestParsePayload_Malformed(t *testing.T) {
	_, err := ParsePayload(`{"not":"a list"}`)
	assert.Error(t, err)

	_, err = ParsePayload("")
	assert.Error(t, err)
}
