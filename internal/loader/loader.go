// Package loader pulls raw wallet transactions out of storage and turns them
// into normalized trades ready for position attribution.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/normalize"
	"smart-money-lab/internal/storage"
)

const (
	// DefaultBatchSize is the number of wallets fetched per store query.
	DefaultBatchSize = 50

	// DefaultConcurrency bounds the number of in-flight batch queries.
	DefaultConcurrency = 4
)

// Options configures a Loader.
type Options struct {
	Store       storage.TransactionStore
	SOLPriceUSD float64
	BatchSize   int
	Concurrency int
	Logger      *zap.Logger
}

// Loader fetches trades for a wallet cohort in batches and normalizes them.
type Loader struct {
	store       storage.TransactionStore
	solPriceUSD float64
	batchSize   int
	concurrency int
	logger      *zap.Logger
}

// New creates a Loader. Zero batch size and concurrency fall back to defaults.
func New(opts Options) (*Loader, error) {
	if opts.Store == nil {
		return nil, errors.New("loader: store is required")
	}
	if opts.SOLPriceUSD <= 0 {
		return nil, errors.New("loader: sol price must be positive")
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchSize < 0 {
		return nil, errors.New("loader: batch size must be positive")
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Concurrency < 0 {
		return nil, errors.New("loader: concurrency must be positive")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Loader{
		store:       opts.Store,
		solPriceUSD: opts.SOLPriceUSD,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}, nil
}

// Result holds the normalized trades for a cohort along with a tally of
// transactions that were skipped during normalization.
type Result struct {
	Trades []domain.NormalizedTrade
	Skips  domain.SkipTally
}

// Load fetches all buy/sell transactions since the given block time for the
// wallets and normalizes them. Storage errors abort the whole load; rows that
// fail normalization are only tallied. The returned trades are sorted by
// timestamp, wallet and token so repeated runs produce identical output.
func (l *Loader) Load(ctx context.Context, wallets []string, since int64) (*Result, error) {
	result := &Result{}
	if len(wallets) == 0 {
		return result, nil
	}

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)

	for start := 0; start < len(wallets); start += l.batchSize {
		end := start + l.batchSize
		if end > len(wallets) {
			end = len(wallets)
		}
		batch := wallets[start:end]

		g.Go(func() error {
			txs, err := l.store.GetTradesByWallets(ctx, batch, since)
			if err != nil {
				return fmt.Errorf("load trades for batch of %d wallets: %w", len(batch), err)
			}

			trades, skips := l.normalizeBatch(txs)

			mu.Lock()
			result.Trades = append(result.Trades, trades...)
			result.Skips.Unparsable += skips.Unparsable
			result.Skips.NoTarget += skips.NoTarget
			result.Skips.TokenSwap += skips.TokenSwap
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sortTrades(result.Trades)

	l.logger.Info("trades loaded",
		zap.Int("wallets", len(wallets)),
		zap.Int("trades", len(result.Trades)),
		zap.Int("skipped", result.Skips.Total()),
	)

	return result, nil
}

func (l *Loader) normalizeBatch(txs []*domain.Transaction) ([]domain.NormalizedTrade, domain.SkipTally) {
	var (
		trades []domain.NormalizedTrade
		skips  domain.SkipTally
	)

	for _, tx := range txs {
		entries, err := normalize.ParsePayload(tx.BalanceChange)
		if err != nil {
			skips.Unparsable++
			continue
		}

		sig, err := normalize.Normalize(entries, l.solPriceUSD)
		if err != nil {
			if errors.Is(err, normalize.ErrTooFewLegs) {
				skips.Unparsable++
			} else {
				skips.NoTarget++
			}
			continue
		}
		if sig.TokenSwap {
			skips.TokenSwap++
			continue
		}

		trades = append(trades, domain.NormalizedTrade{
			Wallet:        tx.Wallet,
			Timestamp:     tx.BlockTime,
			Side:          tx.Side,
			TokenAddress:  sig.TokenAddress,
			TokenSymbol:   sig.TokenSymbol,
			TokenAmount:   sig.TokenAmount,
			SOLEquivalent: sig.SOLEquivalent,
		})
	}

	return trades, skips
}

// sortTrades orders trades deterministically regardless of which batch
// delivered them first.
func sortTrades(trades []domain.NormalizedTrade) {
	sort.Slice(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		if a.Wallet != b.Wallet {
			return a.Wallet < b.Wallet
		}
		return a.TokenAddress < b.TokenAddress
	})
}
