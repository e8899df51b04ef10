package analysis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"smart-money-lab/internal/correlation"
	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/loader"
	"smart-money-lab/internal/position"
	"smart-money-lab/internal/ranking"
	"smart-money-lab/internal/storage"
)

// Options configures an Engine.
type Options struct {
	Wallets      storage.WalletStore
	Transactions storage.TransactionStore
	Params       Params
	Logger       *zap.Logger

	// Clock is overridable for tests. Defaults to time.Now.
	Clock func() time.Time
}

// Engine wires the analysis stages together over the configured stores.
type Engine struct {
	wallets storage.WalletStore
	loader  *loader.Loader
	params  Params
	logger  *zap.Logger
	clock   func() time.Time
}

// NewEngine creates an Engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Wallets == nil {
		return nil, errors.New("analysis: wallet store is required")
	}
	if opts.Transactions == nil {
		return nil, errors.New("analysis: transaction store is required")
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	l, err := loader.New(loader.Options{
		Store:       opts.Transactions,
		SOLPriceUSD: opts.Params.SOLPriceUSD,
		BatchSize:   opts.Params.BatchSize,
		Concurrency: opts.Params.Concurrency,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		wallets: opts.Wallets,
		loader:  l,
		params:  opts.Params,
		logger:  opts.Logger,
		clock:   opts.Clock,
	}, nil
}

// Run executes the full pipeline and returns its result. An empty cohort or
// an empty trade window yields an empty result rather than an error.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	now := e.clock()
	result := &Result{
		GeneratedAt: now.UnixMilli(),
		Params:      e.params,
	}

	cohort, err := e.loadCohort(ctx)
	if err != nil {
		return nil, err
	}
	result.Cohort = cohort

	e.logger.Info("profitable cohort selected", zap.Int("wallets", len(cohort)))
	if len(cohort) == 0 {
		return result, nil
	}

	addresses := make([]string, len(cohort))
	names := make(map[string]string, len(cohort))
	for i, w := range cohort {
		addresses[i] = w.Address
		if w.Name != "" {
			names[w.Address] = w.Name
		}
	}

	since := now.AddDate(0, 0, -e.params.WindowDays).UnixMilli()
	loaded, err := e.loader.Load(ctx, addresses, since)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	result.Skips = loaded.Skips

	positions, posSkips := position.Attribute(loaded.Trades, names, e.params.DustThreshold)
	result.Positions = positions
	result.Skips.Dust = posSkips.Dust
	result.Skips.NoBuys = posSkips.NoBuys

	result.Ranked = ranking.Rank(positions, e.params.TopN)
	result.Overviews = buildOverviews(cohort, positions, e.params.SOLPriceUSD)
	result.Coverage = buildCoverage(cohort, positions, result.Ranked, e.params.SOLPriceUSD)
	result.TimingEdges = correlation.Timing(positions, result.Ranked, names, e.params.MinSharedTokens)
	result.BehaviorEdges = correlation.Behavior(positions, names, e.params.MinBehaviorScore)

	e.logger.Info("analysis complete",
		zap.Int("positions", len(positions)),
		zap.Int("ranked_tokens", len(result.Ranked)),
		zap.Int("timing_edges", len(result.TimingEdges)),
		zap.Int("behavior_edges", len(result.BehaviorEdges)),
		zap.Int("skipped", result.Skips.Total()),
	)

	return result, nil
}

// loadCohort fetches the non-high-frequency wallets, keeps those with
// positive 30-day PnL and sorts them by PnL descending.
func (e *Engine) loadCohort(ctx context.Context) ([]*domain.WalletSnapshot, error) {
	wallets, err := e.wallets.GetNonHighFrequency(ctx)
	if err != nil {
		return nil, fmt.Errorf("load wallet cohort: %w", err)
	}

	var cohort []*domain.WalletSnapshot
	for _, w := range wallets {
		if w.PnL30d > 0 {
			cohort = append(cohort, w)
		}
	}

	sort.Slice(cohort, func(i, j int) bool {
		if cohort[i].PnL30d != cohort[j].PnL30d {
			return cohort[i].PnL30d > cohort[j].PnL30d
		}
		return cohort[i].Address < cohort[j].Address
	})

	return cohort, nil
}
