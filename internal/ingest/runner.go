package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"smart-money-lab/internal/domain"
	"smart-money-lab/internal/observability"
	"smart-money-lab/internal/soladdr"
	"smart-money-lab/internal/storage"
)

// feedEvent is one transaction message as the indexer feed emits it.
type feedEvent struct {
	TxHash        string          `json:"tx_hash"`
	Wallet        string          `json:"wallet"`
	BlockTime     int64           `json:"block_time"`
	Side          string          `json:"side"`
	BalanceChange json.RawMessage `json:"balance_change"`
}

// Stats counts what the runner did with the feed.
type Stats struct {
	Received   int64
	Stored     int64
	Duplicates int64
	Rejected   int64
}

// Runner decodes feed messages into transactions and persists them. Duplicate
// deliveries are expected after reconnects; the store's duplicate-key error is
// the dedup mechanism.
type Runner struct {
	store   storage.TransactionStore
	metrics *observability.Metrics
	logger  *zap.Logger
	clock   func() time.Time

	stats Stats
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Store   storage.TransactionStore
	Metrics *observability.Metrics
	Logger  *zap.Logger
	Clock   func() time.Time
}

// NewRunner creates a feed runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Store == nil {
		return nil, errors.New("ingest: transaction store is required")
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.DefaultMetrics
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Runner{
		store:   opts.Store,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		clock:   opts.Clock,
	}, nil
}

// Run consumes messages until the channel closes or the context is cancelled.
// Per-message failures are logged and counted, never fatal; only a failed
// store write for a valid transaction aborts the run.
func (r *Runner) Run(ctx context.Context, messages <-chan []byte) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				r.logger.Info("feed closed",
					zap.Int64("received", r.stats.Received),
					zap.Int64("stored", r.stats.Stored),
					zap.Int64("duplicates", r.stats.Duplicates),
					zap.Int64("rejected", r.stats.Rejected))
				return nil
			}
			if err := r.handleMessage(ctx, msg); err != nil {
				return err
			}
		}
	}
}

// Stats returns a copy of the current counters.
func (r *Runner) Stats() Stats {
	return r.stats
}

func (r *Runner) handleMessage(ctx context.Context, msg []byte) error {
	r.stats.Received++
	r.metrics.TransactionsReceived.Inc()

	var ev feedEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		r.stats.Rejected++
		r.metrics.IngestionErrors.WithLabelValues("decode").Inc()
		r.logger.Warn("undecodable feed message", zap.Error(err))
		return nil
	}

	tx, err := r.buildTransaction(ev)
	if err != nil {
		r.stats.Rejected++
		r.metrics.IngestionErrors.WithLabelValues("invalid").Inc()
		r.logger.Warn("rejected feed event",
			zap.String("tx_hash", ev.TxHash),
			zap.String("wallet", ev.Wallet),
			zap.Error(err))
		return nil
	}

	if err := r.store.Insert(ctx, tx); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			r.stats.Duplicates++
			r.metrics.DuplicateTransactions.Inc()
			return nil
		}
		r.metrics.IngestionErrors.WithLabelValues("store").Inc()
		return fmt.Errorf("store transaction %s: %w", tx.TxHash, err)
	}

	r.stats.Stored++
	now := r.clock()
	r.metrics.TransactionsStored.Inc()
	r.metrics.LastSuccessfulIngestion.Set(float64(now.Unix()))
	if ev.BlockTime > 0 {
		lag := now.Sub(time.UnixMilli(ev.BlockTime))
		if lag > 0 {
			r.metrics.WSMessageLatency.Observe(lag.Seconds())
		}
	}
	return nil
}

// buildTransaction validates a feed event and converts it to a transaction.
func (r *Runner) buildTransaction(ev feedEvent) (*domain.Transaction, error) {
	if ev.TxHash == "" {
		return nil, errors.New("missing tx_hash")
	}
	if !soladdr.IsWalletAddress(ev.Wallet) {
		return nil, fmt.Errorf("invalid wallet address %q", ev.Wallet)
	}
	if ev.BlockTime <= 0 {
		return nil, fmt.Errorf("invalid block_time %d", ev.BlockTime)
	}
	if ev.Side != domain.SideBuy && ev.Side != domain.SideSell {
		return nil, fmt.Errorf("unsupported side %q", ev.Side)
	}
	if len(ev.BalanceChange) == 0 {
		return nil, errors.New("missing balance_change")
	}

	return &domain.Transaction{
		TxHash:        ev.TxHash,
		Wallet:        ev.Wallet,
		BlockTime:     ev.BlockTime,
		Side:          ev.Side,
		BalanceChange: string(ev.BalanceChange),
		CreatedAt:     r.clock().UnixMilli(),
	}, nil
}
