// Package main provides the unified service that runs all components
// together:
//   - Ingestion (continuous): websocket transaction feed
//   - Analysis (scheduled): normalization, attribution, ranking, correlation
//   - Reporting (scheduled): CSV sheets and markdown summary per run
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smart-money-lab/internal/analysis"
	"smart-money-lab/internal/config"
	"smart-money-lab/internal/ingest"
	"smart-money-lab/internal/logging"
	"smart-money-lab/internal/observability"
	"smart-money-lab/internal/reporting"
	"smart-money-lab/internal/storage"
	chstore "smart-money-lab/internal/storage/clickhouse"
	"smart-money-lab/internal/storage/migrations"
	pgstore "smart-money-lab/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	logger.Info("Starting server",
		zap.String("ws_url", cfg.Ingest.WSURL),
		zap.Duration("analysis_interval", cfg.Analysis.Interval),
		zap.String("metrics_addr", cfg.Server.MetricsAddr))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgstore.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	walletStore := pgstore.NewWalletStore(pool)
	var txStore storage.TransactionStore = pgstore.NewTransactionStore(pool)
	if cfg.ClickHouse.Enabled {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to clickhouse", zap.Error(err))
		}
		defer conn.Close()
		txStore = chstore.NewTransactionStore(conn)
	}

	engine, err := analysis.NewEngine(analysis.Options{
		Wallets:      walletStore,
		Transactions: txStore,
		Params:       analysisParams(cfg),
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}

	writer, err := reporting.NewWriter(cfg.Report.OutputDir)
	if err != nil {
		logger.Fatal("Failed to create report writer", zap.Error(err))
	}

	wsCfg := ingest.WSConfig{
		ReconnectDelay:    cfg.Ingest.ReconnectDelay,
		MaxReconnectDelay: cfg.Ingest.MaxReconnectDelay,
		PingInterval:      cfg.Ingest.PingInterval,
		ReadTimeout:       cfg.Ingest.ReadTimeout,
		WriteTimeout:      ingest.DefaultWSConfig().WriteTimeout,
	}
	client, err := ingest.NewWSClient(ctx, cfg.Ingest.WSURL, &wsCfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to feed", zap.Error(err))
	}
	defer client.Close()

	runner, err := ingest.NewRunner(ingest.RunnerOptions{
		Store:  txStore,
		Logger: logger,
	})
	if err != nil {
		logger.Fatal("Failed to create runner", zap.Error(err))
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.Stringer("signal", sig))
		cancel()
	}()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runner.Run(gctx, client.Messages())
	})

	g.Go(func() error {
		return runAnalysisLoop(gctx, engine, writer, cfg.Analysis.Interval, logger)
	})

	g.Go(func() error {
		return runMetricsServer(gctx, cfg.Server.MetricsAddr, cfg.Server.ShutdownTimeout, logger)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Shutdown complete")
}

// runAnalysisLoop runs one analysis immediately, then repeats on the interval
// until the context is cancelled. Per-run failures are counted and logged;
// the loop keeps going.
func runAnalysisLoop(ctx context.Context, engine *analysis.Engine, writer *reporting.Writer, interval time.Duration, logger *zap.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	runOnce := func() {
		start := time.Now()
		result, err := engine.Run(ctx)
		if err != nil {
			observability.DefaultMetrics.AnalysisRunsTotal.WithLabelValues("error").Inc()
			logger.Error("Analysis failed", zap.Error(err))
			return
		}
		observability.DefaultMetrics.AnalysisRunsTotal.WithLabelValues("ok").Inc()
		observability.DefaultMetrics.AnalysisDuration.WithLabelValues("run").Observe(time.Since(start).Seconds())
		observability.DefaultMetrics.CohortSize.Set(float64(len(result.Cohort)))
		observability.DefaultMetrics.PositionsComputed.Add(float64(len(result.Positions)))
		observability.DefaultMetrics.TradesSkipped.WithLabelValues("unparsable").Add(float64(result.Skips.Unparsable))
		observability.DefaultMetrics.TradesSkipped.WithLabelValues("no_target").Add(float64(result.Skips.NoTarget))
		observability.DefaultMetrics.TradesSkipped.WithLabelValues("token_swap").Add(float64(result.Skips.TokenSwap))
		observability.DefaultMetrics.TradesSkipped.WithLabelValues("dust").Add(float64(result.Skips.Dust))
		observability.DefaultMetrics.TradesSkipped.WithLabelValues("no_buys").Add(float64(result.Skips.NoBuys))
		observability.DefaultMetrics.TokensRanked.Set(float64(len(result.Ranked)))
		observability.DefaultMetrics.CorrelationEdges.WithLabelValues("timing").Set(float64(len(result.TimingEdges)))
		observability.DefaultMetrics.CorrelationEdges.WithLabelValues("behavior").Set(float64(len(result.BehaviorEdges)))
		observability.DefaultMetrics.LastSuccessfulAnalysis.Set(float64(time.Now().Unix()))

		dir, err := writer.Write(result)
		if err != nil {
			logger.Error("Failed to write report", zap.Error(err))
			return
		}
		observability.DefaultMetrics.ReportsWritten.Inc()
		logger.Info("Report written",
			zap.String("dir", dir),
			zap.Int("cohort", len(result.Cohort)),
			zap.Int("ranked_tokens", len(result.Ranked)))
	}

	runOnce()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			runOnce()
		}
	}
}

// runMetricsServer serves /metrics and /health until the context is
// cancelled, then shuts down gracefully.
func runMetricsServer(ctx context.Context, addr string, shutdownTimeout time.Duration, logger *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting metrics server", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Metrics server shutdown", zap.Error(err))
		}
		return ctx.Err()
	}
}

func analysisParams(cfg *config.Config) analysis.Params {
	return analysis.Params{
		SOLPriceUSD:      cfg.Analysis.SOLPriceUSD,
		WindowDays:       cfg.Analysis.WindowDays,
		DustThreshold:    cfg.Analysis.DustThreshold,
		MinSharedTokens:  cfg.Analysis.MinSharedTokens,
		MinBehaviorScore: cfg.Analysis.MinBehaviorScore,
		TopN:             cfg.Analysis.TopN,
		BatchSize:        cfg.Analysis.BatchSize,
		Concurrency:      cfg.Analysis.Concurrency,
	}
}
