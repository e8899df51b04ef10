// Package main runs one smart-money analysis pass over the stored wallet and
// transaction data and writes the report sheets to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"smart-money-lab/internal/analysis"
	"smart-money-lab/internal/config"
	"smart-money-lab/internal/logging"
	"smart-money-lab/internal/observability"
	"smart-money-lab/internal/reporting"
	"smart-money-lab/internal/storage"
	chstore "smart-money-lab/internal/storage/clickhouse"
	"smart-money-lab/internal/storage/migrations"
	pgstore "smart-money-lab/internal/storage/postgres"
)

func main() {
	outputDir := flag.String("output-dir", "", "Report output directory (overrides REPORT_OUTPUT_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.Report.OutputDir = *outputDir
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	ctx := context.Background()

	pool, err := pgstore.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

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
		Wallets:      pgstore.NewWalletStore(pool),
		Transactions: txStore,
		Params:       analysisParams(cfg),
		Logger:       logger,
	})
	if err != nil {
		logger.Fatal("Failed to create engine", zap.Error(err))
	}

	start := time.Now()
	result, err := engine.Run(ctx)
	if err != nil {
		observability.DefaultMetrics.AnalysisRunsTotal.WithLabelValues("error").Inc()
		logger.Fatal("Analysis failed", zap.Error(err))
	}
	observability.DefaultMetrics.AnalysisRunsTotal.WithLabelValues("ok").Inc()
	observability.DefaultMetrics.AnalysisDuration.WithLabelValues("run").Observe(time.Since(start).Seconds())

	writer, err := reporting.NewWriter(cfg.Report.OutputDir)
	if err != nil {
		logger.Fatal("Failed to create report writer", zap.Error(err))
	}
	dir, err := writer.Write(result)
	if err != nil {
		logger.Fatal("Failed to write report", zap.Error(err))
	}
	observability.DefaultMetrics.ReportsWritten.Inc()

	logger.Info("Report written",
		zap.String("dir", dir),
		zap.Int("cohort", len(result.Cohort)),
		zap.Int("positions", len(result.Positions)),
		zap.Int("ranked_tokens", len(result.Ranked)),
		zap.Int("skipped", result.Skips.Total()))
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
