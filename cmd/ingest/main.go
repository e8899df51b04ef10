// Package main streams wallet transactions from the indexer websocket feed
// into the transaction store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"smart-money-lab/internal/config"
	"smart-money-lab/internal/ingest"
	"smart-money-lab/internal/logging"
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

	logger.Info("Starting ingest",
		zap.String("ws_url", cfg.Ingest.WSURL),
		zap.Bool("clickhouse", cfg.ClickHouse.Enabled))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var txStore storage.TransactionStore
	if cfg.ClickHouse.Enabled {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to clickhouse", zap.Error(err))
		}
		defer conn.Close()
		txStore = chstore.NewTransactionStore(conn)
	} else {
		pool, err := pgstore.NewPool(ctx, cfg.Database.DSN())
		if err != nil {
			logger.Fatal("Failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		txStore = pgstore.NewTransactionStore(pool)
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

	if err := runner.Run(ctx, client.Messages()); err != nil && err != context.Canceled {
		logger.Fatal("Ingest failed", zap.Error(err))
	}

	stats := runner.Stats()
	logger.Info("Ingest stopped",
		zap.Int64("received", stats.Received),
		zap.Int64("stored", stats.Stored),
		zap.Int64("duplicates", stats.Duplicates),
		zap.Int64("rejected", stats.Rejected),
		zap.Uint64("reconnects", client.Reconnects()))
}
