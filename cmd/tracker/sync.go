package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionscope/internal/config"
	"positionscope/internal/graph"
	"positionscope/internal/storage"
	"positionscope/internal/storage/postgres"
	"positionscope/internal/syncer"
)

func runSync(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, pg, cleanup, err := buildEngine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("sync start",
		zap.String("graph_url", cfg.GraphURL),
		zap.String("schema", cfg.Schema),
		zap.Duration("lookback", cfg.Lookback),
		zap.Int("page_size", cfg.PageSize),
		zap.Bool("with_swaps", cfg.WithSwaps),
		zap.Bool("dry_run", cfg.DryRun),
	)

	switch {
	case cfg.Owner != "":
		inserted, err := engine.SyncOwnerPositions(ctx, cfg.Owner)
		if err != nil {
			return err
		}
		logger.Info("owner sync complete", zap.String("owner", cfg.Owner), zap.Int("inserted", inserted))
	case cfg.Pool != "":
		inserted, err := engine.SyncPoolPositions(ctx, cfg.Pool)
		if err != nil {
			return err
		}
		logger.Info("pool sync complete", zap.String("pool", cfg.Pool), zap.Int("inserted", inserted))
	default:
		stats, err := engine.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("sync complete",
			zap.Int("positions", stats.Positions),
			zap.Int("swaps", stats.Swaps),
			zap.Int("pools", stats.Pools),
		)
		if pg != nil {
			if err := pg.SaveSync(ctx, "positions", time.Now().UTC(), stats.Positions); err != nil {
				logger.Warn("save sync state", zap.Error(err))
			}
		}
	}

	return nil
}

// buildEngine wires the feed client, store, and engine from config. The
// returned cleanup closes the Postgres pool when one was opened; pg is nil
// on dry runs.
func buildEngine(ctx context.Context, cfg config.Config, logger *zap.Logger) (*syncer.Engine, *postgres.Store, func(), error) {
	if cfg.GraphURL == "" {
		return nil, nil, nil, fmt.Errorf("graph url is required")
	}

	graphClient, err := graph.NewClient(graph.Config{
		URL:          cfg.GraphURL,
		Schema:       graph.SchemaVersion(cfg.Schema),
		PageSize:     cfg.PageSize,
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	var store storage.Store
	var pg *postgres.Store
	cleanup := func() {}

	if cfg.DryRun {
		store = storage.NewMemory()
	} else {
		pg, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store = pg
		cleanup = pg.Close
	}

	var dump *storage.JsonlDump
	if cfg.Dump != "" {
		dump = storage.NewJsonlDump(cfg.Dump)
	}

	engine := syncer.NewEngine(syncer.Config{
		Lookback:  cfg.Lookback,
		WithSwaps: cfg.WithSwaps,
	}, graphClient, store, dump, logger)

	return engine, pg, cleanup, nil
}
