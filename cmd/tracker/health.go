package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionscope/internal/analytics"
	"positionscope/internal/config"
	"positionscope/internal/storage/postgres"
)

func runHealth(cmd *cobra.Command, _ []string) error {
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

	if cfg.InitialPrice == "" || cfg.CurrentPrice == "" {
		return fmt.Errorf("initial-price and current-price are required")
	}

	initialPrice, err := decimal.NewFromString(cfg.InitialPrice)
	if err != nil {
		return fmt.Errorf("parse initial-price: %w", err)
	}
	currentPrice, err := decimal.NewFromString(cfg.CurrentPrice)
	if err != nil {
		return fmt.Errorf("parse current-price: %w", err)
	}
	gasSpent, err := decimal.NewFromString(cfg.GasSpent)
	if err != nil {
		return fmt.Errorf("parse gas-spent: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	positions, err := store.ListPositions(ctx)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}

	logger.Info("evaluating positions",
		zap.Int("count", len(positions)),
		zap.Int32("current_tick", cfg.CurrentTick),
	)

	since := time.Now().UTC().Add(-cfg.Lookback)
	for _, position := range positions {
		swaps, err := store.SwapsByPool(ctx, position.PoolID, since)
		if err != nil {
			logger.Warn("load swaps", zap.String("pool", position.PoolID), zap.Error(err))
			continue
		}

		pnl := analytics.ComputePositionPnL(position, swaps, initialPrice, currentPrice, gasSpent)
		fmt.Printf("%s pool=%s range=[%d,%d) %s\n",
			position.NFTID,
			position.PoolID,
			position.TickLower,
			position.TickUpper,
			analytics.HealthDetails(position, cfg.CurrentTick, pnl),
		)
	}

	return nil
}
