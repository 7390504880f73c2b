package main

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"positionscope/internal/config"
)

func runWatch(cmd *cobra.Command, _ []string) error {
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

	if pg != nil {
		if last, ok, err := pg.LastSync(ctx, "positions"); err != nil {
			logger.Warn("load sync state", zap.Error(err))
		} else if ok {
			logger.Info("last recorded cycle", zap.Time("at", last))
		}
	}

	var running atomic.Bool
	cycle := func() {
		if !running.CompareAndSwap(false, true) {
			logger.Warn("previous cycle still running, skipping")
			return
		}
		defer running.Store(false)

		stats, err := engine.Run(ctx)
		if err != nil {
			logger.Error("cycle failed", zap.Error(err))
			return
		}
		logger.Info("cycle complete",
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

	logger.Info("watch start", zap.String("schedule", cfg.Schedule))

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.Schedule, cycle); err != nil {
		return err
	}

	// First cycle runs immediately; the schedule covers the rest.
	cycle()

	scheduler.Start()
	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	logger.Info("watch stopped")
	return nil
}
