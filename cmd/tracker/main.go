package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "tracker",
		Short:        "Concentrated-liquidity position tracker",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle against the subgraph",
		RunE:  runSync,
	}
	addFeedFlags(syncCmd)
	syncCmd.Flags().String("owner", "", "sync positions for one owner address only")
	syncCmd.Flags().String("pool", "", "sync positions for one pool only")
	syncCmd.Flags().Bool("with-swaps", false, "also sync swaps for pools seen this cycle")
	syncCmd.Flags().Bool("dry-run", false, "reconcile into memory instead of Postgres")
	syncCmd.Flags().String("dump", "", "append normalized candidates to this JSONL path")
	root.AddCommand(syncCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run sync cycles on a schedule",
		RunE:  runWatch,
	}
	addFeedFlags(watchCmd)
	watchCmd.Flags().Bool("with-swaps", false, "also sync swaps for pools seen each cycle")
	watchCmd.Flags().String("dump", "", "append normalized candidates to this JSONL path")
	watchCmd.Flags().String("schedule", "@every 5m", "cron schedule for sync cycles")
	root.AddCommand(watchCmd)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Derive P&L and health for stored positions",
		RunE:  runHealth,
	}
	healthCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	healthCmd.Flags().Int32("current-tick", 0, "current pool tick")
	healthCmd.Flags().String("initial-price", "", "price at position entry")
	healthCmd.Flags().String("current-price", "", "current price")
	healthCmd.Flags().String("gas-spent", "0", "gas spent, in quote terms")
	healthCmd.Flags().Duration("lookback", time.Hour, "swap history window")
	healthCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(healthCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addFeedFlags(cmd *cobra.Command) {
	cmd.Flags().String("graph-url", "", "subgraph endpoint URL")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().String("schema", "v4", "subgraph schema generation (v3 or v4)")
	cmd.Flags().Duration("lookback", time.Hour, "watermark look-back window")
	cmd.Flags().Int("page-size", 100, "records per feed query")
	cmd.Flags().Duration("timeout", 30*time.Second, "feed request timeout")
	cmd.Flags().Int("max-retries", 5, "maximum feed retry attempts")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial feed retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
