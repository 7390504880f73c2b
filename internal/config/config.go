package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	GraphURL     string
	PGDSN        string
	Schema       string
	Owner        string
	Pool         string
	Lookback     time.Duration
	PageSize     int
	WithSwaps    bool
	DryRun       bool
	Dump         string
	Schedule     string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	CurrentTick  int32
	InitialPrice string
	CurrentPrice string
	GasSpent     string
	LogLevel     string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("schema", "v4")
	v.SetDefault("lookback", time.Hour)
	v.SetDefault("page-size", 100)
	v.SetDefault("schedule", "@every 5m")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("max-retries", 5)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("gas-spent", "0")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		GraphURL:     v.GetString("graph-url"),
		PGDSN:        v.GetString("pg-dsn"),
		Schema:       v.GetString("schema"),
		Owner:        v.GetString("owner"),
		Pool:         v.GetString("pool"),
		Lookback:     v.GetDuration("lookback"),
		PageSize:     v.GetInt("page-size"),
		WithSwaps:    v.GetBool("with-swaps"),
		DryRun:       v.GetBool("dry-run"),
		Dump:         v.GetString("dump"),
		Schedule:     v.GetString("schedule"),
		Timeout:      v.GetDuration("timeout"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		CurrentTick:  v.GetInt32("current-tick"),
		InitialPrice: v.GetString("initial-price"),
		CurrentPrice: v.GetString("current-price"),
		GasSpent:     v.GetString("gas-spent"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
