// Package config loads service configuration from the environment, with a
// .env file as a development convenience.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the composition root needs to wire the service.
type Config struct {
	ListenAddr string

	PostgresDSN   string
	ClickhouseDSN string // optional: empty disables the analytics archive
	RedisAddr     string // optional: empty selects the in-memory price cache

	PriceCacheTTL time.Duration
	Workers       int // leaderboard worker pool size

	// Cron schedules (robfig/cron format).
	SnapshotSchedule string
	SweepSchedule    string
	CachePurgeEvery  string

	LogLevel    string
	LogEncoding string
}

// Load reads configuration. A missing .env file is fine; a present but
// unreadable one is not.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		ListenAddr:       env("LISTEN_ADDR", ":8080"),
		PostgresDSN:      env("POSTGRES_DSN", ""),
		ClickhouseDSN:    env("CLICKHOUSE_DSN", ""),
		RedisAddr:        env("REDIS_ADDR", ""),
		PriceCacheTTL:    envDuration("PRICE_CACHE_TTL", 30*time.Second),
		Workers:          envInt("PNL_WORKERS", 8),
		SnapshotSchedule: env("SNAPSHOT_SCHEDULE", "0 * * * *"),
		SweepSchedule:    env("SWEEP_SCHEDULE", "*/5 * * * *"),
		CachePurgeEvery:  env("CACHE_PURGE_SCHEDULE", "*/10 * * * *"),
		LogLevel:         env("LOG_LEVEL", "info"),
		LogEncoding:      env("LOG_ENCODING", "json"),
	}

	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
