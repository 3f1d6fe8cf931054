package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"crew-pnl-service/internal/challenge"
	"crew-pnl-service/internal/config"
	"crew-pnl-service/internal/jobs"
	"crew-pnl-service/internal/leaderboard"
	"crew-pnl-service/internal/logging"
	"crew-pnl-service/internal/pricing"
	"crew-pnl-service/internal/season"
	"crew-pnl-service/internal/server"
	"crew-pnl-service/internal/storage"
	"crew-pnl-service/internal/storage/clickhouse"
	"crew-pnl-service/internal/storage/migrations"
	"crew-pnl-service/internal/storage/postgres"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return err
	}

	trades := postgres.NewTradeStore(pool)
	users := postgres.NewUserStore(pool)
	crews := postgres.NewCrewStore(pool)
	seasons := postgres.NewSeasonStore(pool)
	snapshots := postgres.NewSnapshotStore(pool)
	challenges := postgres.NewChallengeStore(pool)

	// The analytics archive is optional; without a DSN the service simply
	// skips archiving processed trades.
	var archive storage.ProcessedTradeArchive
	if cfg.ClickhouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			return err
		}
		archive = clickhouse.NewProcessedTradeStore(conn)
		logger.Info("clickhouse archive enabled")
	}

	var cache pricing.Cache
	var memCache *pricing.MemCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return err
		}
		defer rdb.Close()

		cache = pricing.NewRedisCache(rdb, cfg.PriceCacheTTL)
		logger.Info("redis price cache enabled", zap.String("addr", cfg.RedisAddr))
	} else {
		memCache = pricing.NewMemCache(cfg.PriceCacheTTL)
		cache = memCache
	}
	priceSource := pricing.NewCachedSource(pricing.StaticSource{}, cache)

	leaderboards := leaderboard.New(leaderboard.Options{
		TradeStore:  trades,
		UserStore:   users,
		CrewStore:   crews,
		Archive:     archive,
		PriceSource: priceSource,
		Workers:     cfg.Workers,
		Logger:      logger.Named("leaderboard"),
	})
	seasonSvc := season.New(trades, seasons, snapshots, logger.Named("season"))
	challengeSvc := challenge.New(challenges, crews, users, trades, logger.Named("challenge"))

	sched := jobs.New(logger.Named("jobs"))
	if err := sched.AddSeasonSnapshots(cfg.SnapshotSchedule, seasonSvc); err != nil {
		return err
	}
	if err := sched.AddChallengeSweep(cfg.SweepSchedule, challengeSvc); err != nil {
		return err
	}
	if memCache != nil {
		if err := sched.AddCachePurge(cfg.CachePurgeEvery, memCache); err != nil {
			return err
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(cfg.ListenAddr, leaderboards, seasonSvc, challengeSvc, logger.Named("http"))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
