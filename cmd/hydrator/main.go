package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yourorg/openhouse-api/internal/config"
	"github.com/yourorg/openhouse-api/internal/env"
	"github.com/yourorg/openhouse-api/internal/geocache"
	"github.com/yourorg/openhouse-api/internal/hydrator"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/internal/redisx"
	"github.com/yourorg/openhouse-api/internal/store"
	"github.com/yourorg/openhouse-api/mapbox"
)

func main() {
	_ = config.LoadDotEnv()
	logger.Init("openhouse-hydrator")

	token := env.Must("MAPBOX_TOKEN")
	dsn := env.Must("PG_DSN")

	interval := env.GetDuration("HYDRATOR_INTERVAL", 6*time.Hour)
	batchSize := env.GetInt("HYDRATOR_BATCH_SIZE", 100)
	pause := env.GetDuration("HYDRATOR_PAUSE", 250*time.Millisecond)
	requestTimeout := env.GetDuration("HYDRATOR_REQUEST_TIMEOUT", 12*time.Second)
	retryAfter := env.GetDuration("HYDRATOR_RETRY_AFTER", 24*time.Hour)
	runOnce := env.GetBool("HYDRATOR_RUN_ONCE", false)

	st, err := store.Open(dsn)
	if err != nil {
		logger.Log.Fatalf("store open error: %v", err)
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := st.Ping(ctx); err != nil {
		cancel()
		logger.Log.Fatalf("postgres ping error: %v", err)
	}
	if err := st.Migrate(ctx); err != nil {
		cancel()
		logger.Log.Fatalf("postgres migrate error: %v", err)
	}
	cancel()

	geo := &geocache.Cache{
		Upstream:    mapbox.NewClient(token, mapbox.WithRateLimit(env.GetFloat("GEOCODE_RPS", 5), 1)),
		TTL:         env.GetDuration("GEOCODE_CACHE_TTL", 720*time.Hour),
		NegativeTTL: env.GetDuration("GEOCODE_NEGATIVE_TTL", time.Hour),
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		geo.Redis = redisx.New(addr, os.Getenv("REDIS_PASSWORD"), env.GetInt("REDIS_DB", 0))
		geo.Redis.Prefix = "openhouse:"
		defer geo.Redis.Close()
	}

	job := &hydrator.BulkJob{
		Store:    st,
		Geocoder: geo,
		Config: hydrator.BulkConfig{
			BatchSize:            batchSize,
			Interval:             interval,
			PauseBetweenRequests: pause,
			RequestTimeout:       requestTimeout,
			RetryAfter:           retryAfter,
		},
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if runOnce {
		if _, err := job.RunOnce(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Log.Fatalf("hydrator bulk run failed: %v", err)
		}
		return
	}

	if err := job.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Fatalf("hydrator job stopped with error: %v", err)
	}
}
