package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/yourorg/openhouse-api/internal/config"
	"github.com/yourorg/openhouse-api/internal/events"
	"github.com/yourorg/openhouse-api/internal/geocache"
	"github.com/yourorg/openhouse-api/internal/hydrator"
	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/internal/redisx"
	"github.com/yourorg/openhouse-api/internal/refresh"
	"github.com/yourorg/openhouse-api/internal/schedule"
	"github.com/yourorg/openhouse-api/internal/search"
	"github.com/yourorg/openhouse-api/internal/session"
	"github.com/yourorg/openhouse-api/internal/state"
	"github.com/yourorg/openhouse-api/internal/store"
	"github.com/yourorg/openhouse-api/mapbox"
)

func main() {
	dotenvErr := config.LoadDotEnv()
	logger.Init(config.AppName)
	if dotenvErr != nil {
		logger.Log.Debug("no .env file found, using process environment")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	cal := schedule.NewCalendar(loc)
	pub := events.NewInMemory(256)

	var kv state.KV = state.NewMemoryKV()
	var rdb *redisx.Client
	if cfg.RedisAddr != "" {
		rdb = redisx.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		rdb.Prefix = "openhouse:"
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx); err != nil {
			logger.Log.Warnf("redis unavailable at %s, using in-memory state: %v", cfg.RedisAddr, err)
			rdb = nil
		} else {
			kv = state.RedisKV{Client: rdb}
		}
		cancel()
	}
	if rdb != nil {
		defer rdb.Close()
	}

	if cfg.MapboxToken == "" {
		logger.Log.Warn("MAPBOX_TOKEN not set; records without stored coordinates will be dropped")
	}
	mb := mapbox.NewClient(cfg.MapboxToken, mapbox.WithRateLimit(cfg.GeocodeRPS, cfg.GeocodeConcurrency))
	geo := &geocache.Cache{
		Redis:       rdb,
		Upstream:    mb,
		TTL:         cfg.GeocodeCacheTTL,
		NegativeTTL: cfg.GeocodeNegativeTTL,
	}

	var src hydrator.Source
	var writeBack *refresh.Refresher
	if cfg.PGDSN != "" {
		st, err := store.Open(cfg.PGDSN)
		if err != nil {
			logger.Log.Fatalf("store open error: %v", err)
		}
		defer st.Close()
		migrateCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := st.Migrate(migrateCtx); err != nil {
			logger.Log.Errorf("postgres migrate error: %v", err)
		}
		cancel()
		src = st
		writeBack = refresh.New(256, 2, func(ctx context.Context, j refresh.Job) error {
			_, err := st.SaveCoordinates(ctx, j.Street, j.Unit, j.Coords)
			return err
		})
		defer writeBack.Close()
	} else {
		logger.Log.Warn("PG_DSN not set; serving sample listings")
	}

	normalizer := &listing.Normalizer{
		Geocoder: geo,
		Calendar: cal,
		Zone:     listing.NewZoneLookup(loc).Zone,
	}
	if writeBack != nil {
		normalizer.OnGeocoded = func(rec listing.RawRecord, coords [2]float64) {
			writeBack.Enqueue(refresh.Job{Street: rec.Street, Unit: rec.Unit, Coords: coords})
		}
	}

	index := search.NewIndexer(cal)
	hyd := &hydrator.Hydrator{
		Source:      src,
		Normalizer:  normalizer,
		Concurrency: cfg.GeocodeConcurrency,
		Index:       index,
		Pub:         pub,
	}
	sessions := session.NewRegistry(kv, index.Has, pub)
	sessions.IdleTimeout = cfg.SessionIdleTimeout

	go sessions.Run(ctx, index.Has)

	// first batch must be in place before serving
	hyd.Refresh(ctx)

	sched, err := hyd.Schedule(cfg.RefreshSchedule, 2*time.Minute)
	if err != nil {
		logger.Log.Errorf("periodic refresh disabled: %v", err)
	} else {
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr: ":" + strconv.Itoa(cfg.Port),
		Handler: BuildRouter(RouterDeps{
			Index:          index,
			Sessions:       sessions,
			Hydrator:       hyd,
			Geocoder:       geo,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Log.Infof("%s listening on %s", config.AppName, srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal(err)
	}
}
