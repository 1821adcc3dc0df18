package config

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/yourorg/openhouse-api/internal/env"
	"github.com/yourorg/openhouse-api/internal/logger"
)

const AppName = "openhouse-api"

// Config holds the service configuration loaded from .env and the process environment.
type Config struct {
	Port int

	MapboxToken string
	PGDSN       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ListingTimezone    string
	GeocodeConcurrency int
	GeocodeRPS         float64
	GeocodeCacheTTL    time.Duration
	GeocodeNegativeTTL time.Duration

	RefreshSchedule    string
	SessionIdleTimeout time.Duration
	AllowedOrigins     []string
}

// LoadDotEnv copies .env (or the named files) into the process environment
// without overriding variables already set. Call it before logger.Init so
// LOG_LEVEL from the file applies.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads the configuration from the process environment.
func Load() *Config {
	origins := env.GetList("CORS_ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Config{
		Port: env.GetInt("PORT", 4002),

		MapboxToken: env.Get("MAPBOX_TOKEN", ""),
		PGDSN:       env.Get("PG_DSN", ""),

		RedisAddr:     env.Get("REDIS_ADDR", ""),
		RedisPassword: env.Get("REDIS_PASSWORD", ""),
		RedisDB:       env.GetInt("REDIS_DB", 0),

		ListingTimezone:    env.Get("LISTING_TIMEZONE", "America/New_York"),
		GeocodeConcurrency: env.GetInt("GEOCODE_CONCURRENCY", 8),
		GeocodeRPS:         env.GetFloat("GEOCODE_RPS", 10),
		GeocodeCacheTTL:    env.GetDuration("GEOCODE_CACHE_TTL", 720*time.Hour),
		GeocodeNegativeTTL: env.GetDuration("GEOCODE_NEGATIVE_TTL", time.Hour),

		RefreshSchedule:    env.Get("REFRESH_SCHEDULE", "@every 15m"),
		SessionIdleTimeout: env.GetDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),
		AllowedOrigins:     origins,
	}
}

// Location resolves ListingTimezone, falling back to UTC when the zone is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ListingTimezone)
	if err != nil {
		logger.Log.Warnf("unknown LISTING_TIMEZONE %q, using UTC", c.ListingTimezone)
		return time.UTC
	}
	return loc
}
