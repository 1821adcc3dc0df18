// Package geocache puts Redis in front of forward geocoding. Hits and misses
// are both cached; transport failures are not.
package geocache

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yourorg/openhouse-api/internal/canon"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/internal/redisx"
	"github.com/yourorg/openhouse-api/mapbox"
)

// Forwarder is the upstream geocoder. Errors mean "unknown", an empty feature
// list means "no such address".
type Forwarder interface {
	Forward(ctx context.Context, address string) ([]mapbox.Feature, error)
}

const (
	SourceCache = "cache"
	SourceFresh = "fresh"
)

type Result struct {
	Key       string     `json:"key"`
	Coords    [2]float64 `json:"coordinates"`
	Found     bool       `json:"found"`
	PlaceName string     `json:"placeName,omitempty"`
	Source    string     `json:"source"`
}

type envelope struct {
	Coords    [2]float64 `json:"coordinates"`
	PlaceName string     `json:"place_name"`
	FetchedAt time.Time  `json:"fetched_at"`
}

type Cache struct {
	Redis       *redisx.Client
	Upstream    Forwarder
	TTL         time.Duration
	NegativeTTL time.Duration
	// FetchTimeout bounds a shared upstream call, which outlives any single
	// caller's context.
	FetchTimeout time.Duration

	group singleflight.Group
}

func hitKey(k string) string  { return "geo:pk:" + k }
func missKey(k string) string { return "geo:miss:" + k }

// Lookup resolves address through the cache. Concurrent lookups of the same
// canonical address share one upstream call; a caller that gives up does not
// cancel it for the others.
func (c *Cache) Lookup(ctx context.Context, address string) (Result, error) {
	key := canon.Canonicalize(address)
	if key == "" {
		return Result{Source: SourceCache}, nil
	}

	if res, ok := c.cached(ctx, key); ok {
		return res, nil
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), orDefault(c.FetchTimeout, 15*time.Second))
		defer cancel()
		return c.fetch(fetchCtx, key, address)
	})
	select {
	case <-ctx.Done():
		return Result{Key: key}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return Result{Key: key}, r.Err
		}
		return r.Val.(Result), nil
	}
}

// Geocode satisfies listing.Geocoder.
func (c *Cache) Geocode(ctx context.Context, address string) ([2]float64, bool) {
	res, err := c.Lookup(ctx, address)
	if err != nil {
		logger.Log.Warnf("geocode %q failed: %v", address, err)
		return [2]float64{}, false
	}
	return res.Coords, res.Found
}

func (c *Cache) cached(ctx context.Context, key string) (Result, bool) {
	if c.Redis == nil {
		return Result{}, false
	}
	if miss, err := c.Redis.Exists(ctx, missKey(key)); err == nil && miss {
		return Result{Key: key, Source: SourceCache}, true
	}
	val, found, err := c.Redis.Get(ctx, hitKey(key))
	if err != nil {
		logger.Log.Warnf("geocache read %s: %v", key, err)
		return Result{}, false
	}
	if !found {
		return Result{}, false
	}
	var env envelope
	if err := json.Unmarshal([]byte(val), &env); err != nil || !canon.ValidLngLat(env.Coords[0], env.Coords[1]) {
		_ = c.Redis.Del(ctx, hitKey(key))
		return Result{}, false
	}
	return Result{Key: key, Coords: env.Coords, Found: true, PlaceName: env.PlaceName, Source: SourceCache}, true
}

func (c *Cache) fetch(ctx context.Context, key, address string) (Result, error) {
	features, err := c.Upstream.Forward(ctx, address)
	if err != nil {
		return Result{}, err
	}
	res := Result{Key: key, Source: SourceFresh}
	if len(features) > 0 {
		res.Coords, res.Found = features[0].LngLat()
		res.PlaceName = features[0].PlaceName
	}
	if c.Redis == nil {
		return res, nil
	}
	if !res.Found {
		if err := c.Redis.Set(ctx, missKey(key), "1", orDefault(c.NegativeTTL, time.Hour)); err != nil {
			logger.Log.Warnf("geocache write %s: %v", key, err)
		}
		return res, nil
	}
	b, _ := json.Marshal(envelope{Coords: res.Coords, PlaceName: res.PlaceName, FetchedAt: time.Now().UTC()})
	if err := c.Redis.Set(ctx, hitKey(key), string(b), orDefault(c.TTL, 30*24*time.Hour)); err != nil {
		logger.Log.Warnf("geocache write %s: %v", key, err)
	}
	return res, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return def
}
