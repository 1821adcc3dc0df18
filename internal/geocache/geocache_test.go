package geocache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/openhouse-api/internal/redisx"
	"github.com/yourorg/openhouse-api/mapbox"
)

type stubForwarder struct {
	calls    atomic.Int32
	features []mapbox.Feature
	err      error
}

func (s *stubForwarder) Forward(context.Context, string) ([]mapbox.Feature, error) {
	s.calls.Add(1)
	return s.features, s.err
}

func newCache(t *testing.T, up Forwarder) (*Cache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	return &Cache{
		Redis:       redisx.New(mr.Addr(), "", 0),
		Upstream:    up,
		TTL:         time.Hour,
		NegativeTTL: time.Minute,
	}, mr
}

func TestHitIsCached(t *testing.T) {
	up := &stubForwarder{features: []mapbox.Feature{{
		PlaceName: "53 Charles Street, New York",
		Geometry:  mapbox.Geometry{Type: "Point", Coordinates: []float64{-74.0084, 40.7397}},
	}}}
	c, _ := newCache(t, up)
	ctx := context.Background()

	res, err := c.Lookup(ctx, "53 Charles St, West Village, NY 10014")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, SourceFresh, res.Source)
	assert.Equal(t, [2]float64{-74.0084, 40.7397}, res.Coords)

	res, err = c.Lookup(ctx, "53  CHARLES STREET, West Village, New York 10014")
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, "53 Charles Street, New York", res.PlaceName)
	assert.EqualValues(t, 1, up.calls.Load())
}

func TestMissIsNegativelyCached(t *testing.T) {
	up := &stubForwarder{}
	c, mr := newCache(t, up)
	ctx := context.Background()

	_, ok := c.Geocode(ctx, "1 Nowhere Ln")
	assert.False(t, ok)
	_, ok = c.Geocode(ctx, "1 Nowhere Ln")
	assert.False(t, ok)
	assert.EqualValues(t, 1, up.calls.Load())

	mr.FastForward(2 * time.Minute)
	_, _ = c.Geocode(ctx, "1 Nowhere Ln")
	assert.EqualValues(t, 2, up.calls.Load())
}

func TestTransportErrorIsNotCached(t *testing.T) {
	up := &stubForwarder{err: errors.New("connection reset")}
	c, _ := newCache(t, up)
	ctx := context.Background()

	_, err := c.Lookup(ctx, "53 Charles St")
	require.Error(t, err)
	_, ok := c.Geocode(ctx, "53 Charles St")
	assert.False(t, ok)
	assert.EqualValues(t, 2, up.calls.Load())
}

func TestWithoutRedisPassesThrough(t *testing.T) {
	up := &stubForwarder{features: []mapbox.Feature{{Center: []float64{-73.98, 40.73}}}}
	c := &Cache{Upstream: up}

	coords, ok := c.Geocode(context.Background(), "300 E 55th St")
	require.True(t, ok)
	assert.Equal(t, [2]float64{-73.98, 40.73}, coords)
}

type gatedForwarder struct {
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedForwarder) Forward(ctx context.Context, address string) ([]mapbox.Feature, error) {
	g.calls.Add(1)
	g.entered <- struct{}{}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-g.release:
	}
	return []mapbox.Feature{{PlaceName: address, Center: []float64{-73.99, 40.73}}}, nil
}

func TestCanceledCallerDoesNotFailSharedFetch(t *testing.T) {
	up := &gatedForwarder{entered: make(chan struct{}, 2), release: make(chan struct{})}
	c := &Cache{Upstream: up, FetchTimeout: 5 * time.Second}
	addr := "210 E 21st St, Gramercy, NY 10010"

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Lookup(first, addr)
		firstErr <- err
	}()
	<-up.entered

	second := make(chan Result, 1)
	go func() {
		res, err := c.Lookup(context.Background(), addr)
		assert.NoError(t, err)
		second <- res
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(up.release)
	res := <-second
	assert.True(t, res.Found)
	assert.Equal(t, [2]float64{-73.99, 40.73}, res.Coords)
	assert.EqualValues(t, 1, up.calls.Load())
}
