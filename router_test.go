package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/openhouse-api/internal/events"
	"github.com/yourorg/openhouse-api/internal/hydrator"
	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/schedule"
	"github.com/yourorg/openhouse-api/internal/search"
	"github.com/yourorg/openhouse-api/internal/session"
	"github.com/yourorg/openhouse-api/internal/state"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cal := schedule.NewCalendar(time.UTC)
	pub := events.NewInMemory(4)
	index := search.NewIndexer(cal)
	hyd := &hydrator.Hydrator{Normalizer: &listing.Normalizer{Calendar: cal}, Index: index}
	hyd.Refresh(context.Background())
	return BuildRouter(RouterDeps{
		Index:          index,
		Sessions:       session.NewRegistry(state.NewMemoryKV(), index.Has, pub),
		Hydrator:       hyd,
		AllowedOrigins: []string{"https://map.example.com"},
	})
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/open-houses", nil)
	req.Header.Set("Origin", "https://map.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "https://map.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestGeocodeWithoutCacheIsUnavailable(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/geocode?address=53+Charles+St", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
