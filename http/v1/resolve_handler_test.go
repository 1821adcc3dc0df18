package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/openhouse-api/internal/geocache"
	"github.com/yourorg/openhouse-api/internal/redisx"
	"github.com/yourorg/openhouse-api/mapbox"
)

type fakeForwarder map[string][]mapbox.Feature

func (f fakeForwarder) Forward(_ context.Context, address string) ([]mapbox.Feature, error) {
	if address == "boom" {
		return nil, errors.New("upstream 503")
	}
	return f[address], nil
}

func get(t *testing.T, h http.Handler, address string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/geocode?address="+url.QueryEscape(address), nil)
	h.ServeHTTP(rec, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestGeocodeEndpoint(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := &geocache.Cache{
		Redis: redisx.New(mr.Addr(), "", 0),
		Upstream: fakeForwarder{
			"53 Charles St, New York, NY": {{Center: []float64{-74.0084, 40.7397}, PlaceName: "53 Charles Street"}},
		},
	}
	r := chi.NewRouter()
	RegisterResolve(r, ResolveDeps{Geocoder: cache})

	status, body := get(t, r, "53 Charles St, New York, NY")
	require.Equal(t, http.StatusOK, status)
	res := body["result"].(map[string]any)
	assert.Equal(t, []any{-74.0084, 40.7397}, res["coordinates"])
	assert.Equal(t, geocache.SourceFresh, res["source"])

	_, body = get(t, r, "53 Charles St, New York, NY")
	assert.Equal(t, geocache.SourceCache, body["result"].(map[string]any)["source"])

	status, body = get(t, r, "1 Nowhere Ln")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])

	status, body = get(t, r, "boom")
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "upstream_error", body["error"])

	status, body = get(t, r, "  ")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "address_required", body["error"])
}
