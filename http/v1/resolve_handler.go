package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/openhouse-api/internal/geocache"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/mapbox"
)

type ResolveDeps struct {
	Geocoder *geocache.Cache
}

// RegisterResolve exposes cached forward geocoding for a single address.
func RegisterResolve(r chi.Router, d ResolveDeps) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/geocode", func(w http.ResponseWriter, req *http.Request) {
			address := strings.TrimSpace(req.URL.Query().Get("address"))
			if address == "" {
				writeError(w, req, http.StatusBadRequest, "address_required", "")
				return
			}
			if d.Geocoder == nil {
				writeError(w, req, http.StatusServiceUnavailable, "geocoder_unavailable", "")
				return
			}
			res, err := d.Geocoder.Lookup(req.Context(), address)
			if errors.Is(err, mapbox.ErrMissingToken) {
				writeError(w, req, http.StatusServiceUnavailable, "geocoder_unavailable", "no geocoding token configured")
				return
			}
			if err != nil {
				logger.Log.Warnf("geocode %q: %v", address, err)
				writeError(w, req, http.StatusBadGateway, "upstream_error", err.Error())
				return
			}
			if !res.Found {
				render.Status(req, http.StatusNotFound)
				render.JSON(w, req, map[string]any{"error": "not_found", "key": res.Key, "source": res.Source})
				return
			}
			render.JSON(w, req, map[string]any{"ok": true, "result": res})
		})
	})
}

func writeError(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	render.Status(req, status)
	body := map[string]any{"error": code}
	if detail != "" {
		body["detail"] = detail
	}
	render.JSON(w, req, body)
}
