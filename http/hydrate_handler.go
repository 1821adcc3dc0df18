package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/openhouse-api/internal/hydrator"
)

type RefreshDeps struct {
	Hydrator *hydrator.Hydrator
}

// RegisterRefresh exposes a synchronous full refetch. The batch is replaced
// whole before the response is written.
func RegisterRefresh(r chi.Router, d RefreshDeps) {
	r.Post("/refresh", func(w http.ResponseWriter, req *http.Request) {
		if d.Hydrator == nil {
			writeError(w, req, http.StatusServiceUnavailable, "refresh_unavailable", "")
			return
		}
		res := d.Hydrator.Refresh(req.Context())
		body := map[string]any{
			"ok":       true,
			"count":    len(res.Listings),
			"dropped":  res.Dropped,
			"fallback": res.Fallback,
		}
		if res.Err != nil {
			body["error"] = hydrator.Banner
			body["detail"] = res.Err.Error()
		}
		render.JSON(w, req, body)
	})
}
