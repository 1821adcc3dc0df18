package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/openhouse-api/internal/filter"
	"github.com/yourorg/openhouse-api/internal/listing"
	"github.com/yourorg/openhouse-api/internal/search"
	"github.com/yourorg/openhouse-api/internal/session"
)

type ListingsDeps struct {
	Index    *search.Indexer
	Sessions *session.Registry
}

func RegisterListings(r chi.Router, d ListingsDeps) {
	// Visible listings for a session's filters; without a session the
	// default filters apply.
	r.Get("/open-houses", func(w http.ResponseWriter, req *http.Request) {
		spec := filter.Default()
		if id := req.URL.Query().Get("session"); id != "" {
			s, err := d.Sessions.Get(req.Context(), id)
			if err != nil {
				writeError(w, req, http.StatusNotFound, "session_not_found", "")
				return
			}
			f, err := s.State.Filters()
			if err != nil {
				writeError(w, req, http.StatusServiceUnavailable, "state_not_initialized", "")
				return
			}
			spec = f
		}
		visible, b := d.Index.Visible(spec)
		render.JSON(w, req, listingsPayload(visible, b, spec))
	})

	r.Get("/open-houses/all", func(w http.ResponseWriter, req *http.Request) {
		b := d.Index.Snapshot()
		render.JSON(w, req, listingsPayload(b.Listings, b, filter.Default()))
	})

	r.Get("/open-houses/{listingID}", func(w http.ResponseWriter, req *http.Request) {
		l, ok := d.Index.Get(pathParam(req, "listingID"))
		if !ok {
			writeError(w, req, http.StatusNotFound, "listing_not_found", "")
			return
		}
		render.JSON(w, req, map[string]any{"ok": true, "listing": l})
	})
}

func listingsPayload(visible []listing.Listing, b search.Batch, spec filter.Spec) map[string]any {
	if visible == nil {
		visible = []listing.Listing{}
	}
	out := map[string]any{
		"ok":            true,
		"count":         len(visible),
		"total":         len(b.Listings),
		"listings":      visible,
		"fallback":      b.Fallback,
		"activeFilters": filter.ActiveCount(spec),
	}
	if b.Banner != "" {
		out["error"] = b.Banner
	}
	if !b.LoadedAt.IsZero() {
		out["loadedAt"] = b.LoadedAt
	}
	return out
}
