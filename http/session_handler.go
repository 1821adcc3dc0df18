package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/yourorg/openhouse-api/internal/canon"
	"github.com/yourorg/openhouse-api/internal/filter"
	"github.com/yourorg/openhouse-api/internal/interaction"
	"github.com/yourorg/openhouse-api/internal/search"
	"github.com/yourorg/openhouse-api/internal/session"
	"github.com/yourorg/openhouse-api/internal/state"
)

type SessionDeps struct {
	Sessions *session.Registry
	Index    *search.Indexer
}

type ctxKey struct{}

type viewRequest struct {
	Center [2]float64 `json:"center"`
	Zoom   *float64   `json:"zoom" validate:"required,gte=0,lte=24"`
}

type styleRequest struct {
	Style string `json:"style" validate:"required,max=200"`
}

type clickRequest struct {
	Target string `json:"target" validate:"required,oneof=map marker popup"`
}

func RegisterSessions(r chi.Router, d SessionDeps) {
	r.Post("/sessions", func(w http.ResponseWriter, req *http.Request) {
		s := d.Sessions.Create(req.Context())
		render.Status(req, http.StatusCreated)
		render.JSON(w, req, d.sessionPayload(s))
	})

	r.Route("/sessions/{sessionID}", func(r chi.Router) {
		r.Use(d.loadSession)

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, d.sessionPayload(sessionFrom(req)))
		})

		r.Put("/filters", func(w http.ResponseWriter, req *http.Request) {
			var body filter.Spec
			if !decodeBody(w, req, &body) {
				return
			}
			s := sessionFrom(req)
			f, err := s.State.SetFilters(req.Context(), body)
			d.writeFilters(w, req, s, f, err)
		})
		r.Post("/filters/reset", func(w http.ResponseWriter, req *http.Request) {
			s := sessionFrom(req)
			f, err := s.State.ResetFilters(req.Context())
			d.writeFilters(w, req, s, f, err)
		})
		r.Post("/filters/bedrooms/{value}", func(w http.ResponseWriter, req *http.Request) {
			value := pathParam(req, "value")
			if err := validate.Var(value, "oneof=any studio 1 2 3 4+"); err != nil {
				writeError(w, req, http.StatusBadRequest, "invalid_bedroom_option", value)
				return
			}
			s := sessionFrom(req)
			f, err := s.State.UpdateFilters(req.Context(), func(cur filter.Spec) filter.Spec {
				return filter.ToggleBedroom(cur, value)
			})
			d.writeFilters(w, req, s, f, err)
		})

		r.Put("/view", func(w http.ResponseWriter, req *http.Request) {
			var body viewRequest
			if !decodeBody(w, req, &body) {
				return
			}
			if !canon.ValidLngLat(body.Center[0], body.Center[1]) {
				writeError(w, req, http.StatusBadRequest, "invalid_request", "center out of range")
				return
			}
			s := sessionFrom(req)
			v, err := s.State.Pan(req.Context(), body.Center, *body.Zoom)
			writeView(w, req, s, v, err)
		})
		r.Put("/view/style", func(w http.ResponseWriter, req *http.Request) {
			var body styleRequest
			if !decodeBody(w, req, &body) {
				return
			}
			s := sessionFrom(req)
			v, err := s.State.SetStyle(req.Context(), body.Style)
			writeView(w, req, s, v, err)
		})

		r.Post("/select/{listingID}", func(w http.ResponseWriter, req *http.Request) {
			s := sessionFrom(req)
			st, err := s.Controller.SelectListing(pathParam(req, "listingID"))
			d.writeInteraction(w, req, st, err)
		})
		r.Put("/hover/{listingID}", func(w http.ResponseWriter, req *http.Request) {
			s := sessionFrom(req)
			st, err := s.Controller.Hover(pathParam(req, "listingID"))
			d.writeInteraction(w, req, st, err)
		})
		r.Delete("/hover/{listingID}", func(w http.ResponseWriter, req *http.Request) {
			s := sessionFrom(req)
			d.writeInteraction(w, req, s.Controller.Unhover(pathParam(req, "listingID")), nil)
		})
		r.Post("/panel/expand", func(w http.ResponseWriter, req *http.Request) {
			d.writeInteraction(w, req, sessionFrom(req).Controller.ExpandPanel(), nil)
		})
		r.Post("/panel/collapse", func(w http.ResponseWriter, req *http.Request) {
			d.writeInteraction(w, req, sessionFrom(req).Controller.CollapsePanel(), nil)
		})
		r.Post("/panel/toggle", func(w http.ResponseWriter, req *http.Request) {
			d.writeInteraction(w, req, sessionFrom(req).Controller.TogglePanel(), nil)
		})
		r.Post("/detail/close", func(w http.ResponseWriter, req *http.Request) {
			d.writeInteraction(w, req, sessionFrom(req).Controller.CloseDetail(), nil)
		})
		r.Post("/click", func(w http.ResponseWriter, req *http.Request) {
			var body clickRequest
			if !decodeBody(w, req, &body) {
				return
			}
			st, err := sessionFrom(req).Controller.BackgroundClick(body.Target)
			d.writeInteraction(w, req, st, err)
		})
	})
}

func (d SessionDeps) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s, err := d.Sessions.Get(req.Context(), chi.URLParam(req, "sessionID"))
		if err != nil {
			status, code := statusFor(err)
			writeError(w, req, status, code, "")
			return
		}
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), ctxKey{}, s)))
	})
}

func sessionFrom(req *http.Request) *session.Session {
	return req.Context().Value(ctxKey{}).(*session.Session)
}

func (d SessionDeps) sessionPayload(s *session.Session) map[string]any {
	f, _ := s.State.Filters()
	v, _ := s.State.View()
	return map[string]any{
		"ok": true,
		"session": map[string]any{
			"id":            s.ID,
			"filters":       f,
			"activeFilters": filter.ActiveCount(f),
			"view":          v,
			"interaction":   s.Controller.State(),
		},
	}
}

func (d SessionDeps) writeFilters(w http.ResponseWriter, req *http.Request, s *session.Session, f filter.Spec, err error) {
	if errors.Is(err, state.ErrNotInitialized) {
		writeError(w, req, http.StatusServiceUnavailable, "state_not_initialized", "")
		return
	}
	visible, b := d.Index.Visible(f)
	body := listingsPayload(visible, b, f)
	body["filters"] = f
	body["persisted"] = persisted(s.ID, err)
	render.JSON(w, req, body)
}

func writeView(w http.ResponseWriter, req *http.Request, s *session.Session, v state.ViewState, err error) {
	if errors.Is(err, state.ErrNotInitialized) {
		writeError(w, req, http.StatusServiceUnavailable, "state_not_initialized", "")
		return
	}
	render.JSON(w, req, map[string]any{"ok": true, "view": v, "persisted": persisted(s.ID, err)})
}

func (d SessionDeps) writeInteraction(w http.ResponseWriter, req *http.Request, st interaction.State, err error) {
	if err != nil {
		status, code := statusFor(err)
		writeError(w, req, status, code, "")
		return
	}
	body := map[string]any{"ok": true, "interaction": st}
	if st.Mode == interaction.ListingSelected {
		if l, ok := d.Index.Get(st.SelectedID); ok {
			body["listing"] = l
		}
	}
	render.JSON(w, req, body)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, interaction.ErrUnknownListing):
		return http.StatusNotFound, "listing_not_found"
	case errors.Is(err, interaction.ErrUnknownTarget):
		return http.StatusBadRequest, "invalid_click_target"
	case errors.Is(err, state.ErrNotInitialized):
		return http.StatusServiceUnavailable, "state_not_initialized"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
