package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"
	"github.com/rs/cors"

	httpapi "github.com/yourorg/openhouse-api/http"
	httpv1 "github.com/yourorg/openhouse-api/http/v1"
	"github.com/yourorg/openhouse-api/internal/geocache"
	"github.com/yourorg/openhouse-api/internal/hydrator"
	"github.com/yourorg/openhouse-api/internal/logger"
	"github.com/yourorg/openhouse-api/internal/search"
	"github.com/yourorg/openhouse-api/internal/session"
)

type RouterDeps struct {
	Index          *search.Indexer
	Sessions       *session.Registry
	Hydrator       *hydrator.Hydrator
	Geocoder       *geocache.Cache
	AllowedOrigins []string
}

func BuildRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(300, 1*time.Minute))
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		render.JSON(w, req, map[string]any{"ok": true})
	})

	httpapi.RegisterListings(r, httpapi.ListingsDeps{Index: deps.Index, Sessions: deps.Sessions})
	httpapi.RegisterRefresh(r, httpapi.RefreshDeps{Hydrator: deps.Hydrator})
	httpapi.RegisterSessions(r, httpapi.SessionDeps{Sessions: deps.Sessions, Index: deps.Index})

	// geocode endpoint backed by the Redis cache
	httpv1.RegisterResolve(r, httpv1.ResolveDeps{Geocoder: deps.Geocoder})

	c := cors.New(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})
	return logger.Middleware(c.Handler(r))
}
