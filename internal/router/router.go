// Package router sets up all HTTP routes and middleware chains for the
// Nearo marketplace API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nearo/internal/handlers"
	"nearo/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(categories *handlers.Categories, listings *handlers.Listings) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.PrometheusMetrics)

	// Health check and metrics — outside the versioned API.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.Tree)
			r.Get("/leaves", categories.Leaves)
			r.Get("/{id}/template", categories.Template)
		})

		r.Route("/listings", func(r chi.Router) {
			r.Get("/feed", listings.Feed)
			r.Get("/featured", listings.Featured)
			r.Get("/nearby", listings.Nearby)
			r.Post("/search", listings.Search)
			r.Post("/", listings.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", listings.Get)
				r.Patch("/", listings.Update)
				r.Patch("/status", listings.SetStatus)
				r.Delete("/", listings.Delete)
				r.Post("/promote", listings.Promote)
			})
		})

		r.Get("/users/{id}/listings", listings.UserListings)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
