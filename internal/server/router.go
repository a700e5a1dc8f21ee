// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/buket/service/internal/activity"
	"github.com/buket/service/internal/image"
	appMiddleware "github.com/buket/service/internal/middleware"
)

// Deps are the handlers and settings the router is built from.
type Deps struct {
	Images    *image.Handler
	Activity  *activity.Handler // nil when no database is configured
	Registry  *prometheus.Registry
	JWTSecret string // write endpoints require a bearer token when set
	Log       *zap.Logger
}

// NewRouter returns the API router.
func NewRouter(d Deps) http.Handler {
	metrics := appMiddleware.NewMetrics(d.Registry)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(d.Log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/images", d.Images.List)
	if d.Activity != nil {
		r.Get("/activity", d.Activity.List)
	}

	r.Group(func(r chi.Router) {
		if d.JWTSecret != "" {
			r.Use(appMiddleware.RequireAuth(d.JWTSecret))
		}
		r.Post("/upload", d.Images.Upload)
		r.Put("/update/{fileName}", d.Images.Update)
		r.Delete("/delete/{fileName}", d.Images.Delete)
	})

	return r
}
