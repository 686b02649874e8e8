package app

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"questionbank/internal/app/apiresp"
	"questionbank/internal/app/observability"
	"questionbank/internal/question"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(cfg Config, db *sql.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	collector := observability.NewCollector(db)
	r.Use(collector.Middleware)

	repo := question.NewPostgresRepository(db)
	svc := question.NewService(repo)
	handler := question.NewHandler(svc, cfg.IsDevelopment())

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"success":true,"message":"API is running","timestamp":%q}`,
			time.Now().UTC().Format(time.RFC3339))
	})
	r.Get("/metrics", collector.MetricsHandler)

	limiter := NewIPRateLimiter(cfg.WriteRatePerMin, time.Minute)

	r.Route("/api/v1/questions", func(api chi.Router) {
		api.Use(WriteRateLimitMiddleware(limiter))
		api.Post("/", handler.Create)
		api.Get("/", handler.List)
		api.Get("/export", handler.Export)
		api.Get("/category/{category}", handler.ByCategory)
		api.Get("/type/{type}", handler.ByType)
		api.Get("/{id}", handler.Get)
		api.Put("/{id}", handler.Update)
		api.Delete("/{id}", handler.Delete)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apiresp.WriteError(w, req, http.StatusNotFound, "Route "+req.URL.Path+" not found")
	})

	return r
}
