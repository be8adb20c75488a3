package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/plastinin/measurer/internal/adapter/http/handler"
	httpmiddleware "github.com/plastinin/measurer/internal/adapter/http/middleware"
	"github.com/plastinin/measurer/internal/adapter/storage"
	"go.uber.org/zap"
)

// Handlers обработчики, из которых собирается роутер
type Handlers struct {
	Measure *handler.MeasureHandler
	Batch   *handler.BatchHandler
	Health  *handler.HealthHandler
}

// NewRouter создаёт и настраивает HTTP роутер
func NewRouter(h Handlers, uploadDir string, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.NewLoggingMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health.Check)

	r.Post("/measure", h.Measure.Measure)

	// Входные и выходные изображения
	files := http.StripPrefix(storage.PublicPrefix, http.FileServer(http.Dir(uploadDir)))
	r.Get(storage.PublicPrefix+"*", files.ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/batches", func(r chi.Router) {
			r.Post("/", h.Batch.Create)
			r.Get("/", h.Batch.List)
			r.Get("/{id}", h.Batch.GetByID)
			r.Delete("/{id}", h.Batch.Delete)
		})
	})

	return r
}
