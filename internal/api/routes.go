package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VoidMesh/heightfield/internal/metrics"
)

// RouteOptions tunes the router.
type RouteOptions struct {
	Recorder *metrics.Recorder
	// Gatherer serves /metrics when set.
	Gatherer      prometheus.Gatherer
	MaxConcurrent int
}

func SetupRoutes(handler *Handler, opts RouteOptions) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	for _, mw := range SetupMiddleware(opts.Recorder) {
		r.Use(mw)
	}

	// JSON content type
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// Health check endpoint
	r.Get("/health", handler.HealthCheck)

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.With(GenerationThrottle(opts.MaxConcurrent)).Post("/heightmaps", handler.CreateHeightmap)

		r.Post("/preview", handler.SubmitPreview)
		r.Get("/preview", handler.GetPreview)

		if handler.runs != nil {
			r.Get("/runs", handler.ListRuns)
			r.Get("/runs/{runID}", handler.GetRun)
		}
	})

	return r
}
