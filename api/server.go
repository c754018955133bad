/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. RealIP:     Client address from proxy headers
  3. Logger:     zap request log (method, path, status, duration)
  4. Recoverer:  Panic recovery (500 instead of crash)
  5. Metrics:    Prometheus request counters (when enabled)
  6. CORS:       Cross-origin requests for the spreadsheet frontend

ROUTE GROUPS:
  /api/templates     Preset organisations
  /api/methods       Registered evaluation methods
  /api/calc/*        Stateless calculators
  /api/sessions/*    Stored sessions
  /metrics           Prometheus (when enabled)

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options configures the router around the handler.
type Options struct {
	AllowedOrigins []string

	// MetricsPath is where Prometheus is served. Ignored when the handler
	// has no metrics.
	MetricsPath string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	if h.Metrics != nil {
		r.Use(instrument(h.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if h.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, h.Metrics.Handler())
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/templates", h.ListTemplates)
		r.Get("/methods", h.ListMethods)

		// Calculator routes
		r.Route("/calc", func(r chi.Router) {
			r.Post("/score", h.Score)
			r.Post("/range", h.Range)
			r.Post("/recompute", h.Recompute)
			r.Post("/preview", h.PreviewPartition)
			r.Post("/generate", h.GeneratePartition)
		})

		// Session routes
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Put("/config", h.UpdateConfig)
				r.Post("/template", h.LoadTemplate)
				r.Post("/reset", h.ResetSession)
				r.Put("/method", h.SetMethod)

				r.Get("/factors", h.GetFactors)
				r.Put("/factors", h.UpdateFactors)
				r.Get("/factors/history", h.FactorHistory)
				r.Put("/factors/{factorID}", h.PutFactor)
				r.Delete("/factors/{factorID}", h.RemoveFactor)
				r.Post("/factors/{factorID}/options", h.AddFactorOption)
				r.Patch("/factors/{factorID}/options/{value}", h.UpdateFactorOption)
				r.Delete("/factors/{factorID}/options/{value}", h.RemoveFactorOption)

				r.Post("/jobs", h.AddJob)
				r.Patch("/jobs/{jobID}", h.UpdateJob)
				r.Delete("/jobs/{jobID}", h.RemoveJob)

				r.Get("/suggestion", h.Suggestion)
				r.Get("/preview", h.Preview)
				r.Post("/grades/generate", h.Generate)
				r.Patch("/grades/{gradeID}", h.EditGrade)
				r.Get("/diagnostics", h.Diagnostics)
				r.Get("/export.xlsx", h.ExportXLSX)
			})
		})
	})

	return r
}
