// Package api serves the lead finder over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sells-group/prospect-cli/internal/coach"
	"github.com/sells-group/prospect-cli/internal/phone"
	"github.com/sells-group/prospect-cli/internal/pipeline"
	"github.com/sells-group/prospect-cli/internal/store"
)

// Deps holds everything the handlers need.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Store    store.Store
	Coach    *coach.Coach

	// Region builds WhatsApp links for generated pitches.
	Region phone.Region
	// DefaultCount is used when a search request has no target count.
	DefaultCount int
	// CORSOrigins lists allowed browser origins; empty allows none.
	CORSOrigins []string
}

// NewRouter builds the API routes.
func NewRouter(d Deps) http.Handler {
	h := &handlers{Deps: d}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", UserHeader},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/search", h.search)
		r.Get("/history", h.history)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", h.listLeads)
			r.Post("/", h.saveLeads)
			r.Get("/export.csv", h.exportCSV)
			r.Patch("/{id}/status", h.updateStatus)
			r.Delete("/{id}", h.deleteLead)
			r.Post("/{id}/pitch", h.pitch)
			r.Post("/{id}/audit", h.audit)
		})

		r.Get("/dashboard", h.dashboard)

		r.Get("/service", h.getService)
		r.Put("/service", h.putService)
		r.Post("/service/insights", h.insights)

		r.Post("/coach/sequence", h.sequence)
		r.Post("/coach/roleplay", h.roleplay)
	})

	return r
}

type handlers struct {
	Deps
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zap.L().Info("http",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
