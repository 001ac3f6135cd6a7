package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/secmon-lab/zia/pkg/service/metrics"
	"github.com/secmon-lab/zia/pkg/usecase"
)

// HealthMessage is reported by /health
const HealthMessage = "ZIA backend running"

// maxBodySize bounds request bodies. Import bodies carry a whole store.
const maxBodySize = 32 << 20

type Server struct {
	router  *chi.Mux
	uc      *usecase.UseCases
	metrics *metrics.Collector
}

type Options func(*Server)

// WithMetrics records request metrics and exposes them on /metrics
func WithMetrics(m *metrics.Collector) Options {
	return func(s *Server) {
		s.metrics = m
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(accessLogger)
	r.Use(metricsRecorder(s.metrics))
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/ask", s.handleAsk)
	r.Post("/teach", s.handleTeach)
	r.Get("/knowledge", s.handleListKnowledge)

	r.Route("/sync", func(r chi.Router) {
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
