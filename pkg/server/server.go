// pkg/server/server.go
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/charted-solutions/loanrisk/pkg/aggregate"
	"github.com/charted-solutions/loanrisk/pkg/config"
	"github.com/charted-solutions/loanrisk/pkg/ingest"
	"github.com/charted-solutions/loanrisk/pkg/merge"
	"github.com/charted-solutions/loanrisk/pkg/risk"
	"github.com/charted-solutions/loanrisk/pkg/session"
	"github.com/charted-solutions/loanrisk/pkg/warehouse"
)

// Server wires the pipeline stages behind an HTTP API. Every request
// operates on its own session's tables; nothing is shared across sessions.
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      *session.Store
	ingestor   *ingest.Ingestor
	scorer     *risk.Scorer
	merger     *merge.Merger
	aggregator *aggregate.Aggregator

	// Replaceable for tests; defaults to warehouse.Open.
	openSource func(ctx context.Context, kind string, cfg *config.Config) (warehouse.TableSource, error)
}

// New constructs a Server from its pipeline dependencies.
func New(cfg *config.Config, logger *zap.Logger, store *session.Store, ingestor *ingest.Ingestor, scorer *risk.Scorer) *Server {
	if logger == nil {
		logger = zap.L()
	}
	return &Server{
		cfg:        cfg,
		logger:     logger.Named("server"),
		store:      store,
		ingestor:   ingestor,
		scorer:     scorer,
		merger:     merge.NewMerger(logger),
		aggregator: aggregate.NewAggregator(logger),
		openSource: warehouse.Open,
	}
}

// Router builds the chi router with middleware and all API routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.CreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Post("/nslds", s.UploadNSLDS)
			r.Post("/sis", s.UploadSIS)
			r.Post("/warehouse", s.LoadFromWarehouse)
			r.Post("/merge", s.MergeTables)
			r.Get("/dashboard", s.Dashboard)
			r.Get("/programs", s.Programs)
			r.Get("/interventions", s.Interventions)
			r.Get("/export/{table}", s.Export)
		})
		r.Get("/samples/{kind}", s.SampleData)
	})

	return r
}

// ListenAndServe starts the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.cfg.ListenAddr))
	return http.ListenAndServe(s.cfg.ListenAddr, s.Router())
}
