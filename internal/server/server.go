// Package server exposes the extraction pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/hstay/docextract/internal/common"
	"github.com/hstay/docextract/internal/extract"
)

// Version is reported by the health endpoint.
const Version = "0.2.0"

// ExtractionService is the orchestrator as the transport layer sees it.
type ExtractionService interface {
	Process(ctx context.Context, req extract.Request) (*extract.Result, error)
}

type Server struct {
	cfg     *common.Config
	svc     ExtractionService
	router  *mux.Router
	handler http.Handler
	logger  *slog.Logger
}

func New(cfg *common.Config, svc ExtractionService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		svc:    svc,
		router: mux.NewRouter(),
		logger: logger,
	}
	s.registerRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	s.handler = c.Handler(s.router)
	return s
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/v1/extract", s.handleExtractV1).Methods(http.MethodPost)
	s.router.HandleFunc("/v2/extract", s.handleExtractV2).Methods(http.MethodPost)
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}
