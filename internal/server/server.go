// Package server provides the HTTP REST API for the CV builder.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/versions"
)

// ExportHistory records produced files. *db.DB implements it.
type ExportHistory interface {
	RecordExport(ctx context.Context, rec db.ExportRecord) (uuid.UUID, error)
	ListExports(ctx context.Context, versionID string, limit int) ([]db.ExportRecord, error)
}

const shutdownGrace = 30 * time.Second

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       *versions.Store
	exporter    *export.Exporter
	history     ExportHistory
	rateLimiter *ratelimit.Limiter
	validator   *validator.Validate
	defaults    export.Options
	locale      string
	verbose     bool
}

// Config holds server configuration
type Config struct {
	Port int
	// Locale is used when a request names none
	Locale string
	// ExportDefaults fill fields an export request leaves out
	ExportDefaults export.Options
	// RateLimit overrides the RATE_LIMIT_* environment
	RateLimit *ratelimit.Config
	Verbose   bool
}

// New creates a new server instance. history may be nil, in which case exports are not
// recorded and the history endpoint answers 501.
func New(cfg Config, store *versions.Store, exporter *export.Exporter, history ExportHistory) *Server {
	defaults := cfg.ExportDefaults
	if defaults == (export.Options{}) {
		defaults = export.DefaultOptions()
	}
	s := &Server{
		store:     store,
		exporter:  exporter,
		history:   history,
		validator: validator.New(),
		defaults:  defaults.WithDefaults(),
		locale:    cfg.Locale,
		verbose:   cfg.Verbose,
	}
	if s.defaults.Locale == "" {
		s.defaults.Locale = cfg.Locale
	}

	limits := cfg.RateLimit
	if limits == nil {
		limits = ratelimit.LoadConfig(os.Getenv)
	}
	s.rateLimiter = ratelimit.NewLimiter(limits)

	// Setup router
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Version collection
	mux.HandleFunc("GET /versions", s.handleListVersions)
	mux.HandleFunc("POST /versions", s.handleCreateVersion)
	mux.HandleFunc("POST /versions/import", s.handleImportVersion)
	mux.HandleFunc("GET /versions/active", s.handleGetActiveVersion)
	mux.HandleFunc("GET /versions/{id}", s.handleGetVersion)
	mux.HandleFunc("DELETE /versions/{id}", s.handleDeleteVersion)
	mux.HandleFunc("POST /versions/{id}/duplicate", s.handleDuplicateVersion)
	mux.HandleFunc("POST /versions/{id}/activate", s.handleActivateVersion)
	mux.HandleFunc("GET /versions/{id}/download", s.handleDownloadVersion)

	// Editing
	mux.HandleFunc("PUT /versions/{id}/name", s.handleRenameVersion)
	mux.HandleFunc("PUT /versions/{id}/data", s.handleUpdateData)
	mux.HandleFunc("PUT /versions/{id}/template", s.handleUpdateTemplate)
	mux.HandleFunc("PUT /versions/{id}/target-role", s.handleUpdateTargetRole)
	mux.HandleFunc("PUT /versions/{id}/section-order", s.handleUpdateSectionOrder)
	mux.HandleFunc("DELETE /versions/{id}/section-order", s.handleResetSectionOrder)
	mux.HandleFunc("POST /versions/{id}/section-order/move", s.handleMoveSection)
	mux.HandleFunc("POST /versions/{id}/items/move", s.handleMoveItem)

	// Rendering and export
	mux.HandleFunc("GET /versions/{id}/preview", s.handlePreview)
	mux.HandleFunc("GET /versions/{id}/gallery", s.handleGallery)
	mux.HandleFunc("POST /versions/{id}/export", s.handleExport)
	mux.HandleFunc("POST /versions/{id}/export/batch", s.handleExportBatch)
	mux.HandleFunc("GET /versions/{id}/exports", s.handleListExports)

	s.handler = chain(mux, s.withCORS, s.withLogging, s.withRateLimit)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute, // batch exports start one browser per format
		IdleTimeout:  time.Minute,
	}

	return s
}

// Handler returns the full middleware chain and router
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests for up to
// shutdownGrace. A listener failure is returned immediately.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.Close()

	errc := make(chan error, 1)
	go func() {
		log.Printf("[SERVER] listening on %s", s.httpServer.Addr)
		errc <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Println("[SERVER] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Println("[SERVER] stopped")
	return nil
}

// Close stops background work. The store and database belong to the caller.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes data as the JSON body with the given status
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[SERVER] encoding response: %v", err)
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure writes err with the status and message HTTPStatus and UserMessage choose
func (s *Server) failure(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[SERVER] %v", err)
	}
	s.errorResponse(w, status, UserMessage(err))
}
