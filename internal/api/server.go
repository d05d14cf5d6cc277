// Package api exposes the scan pipeline over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	scanerrors "github.com/driftwatch/deadscan/pkg/errors"
	"github.com/driftwatch/deadscan/pkg/history"
	"github.com/driftwatch/deadscan/pkg/manifest"
	"github.com/driftwatch/deadscan/pkg/scan"
)

// Server handles scan requests over HTTP. Scans run synchronously
// inside the request; the batch limit in the analyzer bounds the work.
type Server struct {
	analyzer *scan.Analyzer
	store    history.Store
	token    string
	logger   *log.Logger
	router   chi.Router
}

// Options configures a Server.
type Options struct {
	Analyzer *scan.Analyzer
	Store    history.Store
	// GitHubToken enables repository enrichment for all API scans.
	GitHubToken string
	Logger      *log.Logger
}

// NewServer creates a Server with its routes mounted.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		analyzer: opts.Analyzer,
		store:    opts.Store,
		token:    opts.GitHubToken,
		logger:   opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/scans", func(r chi.Router) {
		r.Post("/", s.handleCreateScan)
		r.Get("/", s.handleListScans)
		r.Get("/{id}", s.handleGetScan)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// scanRequest is the POST /api/scans payload. Ecosystem is optional;
// when empty it is detected from the content.
type scanRequest struct {
	Content   string `json:"content"`
	Ecosystem string `json:"ecosystem"`
	Refresh   bool   `json:"refresh"`
}

func (s *Server) handleCreateScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, scanerrors.New(scanerrors.ErrCodeInvalidInput, "invalid JSON body"))
		return
	}
	if req.Content == "" {
		s.writeError(w, http.StatusBadRequest, scanerrors.New(scanerrors.ErrCodeInvalidManifest, "content is required"))
		return
	}

	eco := scan.Ecosystem(req.Ecosystem)
	if req.Ecosystem == "" {
		eco = manifest.DetectEcosystem(req.Content)
	} else if !eco.Valid() {
		s.writeError(w, http.StatusBadRequest, scanerrors.New(scanerrors.ErrCodeInvalidEcosystem, "unknown ecosystem %q", req.Ecosystem))
		return
	}

	packages := manifest.ParseAs(req.Content, eco)
	if len(packages) == 0 {
		s.writeError(w, http.StatusUnprocessableEntity, scanerrors.New(scanerrors.ErrCodeInvalidManifest, "no packages found in manifest"))
		return
	}
	for _, pkg := range packages {
		if err := scanerrors.ValidatePackageName(pkg.Name); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	ctx := r.Context()
	analyses, err := s.analyzer.AnalyzeDependencies(ctx, packages, scan.Options{
		Credential: s.token,
		Refresh:    req.Refresh,
		Logger:     func(msg string, args ...any) { s.logger.Warnf(msg, args...) },
	})
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}

	result := scan.NewScanResult(analyses, eco, req.Content)
	if err := s.store.Save(ctx, result); err != nil {
		s.logger.Errorf("save scan %s: %v", result.ID, err)
	}

	s.writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	result, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListScans(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.List(r.Context(), 50)
	if err != nil {
		s.writeError(w, statusForError(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"scans": results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("write response: %v", err)
	}
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string          `json:"error"`
	Code  scanerrors.Code `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{
		Error: scanerrors.UserMessage(err),
		Code:  scanerrors.GetCode(err),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case scanerrors.Is(err, scanerrors.ErrCodeScanNotFound):
		return http.StatusNotFound
	case scanerrors.Is(err, scanerrors.ErrCodeInvalidInput),
		scanerrors.Is(err, scanerrors.ErrCodeInvalidManifest),
		scanerrors.Is(err, scanerrors.ErrCodeInvalidEcosystem):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
