// Package http exposes the risk quote endpoint alongside health, readiness,
// and metrics routes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cropshield/parcel-risk-service/internal/domain"
	"github.com/cropshield/parcel-risk-service/internal/quote"
)

// Quoter computes a risk quote for a request.
type Quoter interface {
	Quote(ctx context.Context, req quote.Request) (domain.RiskReport, error)
	CheckReadiness(ctx context.Context) error
}

// riskRequest is the POST /risk body. Polygon is a GeoJSON Polygon
// geometry or a Feature wrapping one. Coverage is a pointer so an
// explicit zero is distinguishable from an absent field; only the
// latter defaults to 1.0.
type riskRequest struct {
	Polygon  json.RawMessage `json:"polygon"`
	Coverage *float64        `json:"coverage,omitempty"`
}

// Server exposes the quote API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	quoter     Quoter
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /, /risk, /healthz, /readyz, and
// /metrics routes. All routes allow cross-origin requests; the drawing
// frontend is served from a different origin.
func NewServer(addr string, quoter Quoter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      corsMiddleware(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		quoter: quoter,
		logger: logger,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /risk", s.handleRisk)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "parcel risk api is running"})
}

func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if len(req.Polygon) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "polygon is required"})
		return
	}
	coverage := 1.0
	if req.Coverage != nil {
		if *req.Coverage < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "coverage must not be negative"})
			return
		}
		coverage = *req.Coverage
	}

	report, err := s.quoter.Quote(r.Context(), quote.Request{
		GeoJSON:  req.Polygon,
		Coverage: coverage,
	})
	if err != nil {
		s.writeQuoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// writeQuoteError maps the domain error taxonomy onto HTTP statuses:
// invalid geometry is the client's fault, unavailable data is an upstream
// dependency problem, anything else is internal.
func (s *Server) writeQuoteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidGeometry):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrDataUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("quote failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.quoter.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// corsMiddleware allows any origin. The API serves a public drawing UI and
// carries no credentials or auth.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
