// Package server implements the persistence service: the canonical
// document behind GET/PUT /api/data, with serialized writes and
// crash-safe file replacement, plus the AI proxy endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/protrackhq/protrack/internal/ai"
	"github.com/protrackhq/protrack/internal/document"
	"github.com/protrackhq/protrack/internal/domain/plan"
)

// DefaultMaxBodyBytes bounds PUT and AI payloads.
const DefaultMaxBodyBytes int64 = 10 << 20

// Generator produces AI plans and insights. The Gemini client
// implements it; tests substitute stubs. A nil Generator means AI is
// not configured.
type Generator interface {
	GeneratePlan(ctx context.Context, model, description string) (plan.Plan, error)
	Insights(ctx context.Context, model string, projectData json.RawMessage) ([]plan.Insight, error)
}

// Config configures the service.
type Config struct {
	Store *FileStore
	// Generator may be nil when no API key is configured.
	Generator Generator
	// CORSOrigin is echoed in Access-Control-Allow-Origin; empty
	// disables CORS headers.
	CORSOrigin string
	// MaxBodyBytes overrides DefaultMaxBodyBytes when > 0.
	MaxBodyBytes int64
	Logger       *slog.Logger
}

// Server is the HTTP persistence service. It satisfies http.Handler.
type Server struct {
	store     *FileStore
	generator Generator
	queue     *writeQueue
	maxBody   int64
	logger    *slog.Logger
	router    chi.Router
}

// NewServer wires the router and starts the write queue worker.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	s := &Server{
		store:     cfg.Store,
		generator: cfg.Generator,
		queue:     newWriteQueue(),
		maxBody:   maxBody,
		logger:    logger,
	}

	r := chi.NewRouter()
	if cfg.CORSOrigin != "" {
		r.Use(corsMiddleware(cfg.CORSOrigin))
	}
	r.Get("/health", s.handleHealth)
	r.Get("/api/data", s.handleGetData)
	r.Put("/api/data", s.handlePutData)
	r.Post("/api/ai/generate-plan", s.handleGeneratePlan)
	r.Post("/api/ai/insights", s.handleInsights)
	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops the write queue. In-flight requests should be drained
// first via http.Server.Shutdown.
func (s *Server) Close() {
	s.queue.Close()
}

func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,PUT,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleGetData(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Read())
}

// handlePutData accepts a full or partial document. The body is
// normalized against the current on-disk state inside the write
// queue, so concurrent partial updates to disjoint fields both land.
func (s *Server) handlePutData(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r, s.maxBody)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Payload too large")
			return
		}
		s.logger.Error("failed to read request body", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to persist data")
		return
	}

	// Reject malformed JSON before it reaches the queue.
	if _, err := document.Normalize(body, document.Default()); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	err = s.queue.Do(r.Context(), func() error {
		current := s.store.Read()
		doc, err := document.Normalize(body, current)
		if err != nil {
			return err
		}
		return s.store.Write(doc)
	})
	if err != nil {
		s.logger.Error("failed to persist document", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to persist data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
		Model       string `json:"model"`
	}
	if err := decodeBody(w, r, s.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.Description == "" || req.Model == "" {
		writeError(w, http.StatusBadRequest, "Missing description or model")
		return
	}
	if s.generator == nil {
		writeError(w, http.StatusServiceUnavailable, "AI is not configured")
		return
	}

	p, err := s.generator.GeneratePlan(r.Context(), req.Model, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			writeError(w, http.StatusServiceUnavailable, "AI is not configured")
		case errors.Is(err, ai.ErrTimeout):
			writeError(w, http.StatusGatewayTimeout, "AI request timed out")
		case errors.Is(err, ai.ErrEmptyResponse):
			writeError(w, http.StatusBadGateway, "Empty AI response")
		default:
			s.logger.Error("plan generation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "AI generation failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": p})
}

// handleInsights never treats an unconfigured or failed AI backend as
// a client-visible error beyond the timeout case: consumers render an
// empty insights list.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectData json.RawMessage `json:"projectData"`
		Model       string          `json:"model"`
	}
	if err := decodeBody(w, r, s.maxBody, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if len(req.ProjectData) == 0 || req.Model == "" {
		writeError(w, http.StatusBadRequest, "Missing projectData or model")
		return
	}
	if s.generator == nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": []plan.Insight{}})
		return
	}

	insights, err := s.generator.Insights(r.Context(), req.Model, req.ProjectData)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrNotConfigured):
			writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": []plan.Insight{}})
		case errors.Is(err, ai.ErrTimeout):
			writeError(w, http.StatusGatewayTimeout, "AI request timed out")
		default:
			s.logger.Error("insights generation failed", "error", err)
			writeError(w, http.StatusInternalServerError, "AI insights failed")
		}
		return
	}
	if insights == nil {
		insights = []plan.Insight{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": insights})
}

func readBody(w http.ResponseWriter, r *http.Request, maxBytes int64) ([]byte, error) {
	limited := http.MaxBytesReader(w, r.Body, maxBytes)
	defer limited.Close()
	return io.ReadAll(limited)
}

func decodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64, dst any) error {
	body, err := readBody(w, r, maxBytes)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}
