// Package httpapi serves the phone assistant over HTTP for voice gateways
// and webhooks that cannot speak MCP.
//
// Routes:
//   - POST /api/agent/message           run one utterance through the agent
//   - GET  /api/agent/sessions/{caller} inspect a caller's session
//   - GET  /api/agent/calls/{caller}    a caller's journal history
//   - GET  /health                      liveness
//   - GET  /metrics                     Prometheus scrape endpoint
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/HendryAvila/hostline/internal/dialogue"
	"github.com/HendryAvila/hostline/internal/journal"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request id in both directions.
const RequestIDHeader = "X-Request-ID"

const defaultHistoryLimit = 20

// CallLog reads caller history from the journal.
type CallLog interface {
	History(ctx context.Context, callerKey string, limit int) (*journal.History, error)
}

// RequestObserver records request counts and latency.
type RequestObserver interface {
	ObserveRequest(route, method string, code int, d time.Duration)
	Handler() http.Handler
}

// Server holds the HTTP API dependencies.
type Server struct {
	agent   *dialogue.Agent
	calls   CallLog
	metrics RequestObserver
	log     zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithCallLog enables GET /api/agent/calls/{caller}.
func WithCallLog(c CallLog) Option { return func(s *Server) { s.calls = c } }

// WithMetrics enables request metrics and GET /metrics.
func WithMetrics(m RequestObserver) Option { return func(s *Server) { s.metrics = m } }

// New creates a Server.
func New(agent *dialogue.Agent, log zerolog.Logger, opts ...Option) *Server {
	s := &Server{agent: agent, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.instrument)

	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/api/agent/message", s.handleMessage).Methods("POST")
	router.HandleFunc("/api/agent/sessions/{caller}", s.handleSession).Methods("GET")
	router.HandleFunc("/api/agent/calls/{caller}", s.handleCalls).Methods("GET")
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpapi: listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	httpServer := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi: serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutdown signal received, gracefully stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("httpapi: shutdown: %w", err)
	}
	s.log.Info().Msg("shutdown complete")
	return nil
}

// --- Middleware ---

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument tags every request with an id, logs it and records metrics
// under the route template so caller ids never become label values.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, r.Method, rec.code, elapsed)
		}
		s.log.Debug().
			Str("request_id", id).
			Str("method", r.Method).
			Str("route", route).
			Int("status", rec.code).
			Dur("duration", elapsed).
			Msg("request")
	})
}

// --- Handlers ---

type envelope struct {
	Data any `json:"data"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type messageRequest struct {
	Text          string `json:"text"`
	CustomerPhone string `json:"customerPhone"`
}

type sessionView struct {
	CallerKey string            `json:"callerKey"`
	Active    bool              `json:"active"`
	Session   *dialogue.Session `json:"session"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body", Message: err.Error()})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "text is required", Message: "Please provide a text message"})
		return
	}

	res := s.agent.HandleMessage(r.Context(), req.Text, req.CustomerPhone)
	writeJSON(w, http.StatusOK, envelope{Data: res})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	key := dialogue.CallerKey(mux.Vars(r)["caller"])
	view := sessionView{CallerKey: key}
	if sess, ok := s.agent.Sessions().Get(key); ok {
		view.Active = sess.Active()
		view.Session = &sess
	}
	writeJSON(w, http.StatusOK, envelope{Data: view})
}

func (s *Server) handleCalls(w http.ResponseWriter, r *http.Request) {
	if s.calls == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "journal disabled"})
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}

	key := dialogue.CallerKey(mux.Vars(r)["caller"])
	h, err := s.calls.History(r.Context(), key, limit)
	if err != nil {
		s.log.Error().Err(err).Str("caller", key).Msg("reading call history")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to read call history"})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: h})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
