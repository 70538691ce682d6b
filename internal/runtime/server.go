package runtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/examcoach/internal/agent"
	"github.com/teemow/examcoach/internal/instrumentation"
	"github.com/teemow/examcoach/internal/logging"
)

const (
	// DefaultAddr is the address mandated by the AgentCore Runtime
	// contract.
	DefaultAddr = ":8080"

	// DefaultReadHeaderTimeout is the read header timeout for the
	// invocation server.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout is the idle timeout for the invocation server.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second
)

// invocationRequest is the payload of POST /invocations.
type invocationRequest struct {
	Prompt    string `json:"prompt"`
	SessionID string `json:"session_id"`
}

// invocationResponse is the success payload of POST /invocations.
type invocationResponse struct {
	Result string `json:"result"`
}

// errorResponse is the failure payload of POST /invocations.
type errorResponse struct {
	Error string `json:"error"`
}

// Server serves the AgentCore Runtime contract for one facade.
type Server struct {
	facade     *agent.Facade
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
	httpServer *http.Server
	addr       string
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Facade *agent.Facade

	// Addr defaults to DefaultAddr.
	Addr string

	// Metrics may be nil; invocations are then not recorded.
	Metrics *instrumentation.Metrics

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewServer creates a runtime server.
func NewServer(cfg ServerConfig) *Server {
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		facade:  cfg.Facade,
		metrics: metrics,
		logger:  logging.WithComponent(logger, "runtime"),
		addr:    addr,
	}
}

// Handler returns the HTTP handler serving the runtime contract.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /invocations", s.handleInvocation)
	mux.HandleFunc("GET /ping", s.handlePing)
	return mux
}

// Start serves until the listener fails or Shutdown is called. Call in
// a goroutine for non-blocking operation.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
	}

	s.logger.Info("starting runtime server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server and waits for background
// memory writes to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down runtime server")
	err := s.httpServer.Shutdown(ctx)
	s.facade.Wait()
	return err
}

func (s *Server) handleInvocation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req invocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("invalid invocation payload", logging.Err(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	ctx := r.Context()
	if token := r.Header.Get(WorkloadAccessTokenHeader); token != "" {
		ctx = WithWorkloadToken(ctx, token)
	}

	result, err := s.facade.Invoke(ctx, agent.Request{
		Prompt:    req.Prompt,
		SessionID: req.SessionID,
	})
	if err != nil {
		s.metrics.RecordInvocation(ctx, logging.StatusError, time.Since(start))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	s.metrics.RecordInvocation(ctx, logging.StatusSuccess, time.Since(start))
	writeJSON(w, http.StatusOK, invocationResponse{Result: result})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
