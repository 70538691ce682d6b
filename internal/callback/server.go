package callback

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/teemow/examcoach/internal/logging"
)

const (
	// DefaultPort is the default callback listener port.
	DefaultPort = 9090

	// DefaultPath is the default callback path.
	DefaultPath = "/oauth2/callback"
)

const successPage = "<html><body style='font-family:sans-serif;text-align:center;padding:60px'>" +
	"<h1 style='color:green'>&#10003; Authorization complete!</h1>" +
	"<p>You can close this tab and retry your agent request.</p>" +
	"</body></html>"

// Completer binds a pending authorization session to a user identity.
type Completer interface {
	CompleteResourceTokenAuth(ctx context.Context, sessionURI, userID string) error
}

// Server is the local callback receiver. It runs for the lifetime of
// one manual OAuth2 setup session and handles one request at a time.
type Server struct {
	completer  Completer
	userID     string
	path       string
	port       int
	logger     *slog.Logger
	httpServer *http.Server
}

// ServerConfig configures a callback Server.
type ServerConfig struct {
	// Completer performs the session binding call.
	Completer Completer

	// UserID is the identity the completed grant is bound to. Must
	// match the runtime user id used when invoking the agent.
	UserID string

	// Path defaults to DefaultPath.
	Path string

	// Port defaults to DefaultPort.
	Port int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewServer creates a callback server.
func NewServer(cfg ServerConfig) *Server {
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		completer: cfg.Completer,
		userID:    cfg.UserID,
		path:      path,
		port:      port,
		logger:    logging.WithComponent(logger, "callback"),
	}
}

// CallbackURL returns the URL to register as an allowed OAuth2 return
// URL on the workload identity.
func (s *Server) CallbackURL() string {
	return fmt.Sprintf("http://localhost:%d%s", s.port, s.path)
}

// Handler returns the HTTP handler. Access logging is suppressed; only
// structured application logs are emitted.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		respondText(w, http.StatusOK, "ok")
	})
	mux.HandleFunc("GET "+s.path, s.handleCallback)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		respondText(w, http.StatusNotFound, "Not found")
	})
	return mux
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("callback server listening",
		"url", s.CallbackURL(), "user_id", s.userID)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondText(w, http.StatusBadRequest, "Missing session_id query parameter")
		return
	}

	// Query parsing already decodes percent escapes; unescape again in
	// case the provider double-encoded the session URI.
	if decoded, err := url.QueryUnescape(sessionID); err == nil {
		sessionID = decoded
	}

	s.logger.Info("received callback", logging.Session(sessionID))

	if err := s.completer.CompleteResourceTokenAuth(r.Context(), sessionID, s.userID); err != nil {
		s.logger.Error("failed to complete token authorization", logging.Err(err))
		respondText(w, http.StatusInternalServerError, fmt.Sprintf("Error: %v", err))
		return
	}

	s.logger.Info("token authorization completed", logging.Session(sessionID))
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(successPage))
}

func respondText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
