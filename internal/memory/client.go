package memory

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/teemow/examcoach/internal/logging"
)

// Record is one matching memory record returned by retrieval.
type Record struct {
	Text string
}

// Turn is one user/assistant exchange submitted to memory.
type Turn struct {
	UserMessage      string
	AssistantMessage string
	At               time.Time
}

// API is the narrow surface of the AgentCore Memory data plane consumed
// by this package.
type API interface {
	// RetrieveRecords performs a semantic search over the memory
	// namespace and returns the top matching records.
	RetrieveRecords(ctx context.Context, query string, topK int) ([]Record, error)

	// CreateEvent appends one conversational turn to memory.
	CreateEvent(ctx context.Context, actorID, sessionID string, turn Turn) error
}

// Client wraps the memory API with the agent's actor identity and
// formatting rules. A Client with no API configured is disabled: Retrieve
// returns an empty context and Ingest is a no-op.
type Client struct {
	api     API
	actorID string
	topK    int
	logger  *slog.Logger
}

// ClientConfig configures a memory Client.
type ClientConfig struct {
	// API is the memory backend; nil disables memory entirely.
	API API

	// ActorID tags ingested turns with the acting user.
	ActorID string

	// TopK is the number of records fetched per retrieval.
	TopK int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewClient creates a memory client.
func NewClient(cfg ClientConfig) *Client {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:     cfg.API,
		actorID: cfg.ActorID,
		topK:    topK,
		logger:  logging.WithComponent(logger, "memory"),
	}
}

// Enabled reports whether a memory backend is configured.
func (c *Client) Enabled() bool {
	return c.api != nil
}

// Retrieve returns a formatted memory context block for the query, or an
// empty string when memory is disabled, nothing matches, or retrieval
// fails. Failures never propagate.
func (c *Client) Retrieve(ctx context.Context, query, sessionID string) string {
	if c.api == nil {
		return ""
	}

	records, err := c.api.RetrieveRecords(ctx, query, c.topK)
	if err != nil {
		c.logger.Error("memory retrieval failed, continuing without context",
			logging.Session(sessionID), logging.Err(err))
		return ""
	}

	lines := make([]string, 0, len(records))
	for _, r := range records {
		if r.Text != "" {
			lines = append(lines, r.Text)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return "<memory>\n- " + strings.Join(lines, "\n- ") + "\n</memory>\n\n"
}

// Ingest appends one conversational turn to memory. Errors are logged and
// swallowed: by the time ingestion runs the response has already been
// produced, so nothing downstream may fail because of it.
func (c *Client) Ingest(ctx context.Context, sessionID, userMessage, assistantMessage string) {
	if c.api == nil {
		return
	}

	turn := Turn{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		At:               time.Now().UTC(),
	}
	if err := c.api.CreateEvent(ctx, c.actorID, sessionID, turn); err != nil {
		c.logger.Error("memory ingestion failed, response already sent",
			logging.Session(sessionID), logging.Err(err))
	}
}
