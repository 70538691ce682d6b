package docs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teemow/examcoach/internal/logging"
)

// Tool names exposed by the AWS documentation MCP server.
const (
	searchToolName = "search_documentation"
	readToolName   = "read_documentation"
)

// Caller is the narrow MCP client surface consumed by this package.
type Caller interface {
	CallTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Client calls the AWS documentation MCP server over streamable HTTP.
type Client struct {
	caller Caller
	closer func() error
	logger *slog.Logger
}

// Connect creates a client, starts its transport and performs the MCP
// initialize handshake.
func Connect(ctx context.Context, serverURL, clientVersion string, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c, err := client.NewStreamableHttpClient(serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP client for %s: %w", serverURL, err)
	}
	if err := c.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start MCP transport: %w", err)
	}

	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{
		Name:    "examcoach",
		Version: clientVersion,
	}
	if _, err := c.Initialize(ctx, initRequest); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("MCP initialize failed for %s: %w", serverURL, err)
	}

	logger.Info("connected to documentation MCP server", "url", serverURL)
	return &Client{
		caller: c,
		closer: c.Close,
		logger: logging.WithComponent(logger, "docs"),
	}, nil
}

// NewClient wraps an existing caller. Used by tests and by callers that
// manage the transport themselves.
func NewClient(caller Caller, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		caller: caller,
		logger: logging.WithComponent(logger, "docs"),
	}
}

// Search queries the documentation index and returns the result text.
func (c *Client) Search(ctx context.Context, phrase string, limit int) (string, error) {
	args := map[string]any{"search_phrase": phrase}
	if limit > 0 {
		args["limit"] = limit
	}
	return c.call(ctx, searchToolName, args)
}

// Read fetches one documentation page as markdown.
func (c *Client) Read(ctx context.Context, pageURL string) (string, error) {
	return c.call(ctx, readToolName, map[string]any{"url": pageURL})
}

// Close shuts down the underlying transport if this client owns one.
func (c *Client) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func (c *Client) call(ctx context.Context, name string, args map[string]any) (string, error) {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args

	result, err := c.caller.CallTool(ctx, request)
	if err != nil {
		return "", fmt.Errorf("documentation tool %s failed: %w", name, err)
	}

	text := extractText(result)
	if result.IsError {
		return "", fmt.Errorf("documentation tool %s returned an error: %s", name, text)
	}
	return text, nil
}

// extractText concatenates the text content blocks of a tool result.
func extractText(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}
