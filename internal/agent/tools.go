package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/teemow/examcoach/internal/docs"
	"github.com/teemow/examcoach/internal/drive"
)

// ToolRecorder observes one tool execution for metrics.
type ToolRecorder func(ctx context.Context, tool string, duration time.Duration)

// InstrumentTools wraps each tool so its executions are reported to the
// recorder. A nil recorder returns the tools unchanged.
func InstrumentTools(tools []Tool, record ToolRecorder) []Tool {
	if record == nil {
		return tools
	}
	wrapped := make([]Tool, len(tools))
	for i, tool := range tools {
		run := tool.Run
		name := tool.Name
		tool.Run = func(ctx context.Context, args map[string]any) string {
			start := time.Now()
			output := run(ctx, args)
			record(ctx, name, time.Since(start))
			return output
		}
		wrapped[i] = tool
	}
	return wrapped
}

// stringArg extracts a string argument, returning "" when absent or of
// the wrong type.
func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

// intArg extracts an integer argument. JSON numbers decode as float64.
func intArg(args map[string]any, key string) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	}
	return 0
}

// SessionTools returns the Google Drive save and load tools backed by
// the given session store.
func SessionTools(store *drive.SessionStore) []Tool {
	return []Tool{
		{
			Name: "save_session",
			Description: "Save the current study session to Google Drive. " +
				"Stores a markdown file with the session summary in a dedicated Google Drive folder. " +
				"If the user has not yet completed the Google OAuth2 consent flow, returns the " +
				"authorization URL that the user must open in their browser.",
			Schema: map[string]any{
				"session_id": map[string]any{
					"type":        "string",
					"description": "Unique identifier for the session",
				},
				"summary": map[string]any{
					"type":        "string",
					"description": "A text summary of the session content to save",
				},
			},
			Required: []string{"session_id", "summary"},
			Run: func(ctx context.Context, args map[string]any) string {
				sessionID := stringArg(args, "session_id")
				result := store.Save(ctx, sessionID, stringArg(args, "summary"))
				return renderSaveResult(sessionID, result)
			},
		},
		{
			Name: "load_session",
			Description: "Load a previously saved study session from Google Drive. " +
				"Retrieves the session markdown file from the dedicated Google Drive folder. " +
				"If the user has not yet completed the Google OAuth2 consent flow, returns the " +
				"authorization URL that the user must open in their browser.",
			Schema: map[string]any{
				"session_id": map[string]any{
					"type":        "string",
					"description": "Unique identifier for the session to load",
				},
			},
			Required: []string{"session_id"},
			Run: func(ctx context.Context, args map[string]any) string {
				sessionID := stringArg(args, "session_id")
				return renderLoadResult(sessionID, store.Load(ctx, sessionID))
			},
		},
	}
}

// DocsTools returns the AWS documentation search and read tools.
func DocsTools(client *docs.Client) []Tool {
	return []Tool{
		{
			Name: "search_documentation",
			Description: "Search the official AWS documentation for a phrase. " +
				"Returns a ranked list of matching pages with their URLs.",
			Schema: map[string]any{
				"search_phrase": map[string]any{
					"type":        "string",
					"description": "The phrase to search for",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results to return (optional)",
				},
			},
			Required: []string{"search_phrase"},
			Run: func(ctx context.Context, args map[string]any) string {
				text, err := client.Search(ctx, stringArg(args, "search_phrase"), intArg(args, "limit"))
				if err != nil {
					return fmt.Sprintf("Error searching AWS documentation: %v", err)
				}
				return text
			},
		},
		{
			Name: "read_documentation",
			Description: "Read one official AWS documentation page as markdown. " +
				"Use a URL returned by search_documentation.",
			Schema: map[string]any{
				"url": map[string]any{
					"type":        "string",
					"description": "URL of the documentation page to read",
				},
			},
			Required: []string{"url"},
			Run: func(ctx context.Context, args map[string]any) string {
				text, err := client.Read(ctx, stringArg(args, "url"))
				if err != nil {
					return fmt.Sprintf("Error reading AWS documentation: %v", err)
				}
				return text
			},
		},
	}
}

func renderSaveResult(sessionID string, result drive.StoreResult) string {
	switch result.Kind {
	case drive.StoreAuthorizationPending:
		return fmt.Sprintf("AUTHORIZATION_REQUIRED: To save to Google Drive, please open this URL "+
			"in your browser and complete the Google consent flow, then ask me to "+
			"save again:\n\n%s", result.AuthorizationURL)
	case drive.StoreTokenFailed:
		return fmt.Sprintf("Error getting Google token: %s", result.Reason)
	case drive.StoreSaved:
		return fmt.Sprintf("Session saved to Google Drive: %s (file ID: %s)",
			drive.SessionFilename(sessionID), result.FileID)
	default:
		return fmt.Sprintf("Error saving session to Google Drive: %s", result.Reason)
	}
}

func renderLoadResult(sessionID string, result drive.StoreResult) string {
	switch result.Kind {
	case drive.StoreAuthorizationPending:
		return fmt.Sprintf("AUTHORIZATION_REQUIRED: To load from Google Drive, please open this URL "+
			"in your browser and complete the Google consent flow, then ask me to "+
			"load again:\n\n%s", result.AuthorizationURL)
	case drive.StoreTokenFailed:
		return fmt.Sprintf("Error getting Google token: %s", result.Reason)
	case drive.StoreNotFound:
		return fmt.Sprintf("No session found on Google Drive for session_id: %s", sessionID)
	case drive.StoreLoaded:
		return result.Content
	default:
		return fmt.Sprintf("Error loading session from Google Drive: %s", result.Reason)
	}
}
