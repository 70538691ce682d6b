package drive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	// Scope is the OAuth2 scope requested for session storage. drive.file
	// grants access only to files this app created.
	Scope = "https://www.googleapis.com/auth/drive.file"

	// FolderMimeType is the MIME type for Google Drive folders.
	FolderMimeType = "application/vnd.google-apps.folder"

	// markdownMimeType is the MIME type used for session documents.
	markdownMimeType = "text/markdown"
)

// Files is the narrow Drive surface the session store needs. Client
// implements it against the real API; tests substitute fakes.
type Files interface {
	// FindFolder returns the id of a non-trashed folder with the given
	// name, or an empty string when none exists.
	FindFolder(ctx context.Context, name string) (string, error)

	// CreateFolder creates a folder and returns its id.
	CreateFolder(ctx context.Context, name string) (string, error)

	// FindFile returns the id of a non-trashed file with the given name
	// inside the folder, or an empty string when none exists.
	FindFile(ctx context.Context, folderID, name string) (string, error)

	// CreateFile creates a markdown file inside the folder and returns
	// its id.
	CreateFile(ctx context.Context, folderID, name, content string) (string, error)

	// UpdateFile overwrites the content of an existing file in place.
	UpdateFile(ctx context.Context, fileID, content string) error

	// DownloadFile returns the raw content of a file.
	DownloadFile(ctx context.Context, fileID string) (string, error)
}

// Client wraps the Google Drive API service with a single short-lived
// access token. Instances are cheap and scoped to one tool invocation.
type Client struct {
	service *drive.Service
}

// NewClient creates a Drive client authenticated with the given OAuth2
// access token. The token is used as-is; refresh is the identity
// service's concern, not ours.
func NewClient(ctx context.Context, accessToken string) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
	service, err := drive.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}
	return &Client{service: service}, nil
}

// FindFolder looks up a non-trashed folder by exact name.
func (c *Client) FindFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("name='%s' and mimeType='%s' and trashed=false",
		escapeQueryTerm(name), FolderMimeType)

	list, err := c.service.Files.List().
		Context(ctx).
		Q(query).
		PageSize(1).
		Fields("files(id, name)").
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for folder %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// CreateFolder creates a folder at the Drive root.
func (c *Client) CreateFolder(ctx context.Context, name string) (string, error) {
	folder, err := c.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: FolderMimeType,
	}).
		Context(ctx).
		Fields("id").
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", name, err)
	}
	return folder.Id, nil
}

// FindFile looks up a non-trashed file by exact name within a folder.
func (c *Client) FindFile(ctx context.Context, folderID, name string) (string, error) {
	query := fmt.Sprintf("name='%s' and '%s' in parents and trashed=false",
		escapeQueryTerm(name), escapeQueryTerm(folderID))

	list, err := c.service.Files.List().
		Context(ctx).
		Q(query).
		PageSize(1).
		Fields("files(id)").
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to search for file %s: %w", name, err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// CreateFile creates a markdown file inside the folder.
func (c *Client) CreateFile(ctx context.Context, folderID, name, content string) (string, error) {
	file, err := c.service.Files.Create(&drive.File{
		Name:    name,
		Parents: []string{folderID},
	}).
		Context(ctx).
		Media(strings.NewReader(content), googleapi.ContentType(markdownMimeType)).
		Fields("id").
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", name, err)
	}
	return file.Id, nil
}

// UpdateFile overwrites the content of an existing file in place.
func (c *Client) UpdateFile(ctx context.Context, fileID, content string) error {
	_, err := c.service.Files.Update(fileID, &drive.File{}).
		Context(ctx).
		Media(strings.NewReader(content), googleapi.ContentType(markdownMimeType)).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update file %s: %w", fileID, err)
	}
	return nil
}

// DownloadFile fetches the raw content of a file.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (string, error) {
	resp, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return string(content), nil
}

// escapeQueryTerm escapes a value for embedding in a Drive query string.
// Backslashes first, then single quotes.
func escapeQueryTerm(term string) string {
	escaped := strings.ReplaceAll(term, `\`, `\\`)
	return strings.ReplaceAll(escaped, `'`, `\'`)
}

// Interface guard.
var _ Files = (*Client)(nil)
