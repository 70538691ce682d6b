package drive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teemow/examcoach/internal/identity"
	"github.com/teemow/examcoach/internal/logging"
)

// StoreKind discriminates the outcome of a session store operation.
type StoreKind int

const (
	// StoreSaved means the session document was written; FileID is set.
	StoreSaved StoreKind = iota
	// StoreLoaded means the session document was read; Content is set.
	StoreLoaded
	// StoreAuthorizationPending means the user must complete consent
	// before any Drive I/O can happen; AuthorizationURL is set. No Drive
	// call was made.
	StoreAuthorizationPending
	// StoreNotFound means no document exists for the session id. Only
	// returned by Load; not an error.
	StoreNotFound
	// StoreTokenFailed means token acquisition failed; Reason is set.
	StoreTokenFailed
	// StoreFailed means a Drive call failed; Reason is set.
	StoreFailed
)

// StoreResult is the typed outcome of Save and Load. It is rendered into
// a user-facing string only at the tool boundary.
type StoreResult struct {
	Kind             StoreKind
	FileID           string
	Content          string
	AuthorizationURL string
	Reason           string
}

// AcquireFunc obtains an access token for the current invocation.
type AcquireFunc func(ctx context.Context) identity.Result

// FilesFunc builds a Drive client around a freshly acquired access token.
type FilesFunc func(ctx context.Context, accessToken string) (Files, error)

// SessionStore reads and writes one markdown document per session id in a
// dedicated Drive folder. Every operation acquires its token first and
// performs no Drive I/O unless the token is ready.
type SessionStore struct {
	acquire    AcquireFunc
	newFiles   FilesFunc
	folderName string
	logger     *slog.Logger
}

// SessionStoreConfig configures a SessionStore.
type SessionStoreConfig struct {
	// FolderName is the Drive folder holding session documents.
	FolderName string

	// Acquire obtains the access token for each operation.
	Acquire AcquireFunc

	// NewFiles defaults to NewClient against the real Drive API.
	NewFiles FilesFunc

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewSessionStore creates a session store.
func NewSessionStore(cfg SessionStoreConfig) *SessionStore {
	newFiles := cfg.NewFiles
	if newFiles == nil {
		newFiles = func(ctx context.Context, accessToken string) (Files, error) {
			return NewClient(ctx, accessToken)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		acquire:    cfg.Acquire,
		newFiles:   newFiles,
		folderName: cfg.FolderName,
		logger:     logging.WithComponent(logger, "drive"),
	}
}

// SessionFilename returns the deterministic document name for a session id.
func SessionFilename(sessionID string) string {
	return fmt.Sprintf("session_%s.md", sessionID)
}

// Save renders the session into a markdown document and writes it to the
// session folder, overwriting an existing document for the same id.
func (s *SessionStore) Save(ctx context.Context, sessionID, summary string) StoreResult {
	files, blocked := s.open(ctx)
	if blocked != nil {
		return *blocked
	}

	folderID, err := s.resolveFolder(ctx, files)
	if err != nil {
		s.logger.Error("folder resolution failed", logging.Session(sessionID), logging.Err(err))
		return StoreResult{Kind: StoreFailed, Reason: err.Error()}
	}

	name := SessionFilename(sessionID)
	content := renderSession(sessionID, summary, time.Now())

	existingID, err := files.FindFile(ctx, folderID, name)
	if err != nil {
		return StoreResult{Kind: StoreFailed, Reason: err.Error()}
	}
	if existingID != "" {
		if err := files.UpdateFile(ctx, existingID, content); err != nil {
			return StoreResult{Kind: StoreFailed, Reason: err.Error()}
		}
		s.logger.Info("session overwritten", logging.Session(sessionID), logging.Operation("save"))
		return StoreResult{Kind: StoreSaved, FileID: existingID}
	}

	fileID, err := files.CreateFile(ctx, folderID, name, content)
	if err != nil {
		return StoreResult{Kind: StoreFailed, Reason: err.Error()}
	}
	s.logger.Info("session saved", logging.Session(sessionID), logging.Operation("save"))
	return StoreResult{Kind: StoreSaved, FileID: fileID}
}

// Load fetches the markdown document for a session id. A session that was
// never saved yields StoreNotFound, not an error.
func (s *SessionStore) Load(ctx context.Context, sessionID string) StoreResult {
	files, blocked := s.open(ctx)
	if blocked != nil {
		return *blocked
	}

	folderID, err := s.resolveFolder(ctx, files)
	if err != nil {
		s.logger.Error("folder resolution failed", logging.Session(sessionID), logging.Err(err))
		return StoreResult{Kind: StoreFailed, Reason: err.Error()}
	}

	fileID, err := files.FindFile(ctx, folderID, SessionFilename(sessionID))
	if err != nil {
		return StoreResult{Kind: StoreFailed, Reason: err.Error()}
	}
	if fileID == "" {
		return StoreResult{Kind: StoreNotFound}
	}

	content, err := files.DownloadFile(ctx, fileID)
	if err != nil {
		return StoreResult{Kind: StoreFailed, Reason: err.Error()}
	}
	s.logger.Info("session loaded", logging.Session(sessionID), logging.Operation("load"))
	return StoreResult{Kind: StoreLoaded, FileID: fileID, Content: content}
}

// open acquires a token and builds the Drive client. A non-nil blocked
// result means the operation must stop before any Drive I/O.
func (s *SessionStore) open(ctx context.Context) (Files, *StoreResult) {
	res := s.acquire(ctx)
	switch res.Outcome {
	case identity.OutcomeConsentRequired:
		return nil, &StoreResult{Kind: StoreAuthorizationPending, AuthorizationURL: res.AuthorizationURL}
	case identity.OutcomeFailed:
		return nil, &StoreResult{Kind: StoreTokenFailed, Reason: res.Reason}
	}

	files, err := s.newFiles(ctx, res.AccessToken)
	if err != nil {
		return nil, &StoreResult{Kind: StoreFailed, Reason: err.Error()}
	}
	return files, nil
}

// resolveFolder finds the session folder by name, creating it on first
// use. Repeated calls converge on the same folder id.
func (s *SessionStore) resolveFolder(ctx context.Context, files Files) (string, error) {
	folderID, err := files.FindFolder(ctx, s.folderName)
	if err != nil {
		return "", err
	}
	if folderID != "" {
		return folderID, nil
	}
	return files.CreateFolder(ctx, s.folderName)
}
