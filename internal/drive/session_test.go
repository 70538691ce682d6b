package drive

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/teemow/examcoach/internal/identity"
)

// fakeFiles is an in-memory Files implementation that counts API calls.
type fakeFiles struct {
	folders map[string]string            // name -> id
	files   map[string]map[string]string // folderID -> name -> id
	content map[string]string            // fileID -> content

	createFolderCalls int
	createFileCalls   int
	updateFileCalls   int
	nextID            int

	failWith error
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		folders: make(map[string]string),
		files:   make(map[string]map[string]string),
		content: make(map[string]string),
	}
}

func (f *fakeFiles) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeFiles) FindFolder(_ context.Context, name string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	return f.folders[name], nil
}

func (f *fakeFiles) CreateFolder(_ context.Context, name string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	f.createFolderCalls++
	id := f.id("folder")
	f.folders[name] = id
	f.files[id] = make(map[string]string)
	return id, nil
}

func (f *fakeFiles) FindFile(_ context.Context, folderID, name string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	return f.files[folderID][name], nil
}

func (f *fakeFiles) CreateFile(_ context.Context, folderID, name, content string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	f.createFileCalls++
	id := f.id("file")
	if f.files[folderID] == nil {
		f.files[folderID] = make(map[string]string)
	}
	f.files[folderID][name] = id
	f.content[id] = content
	return id, nil
}

func (f *fakeFiles) UpdateFile(_ context.Context, fileID, content string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updateFileCalls++
	f.content[fileID] = content
	return nil
}

func (f *fakeFiles) DownloadFile(_ context.Context, fileID string) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	return f.content[fileID], nil
}

func newTestStore(files *fakeFiles, acquire AcquireFunc) *SessionStore {
	return NewSessionStore(SessionStoreConfig{
		FolderName: "AgentCoreSessions",
		Acquire:    acquire,
		NewFiles: func(context.Context, string) (Files, error) {
			return files, nil
		},
	})
}

func acquireReady() AcquireFunc {
	return func(context.Context) identity.Result {
		return identity.Result{Outcome: identity.OutcomeReady, AccessToken: "tok"}
	}
}

func TestSaveCreatesFolderAndFile(t *testing.T) {
	files := newFakeFiles()
	store := newTestStore(files, acquireReady())

	res := store.Save(context.Background(), "s1", "topic A")

	if res.Kind != StoreSaved {
		t.Fatalf("Kind = %v, want StoreSaved (reason: %s)", res.Kind, res.Reason)
	}
	if res.FileID == "" {
		t.Error("FileID is empty")
	}
	if files.createFolderCalls != 1 {
		t.Errorf("createFolderCalls = %d, want 1", files.createFolderCalls)
	}
	if files.createFileCalls != 1 {
		t.Errorf("createFileCalls = %d, want 1", files.createFileCalls)
	}
}

func TestFolderResolutionIdempotent(t *testing.T) {
	files := newFakeFiles()
	store := newTestStore(files, acquireReady())

	first := store.Save(context.Background(), "s1", "one")
	second := store.Save(context.Background(), "s2", "two")

	if first.Kind != StoreSaved || second.Kind != StoreSaved {
		t.Fatalf("kinds = %v, %v, want StoreSaved", first.Kind, second.Kind)
	}
	if files.createFolderCalls != 1 {
		t.Errorf("createFolderCalls = %d, want at most one create across calls", files.createFolderCalls)
	}
}

func TestSaveOverwritesExistingDocument(t *testing.T) {
	files := newFakeFiles()
	store := newTestStore(files, acquireReady())

	first := store.Save(context.Background(), "s1", "first summary")
	second := store.Save(context.Background(), "s1", "second summary")

	if second.Kind != StoreSaved {
		t.Fatalf("Kind = %v, want StoreSaved", second.Kind)
	}
	if first.FileID != second.FileID {
		t.Errorf("file ids differ: %q vs %q, want overwrite in place", first.FileID, second.FileID)
	}
	if files.createFileCalls != 1 {
		t.Errorf("createFileCalls = %d, want 1 (second save must update)", files.createFileCalls)
	}
	if files.updateFileCalls != 1 {
		t.Errorf("updateFileCalls = %d, want 1", files.updateFileCalls)
	}
	content := files.content[second.FileID]
	if !strings.Contains(content, "second summary") {
		t.Errorf("content = %q, want second summary", content)
	}
	if strings.Contains(content, "first summary") {
		t.Errorf("content = %q, still contains first summary", content)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	files := newFakeFiles()
	store := newTestStore(files, acquireReady())

	if res := store.Save(context.Background(), "s1", "topic A"); res.Kind != StoreSaved {
		t.Fatalf("Save Kind = %v, want StoreSaved", res.Kind)
	}

	res := store.Load(context.Background(), "s1")
	if res.Kind != StoreLoaded {
		t.Fatalf("Load Kind = %v, want StoreLoaded (reason: %s)", res.Kind, res.Reason)
	}
	if !strings.Contains(res.Content, "topic A") {
		t.Errorf("Content = %q, want topic A", res.Content)
	}
	if !strings.Contains(res.Content, "s1") {
		t.Errorf("Content = %q, want session marker s1", res.Content)
	}
}

func TestLoadMissingSession(t *testing.T) {
	files := newFakeFiles()
	store := newTestStore(files, acquireReady())

	res := store.Load(context.Background(), "does-not-exist")

	if res.Kind != StoreNotFound {
		t.Errorf("Kind = %v, want StoreNotFound", res.Kind)
	}
	if res.Reason != "" {
		t.Errorf("Reason = %q, want empty (not found is not an error)", res.Reason)
	}
}

func TestConsentRequiredSkipsDriveIO(t *testing.T) {
	files := newFakeFiles()
	opened := false
	store := NewSessionStore(SessionStoreConfig{
		FolderName: "AgentCoreSessions",
		Acquire: func(context.Context) identity.Result {
			return identity.Result{
				Outcome:          identity.OutcomeConsentRequired,
				AuthorizationURL: "https://consent.example/u",
			}
		},
		NewFiles: func(context.Context, string) (Files, error) {
			opened = true
			return files, nil
		},
	})

	res := store.Save(context.Background(), "s1", "summary")

	if res.Kind != StoreAuthorizationPending {
		t.Fatalf("Kind = %v, want StoreAuthorizationPending", res.Kind)
	}
	if res.AuthorizationURL != "https://consent.example/u" {
		t.Errorf("AuthorizationURL = %q", res.AuthorizationURL)
	}
	if opened {
		t.Error("Drive client was opened despite pending consent")
	}
}

func TestTokenFailureSkipsDriveIO(t *testing.T) {
	files := newFakeFiles()
	store := newTestStore(files, func(context.Context) identity.Result {
		return identity.Result{Outcome: identity.OutcomeFailed, Reason: "session failed"}
	})

	res := store.Load(context.Background(), "s1")

	if res.Kind != StoreTokenFailed {
		t.Fatalf("Kind = %v, want StoreTokenFailed", res.Kind)
	}
	if res.Reason != "session failed" {
		t.Errorf("Reason = %q, want session failed", res.Reason)
	}
	if files.createFolderCalls != 0 {
		t.Error("Drive I/O attempted despite token failure")
	}
}

func TestDriveErrorsConvertToResult(t *testing.T) {
	files := newFakeFiles()
	files.failWith = errors.New("googleapi: Error 500: backend error")
	store := newTestStore(files, acquireReady())

	res := store.Save(context.Background(), "s1", "summary")

	if res.Kind != StoreFailed {
		t.Fatalf("Kind = %v, want StoreFailed", res.Kind)
	}
	if !strings.Contains(res.Reason, "backend error") {
		t.Errorf("Reason = %q, want underlying error message", res.Reason)
	}
}

func TestSessionFilename(t *testing.T) {
	if got := SessionFilename("s1"); got != "session_s1.md" {
		t.Errorf("SessionFilename = %q, want session_s1.md", got)
	}
}
