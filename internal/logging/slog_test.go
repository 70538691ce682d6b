package logging

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestWithOperation(t *testing.T) {
	logger := slog.Default()
	result := WithOperation(logger, "acquire_token")
	if result == nil {
		t.Error("WithOperation returned nil")
	}
}

func TestWithComponent(t *testing.T) {
	logger := slog.Default()
	result := WithComponent(logger, "callback")
	if result == nil {
		t.Error("WithComponent returned nil")
	}
}

func TestOperationAttr(t *testing.T) {
	attr := Operation("save_session")
	if attr.Key != KeyOperation {
		t.Errorf("Operation key = %q, want %q", attr.Key, KeyOperation)
	}
	if attr.Value.String() != "save_session" {
		t.Errorf("Operation value = %q, want %q", attr.Value.String(), "save_session")
	}
}

func TestToolAttr(t *testing.T) {
	attr := Tool("load_session")
	if attr.Key != KeyTool {
		t.Errorf("Tool key = %q, want %q", attr.Key, KeyTool)
	}
	if attr.Value.String() != "load_session" {
		t.Errorf("Tool value = %q, want %q", attr.Value.String(), "load_session")
	}
}

func TestStatusAttr(t *testing.T) {
	attr := Status(StatusSuccess)
	if attr.Key != KeyStatus {
		t.Errorf("Status key = %q, want %q", attr.Key, KeyStatus)
	}
	if attr.Value.String() != StatusSuccess {
		t.Errorf("Status value = %q, want %q", attr.Value.String(), StatusSuccess)
	}
}

func TestErrAttr(t *testing.T) {
	err := errors.New("token exchange failed")
	attr := Err(err)
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "token exchange failed" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "token exchange failed")
	}
}

func TestErrAttrNil(t *testing.T) {
	attr := Err(nil)
	// Empty group attributes are omitted by slog handlers.
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty", attr.Key)
	}
}

func TestAnonymizeSession(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		wantEmpty bool
	}{
		{name: "empty session", sessionID: "", wantEmpty: true},
		{name: "simple session", sessionID: "s1", wantEmpty: false},
		{name: "uuid session", sessionID: "9f2b7a1c-5e3d-4d6f-8a90-1b2c3d4e5f60", wantEmpty: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnonymizeSession(tt.sessionID)
			if tt.wantEmpty {
				if got != "" {
					t.Errorf("AnonymizeSession(%q) = %q, want empty", tt.sessionID, got)
				}
				return
			}
			if !strings.HasPrefix(got, "session:") {
				t.Errorf("AnonymizeSession(%q) = %q, want session: prefix", tt.sessionID, got)
			}
			if strings.Contains(got, tt.sessionID) {
				t.Errorf("AnonymizeSession(%q) leaked the raw id: %q", tt.sessionID, got)
			}
		})
	}
}

func TestAnonymizeSessionStable(t *testing.T) {
	a := AnonymizeSession("session-2026-01-01")
	b := AnonymizeSession("session-2026-01-01")
	if a != b {
		t.Errorf("AnonymizeSession not stable: %q vs %q", a, b)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty token", token: "", want: "<empty>"},
		{name: "short token", token: "abc", want: "[token:3 chars]"},
		{name: "long token", token: strings.Repeat("x", 128), want: "[token:128 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.token); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}
