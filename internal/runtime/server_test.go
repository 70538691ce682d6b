package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/teemow/examcoach/internal/agent"
	"github.com/teemow/examcoach/internal/memory"
)

type fakeGenerator struct {
	reply     agent.Reply
	err       error
	lastCtx   context.Context
	lastInput string
}

func (f *fakeGenerator) Generate(ctx context.Context, systemPrompt, userMessage string, tools []agent.Tool) (agent.Reply, error) {
	f.lastCtx = ctx
	f.lastInput = userMessage
	if f.err != nil {
		return agent.Reply{}, f.err
	}
	return f.reply, nil
}

func newTestServer(gen agent.Generator) *Server {
	facade := agent.NewFacade(agent.FacadeConfig{
		Generator: gen,
		Memory:    memory.NewClient(memory.ClientConfig{}),
	})
	return NewServer(ServerConfig{Facade: facade})
}

func TestInvocationEndpoint(t *testing.T) {
	gen := &fakeGenerator{reply: agent.TextReply("the answer")}
	server := newTestServer(gen)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/invocations", "application/json",
		strings.NewReader(`{"prompt":"what is a VPC?","session_id":"s1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var body invocationResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Result != "the answer" {
		t.Errorf("expected result %q, got %q", "the answer", body.Result)
	}
	if gen.lastInput != "what is a VPC?" {
		t.Errorf("expected prompt passed through, got %q", gen.lastInput)
	}
}

func TestInvocationWorkloadTokenInContext(t *testing.T) {
	gen := &fakeGenerator{reply: agent.TextReply("ok")}
	server := newTestServer(gen)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/invocations",
		strings.NewReader(`{"prompt":"hi"}`))
	req.Header.Set(WorkloadAccessTokenHeader, "workload-token-123")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got := WorkloadTokenFromContext(gen.lastCtx); got != "workload-token-123" {
		t.Errorf("expected workload token in generator context, got %q", got)
	}
}

func TestInvocationWithoutToken(t *testing.T) {
	gen := &fakeGenerator{reply: agent.TextReply("ok")}
	server := newTestServer(gen)
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/invocations", "application/json",
		strings.NewReader(`{"prompt":"hi"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if got := WorkloadTokenFromContext(gen.lastCtx); got != "" {
		t.Errorf("expected empty workload token, got %q", got)
	}
}

func TestInvocationInvalidPayload(t *testing.T) {
	server := newTestServer(&fakeGenerator{reply: agent.TextReply("ok")})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/invocations", "application/json",
		strings.NewReader(`{not json`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", resp.StatusCode)
	}
}

func TestInvocationGenerationError(t *testing.T) {
	server := newTestServer(&fakeGenerator{err: errors.New("model unavailable")})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/invocations", "application/json",
		strings.NewReader(`{"prompt":"hi"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if !strings.Contains(body.Error, "model unavailable") {
		t.Errorf("expected error message in body, got %q", body.Error)
	}
}

func TestPingEndpoint(t *testing.T) {
	server := newTestServer(&fakeGenerator{reply: agent.TextReply("ok")})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["status"] != "Healthy" {
		t.Errorf("expected status Healthy, got %q", body["status"])
	}
}

func TestUnknownRoute(t *testing.T) {
	server := newTestServer(&fakeGenerator{reply: agent.TextReply("ok")})
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/other")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", resp.StatusCode)
	}
}

func TestWorkloadTokenContext(t *testing.T) {
	ctx := context.Background()
	if got := WorkloadTokenFromContext(ctx); got != "" {
		t.Errorf("expected empty token on fresh context, got %q", got)
	}

	ctx = WithWorkloadToken(ctx, "tok")
	if got := WorkloadTokenFromContext(ctx); got != "tok" {
		t.Errorf("expected tok, got %q", got)
	}
}
