package agent

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/teemow/examcoach/internal/logging"
	"github.com/teemow/examcoach/internal/memory"
)

// Request is one inbound invocation.
type Request struct {
	Prompt    string
	SessionID string
}

// Facade ties the generator, memory and tools together for one
// conversational turn per Invoke call. Safe for concurrent use.
type Facade struct {
	generator    Generator
	memory       *memory.Client
	tools        []Tool
	systemPrompt string
	logger       *slog.Logger
	ingests      sync.WaitGroup
}

// FacadeConfig configures a Facade.
type FacadeConfig struct {
	Generator Generator

	// Memory may be a disabled client; it must not be nil.
	Memory *memory.Client

	// Tools are offered to the generator on every turn.
	Tools []Tool

	// SystemPrompt defaults to DefaultSystemPrompt.
	SystemPrompt string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// NewFacade creates a facade.
func NewFacade(cfg FacadeConfig) *Facade {
	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{
		generator:    cfg.Generator,
		memory:       cfg.Memory,
		tools:        cfg.Tools,
		systemPrompt: systemPrompt,
		logger:       logging.WithComponent(logger, "agent"),
	}
}

// defaultSessionID derives a session id from the current UTC date, so
// turns without an explicit session share one session per day.
func defaultSessionID(now time.Time) string {
	return "session-" + now.UTC().Format("2006-01-02")
}

// Invoke handles one turn: retrieve memory context, generate the
// answer with tools available, then ingest the turn into memory in the
// background. Memory ingestion never delays or fails the response.
func (f *Facade) Invoke(ctx context.Context, req Request) (string, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = "Hello"
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = defaultSessionID(time.Now())
	}

	logger := f.logger.With(logging.Session(sessionID))
	logger.Info("handling invocation", logging.Operation("invoke"))

	augmented := f.memory.Retrieve(ctx, prompt, sessionID) + prompt

	reply, err := f.generator.Generate(ctx, f.systemPrompt, augmented, f.tools)
	if err != nil {
		logger.Error("generation failed", logging.Err(err))
		return "", err
	}
	response := Normalize(reply)

	// The response is complete at this point. Ingestion runs detached
	// from the request context so a client disconnect cannot cancel it.
	ingestCtx := context.WithoutCancel(ctx)
	f.ingests.Add(1)
	go func() {
		defer f.ingests.Done()
		f.memory.Ingest(ingestCtx, sessionID, prompt, response)
	}()

	return response, nil
}

// Wait blocks until all background memory writes have finished. Called
// on shutdown and by tests.
func (f *Facade) Wait() {
	f.ingests.Wait()
}
