package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProviderDisabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to report disabled")
	}
	if provider.Metrics() == nil {
		t.Fatal("expected no-op metrics recorder, got nil")
	}

	// Recording on the no-op recorder must not panic.
	provider.Metrics().RecordInvocation(context.Background(), "success", time.Second)

	if provider.Tracer("test") == nil {
		t.Error("expected no-op tracer, got nil")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestNewProviderPrometheus(t *testing.T) {
	cfg := Config{
		Enabled:         true,
		ServiceName:     "examcoach-test",
		ServiceVersion:  "test",
		TracingExporter: ExporterNone,
	}

	provider, err := NewProvider(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Errorf("unexpected shutdown error: %v", err)
		}
	}()

	if !provider.Enabled() {
		t.Error("expected provider to report enabled")
	}
	if provider.Metrics() == nil {
		t.Fatal("expected metrics recorder")
	}

	provider.Metrics().RecordInvocation(context.Background(), "success", time.Second)
	provider.Metrics().RecordTokenExchange(context.Background(), "ready")
}
