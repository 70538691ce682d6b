package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys.
const (
	attrStatus  = "status"
	attrTool    = "tool"
	attrOutcome = "outcome"
)

// Metrics provides methods for recording observability metrics. The
// zero value is a no-op recorder.
type Metrics struct {
	invocationsTotal     metric.Int64Counter
	invocationDuration   metric.Float64Histogram
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram
	tokenExchangesTotal  metric.Int64Counter
}

// NewMetrics creates a Metrics instance with all instruments registered.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.invocationsTotal, err = meter.Int64Counter(
		"agent_invocations_total",
		metric.WithDescription("Total number of agent invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_invocations_total counter: %w", err)
	}

	m.invocationDuration, err = meter.Float64Histogram(
		"agent_invocation_duration_seconds",
		metric.WithDescription("Agent invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 120.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_invocation_duration_seconds histogram: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"agent_tool_invocations_total",
		metric.WithDescription("Total number of tool invocations requested by the model"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"agent_tool_duration_seconds",
		metric.WithDescription("Tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent_tool_duration_seconds histogram: %w", err)
	}

	m.tokenExchangesTotal, err = meter.Int64Counter(
		"oauth_token_exchanges_total",
		metric.WithDescription("Total number of OAuth2 token exchange attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth_token_exchanges_total counter: %w", err)
	}

	return m, nil
}

// RecordInvocation records one agent invocation with its status
// ("success" or "error") and duration.
func (m *Metrics) RecordInvocation(ctx context.Context, status string, duration time.Duration) {
	if m.invocationsTotal == nil || m.invocationDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrStatus, status),
	}

	m.invocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.invocationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolInvocation records one tool execution.
func (m *Metrics) RecordToolInvocation(ctx context.Context, tool string, duration time.Duration) {
	if m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, tool),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTokenExchange records one token exchange attempt with its
// outcome ("ready", "consent_required" or "failed").
func (m *Metrics) RecordTokenExchange(ctx context.Context, outcome string) {
	if m.tokenExchangesTotal == nil {
		return
	}

	m.tokenExchangesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrOutcome, outcome),
	))
}
