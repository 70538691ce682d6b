// Package instrumentation provides OpenTelemetry metrics and tracing
// for the agent runtime. Metrics are exposed through a Prometheus
// endpoint; traces are exported over OTLP when configured.
package instrumentation
