package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Tracing exporter names.
const (
	ExporterNone = "none"
	ExporterOTLP = "otlp"
)

// Config holds instrumentation configuration.
type Config struct {
	// Enabled turns the whole subsystem on or off.
	Enabled bool

	// ServiceName identifies this service in metrics and traces.
	ServiceName string

	// ServiceVersion is the build version reported with telemetry.
	ServiceVersion string

	// TracingExporter selects the trace exporter ("none" or "otlp").
	TracingExporter string

	// OTLPEndpoint is the OTLP collector endpoint, required for the
	// otlp tracing exporter.
	OTLPEndpoint string

	// OTLPInsecure disables TLS on the OTLP connection.
	OTLPInsecure bool

	// TraceSamplingRate is the parent-based sampling ratio in [0, 1].
	TraceSamplingRate float64
}

// DefaultConfig returns a configuration populated from standard OTEL
// environment variables.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		ServiceName:       getEnvOrDefault("OTEL_SERVICE_NAME", "examcoach"),
		ServiceVersion:    "dev",
		TracingExporter:   getEnvOrDefault("OTEL_TRACES_EXPORTER", ExporterNone),
		OTLPEndpoint:      os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTLPInsecure:      getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate: getEnvFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 0.1),
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.TracingExporter {
	case ExporterNone:
	case ExporterOTLP:
		if c.OTLPEndpoint == "" {
			return fmt.Errorf("OTLP endpoint is required for the otlp tracing exporter; set OTEL_EXPORTER_OTLP_ENDPOINT")
		}
	default:
		return fmt.Errorf("unsupported tracing exporter: %s", c.TracingExporter)
	}

	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be in [0, 1], got %v", c.TraceSamplingRate)
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}
