package config

import (
	"fmt"
	"time"

	"github.com/ajitpratap0/dataconnector/pkg/logger"
)

// Config is the connector-wide configuration. It is passed explicitly to
// connector.New; nothing in this module keeps a process-wide instance.
type Config struct {
	// Name identifies the connector instance in logs and traces
	Name string `yaml:"name" json:"name"`

	// Logging configures the zap logger built by the connector
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Observability settings for metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`

	// Timeouts bound network loaders; file loaders ignore them
	Timeouts TimeoutConfig `yaml:"timeouts" json:"timeouts"`
}

// ObservabilityConfig contains monitoring settings.
type ObservabilityConfig struct {
	// EnableMetrics records prometheus load metrics
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing installs an OpenTelemetry tracer provider
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
	// TracingExporter selects the span exporter ("stdout" or "none")
	TracingExporter string `yaml:"tracing_exporter" json:"tracing_exporter"`
	// TracingSampleRate controls trace sampling (0.0-1.0)
	TracingSampleRate float64 `yaml:"tracing_sample_rate" json:"tracing_sample_rate"`
}

// TimeoutConfig contains timeout settings. Zero means no timeout beyond the
// caller's context and the driver's own defaults.
type TimeoutConfig struct {
	// Connection bounds establishing a database or warehouse connection
	Connection time.Duration `yaml:"connection" json:"connection"`
	// Query bounds a whole network read, connection included
	Query time.Duration `yaml:"query" json:"query"`
}

// NewDefault creates a Config with defaults suitable for interactive use.
func NewDefault() *Config {
	return &Config{
		Name:    "dataconnector",
		Logging: logger.DefaultConfig(),
		Observability: ObservabilityConfig{
			EnableMetrics:     true,
			EnableTracing:     false,
			TracingExporter:   "none",
			TracingSampleRate: 1.0,
		},
		Timeouts: TimeoutConfig{
			Connection: 10 * time.Second,
		},
	}
}

// Validate validates the configuration for correctness.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Timeouts.Connection < 0 {
		return fmt.Errorf("timeouts.connection cannot be negative")
	}
	if c.Timeouts.Query < 0 {
		return fmt.Errorf("timeouts.query cannot be negative")
	}
	if r := c.Observability.TracingSampleRate; r < 0 || r > 1 {
		return fmt.Errorf("tracing_sample_rate must be between 0 and 1")
	}
	switch c.Observability.TracingExporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("unknown tracing_exporter %q", c.Observability.TracingExporter)
	}
	return nil
}
