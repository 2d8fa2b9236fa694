package observability

import (
	"time"

	"github.com/kbukum/hurl/util"
	"github.com/kbukum/hurl/validation"
	"github.com/kbukum/hurl/version"
)

const defaultMetricInterval = 15 * time.Second

// Config configures trace and metric export.
type Config struct {
	// ServiceName is reported as service.name. Defaults to "hurl".
	ServiceName string `yaml:"service_name" mapstructure:"service_name"`
	// ServiceVersion is reported as service.version. Defaults to the build version.
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	// Environment is reported as deployment.environment.
	Environment string `yaml:"environment" mapstructure:"environment"`
	// OTLPEndpoint is the OTLP/HTTP collector host:port. Empty disables export.
	OTLPEndpoint string `yaml:"otlp_endpoint" mapstructure:"otlp_endpoint"`
	// Insecure sends OTLP over plain HTTP.
	Insecure bool `yaml:"insecure" mapstructure:"insecure"`
	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"min=0,max=1"`
	// MetricInterval is the metric export period.
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	c.ServiceName = util.Coalesce(c.ServiceName, "hurl")
	c.ServiceVersion = util.Coalesce(c.ServiceVersion, version.Version)
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = defaultMetricInterval
	}
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Enabled reports whether telemetry is exported.
func (c *Config) Enabled() bool {
	return c.OTLPEndpoint != ""
}
