package httpclient

import (
	"time"

	"github.com/kbukum/hurl/security"
	"github.com/kbukum/hurl/validation"
)

// Config configures sending.
type Config struct {
	// Retries is the retry budget for SendWithRetry. Zero sends once.
	Retries int `yaml:"retries" mapstructure:"retries" validate:"min=0,max=100"`

	// Timeout bounds a whole logical send, retries included. Zero means no bound.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"min=0"`

	// ConnectTimeout bounds each TCP connect. Zero means no bound.
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout" validate:"min=0"`

	// MaxConcurrency caps in-flight batch sends. Zero means unbounded.
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency" validate:"min=0"`

	// TLS configures https connections.
	TLS security.TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// ApplyDefaults clamps negative values to zero.
func (c *Config) ApplyDefaults() {
	c.Retries = max(c.Retries, 0)
	c.MaxConcurrency = max(c.MaxConcurrency, 0)
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}
