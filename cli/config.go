package cli

import (
	"fmt"

	"github.com/kbukum/hurl/config"
	"github.com/kbukum/hurl/httpclient"
	"github.com/kbukum/hurl/observability"
	"github.com/kbukum/hurl/util"
)

// Config is the full hurl configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Client        httpclient.Config    `yaml:"client" mapstructure:"client"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults applies defaults to every section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Observability.ServiceName = util.Coalesce(c.Observability.ServiceName, c.Name)
	c.Observability.ApplyDefaults()
}

// Validate validates every section.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Client.Validate(); err != nil {
		return fmt.Errorf("config.client: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}
