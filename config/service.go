package config

import (
	"fmt"

	"github.com/kbukum/hurl/logger"
	"github.com/kbukum/hurl/validation"
)

// ServiceConfig holds the settings shared by every hurl entry point.
// Commands extend it by embedding:
//
//	type Config struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Client httpclient.Config `yaml:"client" mapstructure:"client"`
//	}
type ServiceConfig struct {
	Name     string        `yaml:"name" mapstructure:"name"`
	Logging  logger.Config `yaml:"logging" mapstructure:"logging"`
	Profiles Profiles      `yaml:"profiles" mapstructure:"profiles"`
}

// ApplyDefaults applies default values to the base configuration.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "hurl"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base configuration fields.
func (c *ServiceConfig) Validate() error {
	if err := validation.New().Required("name", c.Name).Err(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return c.Profiles.Validate()
}
