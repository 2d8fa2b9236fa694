package logger

import "github.com/kbukum/hurl/validation"

// Output targets.
const (
	OutputStdout  = "stdout"
	OutputStderr  = "stderr"
	OutputDiscard = "discard"
)

// Config contains logging configuration.
type Config struct {
	Level     string `yaml:"level" mapstructure:"level"`
	Format    string `yaml:"format" mapstructure:"format"`
	Output    string `yaml:"output" mapstructure:"output"`
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	Timestamp bool   `yaml:"timestamp" mapstructure:"timestamp"`
	Caller    bool   `yaml:"caller" mapstructure:"caller"`
}

// ApplyDefaults applies default values to logging configuration.
func (c *Config) ApplyDefaults() {
	if c.Level == "" {
		c.Level = "warn"
	}
	if c.Format == "" {
		c.Format = "console"
	}
	if c.Output == "" {
		c.Output = OutputStderr
	}
}

// Validate validates logging configuration.
func (c *Config) Validate() error {
	v := validation.New().
		OneOf("logging.level", c.Level, []string{"trace", "debug", "info", "warn", "error", "fatal", "disabled"}).
		OneOf("logging.format", c.Format, []string{"json", "console", FormatPretty}).
		OneOf("logging.output", c.Output, []string{OutputStdout, OutputStderr, OutputDiscard})
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
