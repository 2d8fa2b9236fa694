package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"
)

// Options holds the parsed command line.
type Options struct {
	Method     string
	Headers    []string
	Data       string
	Verbose    bool
	Output     string
	Retries    int
	Timeout    time.Duration
	Profile    string
	ConfigFile string
	Wizard     bool
	Inspect    bool
	Version    bool
	URLs       []string

	flags *pflag.FlagSet
}

// flagKeys binds config keys to the flags that override them.
var flagKeys = map[string]string{
	"client.retries": "retries",
	"client.timeout": "timeout",
}

// ParseArgs parses args, not including the program name.
func ParseArgs(args []string, stderr io.Writer) (*Options, error) {
	opts := &Options{}
	fs := pflag.NewFlagSet("hurl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: hurl [flags] <url> [<url>...]")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	fs.StringVarP(&opts.Method, "method", "m", "GET", "HTTP method")
	fs.StringArrayVarP(&opts.Headers, "header", "H", nil, "request header as 'Name: Value' (repeatable)")
	fs.StringVarP(&opts.Data, "data", "d", "", "JSON request body")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "print the status line and debug logs")
	fs.StringVarP(&opts.Output, "output", "o", "", "write the response body to a file")
	fs.IntVar(&opts.Retries, "retries", 0, "retry failed sends up to N times")
	fs.DurationVar(&opts.Timeout, "timeout", 0, "overall deadline, e.g. 10s (0 means none)")
	fs.StringVarP(&opts.Profile, "profile", "p", "", "named profile from the config file")
	fs.StringVar(&opts.ConfigFile, "config", "", "config file path")
	fs.BoolVar(&opts.Wizard, "wizard", false, "interactive request builder")
	fs.BoolVar(&opts.Inspect, "inspect", false, "inspect a previous response")
	fs.BoolVar(&opts.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.URLs = fs.Args()
	opts.flags = fs
	return opts, nil
}

// Changed reports whether the named flag was given.
func (o *Options) Changed(name string) bool {
	return o.flags != nil && o.flags.Changed(name)
}
