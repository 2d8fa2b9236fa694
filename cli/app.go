package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/kbukum/hurl/config"
	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/httpclient"
	"github.com/kbukum/hurl/httpclient/transport"
	"github.com/kbukum/hurl/logger"
	"github.com/kbukum/hurl/observability"
	"github.com/kbukum/hurl/version"
)

// App runs the hurl command.
type App struct {
	Stdout io.Writer
	Stderr io.Writer

	// Sender replaces the network transport when set.
	Sender httpclient.Sender
	// FileSystem replaces the real file system for config discovery.
	FileSystem config.FileSystem
}

// Run runs hurl with os.Args-style arguments, not including the program
// name, and returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := &App{Stdout: stdout, Stderr: stderr}
	return app.Run(ctx, args)
}

// Run parses args, sends the requests and prints the responses. Errors are
// printed to Stderr and yield exit status 1.
func (a *App) Run(ctx context.Context, args []string) int {
	opts, err := ParseArgs(args, a.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 1
	}

	switch {
	case opts.Version:
		fmt.Fprintln(a.Stdout, version.Get().String())
		return 0
	case opts.Wizard:
		return runWizard(a.Stdout)
	case opts.Inspect:
		return runInspect(a.Stdout)
	}

	if err := a.run(ctx, opts); err != nil {
		fmt.Fprintf(a.Stderr, "Error: %s\n", describe(err))
		return 1
	}
	return 0
}

func (a *App) run(ctx context.Context, opts *Options) error {
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}

	log := a.newLogger(cfg)
	logger.SetGlobalLogger(log)

	profile, err := applyProfile(cfg, opts)
	if err != nil {
		return err
	}
	reqs, err := buildRequests(opts, profile)
	if err != nil {
		return err
	}

	shutdown, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	svc, err := a.newService(cfg)
	if err != nil {
		return err
	}

	if cfg.Client.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Client.Timeout)
		defer cancel()
	}

	resps, err := send(ctx, svc, reqs, cfg.Client.Retries)
	if err != nil {
		return err
	}
	return a.print(opts, resps)
}

func (a *App) loadConfig(opts *Options) (*Config, error) {
	loaderOpts := []config.LoaderOption{config.WithFlags(opts.flags, flagKeys)}
	if opts.ConfigFile != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(opts.ConfigFile))
	}
	if a.FileSystem != nil {
		loaderOpts = append(loaderOpts, config.WithFileSystem(a.FileSystem))
	}

	var cfg Config
	if err := config.LoadConfig("hurl", &cfg, loaderOpts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if opts.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (a *App) newLogger(cfg *Config) *logger.Logger {
	lc := cfg.Logging
	var w io.Writer
	switch lc.Output {
	case logger.OutputStdout:
		w = a.Stdout
	case logger.OutputDiscard:
		w = io.Discard
	default:
		w = a.Stderr
	}
	if f, ok := w.(*os.File); !ok || !isTerminal(f) {
		lc.NoColor = true
	}
	return logger.NewWithWriter(&lc, cfg.Name, w)
}

func (a *App) newService(cfg *Config) (*httpclient.Service, error) {
	sender := a.Sender
	if sender == nil {
		client, err := transport.New(
			transport.WithTLS(cfg.Client.TLS),
			transport.WithConnectTimeout(cfg.Client.ConnectTimeout),
			transport.WithLogger(logger.Get("transport")),
		)
		if err != nil {
			return nil, err
		}
		sender = client
	}

	opts := []httpclient.Option{
		httpclient.WithLogger(logger.Get("httpclient")),
		httpclient.WithMaxConcurrency(cfg.Client.MaxConcurrency),
	}
	if cfg.Observability.Enabled() {
		metrics, err := observability.NewMetrics(observability.Meter(cfg.Observability.ServiceName))
		if err != nil {
			return nil, err
		}
		opts = append(opts, httpclient.WithMetrics(metrics))
	}
	return httpclient.NewService(sender, opts...), nil
}

// applyProfile merges the selected profile into cfg and returns its headers.
// Flags given on the command line keep precedence over the profile.
func applyProfile(cfg *Config, opts *Options) ([]domain.Header, error) {
	if opts.Profile == "" {
		return nil, nil
	}
	profile, err := cfg.Profiles.Get(opts.Profile)
	if err != nil {
		return nil, err
	}
	if profile.Retries != nil && !opts.Changed("retries") {
		cfg.Client.Retries = *profile.Retries
	}
	if profile.Timeout > 0 && !opts.Changed("timeout") {
		cfg.Client.Timeout = profile.Timeout
	}
	logger.Get("cli").Debug("profile applied", logger.Fields("profile", opts.Profile))
	return profile.ParsedHeaders()
}

// buildRequests builds one request per URL. Profile headers come first.
func buildRequests(opts *Options, profileHeaders []domain.Header) ([]domain.Request, error) {
	if len(opts.URLs) == 0 {
		return nil, apperrors.InvalidInput("url", "URL is required")
	}
	reqs := make([]domain.Request, 0, len(opts.URLs))
	for _, u := range opts.URLs {
		req, err := httpclient.NewRequestBuilder().
			Method(opts.Method).
			URL(u).
			AddHeaders(profileHeaders...).
			Headers(opts.Headers).
			Body(opts.Data).
			Build()
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

func send(ctx context.Context, svc *httpclient.Service, reqs []domain.Request, retries int) ([]domain.Response, error) {
	if len(reqs) > 1 {
		return svc.SendBatch(ctx, reqs)
	}
	var resp domain.Response
	var err error
	if retries > 0 {
		resp, err = svc.SendWithRetry(ctx, reqs[0], retries)
	} else {
		resp, err = svc.SendRequest(ctx, reqs[0])
	}
	if err != nil {
		return nil, err
	}
	return []domain.Response{resp}, nil
}

func (a *App) print(opts *Options, resps []domain.Response) error {
	p := NewPrinter(a.Stdout)
	for i, resp := range resps {
		if opts.Verbose {
			p.Status(resp.Status)
		}
		if opts.Output == "" {
			p.Body(resp.Body)
			continue
		}
		path := outputPath(opts.Output, i, len(resps))
		if err := SaveResponse(path, resp); err != nil {
			return err
		}
		if opts.Verbose {
			p.Println("Saved response to " + path)
		}
	}
	return nil
}

// describe renders err for the terminal. An AppError prints its message,
// then the cause; anything else, including an AppError wrapped with
// context, prints in full.
func describe(err error) string {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		return err.Error()
	}
	if appErr.Cause != nil {
		return appErr.Message + ": " + appErr.Cause.Error()
	}
	return appErr.Message
}
