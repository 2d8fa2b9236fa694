package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/logger"
	"github.com/kbukum/hurl/security"
)

// Client sends each request over its own new connection.
type Client struct {
	dialer ContextDialer
	tls    *tls.Config
	log    *logger.Logger
}

// Option configures a Client.
type Option func(*options)

type options struct {
	dialer      ContextDialer
	tls         security.TLSConfig
	connectWait time.Duration
	log         *logger.Logger
}

// WithTLS sets the TLS settings used for https requests.
func WithTLS(cfg security.TLSConfig) Option {
	return func(o *options) { o.tls = cfg }
}

// WithDialer replaces the TCP dialer.
func WithDialer(d ContextDialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithConnectTimeout bounds the TCP connect step. Zero means no bound.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) { o.connectWait = d }
}

// WithLogger sets the logger. The default is logger.Get("transport").
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a Client. It fails only when the TLS settings cannot be loaded.
func New(opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	base, err := o.tls.Build()
	if err != nil {
		return nil, err
	}
	if o.dialer == nil {
		o.dialer = &net.Dialer{Timeout: o.connectWait}
	}
	if o.log == nil {
		o.log = logger.Get("transport")
	}
	return &Client{dialer: o.dialer, tls: base, log: o.log}, nil
}

// Send resolves, connects, performs the handshakes, writes req and returns
// the buffered response.
func (c *Client) Send(ctx context.Context, req domain.Request) (domain.Response, error) {
	log := c.log.WithContext(ctx)
	span := trace.SpanFromContext(ctx)
	start := time.Now()

	ep, err := Resolve(req.URL())
	if err != nil {
		return domain.Response{}, err
	}
	wire, err := AdaptRequest(req)
	if err != nil {
		return domain.Response{}, err
	}
	log = log.WithFields(logger.Fields(logger.FieldScheme, ep.Scheme, logger.FieldHost, ep.Host, logger.FieldPort, ep.Port))

	nc, err := connect(ctx, c.dialer, c.tls, ep)
	if err != nil {
		log.WithError(err).Debug("connect failed", logger.Fields(logger.FieldStage, stageOf(err)))
		return domain.Response{}, err
	}
	span.AddEvent("connected", trace.WithAttributes(
		attribute.String("net.peer.name", ep.Host),
		attribute.String("net.peer.port", ep.Port),
		attribute.Bool("tls", ep.Secure()),
	))
	log.Debug("connected", logger.Fields("remote", nc.RemoteAddr().String()))

	conn, err := Handshake(ctx, nc, log)
	if err != nil {
		_ = nc.Close()
		return domain.Response{}, err
	}
	defer conn.Close()

	wresp, err := conn.RoundTrip(ctx, wire)
	if err != nil {
		log.WithError(err).Debug("exchange failed", logger.Fields(logger.FieldStage, stageOf(err)))
		return domain.Response{}, err
	}
	span.AddEvent("response received", trace.WithAttributes(attribute.Int("http.status_code", wresp.StatusCode)))
	log.Debug("response received", logger.MergeWithDuration(logger.Fields(
		logger.FieldStatus, wresp.StatusCode,
		logger.FieldBytes, len(wresp.Body),
	), time.Since(start)))

	return AdaptResponse(wresp)
}

func stageOf(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Stage()
	}
	return ""
}
