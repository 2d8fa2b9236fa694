package httpclient

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/hurl/domain"
	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/logger"
	"github.com/kbukum/hurl/observability"
	"github.com/kbukum/hurl/resilience"
	"github.com/kbukum/hurl/util"
	"github.com/kbukum/hurl/validation"
)

// bodyPreviewLen bounds the response body echoed in debug logs.
const bodyPreviewLen = 256

// Service validates requests and delegates them to a Sender.
type Service struct {
	sender         Sender
	log            *logger.Logger
	metrics        *observability.Metrics
	maxConcurrency int
	newRequestID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is logger.Get("httpclient").
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithMetrics records send metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithMaxConcurrency caps in-flight batch sends. Zero or less means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(s *Service) { s.maxConcurrency = n }
}

// WithRequestIDs replaces the request ID generator.
func WithRequestIDs(gen func() string) Option {
	return func(s *Service) { s.newRequestID = gen }
}

// NewService creates a Service that sends through sender.
func NewService(sender Sender, opts ...Option) *Service {
	s := &Service{
		sender:       sender,
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("httpclient")
	}
	return s
}

// SendRequest validates req and sends it once. A validation error is
// returned without touching the network; sender errors are returned as-is.
func (s *Service) SendRequest(ctx context.Context, req domain.Request) (resp domain.Response, err error) {
	ctx = s.withRequestID(ctx)
	ctx, op := observability.StartOperation(ctx, observability.SpanSendRequest, s.metrics, requestAttrs(req)...)
	defer func() { op.End(err) }()

	if err = validation.ValidateRequest(req); err != nil {
		s.logRejected(ctx, req, err)
		return domain.Response{}, err
	}
	return s.attempt(ctx, req, 1)
}

// SendWithRetry validates req once and then makes up to maxRetries+1
// attempts, each with a fresh clone of req. Every failed attempt is retried
// immediately, whatever the error; the last error is returned once the
// budget is spent. A negative maxRetries is treated as zero.
func (s *Service) SendWithRetry(ctx context.Context, req domain.Request, maxRetries int) (resp domain.Response, err error) {
	ctx = s.withRequestID(ctx)
	ctx, op := observability.StartOperation(ctx, observability.SpanSendWithRetry, s.metrics, requestAttrs(req)...)
	defer func() { op.End(err) }()

	if err = validation.ValidateRequest(req); err != nil {
		s.logRejected(ctx, req, err)
		return domain.Response{}, err
	}

	maxRetries = max(maxRetries, 0)
	log := s.log.WithContext(ctx)
	return resilience.Retry(ctx, resilience.RetryConfig{
		MaxAttempts: maxRetries + 1,
		OnRetry: func(attempt int, err error, _ time.Duration) {
			log.Debug("retrying request", logger.MergeWithDuration(logger.Fields(
				logger.FieldAttempt, attempt,
				"remaining", maxRetries+1-attempt,
				logger.FieldError, err.Error(),
			), op.Duration()))
		},
	}, func(attempt int) (domain.Response, error) {
		return s.attempt(ctx, req.Clone(), attempt)
	})
}

// SendBatch validates every request before sending any. If one fails, its
// error is returned and nothing is sent. Otherwise all requests are sent
// concurrently and the responses come back in input order.
//
// The first send error is returned as soon as it happens. Sends already in
// flight are not cancelled: they run to completion and their results are
// discarded, so a write request may still take effect remotely.
func (s *Service) SendBatch(ctx context.Context, reqs []domain.Request) (resps []domain.Response, err error) {
	ctx = s.withRequestID(ctx)
	ctx, op := observability.StartOperation(ctx, observability.SpanSendBatch, s.metrics,
		attribute.Int(observability.AttrBatchSize, len(reqs)))
	defer func() { op.End(err) }()

	log := s.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldBatchSize, len(reqs)))
	for i, req := range reqs {
		if err := validation.ValidateRequest(req); err != nil {
			log.WithError(err).Debug("batch rejected", logger.Fields(logger.FieldBatchIndex, i))
			if appErr, ok := apperrors.AsAppError(err); ok {
				appErr.WithDetail(logger.FieldBatchIndex, i)
			}
			return nil, err
		}
	}
	if len(reqs) == 0 {
		return []domain.Response{}, nil
	}

	var bulkhead *resilience.Bulkhead
	if s.maxConcurrency > 0 {
		bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          "batch",
			MaxConcurrent: s.maxConcurrency,
			OnAcquire: func(name string, inUse int) {
				log.Debug("slot acquired", logger.Fields("bulkhead", name, "in_use", inUse, "max_concurrent", s.maxConcurrency))
			},
			OnRelease: func(name string, inUse int) {
				log.Debug("slot released", logger.Fields("bulkhead", name, "in_use", inUse))
			},
		})
	}

	results := make([]domain.Response, len(reqs))
	errs := make(chan error, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			memberCtx := logger.ContextWithRequestID(ctx, s.newRequestID())
			send := func() (domain.Response, error) {
				return s.attempt(memberCtx, req, 1)
			}
			var resp domain.Response
			var err error
			if bulkhead != nil {
				resp, err = resilience.ExecuteWithResult(memberCtx, bulkhead, send)
			} else {
				resp, err = send()
			}
			if err != nil {
				log.WithError(err).Debug("batch member failed", logger.Fields(logger.FieldBatchIndex, i))
				errs <- err
				return
			}
			results[i] = resp
		}()
	}
	go func() {
		wg.Wait()
		close(errs)
	}()

	if err, failed := <-errs; failed {
		return nil, err
	}
	log.Debug("batch completed")
	return results, nil
}

// attempt makes one transport call.
func (s *Service) attempt(ctx context.Context, req domain.Request, n int) (domain.Response, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanAttempt)
	defer span.End()
	span.SetAttributes(attribute.Int(observability.AttrAttempt, n))
	s.metrics.RecordAttempt(ctx, req.Method().String(), n)

	log := s.log.WithContext(ctx)
	if parent := observability.OperationFromContext(ctx); parent != nil {
		log = log.WithFields(logger.Fields(logger.FieldOperation, parent.Name))
	}
	if log.Enabled(logger.DebugLevel) {
		log.Debug("sending request", logger.Fields(
			logger.FieldMethod, req.Method().String(),
			logger.FieldURL, req.URL().String(),
			logger.FieldAttempt, n,
			"headers", maskedHeaders(req.Headers()),
			logger.FieldBytes, bodyLen(req),
		))
	}

	start := time.Now()
	resp, err := s.sender.Send(ctx, req)
	if err != nil {
		observability.SetSpanError(ctx, err)
		log.WithError(err).Debug("request failed", logger.MergeWithDuration(logger.Fields(
			logger.FieldAttempt, n,
		), time.Since(start)))
		return domain.Response{}, err
	}
	span.SetAttributes(attribute.Int(observability.AttrStatusCode, resp.Status))
	log.Debug("request completed", logger.MergeWithDuration(logger.Fields(
		logger.FieldAttempt, n,
		logger.FieldStatus, resp.Status,
		"success", resp.IsSuccess(),
		logger.FieldBytes, len(resp.Body),
		"body_preview", util.Truncate(resp.Body, bodyPreviewLen),
	), time.Since(start)))
	return resp, nil
}

func (s *Service) withRequestID(ctx context.Context) context.Context {
	if logger.RequestIDFromContext(ctx) != "" {
		return ctx
	}
	return logger.ContextWithRequestID(ctx, s.newRequestID())
}

func (s *Service) logRejected(ctx context.Context, req domain.Request, err error) {
	s.log.WithContext(ctx).WithError(err).Debug("request rejected", logger.Fields(
		logger.FieldMethod, req.Method().String(),
		logger.FieldURL, req.URL().String(),
	))
}

func requestAttrs(req domain.Request) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(observability.AttrMethod, req.Method().String()),
		attribute.String(observability.AttrURL, req.URL().String()),
	}
}

func maskedHeaders(headers []domain.Header) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = h.Name + ": " + util.MaskHeaderValue(h.Name, h.Value)
	}
	return out
}

func bodyLen(req domain.Request) int {
	if body, ok := req.Body(); ok {
		return body.Len()
	}
	return 0
}
