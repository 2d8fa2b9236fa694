package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/hurl/errors"
	"github.com/kbukum/hurl/logger"
)

// Outcomes recorded on spans and metrics.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Operation tracks one traced and measured send.
type Operation struct {
	Name      string
	StartTime time.Time
	Metrics   *Metrics

	ctx  context.Context
	span trace.Span
}

// StartOperation starts a span named name and counts the send as in flight.
// The request ID carried by ctx, if any, is set on the span. The returned
// context carries the Operation. metrics may be nil.
func StartOperation(ctx context.Context, name string, metrics *Metrics, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	if id := logger.RequestIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	metrics.RecordSendStart(ctx)
	op := &Operation{
		Name:      name,
		StartTime: time.Now(),
		Metrics:   metrics,
		span:      span,
	}
	ctx = WithOperation(ctx, op)
	op.ctx = ctx
	return ctx, op
}

// operationKey is the context key for the current Operation.
type operationKey struct{}

// WithOperation stores op in ctx.
func WithOperation(ctx context.Context, op *Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext returns the Operation stored in ctx, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// Span returns the operation's span.
func (op *Operation) Span() trace.Span { return op.span }

// End finishes the span and records the outcome. err may be nil.
func (op *Operation) End(err error) {
	duration := op.Duration()
	outcome := OutcomeOK

	if err != nil {
		outcome = OutcomeError
		code := string(apperrors.CodeOf(err))
		if code == "" {
			code = "UNKNOWN"
		}
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		op.span.SetAttributes(
			attribute.String(AttrErrorCode, code),
			attribute.String(AttrErrorMessage, err.Error()),
		)
		op.Metrics.RecordError(op.ctx, code, op.Name)
	}

	op.span.SetAttributes(
		attribute.String(AttrOutcome, outcome),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()
	op.Metrics.RecordSendEnd(op.ctx, op.Name, outcome, duration.Seconds())
}

// Duration returns the time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
