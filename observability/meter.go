package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/hurl/logger"
)

// InitMeter creates an OTLP/HTTP meter provider and installs it globally.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTLPEndpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if cfg.MetricInterval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(cfg.MetricInterval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Get("observability").Debug("meter initialized", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.OTLPEndpoint,
		"interval", cfg.MetricInterval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the send instruments. A nil *Metrics records nothing.
type Metrics struct {
	sendTotal    metric.Int64Counter
	sendDuration metric.Float64Histogram
	sendActive   metric.Int64UpDownCounter
	attemptTotal metric.Int64Counter
	errorTotal   metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	sendTotal, err := meter.Int64Counter("hurl.send.total",
		metric.WithDescription("Logical sends by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hurl.send.total counter: %w", err)
	}

	sendDuration, err := meter.Float64Histogram("hurl.send.duration",
		metric.WithDescription("Duration of logical sends in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hurl.send.duration histogram: %w", err)
	}

	sendActive, err := meter.Int64UpDownCounter("hurl.send.active",
		metric.WithDescription("Sends currently in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hurl.send.active gauge: %w", err)
	}

	attemptTotal, err := meter.Int64Counter("hurl.attempt.total",
		metric.WithDescription("Transport attempts, including retries"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hurl.attempt.total counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("hurl.error.total",
		metric.WithDescription("Errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hurl.error.total counter: %w", err)
	}

	return &Metrics{
		sendTotal:    sendTotal,
		sendDuration: sendDuration,
		sendActive:   sendActive,
		attemptTotal: attemptTotal,
		errorTotal:   errorTotal,
	}, nil
}

// RecordSendStart increments the in-flight count.
func (m *Metrics) RecordSendStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.sendActive.Add(ctx, 1)
}

// RecordSendEnd decrements the in-flight count and records a finished send.
func (m *Metrics) RecordSendEnd(ctx context.Context, operation, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.sendActive.Add(ctx, -1)
	m.sendTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
	m.sendDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

// RecordAttempt counts one transport attempt.
func (m *Metrics) RecordAttempt(ctx context.Context, method string, attempt int) {
	if m == nil {
		return
	}
	m.attemptTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("retry", attempt > 1),
	))
}

// RecordError counts an error by code.
func (m *Metrics) RecordError(ctx context.Context, code, operation string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("operation", operation),
	))
}
