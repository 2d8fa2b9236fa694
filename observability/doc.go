// Package observability wires OpenTelemetry tracing and metrics into hurl.
//
// Export is opt-in: nothing leaves the process unless an OTLP endpoint is
// configured. Without one, spans and instruments still work against the
// global no-op providers.
//
//	shutdown, err := observability.Setup(ctx, cfg)
//	defer shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("hurl"))
//	ctx, op := observability.StartOperation(ctx, observability.SpanSendRequest, metrics)
//	defer op.End(err)
package observability
