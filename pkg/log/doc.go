// Package log provides the structured, context-propagated logger used by the
// RPC transports, providers and the CLI.
//
// Loggers are passed explicitly or through a context.Context; there is no
// package-level logger.
//
//	lg := log.NewZapLogger(log.Config{Format: "logfmt", Level: log.LevelDebug})
//	ctx = log.SetContextLogger(ctx, lg.WithName("tm2"))
//
//	// deeper in the call stack
//	log.FromContext(ctx).Info("block fetched", "height", 42)
//
// FromContext never returns nil: a context without a logger yields a
// NoopLogger. When the context carries an OpenTelemetry span,
// SetContextLogger wraps the logger in a SpanLogger so every entry is also
// recorded as a span event and tagged with traceId and spanId.
package log
