// Package oteladapters implements the book store observability interfaces on top of OpenTelemetry.
//
//	store, err := postgresengine.NewBookStoreFromPGXPool(
//		pool,
//		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger("bookstore")),
//		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("bookstore"))),
//		postgresengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("bookstore"))),
//	)
//
// Metrics instruments are created lazily per metric name and cached, so a single collector
// can be shared by concurrent book store operations.
package oteladapters
