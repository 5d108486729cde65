package postgresengine

import (
	"github.com/AntonStoeckl/writablebook-go/writablebook"
)

// Option defines a functional option for configuring BookStore.
type Option func(*BookStore) error

// WithTableName sets the table name for the BookStore.
func WithTableName(tableName string) Option {
	return func(bs *BookStore) error {
		if tableName == "" {
			return writablebook.ErrEmptyTableName
		}

		bs.tableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the BookStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Saved/loaded books, page counts, durations, concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger writablebook.Logger) Option {
	return func(bs *BookStore) error {
		bs.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the BookStore.
// It receives the same messages as the Logger, together with the operation's context.
func WithContextualLogger(logger writablebook.ContextualLogger) Option {
	return func(bs *BookStore) error {
		bs.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the BookStore.
// It receives operation durations, page counts, concurrency conflicts, and database errors.
func WithMetrics(collector writablebook.MetricsCollector) Option {
	return func(bs *BookStore) error {
		bs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the BookStore.
// One span is started per operation and finished with its status and result attributes.
func WithTracing(collector writablebook.TracingCollector) Option {
	return func(bs *BookStore) error {
		bs.tracingCollector = collector
		return nil
	}
}
