package oteladapters

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log"

	"github.com/AntonStoeckl/writablebook-go/writablebook"
)

// NewSlogBridgeLogger returns a slog.Logger that emits through the global OpenTelemetry LoggerProvider.
// Records logged with a context that carries a span are correlated with that span.
func NewSlogBridgeLogger(name string) *slog.Logger {
	return otelslog.NewLogger(name)
}

// LogEmitter implements writablebook.ContextualLogger by emitting OpenTelemetry log records directly.
// Attribute values keep their type where OpenTelemetry has a matching value kind.
type LogEmitter struct {
	logger log.Logger
}

// NewLogEmitter creates a LogEmitter writing to logger.
func NewLogEmitter(logger log.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

// DebugContext emits a debug record.
func (e *LogEmitter) DebugContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, log.SeverityDebug, msg, args)
}

// InfoContext emits an info record.
func (e *LogEmitter) InfoContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, log.SeverityInfo, msg, args)
}

// WarnContext emits a warn record.
func (e *LogEmitter) WarnContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, log.SeverityWarn, msg, args)
}

// ErrorContext emits an error record.
func (e *LogEmitter) ErrorContext(ctx context.Context, msg string, args ...any) {
	e.emit(ctx, log.SeverityError, msg, args)
}

func (e *LogEmitter) emit(ctx context.Context, severity log.Severity, msg string, args []any) {
	record := log.Record{}
	record.SetTimestamp(time.Now())
	record.SetSeverity(severity)
	record.SetSeverityText(severity.String())
	record.SetBody(log.StringValue(msg))
	record.AddAttributes(keyValues(args)...)

	e.logger.Emit(ctx, record)
}

// keyValues converts slog style alternating key/value args. A trailing key without value is dropped.
func keyValues(args []any) []log.KeyValue {
	kvs := make([]log.KeyValue, 0, len(args)/2)

	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}

		kvs = append(kvs, log.KeyValue{Key: key, Value: logValue(args[i+1])})
	}

	return kvs
}

func logValue(v any) log.Value {
	switch value := v.(type) {
	case string:
		return log.StringValue(value)
	case int:
		return log.IntValue(value)
	case int64:
		return log.Int64Value(value)
	case uint64:
		return log.Int64Value(int64(value)) //nolint:gosec
	case float64:
		return log.Float64Value(value)
	case bool:
		return log.BoolValue(value)
	default:
		return log.StringValue(slog.AnyValue(v).String())
	}
}

var _ writablebook.ContextualLogger = (*LogEmitter)(nil)
