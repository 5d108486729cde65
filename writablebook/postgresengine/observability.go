package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/writablebook-go/writablebook"
)

const (
	operationSchema = "ensure_schema"
	operationSave   = "save"
	operationLoad   = "load"
	operationDelete = "delete"

	statusSuccess  = "success"
	statusError    = "error"
	statusConflict = "conflict"

	metricPrefix               = "bookstore_"
	metricDurationSuffix       = "_duration_seconds"
	metricErrors               = "bookstore_database_errors_total"
	metricConcurrencyConflicts = "bookstore_concurrency_conflicts_total"
	metricPagesSaved           = "bookstore_pages_saved"
	metricPagesLoaded          = "bookstore_pages_loaded"

	spanNamePrefix          = "bookstore."
	spanAttrOperation       = "operation"
	spanAttrBookID          = "book_id"
	spanAttrVersion         = "version"
	spanAttrExpectedVersion = "expected_version"
	spanAttrPageCount       = "page_count"
	spanAttrConsistency     = "consistency"
	spanAttrErrorType       = "error_type"
	spanAttrDurationMS      = "duration_ms"
	labelStatus             = "status"

	errorTypeNilBook       = "nil_book"
	errorTypeEncodeBook    = "encode_book"
	errorTypeDecodeBook    = "decode_book"
	errorTypeBuildQuery    = "build_query"
	errorTypeDatabaseQuery = "database_query"
	errorTypeDatabaseExec  = "database_exec"
	errorTypeScanRow       = "scan_row"
	errorTypeNotFound      = "not_found"
	errorTypeConflict      = "concurrency_conflict"

	logMsgBuildSaveQueryFailed   = "failed to build save query"
	logMsgBuildSelectQueryFailed = "failed to build select query"
	logMsgBuildDeleteQueryFailed = "failed to build delete query"
	logMsgDBQueryFailed          = "database query execution failed"
	logMsgDBExecFailed           = "database execution failed"
	logMsgCloseRowsFailed        = "failed to close database rows"
	logMsgScanRowFailed          = "failed to scan database row"
	logMsgRowsAffectedFailed     = "failed to get rows affected count"
	logMsgEncodeBookFailed       = "failed to encode book"
	logMsgDecodeBookFailed       = "failed to decode book from database row"
	logMsgSchemaEnsured          = "schema ensured"
	logMsgBookSaved              = "book saved"
	logMsgBookLoaded             = "book loaded"
	logMsgBookDeleted            = "book deleted"
	logMsgConcurrencyConflict    = "concurrency conflict detected"
	logMsgSQLExecuted            = "executed sql for: "
	logMsgOperation              = "bookstore operation: "
	logAttrError                 = "error"
	logAttrQuery                 = "query"
	logAttrTable                 = "table"
	logAttrBookID                = "book_id"
	logAttrVersion               = "version"
	logAttrExpectedVersion       = "expected_version"
	logAttrPageCount             = "page_count"
	logAttrDurationMS            = "duration_ms"
)

// errorTypeOf classifies errors returned from row scanning.
func errorTypeOf(err error) string {
	switch {
	case errors.Is(err, writablebook.ErrBookNotFound):
		return errorTypeNotFound
	case errors.Is(err, writablebook.ErrScanningDBRowFailed):
		return errorTypeScanRow
	default:
		return errorTypeDatabaseQuery
	}
}

// === Operation Observer ===
// One observer per operation owns the tracing span and the metrics of that operation.

type operationObserver struct {
	bs        *BookStore
	ctx       context.Context
	operation string
	span      writablebook.SpanContext
	start     time.Time
}

// observe starts tracing and timing for an operation and returns the context to continue with.
func (bs *BookStore) observe(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (*operationObserver, context.Context) {

	spanAttrs := map[string]string{spanAttrOperation: operation}
	for key, value := range attrs {
		spanAttrs[key] = value
	}

	var span writablebook.SpanContext
	if bs.tracingCollector != nil {
		ctx, span = bs.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, spanAttrs)
	}

	return &operationObserver{
		bs:        bs,
		ctx:       ctx,
		operation: operation,
		span:      span,
		start:     time.Now(),
	}, ctx
}

func (o *operationObserver) elapsed() time.Duration {
	return time.Since(o.start)
}

func (o *operationObserver) elapsedMS() float64 {
	return toMilliseconds(o.elapsed())
}

// success records the duration and finishes the span with the given result attributes.
func (o *operationObserver) success(attrs map[string]string) {
	duration := o.elapsed()
	o.recordDuration(duration, statusSuccess)

	finishAttrs := map[string]string{spanAttrDurationMS: formatMS(duration)}
	for key, value := range attrs {
		finishAttrs[key] = value
	}

	o.finishSpan(statusSuccess, finishAttrs)
}

// failure records the duration and an error counter and finishes the span as failed.
func (o *operationObserver) failure(errorType string) {
	duration := o.elapsed()
	o.recordDuration(duration, statusError)
	o.incrementCounter(metricErrors, map[string]string{
		spanAttrOperation: o.operation,
		labelStatus:       statusError,
		spanAttrErrorType: errorType,
	})

	o.finishSpan(statusError, map[string]string{
		spanAttrErrorType:  errorType,
		spanAttrDurationMS: formatMS(duration),
	})
}

// concurrencyConflict is a failure that is expected under concurrent edits, so it gets its own counter.
func (o *operationObserver) concurrencyConflict() {
	duration := o.elapsed()
	o.recordDuration(duration, statusConflict)
	o.incrementCounter(metricConcurrencyConflicts, map[string]string{
		spanAttrOperation: o.operation,
	})

	o.finishSpan(statusError, map[string]string{
		spanAttrErrorType:  errorTypeConflict,
		spanAttrDurationMS: formatMS(duration),
	})
}

func (o *operationObserver) recordPages(metric string, pageCount int) {
	collector := o.bs.metricsCollector
	if collector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: o.operation, labelStatus: statusSuccess}

	if contextual, ok := collector.(writablebook.ContextualMetricsCollector); ok {
		contextual.RecordValueContext(o.ctx, metric, float64(pageCount), labels)
		return
	}

	collector.RecordValue(metric, float64(pageCount), labels)
}

func (o *operationObserver) recordDuration(duration time.Duration, status string) {
	collector := o.bs.metricsCollector
	if collector == nil {
		return
	}

	metric := metricPrefix + o.operation + metricDurationSuffix
	labels := map[string]string{spanAttrOperation: o.operation, labelStatus: status}

	if contextual, ok := collector.(writablebook.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(o.ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func (o *operationObserver) incrementCounter(metric string, labels map[string]string) {
	collector := o.bs.metricsCollector
	if collector == nil {
		return
	}

	if contextual, ok := collector.(writablebook.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(o.ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

func (o *operationObserver) finishSpan(status string, attrs map[string]string) {
	if o.span == nil || o.bs.tracingCollector == nil {
		return
	}

	o.span.SetStatus(status)
	for key, value := range attrs {
		o.span.AddAttribute(key, value)
	}

	o.bs.tracingCollector.FinishSpan(o.span, status, attrs)
}

// === Logging ===
// Every message goes to the Logger and to the ContextualLogger, whichever are configured.

// logQueryWithDuration logs SQL queries with execution time at debug level.
func (bs *BookStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if bs.logger != nil {
		bs.logger.Debug(logMsgSQLExecuted+action, args...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level.
func (bs *BookStore) logOperation(ctx context.Context, action string, args ...any) {
	if bs.logger != nil {
		bs.logger.Info(logMsgOperation+action, args...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level.
func (bs *BookStore) logWarn(ctx context.Context, message string, args ...any) {
	if bs.logger != nil {
		bs.logger.Warn(message, args...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.WarnContext(ctx, message, args...)
	}
}

// logError logs error information at error level.
func (bs *BookStore) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if bs.logger != nil {
		bs.logger.Error(message, allArgs...)
	}

	if bs.contextualLogger != nil {
		bs.contextualLogger.ErrorContext(ctx, message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func formatMS(d time.Duration) string {
	return fmt.Sprintf("%.2f", float64(d.Nanoseconds())/1e6)
}
