// Package helper provides testing utilities for the PostgreSQL book store.
//
// It contains spies for the observability interfaces (slog handler, metrics collector,
// tracing collector), book fixtures, and a wrapper that opens a BookStore on top of the
// database adapter selected via the ADAPTER_TYPE environment variable.
package helper
