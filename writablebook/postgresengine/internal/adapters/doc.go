// Package adapters provide database adapter implementations for the PostgreSQL book store.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the book store to work with any supported
// database connection type.
package adapters
