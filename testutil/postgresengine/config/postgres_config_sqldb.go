package config

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

const (
	driverPostgres = "postgres"

	sqlMaxOpenConnections = 20
	sqlMaxIdleConnections = 2
	sqlMaxConnLifetime    = time.Hour
	sqlMaxConnIdleTime    = time.Minute * 5
)

// PostgresSQLDB opens and pings a configured *sql.DB for the given DSN.
func PostgresSQLDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(sqlMaxOpenConnections)
	db.SetMaxIdleConns(sqlMaxIdleConnections)
	db.SetConnMaxLifetime(sqlMaxConnLifetime)
	db.SetConnMaxIdleTime(sqlMaxConnIdleTime)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, pingErr
	}

	return db, nil
}

// PostgresSQLDBSingle opens a *sql.DB for the single test database.
func PostgresSQLDBSingle(ctx context.Context) (*sql.DB, error) {
	return PostgresSQLDB(ctx, PostgresSingleDSN())
}
