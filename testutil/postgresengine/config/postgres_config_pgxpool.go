package config

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgxMaxConnections    = int32(20)
	pgxMinConnections    = int32(2)
	pgxMaxConnLifetime   = time.Hour
	pgxMaxConnIdleTime   = time.Minute * 5
	pgxHealthCheckPeriod = time.Minute
	pgxConnectTimeout    = time.Second * 5
)

// PostgresPGXPoolConfig creates a pgxpool.Config for the given DSN with the test pool settings.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = pgxMaxConnections
	dbConfig.MinConns = pgxMinConnections
	dbConfig.MaxConnLifetime = pgxMaxConnLifetime
	dbConfig.MaxConnIdleTime = pgxMaxConnIdleTime
	dbConfig.HealthCheckPeriod = pgxHealthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = pgxConnectTimeout

	return dbConfig, nil
}

// PostgresPGXPool opens and pings a pgxpool.Pool for the given DSN.
func PostgresPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	dbConfig, err := PostgresPGXPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
	if err != nil {
		return nil, err
	}

	if pingErr := pool.Ping(ctx); pingErr != nil {
		pool.Close()
		return nil, pingErr
	}

	return pool, nil
}

// PostgresPGXPoolSingle opens a pgxpool.Pool for the single test database.
func PostgresPGXPoolSingle(ctx context.Context) (*pgxpool.Pool, error) {
	return PostgresPGXPool(ctx, PostgresSingleDSN())
}

// PostgresPGXPoolPrimaryAndReplica opens pgxpool.Pools for the primary and the replica database.
func PostgresPGXPoolPrimaryAndReplica(ctx context.Context) (*pgxpool.Pool, *pgxpool.Pool, error) {
	primary, err := PostgresPGXPool(ctx, PostgresPrimaryDSN())
	if err != nil {
		return nil, nil, err
	}

	replica, err := PostgresPGXPool(ctx, PostgresReplicaDSN())
	if err != nil {
		primary.Close()
		return nil, nil, err
	}

	return primary, replica, nil
}
