package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/writablebook-go/writablebook/oteladapters"
	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

const (
	driverPostgres      = "postgres"
	instrumentationName = "github.com/AntonStoeckl/writablebook-go/cmd/bookctl"
)

func storeOptions(cfg *Config, logger *slog.Logger) []postgresengine.Option {
	options := []postgresengine.Option{postgresengine.WithTableName(cfg.TableName)}

	if !cfg.OTel {
		return append(options, postgresengine.WithContextualLogger(logger))
	}

	return append(options,
		postgresengine.WithLogger(logger),
		postgresengine.WithContextualLogger(oteladapters.NewSlogBridgeLogger(instrumentationName)),
		postgresengine.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter(instrumentationName))),
		postgresengine.WithTracing(oteladapters.NewTracingCollector(otel.Tracer(instrumentationName))),
	)
}

// closers collects cleanup funcs and runs them in reverse order.
type closers []func()

func (c closers) closeAll() {
	for i := len(c) - 1; i >= 0; i-- {
		c[i]()
	}
}

// openStore connects with the configured adapter, and with a replica when one is configured.
// The returned func closes all connections.
func openStore(ctx context.Context, cfg *Config, logger *slog.Logger) (*postgresengine.BookStore, func(), error) {
	options := storeOptions(cfg, logger)
	var opened closers

	bs, err := func() (*postgresengine.BookStore, error) {
		switch cfg.AdapterType {
		case adapterSQLDB:
			primary, replica, openErr := openPair(ctx, cfg, &opened, openSQLDB)
			if openErr != nil {
				return nil, openErr
			}
			if replica == nil {
				return postgresengine.NewBookStoreFromSQLDB(primary, options...)
			}

			return postgresengine.NewBookStoreFromSQLDBWithReplica(primary, replica, options...)

		case adapterSQLXDB:
			primary, replica, openErr := openPair(ctx, cfg, &opened, openSQLX)
			if openErr != nil {
				return nil, openErr
			}
			if replica == nil {
				return postgresengine.NewBookStoreFromSQLX(primary, options...)
			}

			return postgresengine.NewBookStoreFromSQLXWithReplica(primary, replica, options...)

		default:
			primary, replica, openErr := openPair(ctx, cfg, &opened, openPGXPool)
			if openErr != nil {
				return nil, openErr
			}
			if replica == nil {
				return postgresengine.NewBookStoreFromPGXPool(primary, options...)
			}

			return postgresengine.NewBookStoreFromPGXPoolWithReplica(primary, replica, options...)
		}
	}()
	if err != nil {
		opened.closeAll()
		return nil, nil, err
	}

	return bs, opened.closeAll, nil
}

// openPair opens the primary and, if configured, the replica. The replica is nil without a replica DSN.
func openPair[T any](
	ctx context.Context,
	cfg *Config,
	opened *closers,
	open func(ctx context.Context, dsn string) (T, func(), error),
) (T, T, error) {

	var none T

	primary, closePrimary, err := open(ctx, cfg.DSN)
	if err != nil {
		return none, none, err
	}
	*opened = append(*opened, closePrimary)

	if cfg.ReplicaDSN == "" {
		return primary, none, nil
	}

	replica, closeReplica, err := open(ctx, cfg.ReplicaDSN)
	if err != nil {
		return none, none, err
	}
	*opened = append(*opened, closeReplica)

	return primary, replica, nil
}

func openPGXPool(ctx context.Context, dsn string) (*pgxpool.Pool, func(), error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}

	return pool, pool.Close, nil
}

func openSQLDB(ctx context.Context, dsn string) (*sql.DB, func(), error) {
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, nil, err
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}

func openSQLX(ctx context.Context, dsn string) (*sqlx.DB, func(), error) {
	db, err := sqlx.ConnectContext(ctx, driverPostgres, dsn)
	if err != nil {
		return nil, nil, err
	}

	return db, func() { _ = db.Close() }, nil
}
