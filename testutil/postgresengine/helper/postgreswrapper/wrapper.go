package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/writablebook-go/testutil/postgresengine/config"
	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"

	connectTimeout = 5 * time.Second
)

// Wrapper abstracts over the different adapter types.
type Wrapper interface {
	GetBookStore() *postgresengine.BookStore
	Close()
}

// PGXPoolWrapper wraps a pgxpool-based BookStore.
type PGXPoolWrapper struct {
	pool *pgxpool.Pool
	bs   *postgresengine.BookStore
}

func (w *PGXPoolWrapper) GetBookStore() *postgresengine.BookStore { return w.bs }

func (w *PGXPoolWrapper) Close() { w.pool.Close() }

// SQLDBWrapper wraps a sql.DB-based BookStore.
type SQLDBWrapper struct {
	db *sql.DB
	bs *postgresengine.BookStore
}

func (w *SQLDBWrapper) GetBookStore() *postgresengine.BookStore { return w.bs }

func (w *SQLDBWrapper) Close() { _ = w.db.Close() }

// SQLXWrapper wraps a sqlx.DB-based BookStore.
type SQLXWrapper struct {
	db *sqlx.DB
	bs *postgresengine.BookStore
}

func (w *SQLXWrapper) GetBookStore() *postgresengine.BookStore { return w.bs }

func (w *SQLXWrapper) Close() { _ = w.db.Close() }

// CreateWrapperWithTestConfig opens the configured adapter, builds a BookStore with the given options
// and ensures its table exists. The test is skipped when the database cannot be reached.
func CreateWrapperWithTestConfig(t testing.TB, options ...postgresengine.Option) Wrapper {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var wrapper Wrapper

	switch adapterType := config.AdapterType(); adapterType {
	case typePGXPool, "":
		pool, err := config.PostgresPGXPoolSingle(ctx)
		skipIfUnreachable(t, err)

		bs, err := postgresengine.NewBookStoreFromPGXPool(pool, options...)
		require.NoError(t, err, "error creating book store")
		wrapper = &PGXPoolWrapper{pool: pool, bs: bs}

	case typeSQLDB:
		db, err := config.PostgresSQLDBSingle(ctx)
		skipIfUnreachable(t, err)

		bs, err := postgresengine.NewBookStoreFromSQLDB(db, options...)
		require.NoError(t, err, "error creating book store")
		wrapper = &SQLDBWrapper{db: db, bs: bs}

	case typeSQLXDB:
		db, err := config.PostgresSQLXSingle(ctx)
		skipIfUnreachable(t, err)

		bs, err := postgresengine.NewBookStoreFromSQLX(db, options...)
		require.NoError(t, err, "error creating book store")
		wrapper = &SQLXWrapper{db: db, bs: bs}

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.GetBookStore().EnsureSchema(ctx), "error ensuring schema")

	return wrapper
}

func skipIfUnreachable(t testing.TB, err error) {
	if err != nil {
		t.Skipf("postgres not reachable, skipping: %v", err)
	}
}
