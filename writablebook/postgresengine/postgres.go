package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/writablebook-go/tagtree"
	"github.com/AntonStoeckl/writablebook-go/writablebook"
	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine/internal/adapters"
)

const (
	defaultTableName = "books"
	dialectPostgres  = "postgres"
	colBookID        = "book_id"
	colVersion       = "version"
	colItem          = "item"
	colUpdatedAt     = "updated_at"
	castJsonb        = "?::jsonb"
	sqlNow           = "NOW()"

	createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
	book_id    uuid PRIMARY KEY,
	version    bigint NOT NULL,
	item       jsonb NOT NULL,
	updated_at timestamp with time zone NOT NULL DEFAULT NOW()
)`
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
)

// BookStore persists writable books in a PostgreSQL table.
// It holds no mutable state and is safe for concurrent use.
type BookStore struct {
	db               adapters.DBAdapter
	tableName        string
	logger           writablebook.Logger
	contextualLogger writablebook.ContextualLogger
	metricsCollector writablebook.MetricsCollector
	tracingCollector writablebook.TracingCollector
}

// NewBookStoreFromPGXPool creates a new BookStore using a pgx Pool with optional configuration.
func NewBookStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*BookStore, error) {
	if db == nil {
		return nil, writablebook.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewPGXAdapter(db), options...)
}

// NewBookStoreFromPGXPoolWithReplica creates a new BookStore using a primary and a replica pgx Pool.
// For all replica variants, loads run on the replica when the context was marked with
// writablebook.WithEventualConsistency.
func NewBookStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*BookStore, error) {
	if db == nil || replica == nil {
		return nil, writablebook.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewBookStoreFromSQLDB creates a new BookStore using a sql.DB with optional configuration.
func NewBookStoreFromSQLDB(db *sql.DB, options ...Option) (*BookStore, error) {
	if db == nil {
		return nil, writablebook.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLAdapter(db), options...)
}

// NewBookStoreFromSQLDBWithReplica creates a new BookStore using a primary and a replica sql.DB.
func NewBookStoreFromSQLDBWithReplica(db *sql.DB, replica *sql.DB, options ...Option) (*BookStore, error) {
	if db == nil || replica == nil {
		return nil, writablebook.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLAdapterWithReplica(db, replica), options...)
}

// NewBookStoreFromSQLX creates a new BookStore using a sqlx.DB with optional configuration.
func NewBookStoreFromSQLX(db *sqlx.DB, options ...Option) (*BookStore, error) {
	if db == nil {
		return nil, writablebook.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLXAdapter(db), options...)
}

// NewBookStoreFromSQLXWithReplica creates a new BookStore using a primary and a replica sqlx.DB.
func NewBookStoreFromSQLXWithReplica(db *sqlx.DB, replica *sqlx.DB, options ...Option) (*BookStore, error) {
	if db == nil || replica == nil {
		return nil, writablebook.ErrNilDatabaseConnection
	}

	return newBookStore(adapters.NewSQLXAdapterWithReplica(db, replica), options...)
}

func newBookStore(db adapters.DBAdapter, options ...Option) (*BookStore, error) {
	bs := &BookStore{
		db:        db,
		tableName: defaultTableName,
	}

	for _, option := range options {
		if err := option(bs); err != nil {
			return nil, err
		}
	}

	return bs, nil
}

// EnsureSchema creates the book table if it does not exist yet.
func (bs *BookStore) EnsureSchema(ctx context.Context) error {
	obs, ctx := bs.observe(ctx, operationSchema, nil)
	statement := fmt.Sprintf(createTableSQL, pq.QuoteIdentifier(bs.tableName))

	start := time.Now()
	_, execErr := bs.db.Exec(ctx, statement)
	duration := time.Since(start)
	bs.logQueryWithDuration(ctx, statement, operationSchema, duration)

	if execErr != nil {
		bs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, statement)
		obs.failure(errorTypeDatabaseExec)

		return errors.Join(writablebook.ErrEnsuringSchemaFailed, execErr)
	}

	bs.logOperation(ctx, logMsgSchemaEnsured, logAttrTable, bs.tableName)
	obs.success(nil)

	return nil
}

// Save stores the book under bookID and returns its new version.
//
// expectedVersion must be the version returned by the previous Save or Load, or 0 for a book that
// was never stored. If the stored version differs, nothing is written and
// writablebook.ErrConcurrencyConflict is returned.
func (bs *BookStore) Save(
	ctx context.Context,
	bookID uuid.UUID,
	book *writablebook.WritableBook,
	expectedVersion writablebook.Version,
) (writablebook.Version, error) {

	obs, ctx := bs.observe(ctx, operationSave, map[string]string{
		spanAttrBookID:          bookID.String(),
		spanAttrExpectedVersion: fmt.Sprintf("%d", expectedVersion),
	})

	if book == nil {
		obs.failure(errorTypeNilBook)
		return 0, writablebook.ErrNilBook
	}

	itemJSON, encodeErr := bs.encodeBook(book)
	if encodeErr != nil {
		bs.logError(ctx, logMsgEncodeBookFailed, encodeErr, logAttrBookID, bookID.String())
		obs.failure(errorTypeEncodeBook)

		return 0, errors.Join(writablebook.ErrEncodingBookFailed, encodeErr)
	}

	sqlQuery, buildQueryErr := bs.buildSaveQuery(bookID, itemJSON, expectedVersion)
	if buildQueryErr != nil {
		bs.logError(ctx, logMsgBuildSaveQueryFailed, buildQueryErr, logAttrBookID, bookID.String())
		obs.failure(errorTypeBuildQuery)

		return 0, buildQueryErr
	}

	rowsAffected, execErr := bs.executeStatement(ctx, sqlQuery, operationSave, writablebook.ErrSavingBookFailed)
	if execErr != nil {
		obs.failure(errorTypeDatabaseExec)
		return 0, execErr
	}

	if rowsAffected == 0 {
		bs.logOperation(
			ctx,
			logMsgConcurrencyConflict,
			logAttrBookID, bookID.String(),
			logAttrExpectedVersion, expectedVersion,
		)
		obs.concurrencyConflict()

		return 0, writablebook.ErrConcurrencyConflict
	}

	newVersion := expectedVersion + 1
	pageCount := book.Pages().Len()

	bs.logOperation(
		ctx,
		logMsgBookSaved,
		logAttrBookID, bookID.String(),
		logAttrVersion, newVersion,
		logAttrPageCount, pageCount,
		logAttrDurationMS, obs.elapsedMS(),
	)
	obs.recordPages(metricPagesSaved, pageCount)
	obs.success(map[string]string{
		spanAttrVersion:   fmt.Sprintf("%d", newVersion),
		spanAttrPageCount: fmt.Sprintf("%d", pageCount),
	})

	return newVersion, nil
}

// Load reads the book stored under bookID together with its version.
// Returns writablebook.ErrBookNotFound if no such book is stored.
func (bs *BookStore) Load(
	ctx context.Context,
	bookID uuid.UUID,
) (*writablebook.WritableBook, writablebook.Version, error) {

	obs, ctx := bs.observe(ctx, operationLoad, map[string]string{
		spanAttrBookID:      bookID.String(),
		spanAttrConsistency: writablebook.GetConsistencyLevel(ctx).String(),
	})

	sqlQuery, buildQueryErr := bs.buildSelectQuery(bookID)
	if buildQueryErr != nil {
		bs.logError(ctx, logMsgBuildSelectQueryFailed, buildQueryErr, logAttrBookID, bookID.String())
		obs.failure(errorTypeBuildQuery)

		return nil, 0, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := bs.db.Query(ctx, sqlQuery)
	bs.logQueryWithDuration(ctx, sqlQuery, operationLoad, time.Since(start))

	if queryErr != nil {
		bs.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		obs.failure(errorTypeDatabaseQuery)

		return nil, 0, errors.Join(writablebook.ErrQueryingBookFailed, queryErr)
	}
	defer bs.closeRows(ctx, rows)

	row, scanErr := bs.scanSingleRow(ctx, rows)
	if scanErr != nil {
		obs.failure(errorTypeOf(scanErr))
		return nil, 0, scanErr
	}

	book, decodeErr := bs.decodeBook(row.item)
	if decodeErr != nil {
		bs.logError(ctx, logMsgDecodeBookFailed, decodeErr, logAttrBookID, bookID.String())
		obs.failure(errorTypeDecodeBook)

		return nil, 0, errors.Join(writablebook.ErrDecodingBookFailed, decodeErr)
	}

	version := writablebook.Version(row.version)
	pageCount := book.Pages().Len()

	bs.logOperation(
		ctx,
		logMsgBookLoaded,
		logAttrBookID, bookID.String(),
		logAttrVersion, version,
		logAttrPageCount, pageCount,
		logAttrDurationMS, obs.elapsedMS(),
	)
	obs.recordPages(metricPagesLoaded, pageCount)
	obs.success(map[string]string{
		spanAttrVersion:   fmt.Sprintf("%d", version),
		spanAttrPageCount: fmt.Sprintf("%d", pageCount),
	})

	return book, version, nil
}

// Delete removes the book stored under bookID.
// Returns writablebook.ErrBookNotFound if no such book is stored.
func (bs *BookStore) Delete(ctx context.Context, bookID uuid.UUID) error {
	obs, ctx := bs.observe(ctx, operationDelete, map[string]string{
		spanAttrBookID: bookID.String(),
	})

	sqlQuery, buildQueryErr := bs.buildDeleteQuery(bookID)
	if buildQueryErr != nil {
		bs.logError(ctx, logMsgBuildDeleteQueryFailed, buildQueryErr, logAttrBookID, bookID.String())
		obs.failure(errorTypeBuildQuery)

		return buildQueryErr
	}

	rowsAffected, execErr := bs.executeStatement(ctx, sqlQuery, operationDelete, writablebook.ErrDeletingBookFailed)
	if execErr != nil {
		obs.failure(errorTypeDatabaseExec)
		return execErr
	}

	if rowsAffected == 0 {
		obs.failure(errorTypeNotFound)
		return writablebook.ErrBookNotFound
	}

	bs.logOperation(ctx, logMsgBookDeleted, logAttrBookID, bookID.String(), logAttrDurationMS, obs.elapsedMS())
	obs.success(nil)

	return nil
}

type bookRow struct {
	version int64
	item    []byte
}

// scanSingleRow reads the first row, distinguishing "no row" from iteration errors.
func (bs *BookStore) scanSingleRow(ctx context.Context, rows adapters.DBRows) (bookRow, error) {
	row := bookRow{}

	if !rows.Next() {
		if iterErr := rows.Err(); iterErr != nil {
			bs.logError(ctx, logMsgDBQueryFailed, iterErr)
			return row, errors.Join(writablebook.ErrQueryingBookFailed, iterErr)
		}

		return row, writablebook.ErrBookNotFound
	}

	if scanErr := rows.Scan(&row.version, &row.item); scanErr != nil {
		bs.logError(ctx, logMsgScanRowFailed, scanErr)
		return row, errors.Join(writablebook.ErrScanningDBRowFailed, scanErr)
	}

	return row, nil
}

// executeStatement executes an SQL statement and returns the number of affected rows.
func (bs *BookStore) executeStatement(
	ctx context.Context,
	sqlQuery sqlQueryString,
	action string,
	failedErr error,
) (rowsAffectedInt64, error) {

	start := time.Now()
	result, execErr := bs.db.Exec(ctx, sqlQuery)
	bs.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if execErr != nil {
		bs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, errors.Join(failedErr, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		bs.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, errors.Join(writablebook.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (bs *BookStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		bs.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func (bs *BookStore) encodeBook(book *writablebook.WritableBook) ([]byte, error) {
	tag := tagtree.NewCompound()
	book.SerializeTag(tag)

	return tagtree.Marshal(tag)
}

func (bs *BookStore) decodeBook(itemJSON []byte) (*writablebook.WritableBook, error) {
	tag, err := tagtree.Unmarshal(itemJSON)
	if err != nil {
		return nil, err
	}

	book := writablebook.NewWritableBook()
	if err = book.DeserializeTag(tag); err != nil {
		return nil, err
	}

	return book, nil
}

func (bs *BookStore) buildSaveQuery(
	bookID uuid.UUID,
	itemJSON []byte,
	expectedVersion writablebook.Version,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	var sqlQuery sqlQueryString
	var toSQLErr error

	switch expectedVersion {
	case 0:
		sqlQuery, _, toSQLErr = builder.
			Insert(bs.tableName).
			Rows(goqu.Record{
				colBookID:    bookID.String(),
				colVersion:   int64(1),
				colItem:      goqu.L(castJsonb, string(itemJSON)),
				colUpdatedAt: goqu.L(sqlNow),
			}).
			OnConflict(goqu.DoNothing()).
			ToSQL()

	default:
		sqlQuery, _, toSQLErr = builder.
			Update(bs.tableName).
			Set(goqu.Record{
				colVersion:   int64(expectedVersion + 1), //nolint:gosec
				colItem:      goqu.L(castJsonb, string(itemJSON)),
				colUpdatedAt: goqu.L(sqlNow),
			}).
			Where(goqu.Ex{
				colBookID:  bookID.String(),
				colVersion: int64(expectedVersion), //nolint:gosec
			}).
			ToSQL()
	}

	if toSQLErr != nil {
		return "", errors.Join(writablebook.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (bs *BookStore) buildSelectQuery(bookID uuid.UUID) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		From(bs.tableName).
		Select(colVersion, colItem).
		Where(goqu.Ex{colBookID: bookID.String()}).
		ToSQL()

	if toSQLErr != nil {
		return "", errors.Join(writablebook.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (bs *BookStore) buildDeleteQuery(bookID uuid.UUID) (sqlQueryString, error) {
	sqlQuery, _, toSQLErr := goqu.Dialect(dialectPostgres).
		Delete(bs.tableName).
		Where(goqu.Ex{colBookID: bookID.String()}).
		ToSQL()

	if toSQLErr != nil {
		return "", errors.Join(writablebook.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
