package postgresengine_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/AntonStoeckl/writablebook-go/testutil/postgresengine/helper" //nolint:revive
	"github.com/AntonStoeckl/writablebook-go/writablebook"
	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

const storedItemJSON = `{"display":{"Name":"Diary"},"pages":[{"text":"first","photoname":""},{"text":"second","photoname":"sunset"}]}`

func givenStoreWithFakeDB(t *testing.T, db *postgresengine.FakeDB, options ...postgresengine.Option) *postgresengine.BookStore {
	bs, err := postgresengine.NewBookStoreWithFakeDB(db, options...)
	require.NoError(t, err, "error in arranging test data")

	return bs
}

func Test_FactoryFunctions_ShouldFail_WithNilDatabaseConnection(t *testing.T) {
	testCases := []struct {
		name        string
		factoryFunc func() (*postgresengine.BookStore, error)
	}{
		{
			name: "NewBookStoreFromPGXPool with nil",
			factoryFunc: func() (*postgresengine.BookStore, error) {
				return postgresengine.NewBookStoreFromPGXPool(nil)
			},
		},
		{
			name: "NewBookStoreFromPGXPoolWithReplica with nil",
			factoryFunc: func() (*postgresengine.BookStore, error) {
				return postgresengine.NewBookStoreFromPGXPoolWithReplica(nil, nil)
			},
		},
		{
			name: "NewBookStoreFromSQLDB with nil",
			factoryFunc: func() (*postgresengine.BookStore, error) {
				return postgresengine.NewBookStoreFromSQLDB(nil)
			},
		},
		{
			name: "NewBookStoreFromSQLDBWithReplica with nil replica",
			factoryFunc: func() (*postgresengine.BookStore, error) {
				return postgresengine.NewBookStoreFromSQLDBWithReplica(nil, nil)
			},
		},
		{
			name: "NewBookStoreFromSQLXWithReplica with nil replica",
			factoryFunc: func() (*postgresengine.BookStore, error) {
				return postgresengine.NewBookStoreFromSQLXWithReplica(nil, nil)
			},
		},
		{
			name: "NewBookStoreFromSQLX with nil",
			factoryFunc: func() (*postgresengine.BookStore, error) {
				return postgresengine.NewBookStoreFromSQLX(nil)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			bs, err := tc.factoryFunc()

			// assert
			assert.ErrorIs(t, err, writablebook.ErrNilDatabaseConnection)
			assert.Nil(t, bs)
		})
	}
}

func Test_WithTableName_ShouldFail_WithEmptyTableName(t *testing.T) {
	// act
	_, err := postgresengine.NewBookStoreWithFakeDB(&postgresengine.FakeDB{}, postgresengine.WithTableName(""))

	// assert
	assert.ErrorIs(t, err, writablebook.ErrEmptyTableName)
}

func Test_EnsureSchema_CreatesTableIfNotExists(t *testing.T) {
	testCases := []struct {
		name          string
		options       []postgresengine.Option
		expectedTable string
	}{
		{name: "default table name", expectedTable: `"books"`},
		{name: "custom table name", options: []postgresengine.Option{postgresengine.WithTableName("book_data")}, expectedTable: `"book_data"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			db := &postgresengine.FakeDB{}
			bs := givenStoreWithFakeDB(t, db, tc.options...)

			// act
			err := bs.EnsureSchema(context.Background())

			// assert
			require.NoError(t, err)
			assert.Contains(t, db.LastExec(), "CREATE TABLE IF NOT EXISTS "+tc.expectedTable)
			assert.Contains(t, db.LastExec(), "item       jsonb NOT NULL")
		})
	}
}

func Test_EnsureSchema_ShouldFail_WhenExecFails(t *testing.T) {
	// arrange
	cause := errors.New("permission denied")
	bs := givenStoreWithFakeDB(t, &postgresengine.FakeDB{ExecErr: cause})

	// act
	err := bs.EnsureSchema(context.Background())

	// assert
	assert.ErrorIs(t, err, writablebook.ErrEnsuringSchemaFailed)
	assert.ErrorIs(t, err, cause)
}

func Test_Save_InsertsBook_WhenExpectedVersionIsZero(t *testing.T) {
	// arrange
	db := &postgresengine.FakeDB{RowsAffected: 1}
	bs := givenStoreWithFakeDB(t, db)
	bookID := GivenUniqueID(t)

	// act
	version, err := bs.Save(context.Background(), bookID, FixtureBook(t, "", "p1", "it's"), 0)

	// assert
	require.NoError(t, err)
	assert.Equal(t, writablebook.Version(1), version)

	sqlQuery := db.LastExec()
	assert.Contains(t, sqlQuery, `INSERT INTO "books"`)
	assert.Contains(t, sqlQuery, "ON CONFLICT DO NOTHING")
	assert.Contains(t, sqlQuery, bookID.String())
	assert.Contains(t, sqlQuery, `{"pages":[{"text":"p1","photoname":""},{"text":"it''s","photoname":""}]}`)
	assert.Contains(t, sqlQuery, "::jsonb")
}

func Test_Save_UpdatesBook_WhenExpectedVersionIsGiven(t *testing.T) {
	// arrange
	db := &postgresengine.FakeDB{RowsAffected: 1}
	bs := givenStoreWithFakeDB(t, db, postgresengine.WithTableName("book_data"))
	bookID := GivenUniqueID(t)

	// act
	version, err := bs.Save(context.Background(), bookID, FixtureBook(t, "Diary", "p1"), 2)

	// assert
	require.NoError(t, err)
	assert.Equal(t, writablebook.Version(3), version)

	sqlQuery := db.LastExec()
	assert.Contains(t, sqlQuery, `UPDATE "book_data" SET`)
	assert.Contains(t, sqlQuery, `("version" = 2)`)
	assert.Contains(t, sqlQuery, bookID.String())
	assert.Contains(t, sqlQuery, `"display":{"Name":"Diary"}`)
	assert.NotContains(t, sqlQuery, "ON CONFLICT")
}

func Test_Save_ShouldFail_WithConcurrencyConflict_WhenNoRowIsAffected(t *testing.T) {
	testCases := []struct {
		name            string
		expectedVersion writablebook.Version
	}{
		{name: "insert of an existing book", expectedVersion: 0},
		{name: "update with a stale version", expectedVersion: 5},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			bs := givenStoreWithFakeDB(t, &postgresengine.FakeDB{RowsAffected: 0})

			// act
			version, err := bs.Save(context.Background(), GivenUniqueID(t), FixtureBook(t, "", "p1"), tc.expectedVersion)

			// assert
			assert.ErrorIs(t, err, writablebook.ErrConcurrencyConflict)
			assert.Zero(t, version)
		})
	}
}

func Test_Save_ShouldFail_WithNilBook(t *testing.T) {
	// arrange
	db := &postgresengine.FakeDB{RowsAffected: 1}
	bs := givenStoreWithFakeDB(t, db)

	// act
	_, err := bs.Save(context.Background(), GivenUniqueID(t), nil, 0)

	// assert
	assert.ErrorIs(t, err, writablebook.ErrNilBook)
	assert.Empty(t, db.LastExec(), "nothing should be written")
}

func Test_Save_ShouldFail_WhenDatabaseFails(t *testing.T) {
	cause := errors.New("connection reset")

	testCases := []struct {
		name        string
		db          *postgresengine.FakeDB
		expectedErr error
	}{
		{name: "exec fails", db: &postgresengine.FakeDB{ExecErr: cause}, expectedErr: writablebook.ErrSavingBookFailed},
		{name: "rows affected fails", db: &postgresengine.FakeDB{AffectedErr: cause}, expectedErr: writablebook.ErrGettingRowsAffectedFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			bs := givenStoreWithFakeDB(t, tc.db)

			// act
			_, err := bs.Save(context.Background(), GivenUniqueID(t), FixtureBook(t, "", "p1"), 0)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.ErrorIs(t, err, cause)
		})
	}
}

func Test_Load_ReturnsStoredBookAndVersion(t *testing.T) {
	// arrange
	rows := &postgresengine.FakeRows{Versions: []int64{4}, Items: [][]byte{[]byte(storedItemJSON)}}
	db := &postgresengine.FakeDB{Rows: rows}
	bs := givenStoreWithFakeDB(t, db)
	bookID := GivenUniqueID(t)

	// act
	book, version, err := bs.Load(context.Background(), bookID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, writablebook.Version(4), version)
	assert.Equal(t, "Diary", book.CustomName())
	assert.Equal(t, []string{"first", "second"}, PageTexts(book))

	page, err := book.Pages().Page(1)
	require.NoError(t, err)
	assert.Equal(t, "sunset", page.Annotation())

	assert.Contains(t, db.LastQuery(), `SELECT "version", "item" FROM "books"`)
	assert.Contains(t, db.LastQuery(), bookID.String())
	assert.True(t, rows.Closed, "rows should be closed")
}

func Test_Load_ShouldFail_WithBookNotFound_WhenNoRowIsReturned(t *testing.T) {
	// arrange
	rows := &postgresengine.FakeRows{}
	bs := givenStoreWithFakeDB(t, &postgresengine.FakeDB{Rows: rows})

	// act
	book, version, err := bs.Load(context.Background(), GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, writablebook.ErrBookNotFound)
	assert.Nil(t, book)
	assert.Zero(t, version)
	assert.True(t, rows.Closed, "rows should be closed")
}

func Test_Load_ShouldFail_WhenDatabaseOrDecodingFails(t *testing.T) {
	cause := errors.New("boom")

	testCases := []struct {
		name         string
		db           *postgresengine.FakeDB
		expectedErrs []error
	}{
		{
			name:         "query fails",
			db:           &postgresengine.FakeDB{QueryErr: cause},
			expectedErrs: []error{writablebook.ErrQueryingBookFailed, cause},
		},
		{
			name:         "row iteration fails",
			db:           &postgresengine.FakeDB{Rows: &postgresengine.FakeRows{IterErr: cause}},
			expectedErrs: []error{writablebook.ErrQueryingBookFailed, cause},
		},
		{
			name: "scan fails",
			db: &postgresengine.FakeDB{Rows: &postgresengine.FakeRows{
				Versions: []int64{1}, Items: [][]byte{[]byte(storedItemJSON)}, ScanErr: cause,
			}},
			expectedErrs: []error{writablebook.ErrScanningDBRowFailed, cause},
		},
		{
			name: "stored item is not json",
			db: &postgresengine.FakeDB{Rows: &postgresengine.FakeRows{
				Versions: []int64{1}, Items: [][]byte{[]byte("not json")},
			}},
			expectedErrs: []error{writablebook.ErrDecodingBookFailed},
		},
		{
			name: "stored pages are malformed",
			db: &postgresengine.FakeDB{Rows: &postgresengine.FakeRows{
				Versions: []int64{1}, Items: [][]byte{[]byte(`{"pages":[{"photoname":"x"}]}`)},
			}},
			expectedErrs: []error{writablebook.ErrDecodingBookFailed, writablebook.ErrMalformedPagesTag},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			bs := givenStoreWithFakeDB(t, tc.db)

			// act
			book, _, err := bs.Load(context.Background(), GivenUniqueID(t))

			// assert
			assert.Nil(t, book)
			for _, expectedErr := range tc.expectedErrs {
				assert.ErrorIs(t, err, expectedErr)
			}
		})
	}
}

func Test_Delete(t *testing.T) {
	testCases := []struct {
		name         string
		rowsAffected int64
		expectedErr  error
	}{
		{name: "existing book is deleted", rowsAffected: 1},
		{name: "missing book fails with not found", rowsAffected: 0, expectedErr: writablebook.ErrBookNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			db := &postgresengine.FakeDB{RowsAffected: tc.rowsAffected}
			bs := givenStoreWithFakeDB(t, db)
			bookID := GivenUniqueID(t)

			// act
			err := bs.Delete(context.Background(), bookID)

			// assert
			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, db.LastExec(), `DELETE FROM "books"`)
			assert.Contains(t, db.LastExec(), bookID.String())
		})
	}
}

func Test_SaveThenLoad_RoundTripsThroughStoredJSON(t *testing.T) {
	// arrange
	db := &postgresengine.FakeDB{RowsAffected: 1}
	bs := givenStoreWithFakeDB(t, db)
	original := FixtureBook(t, "Notes", "a", "", "c")
	bookID := uuid.New()

	_, err := bs.Save(context.Background(), bookID, original, 0)
	require.NoError(t, err)

	storedJSON := `{"display":{"Name":"Notes"},"pages":[{"text":"a","photoname":""},{"text":"","photoname":""},{"text":"c","photoname":""}]}`
	require.Contains(t, db.LastExec(), storedJSON)

	db.Rows = &postgresengine.FakeRows{Versions: []int64{1}, Items: [][]byte{[]byte(storedJSON)}}

	// act
	loaded, version, err := bs.Load(context.Background(), bookID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, writablebook.Version(1), version)
	assert.True(t, original.Pages().Equal(loaded.Pages()))
	assert.Equal(t, original.CustomName(), loaded.CustomName())
}

func Test_SaveThenLoad_KeepsTextThatIsNotJSONSafe(t *testing.T) {
	// arrange
	db := &postgresengine.FakeDB{RowsAffected: 1}
	bs := givenStoreWithFakeDB(t, db)
	original := FixtureBook(t, "Bin", "a\x00b", "\xff\xfe")
	bookID := uuid.New()

	_, err := bs.Save(context.Background(), bookID, original, 0)
	require.NoError(t, err)

	storedJSON := `{"display":{"Name":"Bin"},"pages":[{"text":"base64:YQBi","photoname":""},{"text":"base64://4=","photoname":""}]}`
	require.Contains(t, db.LastExec(), storedJSON)
	assert.True(t, utf8.ValidString(db.LastExec()), "statement must be valid UTF-8")
	assert.NotContains(t, db.LastExec(), `\u0000`, "jsonb rejects NUL escapes")

	db.Rows = &postgresengine.FakeRows{Versions: []int64{1}, Items: [][]byte{[]byte(storedJSON)}}

	// act
	loaded, _, err := bs.Load(context.Background(), bookID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"a\x00b", "\xff\xfe"}, PageTexts(loaded))
}

func Test_Observability_WithLogger_LogsQueriesAndOperations(t *testing.T) {
	// arrange
	logHandler := NewLogHandlerSpy(false)
	logger := slog.New(logHandler)
	db := &postgresengine.FakeDB{RowsAffected: 1}
	bs := givenStoreWithFakeDB(t, db, postgresengine.WithLogger(logger))
	bookID := GivenUniqueID(t)

	// act
	_, err := bs.Save(context.Background(), bookID, FixtureBook(t, "", "p1", "p2"), 0)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, logHandler.GetRecordCount(), "save should log one SQL statement and one operational statement")
	assert.True(t,
		logHandler.HasDebugLogWithMessage("executed sql for: save").WithDurationMS().WithAttr("query").Assert(),
		"should log the SQL with duration_ms",
	)
	assert.True(t,
		logHandler.HasInfoLogWithMessage("bookstore operation: book saved").
			WithDurationMS().
			WithAttrValue("book_id", bookID.String()).
			WithAttrValue("version", "1").
			WithAttrValue("page_count", "2").
			Assert(),
		"should log the saved book with version and page count",
	)
}

func Test_Observability_WithContextualLogger_LogsErrors(t *testing.T) {
	// arrange
	logHandler := NewLogHandlerSpy(false)
	logger := slog.New(logHandler)
	bs := givenStoreWithFakeDB(t, &postgresengine.FakeDB{ExecErr: errors.New("boom")}, postgresengine.WithContextualLogger(logger))

	// act
	err := bs.Delete(context.Background(), GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, writablebook.ErrDeletingBookFailed)
	assert.True(t, logHandler.HasErrorLogWithMessage("database execution failed").WithAttrValue("error", "boom").Assert())
}

func Test_Observability_WithLogger_LogsConcurrencyConflict(t *testing.T) {
	// arrange
	logHandler := NewLogHandlerSpy(false)
	bs := givenStoreWithFakeDB(t, &postgresengine.FakeDB{RowsAffected: 0}, postgresengine.WithLogger(slog.New(logHandler)))

	// act
	_, err := bs.Save(context.Background(), GivenUniqueID(t), FixtureBook(t, "", "p1"), 7)

	// assert
	assert.ErrorIs(t, err, writablebook.ErrConcurrencyConflict)
	assert.True(t,
		logHandler.HasInfoLogWithMessage("bookstore operation: concurrency conflict detected").
			WithAttrValue("expected_version", "7").
			Assert(),
	)
}

func Test_Observability_WithMetrics_RecordsDurationsAndPageCounts(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()
	rows := &postgresengine.FakeRows{Versions: []int64{1}, Items: [][]byte{[]byte(storedItemJSON)}}
	db := &postgresengine.FakeDB{RowsAffected: 1, Rows: rows}
	bs := givenStoreWithFakeDB(t, db, postgresengine.WithMetrics(metrics))

	// act
	_, saveErr := bs.Save(context.Background(), GivenUniqueID(t), FixtureBook(t, "", "p1", "p2", "p3"), 0)
	_, _, loadErr := bs.Load(context.Background(), GivenUniqueID(t))

	// assert
	require.NoError(t, saveErr)
	require.NoError(t, loadErr)
	assert.True(t, metrics.HasDurationRecord("bookstore_save_duration_seconds", map[string]string{"status": "success"}))
	assert.True(t, metrics.HasDurationRecord("bookstore_load_duration_seconds", map[string]string{"status": "success"}))
	assert.True(t, metrics.HasValueRecord("bookstore_pages_saved", 3))
	assert.True(t, metrics.HasValueRecord("bookstore_pages_loaded", 2))
	assert.Empty(t, metrics.GetCounterRecords(), "no error or conflict should be counted")
}

func Test_Observability_WithMetrics_CountsErrorsAndConflicts(t *testing.T) {
	// arrange
	metrics := NewMetricsCollectorSpy()
	db := &postgresengine.FakeDB{RowsAffected: 0}
	bs := givenStoreWithFakeDB(t, db, postgresengine.WithMetrics(metrics))

	// act
	_, conflictErr := bs.Save(context.Background(), GivenUniqueID(t), FixtureBook(t, "", "p1"), 1)
	notFoundErr := bs.Delete(context.Background(), GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, conflictErr, writablebook.ErrConcurrencyConflict)
	assert.ErrorIs(t, notFoundErr, writablebook.ErrBookNotFound)
	assert.True(t, metrics.HasCounterRecord("bookstore_concurrency_conflicts_total", map[string]string{"operation": "save"}))
	assert.True(t, metrics.HasDurationRecord("bookstore_save_duration_seconds", map[string]string{"status": "conflict"}))
	assert.True(t, metrics.HasCounterRecord("bookstore_database_errors_total", map[string]string{
		"operation":  "delete",
		"error_type": "not_found",
	}))
}

func Test_Observability_WithContextualMetrics_PrefersContextMethods(t *testing.T) {
	// arrange
	metrics := NewContextualMetricsCollectorSpy()
	bs := givenStoreWithFakeDB(t, &postgresengine.FakeDB{RowsAffected: 1}, postgresengine.WithMetrics(metrics))

	// act
	_, err := bs.Save(context.Background(), GivenUniqueID(t), FixtureBook(t, "", "p1"), 0)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, metrics.GetContextCallCount(), "duration and page count should go through the context methods")
	assert.True(t, metrics.HasDurationRecord("bookstore_save_duration_seconds", nil))
}

func Test_Observability_WithTracing_RecordsSpans(t *testing.T) {
	// arrange
	tracing := NewTracingCollectorSpy()
	rows := &postgresengine.FakeRows{Versions: []int64{3}, Items: [][]byte{[]byte(storedItemJSON)}}
	bs := givenStoreWithFakeDB(t, &postgresengine.FakeDB{RowsAffected: 0, Rows: rows}, postgresengine.WithTracing(tracing))
	bookID := GivenUniqueID(t)

	// act
	_, _, loadErr := bs.Load(writablebook.WithEventualConsistency(context.Background()), bookID)
	_, saveErr := bs.Save(context.Background(), bookID, FixtureBook(t, "", "p1"), 3)

	// assert
	require.NoError(t, loadErr)
	assert.ErrorIs(t, saveErr, writablebook.ErrConcurrencyConflict)

	loadSpan, found := tracing.FindSpan("bookstore.load")
	require.True(t, found)
	assert.True(t, loadSpan.Finished)
	assert.Equal(t, "success", loadSpan.Status)
	assert.Equal(t, bookID.String(), loadSpan.StartAttributes["book_id"])
	assert.Equal(t, "eventual", loadSpan.StartAttributes["consistency"])
	assert.Equal(t, "3", loadSpan.EndAttributes["version"])
	assert.Equal(t, "2", loadSpan.EndAttributes["page_count"])

	saveSpan, found := tracing.FindSpan("bookstore.save")
	require.True(t, found)
	assert.Equal(t, "error", saveSpan.Status)
	assert.Equal(t, "3", saveSpan.StartAttributes["expected_version"])
	assert.Equal(t, "concurrency_conflict", saveSpan.EndAttributes["error_type"])
	assert.Equal(t, "error", saveSpan.SpanContext.GetStatus())
}
