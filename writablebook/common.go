package writablebook

import (
	"errors"
)

// Page errors
var (
	// ErrIndexOutOfRange is returned when an operation references a page that does not exist.
	ErrIndexOutOfRange = errors.New("page index out of range")

	// ErrInvalidArgument is returned for input that is invalid regardless of the book's state.
	ErrInvalidArgument = errors.New("invalid page argument")

	// ErrMalformedPagesTag is returned when the pages tag does not have the expected layout.
	ErrMalformedPagesTag = errors.New("pages tag is malformed")
)

// Storage errors
var (
	ErrNilDatabaseConnection     = errors.New("database connection must not be nil")
	ErrEmptyTableName            = errors.New("table name must not be empty")
	ErrNilBook                   = errors.New("book must not be nil")
	ErrBookNotFound              = errors.New("book not found")
	ErrConcurrencyConflict       = errors.New("concurrency error, no rows were affected")
	ErrBuildingQueryFailed       = errors.New("building query failed")
	ErrQueryingBookFailed        = errors.New("querying book failed")
	ErrSavingBookFailed          = errors.New("saving book failed")
	ErrDeletingBookFailed        = errors.New("deleting book failed")
	ErrEnsuringSchemaFailed      = errors.New("ensuring schema failed")
	ErrScanningDBRowFailed       = errors.New("scanning db row failed")
	ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
	ErrEncodingBookFailed        = errors.New("encoding book failed")
	ErrDecodingBookFailed        = errors.New("decoding book failed")
)

// Version is the optimistic concurrency version of a stored book. Zero means "never stored".
type Version = uint64
