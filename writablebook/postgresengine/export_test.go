package postgresengine

import (
	"context"
	"sync"

	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine/internal/adapters"
)

// NewBookStoreWithFakeDB creates a BookStore on top of an in-memory fake adapter.
func NewBookStoreWithFakeDB(db *FakeDB, options ...Option) (*BookStore, error) {
	return newBookStore(db, options...)
}

// FakeDB records statements and replays programmed results.
type FakeDB struct {
	mu      sync.Mutex
	queries []string
	execs   []string

	QueryErr     error
	Rows         *FakeRows
	ExecErr      error
	RowsAffected int64
	AffectedErr  error
}

// FakeRows serves (version, item) rows.
type FakeRows struct {
	Versions []int64
	Items    [][]byte
	ScanErr  error
	IterErr  error
	CloseErr error

	idx    int
	Closed bool
}

var _ adapters.DBAdapter = (*FakeDB)(nil)

func (f *FakeDB) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)

	if f.QueryErr != nil {
		return nil, f.QueryErr
	}

	if f.Rows == nil {
		f.Rows = &FakeRows{}
	}

	return f.Rows, nil
}

func (f *FakeDB) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, query)

	if f.ExecErr != nil {
		return nil, f.ExecErr
	}

	return fakeResult{rowsAffected: f.RowsAffected, err: f.AffectedErr}, nil
}

// LastQuery returns the most recent statement passed to Query.
func (f *FakeDB) LastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queries) == 0 {
		return ""
	}

	return f.queries[len(f.queries)-1]
}

// LastExec returns the most recent statement passed to Exec.
func (f *FakeDB) LastExec() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.execs) == 0 {
		return ""
	}

	return f.execs[len(f.execs)-1]
}

func (r *FakeRows) Next() bool {
	if r.idx >= len(r.Versions) {
		return false
	}
	r.idx++

	return true
}

func (r *FakeRows) Scan(dest ...any) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}

	*(dest[0].(*int64)) = r.Versions[r.idx-1]
	*(dest[1].(*[]byte)) = r.Items[r.idx-1]

	return nil
}

func (r *FakeRows) Err() error {
	return r.IterErr
}

func (r *FakeRows) Close() error {
	r.Closed = true
	return r.CloseErr
}

type fakeResult struct {
	rowsAffected int64
	err          error
}

func (r fakeResult) RowsAffected() (int64, error) {
	return r.rowsAffected, r.err
}
