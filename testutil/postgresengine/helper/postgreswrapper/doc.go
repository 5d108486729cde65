// Package postgreswrapper opens a BookStore on top of the database adapter selected
// through the ADAPTER_TYPE environment variable (pgx.pool, sql.db or sqlx.db).
//
// Integration tests use it to run the same test suite against every adapter:
//
//	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t)
//	defer wrapper.Close()
//
//	store := wrapper.GetBookStore()
//
// When the database is unreachable the calling test is skipped.
package postgreswrapper
