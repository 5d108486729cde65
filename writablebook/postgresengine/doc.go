// Package postgresengine provides a PostgreSQL storage engine for writable books.
//
// A book is stored as one row holding the JSON projection of the book's item tag, an optimistic
// concurrency version, and the time of the last update. Saving with a stale version fails with
// writablebook.ErrConcurrencyConflict instead of overwriting a concurrent edit.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Optimistic concurrency control via a version column
//   - Optional replica reads for eventually consistent contexts
//   - Configurable table names, logging, metrics, and tracing
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewBookStoreFromPGXPool(
//		db,
//		postgresengine.WithTableName("my_books"),
//		postgresengine.WithLogger(slog.Default()),
//	)
//
//	_ = store.EnsureSchema(ctx)
//
//	version, err := store.Save(ctx, bookID, book, 0) // 0: the book was never stored
//	book, version, err = store.Load(ctx, bookID)
//	_, _ = book.SetPageText(0, "edited")
//	version, err = store.Save(ctx, bookID, book, version)
package postgresengine
