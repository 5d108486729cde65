package helper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/writablebook-go/writablebook"
	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

// GivenUniqueID returns a fresh time-ordered book id.
func GivenUniqueID(t testing.TB) uuid.UUID {
	bookID, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return bookID
}

// FixtureBook builds a book with one page per text and a custom name.
func FixtureBook(t testing.TB, customName string, texts ...string) *writablebook.WritableBook {
	book := writablebook.NewWritableBook()
	book.SetCustomName(customName)

	for i, text := range texts {
		_, err := book.SetPageText(i, text)
		require.NoError(t, err, "error in arranging test data")
	}

	return book
}

// GivenStoredBook saves a fixture book under a fresh id and returns the id and the stored version.
func GivenStoredBook(
	t testing.TB,
	ctx context.Context,
	store *postgresengine.BookStore,
	texts ...string,
) (uuid.UUID, writablebook.Version) {

	bookID := GivenUniqueID(t)

	version, err := store.Save(ctx, bookID, FixtureBook(t, "fixture", texts...), 0)
	require.NoError(t, err, "error in arranging test data")

	return bookID, version
}

// PageTexts returns the texts of all pages of book in order.
func PageTexts(book *writablebook.WritableBook) []string {
	pages := book.Pages().All()
	texts := make([]string, 0, len(pages))

	for _, page := range pages {
		texts = append(texts, page.Text())
	}

	return texts
}
