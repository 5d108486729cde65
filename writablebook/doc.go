// Package writablebook provides the page model of a writable book item and its conversion
// to and from the tagged-tree persistence format.
//
// This package defines the page container with its positional invariants, the codec for the
// "pages" tag, the WritableBook item, and the types shared with storage engines such as
// errors, observability hooks, and consistency levels.
//
// Page indices are zero-based and always contiguous: growing the book to reach an index fills
// every page in between with an empty page, and inserting or deleting shifts all later pages.
//
// Key types:
//   - Page: one page of text plus its legacy photo name annotation
//   - Pages: the ordered, index-addressable page container
//   - WritableBook: the "Book & Quill" item owning a Pages container
//
// Common usage pattern:
//
//	book := writablebook.NewWritableBook()
//
//	created, err := book.SetPageText(3, "fourth page") // pages 0..2 are created empty
//	if err != nil {
//		// handle error
//	}
//
//	tag := tagtree.NewCompound()
//	book.SerializeTag(tag)
//
//	loaded := writablebook.NewWritableBook()
//	err = loaded.DeserializeTag(tag)
package writablebook
