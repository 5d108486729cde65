package writablebook

import (
	"github.com/AntonStoeckl/writablebook-go/item"
	"github.com/AntonStoeckl/writablebook-go/tagtree"
)

const (
	ItemTypeID       item.TypeID = 386
	ItemName                     = "Book & Quill"
	ItemMaxStackSize             = 1
)

var _ item.Item = (*WritableBook)(nil)

// WritableBook is the "Book & Quill" item. It never stacks.
type WritableBook struct {
	item.Base
	pages *Pages
}

// NewWritableBook creates a book without pages.
func NewWritableBook() *WritableBook {
	return &WritableBook{
		Base:  item.NewBase(ItemTypeID, 0, ItemName),
		pages: NewPages(),
	}
}

// MaxStackSize returns 1: books never stack.
func (b *WritableBook) MaxStackSize() int {
	return ItemMaxStackSize
}

// PageExists reports whether the book has a page at pageID.
func (b *WritableBook) PageExists(pageID int) bool {
	return b.pages.Exists(pageID)
}

// PageText returns the text of the page at pageID.
func (b *WritableBook) PageText(pageID int) (string, error) {
	return b.pages.Text(pageID)
}

// SetPageText sets the text of a page, adding it if needed. Returns true if the page was created.
func (b *WritableBook) SetPageText(pageID int, text string) (bool, error) {
	return b.pages.SetText(pageID, text)
}

// AddPage grows the book with empty pages up to and including pageID.
func (b *WritableBook) AddPage(pageID int) error {
	return b.pages.AddPage(pageID)
}

// DeletePage removes the page at pageID and shifts later pages down.
func (b *WritableBook) DeletePage(pageID int) error {
	return b.pages.DeletePage(pageID)
}

// InsertPage inserts a page at pageID and shifts later pages up.
func (b *WritableBook) InsertPage(pageID int, text string) error {
	return b.pages.InsertPage(pageID, text)
}

// SwapPages swaps the texts of two pages. Both annotations are cleared.
func (b *WritableBook) SwapPages(pageID1, pageID2 int) error {
	return b.pages.SwapPages(pageID1, pageID2)
}

// Pages returns the book's own container; mutations through it affect the book.
func (b *WritableBook) Pages() *Pages {
	return b.pages
}

// SetPages replaces the container. The book takes ownership of pages; nil means no pages.
func (b *WritableBook) SetPages(pages *Pages) {
	if pages == nil {
		pages = NewPages()
	}

	b.pages = pages
}

// SerializeTag writes the base item fields followed by the pages field.
func (b *WritableBook) SerializeTag(tag *tagtree.Compound) {
	b.Base.SerializeTag(tag)
	WritePagesTag(tag, b.pages)
}

// DeserializeTag reads the base item fields, then replaces all pages with the ones found in tag.
// On error the book is left unchanged.
func (b *WritableBook) DeserializeTag(tag *tagtree.Compound) error {
	base := b.Base
	if err := base.DeserializeTag(tag); err != nil {
		return err
	}

	pages, err := DecodePages(tag)
	if err != nil {
		return err
	}

	b.Base = base
	b.pages = pages

	return nil
}

// Clone returns an independent copy of the book including all of its pages.
func (b *WritableBook) Clone() *WritableBook {
	clone := *b
	clone.pages = b.pages.Clone()

	return &clone
}
