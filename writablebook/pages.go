package writablebook

import (
	"errors"
	"fmt"
	"slices"
)

// Pages is the ordered page container of a book.
//
// For a container of size N exactly the indices 0..N-1 exist. It is not safe for concurrent use;
// the owner of the book serializes access.
type Pages struct {
	pages []Page
}

// NewPages creates a container holding copies of the given pages in order.
func NewPages(pages ...Page) *Pages {
	p := &Pages{}
	p.ReplaceAll(pages)

	return p
}

// Len returns the number of pages.
func (p *Pages) Len() int {
	return len(p.pages)
}

// IsEmpty reports whether the container has no pages.
func (p *Pages) IsEmpty() bool {
	return len(p.pages) == 0
}

// Exists reports whether id addresses an existing page.
func (p *Pages) Exists(id int) bool {
	return id >= 0 && id < len(p.pages)
}

// Page returns the page at id.
func (p *Pages) Page(id int) (Page, error) {
	if !p.Exists(id) {
		return Page{}, p.outOfRange(id)
	}

	return p.pages[id], nil
}

// Text returns the text of the page at id.
func (p *Pages) Text(id int) (string, error) {
	page, err := p.Page(id)
	if err != nil {
		return "", err
	}

	return page.Text(), nil
}

// SetText stores a page with the given text at id, creating it (and every missing page before it) if needed.
//
// The stored page always has an empty annotation, also when it replaces an existing page.
// Returns true if the page did not exist before.
func (p *Pages) SetText(id int, text string) (bool, error) {
	created := false

	if !p.Exists(id) {
		if err := p.AddPage(id); err != nil {
			return false, err
		}

		created = true
	}

	p.pages[id] = NewPage(text)

	return created, nil
}

// AddPage grows the container with empty pages until id exists. Existing pages are untouched.
func (p *Pages) AddPage(id int) error {
	if id < 0 {
		return errors.Join(ErrInvalidArgument, fmt.Errorf("page id %d is negative", id))
	}

	for current := len(p.pages); current <= id; current++ {
		p.pages = append(p.pages, NewPage(""))
	}

	return nil
}

// DeletePage removes the page at id and moves every later page down by one.
func (p *Pages) DeletePage(id int) error {
	if !p.Exists(id) {
		return p.outOfRange(id)
	}

	p.pages = slices.Delete(p.pages, id, id+1)

	return nil
}

// InsertPage inserts a page with the given text at id and moves every page at or after id up by one.
// Inserting at Len() appends.
func (p *Pages) InsertPage(id int, text string) error {
	if id < 0 || id > len(p.pages) {
		return errors.Join(ErrIndexOutOfRange, fmt.Errorf("insert position %d outside [0,%d]", id, len(p.pages)))
	}

	p.pages = slices.Insert(p.pages, id, NewPage(text))

	return nil
}

// InsertEmptyPage inserts an empty page at id.
func (p *Pages) InsertEmptyPage(id int) error {
	return p.InsertPage(id, "")
}

// SwapPages exchanges the texts of two pages.
//
// Both pages are rewritten through SetText, so both annotations end up empty.
func (p *Pages) SwapPages(id1, id2 int) error {
	text1, err := p.Text(id1)
	if err != nil {
		return err
	}

	text2, err := p.Text(id2)
	if err != nil {
		return err
	}

	// both ids exist, so SetText can not fail or grow
	_, _ = p.SetText(id1, text2)
	_, _ = p.SetText(id2, text1)

	return nil
}

// All returns a copy of all pages in order.
func (p *Pages) All() []Page {
	return slices.Clone(p.pages)
}

// ReplaceAll replaces the content with copies of the given pages. The caller's slice is not retained.
func (p *Pages) ReplaceAll(pages []Page) {
	p.pages = make([]Page, 0, len(pages))
	p.pages = append(p.pages, pages...)
}

// Clone returns a deep copy that shares nothing with p.
func (p *Pages) Clone() *Pages {
	clone := &Pages{pages: make([]Page, 0, len(p.pages))}

	for _, page := range p.pages {
		clone.pages = append(clone.pages, NewPageWithAnnotation(page.Text(), page.Annotation()))
	}

	return clone
}

// Equal reports whether both containers hold the same pages in the same order. A nil container
// equals only another nil container.
func (p *Pages) Equal(other *Pages) bool {
	if p == nil || other == nil {
		return p == other
	}

	return slices.Equal(p.pages, other.pages)
}

func (p *Pages) outOfRange(id int) error {
	return errors.Join(ErrIndexOutOfRange, fmt.Errorf("page %d does not exist, book has %d pages", id, len(p.pages)))
}
