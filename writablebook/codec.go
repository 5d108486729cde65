package writablebook

import (
	"errors"
	"fmt"

	"github.com/AntonStoeckl/writablebook-go/tagtree"
)

const (
	TagPages         = "pages"     // list of compounds
	TagPageText      = "text"      // string
	TagPagePhotoName = "photoname" // string
)

// DecodePages reads the pages list from tag.
//
// A missing pages field yields an empty container. Each list element must be a compound with a
// string "text"; "photoname" is optional and defaults to "".
func DecodePages(tag *tagtree.Compound) (*Pages, error) {
	pages := NewPages()

	if !tag.Has(TagPages) {
		return pages, nil
	}

	list, err := tag.GetList(TagPages)
	if err != nil {
		return nil, errors.Join(ErrMalformedPagesTag, err)
	}

	pages.pages = make([]Page, 0, list.Len())

	for i := 0; i < list.Len(); i++ {
		page, decodeErr := decodePage(list, i)
		if decodeErr != nil {
			return nil, errors.Join(ErrMalformedPagesTag, fmt.Errorf("page %d", i), decodeErr)
		}

		pages.pages = append(pages.pages, page)
	}

	return pages, nil
}

func decodePage(list *tagtree.List, i int) (Page, error) {
	record, err := list.GetCompound(i)
	if err != nil {
		return Page{}, err
	}

	text, err := record.GetString(TagPageText)
	if err != nil {
		return Page{}, err
	}

	photoName, err := record.GetStringOr(TagPagePhotoName, "")
	if err != nil {
		return Page{}, err
	}

	return NewPageWithAnnotation(text, photoName), nil
}

// EncodePages returns a new compound holding the pages field of p.
// For an empty container the compound has no pages field at all.
func EncodePages(p *Pages) *tagtree.Compound {
	tag := tagtree.NewCompound()
	WritePagesTag(tag, p)

	return tag
}

// WritePagesTag writes the pages field of p into tag, removing a stale pages field if p is empty.
func WritePagesTag(tag *tagtree.Compound, p *Pages) {
	if p.IsEmpty() {
		tag.Remove(TagPages)
		return
	}

	list := tagtree.NewList()

	for _, page := range p.pages {
		record := tagtree.NewCompound()
		record.SetString(TagPageText, page.Text())
		record.SetString(TagPagePhotoName, page.Annotation())
		list.Push(record)
	}

	_ = tag.SetList(TagPages, list) // list is not nil
}
