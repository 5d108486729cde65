package tagtree

import (
	"errors"
	"fmt"
)

// List is an ordered sequence of Tags.
type List struct {
	items []Tag
}

// NewList creates a List holding the given tags in order. Nil tags are skipped.
func NewList(tags ...Tag) *List {
	l := &List{items: make([]Tag, 0, len(tags))}
	for _, t := range tags {
		l.Push(t)
	}

	return l
}

func (*List) Kind() Kind {
	return KindList
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.items)
}

// Push appends t. A nil tag is ignored.
func (l *List) Push(t Tag) {
	if t == nil {
		return
	}

	l.items = append(l.items, t)
}

// Get returns the element at index i.
func (l *List) Get(i int) (Tag, error) {
	if i < 0 || i >= len(l.items) {
		return nil, errors.Join(ErrTagNotFound, fmt.Errorf("list index %d out of range [0,%d)", i, len(l.items)))
	}

	return l.items[i], nil
}

// GetCompound returns the element at index i as a Compound.
func (l *List) GetCompound(i int) (*Compound, error) {
	t, err := l.Get(i)
	if err != nil {
		return nil, err
	}

	c, ok := t.(*Compound)
	if !ok {
		return nil, errors.Join(ErrTagTypeMismatch, fmt.Errorf("list index %d is a %s, want compound", i, t.Kind()))
	}

	return c, nil
}

// All returns a shallow copy of the elements.
func (l *List) All() []Tag {
	out := make([]Tag, len(l.items))
	copy(out, l.items)

	return out
}

// Clone returns a deep copy.
func (l *List) Clone() *List {
	out := &List{items: make([]Tag, len(l.items))}
	for i, t := range l.items {
		out.items[i] = cloneTag(t)
	}

	return out
}

func (l *List) equal(other *List) bool {
	if len(l.items) != len(other.items) {
		return false
	}

	for i := range l.items {
		if !Equal(l.items[i], other.items[i]) {
			return false
		}
	}

	return true
}
