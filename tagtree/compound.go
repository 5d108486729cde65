package tagtree

import (
	"errors"
	"fmt"
	"slices"
)

// Compound is a record of named Tags. Field order is the order of first insertion.
type Compound struct {
	names  []string
	values map[string]Tag
}

// NewCompound creates an empty Compound.
func NewCompound() *Compound {
	return &Compound{values: make(map[string]Tag)}
}

func (*Compound) Kind() Kind {
	return KindCompound
}

// Len returns the number of fields.
func (c *Compound) Len() int {
	return len(c.names)
}

// Names returns the field names in insertion order.
func (c *Compound) Names() []string {
	return slices.Clone(c.names)
}

// Has reports whether a field with the given name exists.
func (c *Compound) Has(name string) bool {
	_, ok := c.values[name]
	return ok
}

// Get returns the field with the given name.
func (c *Compound) Get(name string) (Tag, error) {
	t, ok := c.values[name]
	if !ok {
		return nil, errors.Join(ErrTagNotFound, fmt.Errorf("field %q", name))
	}

	return t, nil
}

// Set stores t under name, keeping the position of an existing field.
func (c *Compound) Set(name string, t Tag) error {
	if t == nil {
		return ErrNilTag
	}

	if _, exists := c.values[name]; !exists {
		c.names = append(c.names, name)
	}

	c.values[name] = t

	return nil
}

// Remove deletes the field with the given name. Removing a missing field is a no-op.
func (c *Compound) Remove(name string) {
	if _, exists := c.values[name]; !exists {
		return
	}

	delete(c.values, name)
	c.names = slices.DeleteFunc(c.names, func(n string) bool { return n == name })
}

// SetString stores a string leaf under name.
func (c *Compound) SetString(name, value string) {
	_ = c.Set(name, String(value)) // a String is never nil
}

// GetString returns the string field with the given name.
func (c *Compound) GetString(name string) (string, error) {
	t, err := c.Get(name)
	if err != nil {
		return "", err
	}

	s, ok := t.(String)
	if !ok {
		return "", errors.Join(ErrTagTypeMismatch, fmt.Errorf("field %q is a %s, want string", name, t.Kind()))
	}

	return string(s), nil
}

// GetStringOr returns the string field with the given name, or def if the field is absent.
// A present field of another type is still an error.
func (c *Compound) GetStringOr(name, def string) (string, error) {
	if !c.Has(name) {
		return def, nil
	}

	return c.GetString(name)
}

// SetList stores l under name.
func (c *Compound) SetList(name string, l *List) error {
	if l == nil {
		return ErrNilTag
	}

	return c.Set(name, l)
}

// GetList returns the list field with the given name.
func (c *Compound) GetList(name string) (*List, error) {
	t, err := c.Get(name)
	if err != nil {
		return nil, err
	}

	l, ok := t.(*List)
	if !ok {
		return nil, errors.Join(ErrTagTypeMismatch, fmt.Errorf("field %q is a %s, want list", name, t.Kind()))
	}

	return l, nil
}

// SetCompound stores child under name.
func (c *Compound) SetCompound(name string, child *Compound) error {
	if child == nil {
		return ErrNilTag
	}

	return c.Set(name, child)
}

// GetCompound returns the compound field with the given name.
func (c *Compound) GetCompound(name string) (*Compound, error) {
	t, err := c.Get(name)
	if err != nil {
		return nil, err
	}

	child, ok := t.(*Compound)
	if !ok {
		return nil, errors.Join(ErrTagTypeMismatch, fmt.Errorf("field %q is a %s, want compound", name, t.Kind()))
	}

	return child, nil
}

// Clone returns a deep copy.
func (c *Compound) Clone() *Compound {
	out := &Compound{
		names:  slices.Clone(c.names),
		values: make(map[string]Tag, len(c.values)),
	}

	for name, t := range c.values {
		out.values[name] = cloneTag(t)
	}

	return out
}

func (c *Compound) equal(other *Compound) bool {
	if len(c.values) != len(other.values) {
		return false
	}

	for name, t := range c.values {
		o, ok := other.values[name]
		if !ok || !Equal(t, o) {
			return false
		}
	}

	return true
}
