package item

import (
	"errors"

	"github.com/AntonStoeckl/writablebook-go/tagtree"
)

const (
	// DefaultMaxStackSize applies to items that do not override MaxStackSize.
	DefaultMaxStackSize = 64

	TagDisplay     = "display" // compound
	TagDisplayName = "Name"    // string, inside TagDisplay
)

var ErrDecodingDisplayTagFailed = errors.New("decoding display tag failed")

// TypeID identifies an item type.
type TypeID int

// Item is implemented by every concrete item.
type Item interface {
	TypeID() TypeID
	Meta() int
	Name() string
	MaxStackSize() int
	SerializeTag(tag *tagtree.Compound)
	DeserializeTag(tag *tagtree.Compound) error
}

// Base holds the state every item carries.
type Base struct {
	typeID     TypeID
	meta       int
	name       string
	customName string
}

// NewBase is a factory method for Base.
func NewBase(typeID TypeID, meta int, name string) Base {
	return Base{
		typeID: typeID,
		meta:   meta,
		name:   name,
	}
}

func (b *Base) TypeID() TypeID {
	return b.typeID
}

func (b *Base) Meta() int {
	return b.meta
}

// Name returns the vanilla display name of the item type.
func (b *Base) Name() string {
	return b.name
}

func (b *Base) MaxStackSize() int {
	return DefaultMaxStackSize
}

func (b *Base) HasCustomName() bool {
	return b.customName != ""
}

func (b *Base) CustomName() string {
	return b.customName
}

// SetCustomName sets the player-given name. An empty name clears it.
func (b *Base) SetCustomName(name string) {
	b.customName = name
}

// SerializeTag writes the base fields into tag.
func (b *Base) SerializeTag(tag *tagtree.Compound) {
	if !b.HasCustomName() {
		tag.Remove(TagDisplay)
		return
	}

	display, err := tag.GetCompound(TagDisplay)
	if err != nil {
		display = tagtree.NewCompound()
		_ = tag.SetCompound(TagDisplay, display) // display is not nil
	}

	display.SetString(TagDisplayName, b.customName)
}

// DeserializeTag reads the base fields from tag. Absent fields reset to their defaults.
//
// On error b is left unchanged.
func (b *Base) DeserializeTag(tag *tagtree.Compound) error {
	if !tag.Has(TagDisplay) {
		b.customName = ""
		return nil
	}

	display, err := tag.GetCompound(TagDisplay)
	if err != nil {
		return errors.Join(ErrDecodingDisplayTagFailed, err)
	}

	name, err := display.GetStringOr(TagDisplayName, "")
	if err != nil {
		return errors.Join(ErrDecodingDisplayTagFailed, err)
	}

	b.customName = name

	return nil
}
