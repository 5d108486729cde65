package tagtree

// Kind identifies the type of Tag.
type Kind int

const (
	KindString Kind = iota + 1
	KindList
	KindCompound
)

// String provides a string representation of Kind for logging and error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// Tag is a node in the tree.
type Tag interface {
	Kind() Kind
}

// String is a string leaf.
type String string

func (String) Kind() Kind {
	return KindString
}

// Equal reports whether a and b are structurally equal.
// Compound fields are compared by name regardless of their order; list elements are compared positionally.
func Equal(a, b Tag) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case String:
		return av == b.(String)
	case *List:
		return av.equal(b.(*List))
	case *Compound:
		return av.equal(b.(*Compound))
	default:
		return false
	}
}

// cloneTag deep-copies a Tag.
func cloneTag(t Tag) Tag {
	switch v := t.(type) {
	case *List:
		return v.Clone()
	case *Compound:
		return v.Clone()
	default:
		return t
	}
}
