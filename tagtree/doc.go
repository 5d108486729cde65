// Package tagtree provides an in-memory tagged tree: named compound records,
// ordered lists, and typed string leaves.
//
// It models the subset of the generic tagged-tree persistence format that item
// serialization needs. Compounds preserve the order in which fields were first set,
// lists preserve element order.
//
// Key types:
//   - Tag: the common interface of every node
//   - Compound: named fields, each holding a Tag
//   - List: ordered Tags
//   - String: a string leaf
//
// A JSON projection (Marshal / Unmarshal) exists for storage backends that keep the
// tree in a JSON column: objects map to compounds, arrays to lists, strings to strings.
// Other JSON value kinds are rejected. Strings JSON columns cannot hold (NUL bytes,
// invalid UTF-8) are stored base64 encoded behind EncodedStringPrefix.
//
//	tag := tagtree.NewCompound()
//	tag.SetString("text", "hello")
//
//	data, err := tagtree.Marshal(tag)
//	if err != nil {
//		// handle error
//	}
package tagtree
