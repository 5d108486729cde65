// Package item provides the base behaviour shared by all items: identity, display name,
// stack size, and the serialize/deserialize hooks that concrete items chain onto.
//
// Concrete items embed Base and run their own tag handling after Base.DeserializeTag and
// after Base.SerializeTag, so the base fields always come first in the item's compound.
package item
