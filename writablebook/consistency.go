package writablebook

import "context"

// ConsistencyLevel defines the consistency requirements for book storage reads.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database, so a book that was just saved
	// is read back in its saved version. This is the default, because edit workflows load a book,
	// mutate it, and save it with the loaded version.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica database. Suitable for read-only views of a
	// book that can tolerate a slightly stale version.
	EventualConsistency
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "writablebook.consistency_level"

// WithStrongConsistency returns a context that signals storage reads must use the primary database.
//
// Example usage:
//
//	ctx = writablebook.WithStrongConsistency(ctx)
//	book, version, err := store.Load(ctx, bookID)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that signals storage reads may use a replica database.
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// If no consistency level is set, it returns StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging and debugging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
