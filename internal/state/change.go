package state

// Op represents the type of store change.
type Op int

const (
	// OpSet indicates a value was set or updated.
	OpSet Op = iota

	// OpDelete indicates a value was deleted.
	OpDelete
)

// String returns the op name.
func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Change describes a single store write, delivered to matching subscribers.
type Change struct {
	// Path is the dot-separated path that was written.
	Path string

	// Op is the type of change.
	Op Op

	// Value is the stored value after the write. Nil for deletes. Values
	// carry document semantics: numbers are float64, objects are
	// map[string]any, arrays are []any.
	Value any

	// OldValue is the value before the write. Nil when the path did not
	// exist.
	OldValue any
}
