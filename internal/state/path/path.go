// Package path defines the dot-separated value paths used by the store.
//
// Paths address values inside the store document: "user.profile.name". A
// subscription path matches a written path when it is equal to it, a strict
// segment prefix of it, or the wildcard "*".
package path

import "strings"

// Path is a dot-separated value path.
// Examples: "count", "user.profile.name", "todos.2.done"
type Path string

const (
	// Wildcard matches every written path.
	Wildcard = "*"

	// Separator is the character used to separate path segments.
	Separator = "."
)

// String returns the path as a string.
func (p Path) String() string {
	return string(p)
}

// Segments returns the path split by the separator.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), Separator)
}

// Parent returns the parent path by removing the last segment.
// Returns an empty path if there is no parent.
//
// Example: "user.profile.name" -> "user.profile"
func (p Path) Parent() Path {
	s := string(p)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return ""
	}
	return Path(s[:idx])
}

// Child returns a child path by appending a segment.
//
// Example: "user".Child("name") -> "user.name"
func (p Path) Child(segment string) Path {
	if p == "" {
		return Path(segment)
	}
	return Path(string(p) + Separator + segment)
}

// Base returns the last segment of the path.
func (p Path) Base() string {
	s := string(p)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}

// IsWildcard reports whether the path is the wildcard "*".
func (p Path) IsWildcard() bool {
	return p == Wildcard
}

// IsValid reports whether the path is usable for reads and writes.
// A valid path:
//   - Is not empty
//   - Does not start or end with a separator
//   - Does not contain empty segments
//
// The wildcard "*" is valid for subscriptions only.
func (p Path) IsValid() bool {
	s := string(p)
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, Separator) || strings.HasSuffix(s, Separator) {
		return false
	}
	return !strings.Contains(s, Separator+Separator)
}

// PrefixOf reports whether p is a strict segment prefix of other.
// "user" is a prefix of "user.name" but not of "username".
func (p Path) PrefixOf(other Path) bool {
	if p == "" || len(other) <= len(p) {
		return false
	}
	return string(other[:len(p)]) == string(p) && other[len(p)] == '.'
}

// Matches reports whether a subscription on p is notified for a write to
// written: the wildcard matches everything, otherwise p must equal written
// or be a strict segment prefix of it.
func (p Path) Matches(written Path) bool {
	if p.IsWildcard() {
		return true
	}
	return p == written || p.PrefixOf(written)
}
