package component

import "errors"

var (
	// ErrNilComponent indicates an instance constructed around nil.
	ErrNilComponent = errors.New("component is nil")

	// ErrNilHost indicates an attach without a host node.
	ErrNilHost = errors.New("host node is nil")

	// ErrNilRender indicates a Render call that returned nil.
	ErrNilRender = errors.New("render returned nil")

	// ErrDuplicateChildKey indicates two child mounts sharing a key within
	// one component's output.
	ErrDuplicateChildKey = errors.New("duplicate child key")
)
