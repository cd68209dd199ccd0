package reconcile

import "errors"

var (
	// ErrMixedKeys indicates a sibling group mixing keyed and unkeyed
	// children. A group must be keyed entirely or not at all.
	ErrMixedKeys = errors.New("sibling group mixes keyed and unkeyed children")

	// ErrDuplicateKey indicates two siblings sharing a key.
	ErrDuplicateKey = errors.New("duplicate key in sibling group")

	// ErrNilLive indicates a diff against a nil live node.
	ErrNilLive = errors.New("live node is nil")

	// ErrNilSnapshot indicates a diff against a nil snapshot.
	ErrNilSnapshot = errors.New("snapshot is nil")

	// ErrNilTarget indicates a patch without a target node.
	ErrNilTarget = errors.New("patch target is nil")

	// ErrNilParent indicates an add patch without a parent node.
	ErrNilParent = errors.New("patch parent is nil")

	// ErrDetachedTarget indicates a patch whose target has no parent.
	ErrDetachedTarget = errors.New("patch target is detached")

	// ErrUnknownOp indicates a patch with an unrecognized op.
	ErrUnknownOp = errors.New("unknown patch op")

	// ErrBadRoute indicates a wire route that does not resolve against the
	// receiving tree.
	ErrBadRoute = errors.New("wire route does not resolve")
)
