package boundary

import "errors"

// ErrNilInstance indicates a boundary wrapped around nil.
var ErrNilInstance = errors.New("boundary instance is nil")
