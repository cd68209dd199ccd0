package boundary

import (
	"time"

	"github.com/dshills/squall/internal/component"
)

// Mode selects how much failure detail the fallback output reveals.
type Mode int

const (
	// ModeDevelopment renders the failure message and stack trace.
	ModeDevelopment Mode = iota

	// ModeProduction renders a generic message with no failure detail.
	ModeProduction
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeDevelopment:
		return "development"
	case ModeProduction:
		return "production"
	default:
		return "unknown"
	}
}

// Record captures one failure of the wrapped instance. Retries counts the
// re-attempts consumed when the failure was captured, so across one failing
// episode the history carries 0, 1, 2, ... up to the retry budget.
type Record struct {
	Phase   component.Phase
	Err     error
	Stack   string
	Time    time.Time
	Retries int
}

// ErrorEvent is the bus event emitted for every captured failure.
const ErrorEvent = "component:error"

// ErrorPayload is the payload carried by ErrorEvent.
type ErrorPayload struct {
	Instance string
	Record   Record
}
