package app

import (
	"io"
	"os"
	"strings"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// ParseLevel parses a level name into a logiface level. Unrecognized names
// parse as LevelInformational.
func ParseLevel(s string) logiface.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off":
		return logiface.LevelDisabled
	case "err", "error":
		return logiface.LevelError
	case "warn", "warning":
		return logiface.LevelWarning
	case "info", "":
		return logiface.LevelInformational
	case "debug":
		return logiface.LevelDebug
	case "trace":
		return logiface.LevelTrace
	default:
		return logiface.LevelInformational
	}
}

// NewLogger builds the runtime's JSON logger: stumpy events at level,
// written to w. A nil writer logs to os.Stderr.
func NewLogger(level logiface.Level, w io.Writer) *logiface.Logger[logiface.Event] {
	if w == nil {
		w = os.Stderr
	}
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(w)),
		stumpy.L.WithLevel(level),
	).Logger()
}
