package app

import "errors"

// Application errors.
var (
	// ErrQuit signals that an interactive loop should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrAlreadyRunning indicates the frame loop is already running.
	ErrAlreadyRunning = errors.New("frame loop already running")

	// ErrShutdown indicates the app has been shut down.
	ErrShutdown = errors.New("app has shut down")
)
