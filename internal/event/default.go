package event

import "sync"

var (
	defaultMu  sync.Mutex
	defaultBus *Bus
)

// Default returns the shared package-level bus, creating it on first use.
func Default() *Bus {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultBus == nil {
		defaultBus = New()
	}
	return defaultBus
}

// ResetDefault replaces the shared bus with a fresh one. Existing
// subscriptions on the old bus are cancelled. Intended for test isolation.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultBus != nil {
		defaultBus.Reset()
	}
	defaultBus = New()
}
