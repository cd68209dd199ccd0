package state

import "sync"

var (
	defaultMu    sync.Mutex
	defaultStore *Store
)

// Default returns the shared package-level store, creating it on first use.
func Default() *Store {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore == nil {
		defaultStore = New()
	}
	return defaultStore
}

// ResetDefault replaces the shared store with a fresh one. Existing
// subscriptions on the old store are cancelled. Intended for test isolation.
func ResetDefault() {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultStore != nil {
		defaultStore.Reset()
	}
	defaultStore = New()
}
