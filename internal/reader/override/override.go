// Package override holds custom readers for sources whose layout the generic
// format readers cannot handle: transposed per-notice tables, one-row tables
// per record, paragraph pseudo-tables.
//
// An override has the same contract as a generic reader but is selected by
// source ID, and it always wins over the source's declared format.
package override

import (
	"sync"

	"warnetl/internal/reader"
)

var (
	mu       sync.RWMutex
	bySource = map[string]reader.Func{}
)

// Register binds an override reader to a source ID. Registering the same
// source twice panics, same policy as the format registry.
func Register(sourceID string, f reader.Func) {
	mu.Lock()
	defer mu.Unlock()

	if sourceID == "" {
		panic("override: Register called with empty source id")
	}
	if f == nil {
		panic("override: Register called with nil func")
	}
	if _, exists := bySource[sourceID]; exists {
		panic("override: already registered for source " + sourceID)
	}
	bySource[sourceID] = f
}

// Lookup returns the override for a source, if one exists.
func Lookup(sourceID string) (reader.Func, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := bySource[sourceID]
	return f, ok
}
