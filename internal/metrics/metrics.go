// Package metrics is the thin seam between the pipeline and whatever metrics
// system a deployment uses. The core only ever calls the package-level
// functions; a process that never calls SetBackend pays one interface call
// per event and nothing else.
package metrics

import "sync"

// Labels attach dimensions to a metric event.
type Labels map[string]string

// Metric names the pipeline emits. Backends may ignore names they do not
// know; the set here is the operational contract.
const (
	// RowsTotal counts normalized rows, label kind: "accepted" | "rejected".
	RowsTotal = "warn_rows_total"
	// SourcesTotal counts completed source runs, label status:
	// "success" | "partial" | "failed".
	SourcesTotal = "warn_sources_total"
	// SourceDurationSeconds observes one source's end-to-end pipeline time,
	// labels source and status.
	SourceDurationSeconds = "warn_source_duration_seconds"
)

// Backend receives metric events. Implementations must tolerate concurrent
// calls from source workers.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	Flush() error
	Close() error
}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b as the process-wide backend. Call once at startup,
// before workers begin.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// IncCounter adds delta to the named counter.
func IncCounter(name string, delta float64, labels Labels) {
	current().IncCounter(name, delta, labels)
}

// ObserveHistogram records one sample of the named distribution.
func ObserveHistogram(name string, value float64, labels Labels) {
	current().ObserveHistogram(name, value, labels)
}

// Flush pushes buffered metrics now.
func Flush() error { return current().Flush() }

// Close flushes and shuts the backend down.
func Close() error { return current().Close() }

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }
func (nopBackend) Close() error                             { return nil }
