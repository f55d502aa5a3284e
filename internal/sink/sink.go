// Package sink defines the record sink contract and the backend registry.
// Backends register themselves from init, so importing a backend package is
// what makes its kind available.
package sink

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"warnetl/internal/record"
)

// Config selects and parameterizes a sink backend.
type Config struct {
	// Kind names a registered backend ("jsonl", "sqlite", "postgres", "mssql").
	Kind string
	// DSN is the connection string for database backends.
	DSN string
	// Dir is the output directory for file backends.
	Dir string
}

// Repository persists normalized records.
//
// Write is idempotent on the record's row hash: re-writing an already
// persisted record is a no-op, so replaying a source archive never produces
// duplicates. Implementations must be safe for concurrent Write calls from
// multiple source workers.
type Repository interface {
	// EnsureSchema prepares backend storage. Safe to call on every startup.
	EnsureSchema(ctx context.Context) error

	// Write persists a batch of records from one source and returns how many
	// were newly stored (previously unseen row hashes).
	Write(ctx context.Context, recs []*record.Normalized) (int64, error)

	// Close flushes and releases backend resources. Call once at shutdown.
	Close() error
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register adds a backend factory under kind. Called from backend init
// functions; duplicate registration is a programming error.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("sink: Register called with empty kind")
	}
	if f == nil {
		panic("sink: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("sink: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// New constructs a Repository for the configured backend kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("sink: missing backend kind")
	}

	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sink: unsupported backend kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
