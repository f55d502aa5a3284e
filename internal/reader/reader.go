// Package reader defines the format-reader contract and the registry that
// maps a declared source format to its implementation.
//
// A reader is a pure transformation: raw bytes plus an option bag in, a
// generic RawTable out. All network and browser work happens upstream; by the
// time a reader runs, the source has been fully materialized into memory.
package reader

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"warnetl/internal/config"
	"warnetl/internal/table"
)

// Func converts raw source bytes into a RawTable.
//
// Errors:
//   - *MalformedSourceError when no parsable table exists at the configured
//     index/sheet/page.
//   - *SchemaMismatchError when options reference columns the source lacks.
//
// Both abort only the one source being processed, never a whole batch.
type Func func(data []byte, opts config.Options) (*table.RawTable, error)

var (
	mu        sync.RWMutex
	factories = map[string]Func{}
)

// Register registers a format reader under a kind (e.g. "html", "pdf").
//
// Call Register from an init() function in a reader package. Registering the
// same kind twice panics so that ambiguous format selection fails at startup,
// not mid-batch.
func Register(kind string, f Func) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("reader: Register called with empty kind")
	}
	if f == nil {
		panic("reader: Register called with nil func")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("reader: already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Lookup returns the reader registered for kind.
func Lookup(kind string) (Func, error) {
	mu.RLock()
	f := factories[kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("reader: unsupported format kind=%q (have %s)", kind, strings.Join(Kinds(), ", "))
	}
	return f, nil
}

// Kinds returns the registered format kinds, sorted.
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

// MalformedSourceError reports that a reader found no parsable table in the
// input at the configured location.
type MalformedSourceError struct {
	Format string
	Detail string
	Err    error
}

func (e *MalformedSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: no parsable table: %s: %v", e.Format, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: no parsable table: %s", e.Format, e.Detail)
}

func (e *MalformedSourceError) Unwrap() error { return e.Err }

// SchemaMismatchError reports that reader options name columns absent from
// the source (column_range, column_names and the like).
type SchemaMismatchError struct {
	Format  string
	Missing []string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: columns not present in source: %s", e.Format, strings.Join(e.Missing, ", "))
}

// Shape applies the shared shaping options to a raw cell grid and builds the
// table: skip_rows discards leading rows, header_row selects the header
// within what remains, drop_footer discards trailing rows, and column_range
// restricts the output columns.
//
// Every grid-producing reader (sheet, delim, pdf) funnels through here so the
// option semantics cannot drift between formats.
func Shape(format string, grid [][]string, opts config.Options) (*table.RawTable, error) {
	skip := opts.Int("skip_rows", 0)
	headerRow := opts.Int("header_row", 0)
	footer := opts.Int("drop_footer", 0)

	if skip > 0 {
		if skip >= len(grid) {
			grid = nil
		} else {
			grid = grid[skip:]
		}
	}
	if headerRow >= len(grid) {
		return nil, &MalformedSourceError{
			Format: format,
			Detail: fmt.Sprintf("header_row=%d beyond %d rows", headerRow, len(grid)),
		}
	}

	header := grid[headerRow]
	rows := grid[headerRow+1:]
	if footer > 0 {
		if footer >= len(rows) {
			rows = nil
		} else {
			rows = rows[:len(rows)-footer]
		}
	}

	t := table.Build(header, rows)
	if len(t.Columns) == 0 {
		return nil, &MalformedSourceError{Format: format, Detail: "empty header"}
	}

	if want := opts.StringSlice("column_range"); len(want) > 0 {
		sub, missing := t.SelectColumns(want)
		if len(missing) > 0 {
			return nil, &SchemaMismatchError{Format: format, Missing: missing}
		}
		t = sub
	}
	return t, nil
}
