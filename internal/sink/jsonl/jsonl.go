// Package jsonl is the file sink: one JSON Lines file per source, rewritten
// per run. The default backend for local runs and the one the test suite
// leans on, since it needs no server.
package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"warnetl/internal/record"
	"warnetl/internal/sink"
)

func init() {
	sink.Register("jsonl", New)
}

// Repo writes per-source JSONL files under a directory.
//
// The first batch for a source in a repo's lifetime truncates that source's
// file, so re-running a source replaces its records instead of appending
// duplicates. Within a run, records deduplicate on row hash.
type Repo struct {
	dir string

	mu      sync.Mutex
	started map[string]bool
	seen    map[string]bool
}

// New creates the output directory if needed and returns the repo.
func New(_ context.Context, cfg sink.Config) (sink.Repository, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "out"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sink dir: %w", err)
	}
	return &Repo{
		dir:     dir,
		started: map[string]bool{},
		seen:    map[string]bool{},
	}, nil
}

// EnsureSchema is a no-op; there is no schema to prepare for files.
func (r *Repo) EnsureSchema(context.Context) error { return nil }

// Write appends recs to their sources' files, one flat JSON object per line.
func (r *Repo) Write(_ context.Context, recs []*record.Normalized) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	files := map[string]*os.File{}
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	var written int64
	for _, rec := range recs {
		hash := rec.RowHash()
		if r.seen[hash] {
			continue
		}

		f, ok := files[rec.SourceID]
		if !ok {
			var err error
			f, err = r.open(rec.SourceID)
			if err != nil {
				return written, err
			}
			files[rec.SourceID] = f
		}

		line, err := json.Marshal(rec.MarshalFlat())
		if err != nil {
			return written, fmt.Errorf("marshal record: %w", err)
		}
		line = append(line, '\n')
		if _, err := f.Write(line); err != nil {
			return written, fmt.Errorf("write %s: %w", f.Name(), err)
		}
		r.seen[hash] = true
		written++
	}
	return written, nil
}

func (r *Repo) open(sourceID string) (*os.File, error) {
	path := filepath.Join(r.dir, sourceID+".jsonl")
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !r.started[sourceID] {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		r.started[sourceID] = true
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

// Close is a no-op; files are closed per Write call.
func (r *Repo) Close() error { return nil }
