// Package runner drives the per-source pipeline: resolve configuration, read
// the fetched payload into a raw table, normalize rows into records, and hand
// them to the sink. Sources are isolated; one source failing never stops the
// batch.
package runner

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"warnetl/internal/config"
	"warnetl/internal/metrics"
	"warnetl/internal/normalize"
	"warnetl/internal/reader"
	"warnetl/internal/reader/override"
	"warnetl/internal/record"
	"warnetl/internal/sink"
)

// Status classifies one source run.
type Status string

const (
	// StatusSuccess: every raw row became a record.
	StatusSuccess Status = "success"
	// StatusPartial: records were produced but some rows were rejected.
	StatusPartial Status = "partial"
	// StatusFailed: the source produced nothing because of a fatal error.
	StatusFailed Status = "failed"
)

// Result is the outcome of one source run.
type Result struct {
	SourceID string
	Status   Status

	Accepted int64
	Rejected int64
	// Written is how many accepted records the sink had not seen before.
	Written int64

	Rejects  []normalize.Reject
	Err      error
	Duration time.Duration
}

// Runner executes source pipelines against one sink repository.
type Runner struct {
	Store *config.Store
	Repo  sink.Repository

	// InputDir holds fetched payloads as "<source id>.<ext>".
	InputDir string

	// MaxRecords caps accepted records per source; 0 means unlimited.
	MaxRecords int

	// Workers bounds concurrent sources in RunAll. Zero means one.
	Workers int

	Logger *log.Logger

	// now is a test seam; production leaves it nil and gets time.Now.
	now func() time.Time
}

// RunAll runs the pipeline for each source ID on a bounded worker pool and
// returns results in the input order.
func (r *Runner) RunAll(ctx context.Context, ids []string) []Result {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	results := make([]Result, len(ids))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.RunSource(ctx, ids[i])
			}
		}()
	}

dispatch:
	for i := range ids {
		select {
		case jobs <- i:
		case <-ctx.Done():
			for j := i; j < len(ids); j++ {
				results[j] = Result{SourceID: ids[j], Status: StatusFailed, Err: ctx.Err()}
			}
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

// RunSource runs the full pipeline for one source. All failure modes come
// back inside the Result; RunSource itself never panics on bad input.
func (r *Runner) RunSource(ctx context.Context, id string) Result {
	start := r.clock()()
	res := r.runSource(ctx, id)
	res.SourceID = id
	res.Duration = r.clock()().Sub(start)

	r.report(res)
	return res
}

func (r *Runner) runSource(ctx context.Context, id string) Result {
	cfg, err := r.Store.Resolve(id)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}

	data, err := r.readInput(id)
	if err != nil {
		return Result{Status: StatusFailed, Err: err}
	}

	// A source-specific override beats the declared format unconditionally.
	read, ok := override.Lookup(id)
	if !ok {
		read, err = reader.Lookup(cfg.Format)
		if err != nil {
			return Result{Status: StatusFailed, Err: err}
		}
	}

	tab, err := read(data, cfg.Options)
	if err != nil {
		return Result{Status: StatusFailed, Err: fmt.Errorf("read source %s: %w", id, err)}
	}

	seq, err := normalize.New(cfg, tab, r.clock()().UTC())
	if err != nil {
		return Result{Status: StatusFailed, Err: fmt.Errorf("normalize source %s: %w", id, err)}
	}

	var recs []*record.Normalized
	for {
		if r.MaxRecords > 0 && len(recs) >= r.MaxRecords {
			break
		}
		rec, more := seq.Next()
		if !more {
			break
		}
		recs = append(recs, rec)
	}
	rejects := seq.Rejects()

	written, err := r.Repo.Write(ctx, recs)
	if err != nil {
		return Result{
			Status:   StatusFailed,
			Accepted: int64(len(recs)),
			Rejected: int64(len(rejects)),
			Rejects:  rejects,
			Written:  written,
			Err:      fmt.Errorf("write source %s: %w", id, err),
		}
	}

	res := Result{
		Status:   StatusSuccess,
		Accepted: int64(len(recs)),
		Rejected: int64(len(rejects)),
		Rejects:  rejects,
		Written:  written,
	}
	if len(rejects) > 0 {
		res.Status = StatusPartial
	}
	return res
}

// readInput locates and reads the fetched payload for a source: the first
// file named "<id>.<anything>" in InputDir, or a bare "<id>" file.
func (r *Runner) readInput(id string) ([]byte, error) {
	entries, err := os.ReadDir(r.InputDir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == id || strings.HasPrefix(name, id+".") {
			data, err := os.ReadFile(filepath.Join(r.InputDir, name))
			if err != nil {
				return nil, fmt.Errorf("read input %s: %w", name, err)
			}
			return data, nil
		}
	}
	return nil, fmt.Errorf("no input file for source %s in %s", id, r.InputDir)
}

func (r *Runner) report(res Result) {
	lg := r.Logger
	if lg == nil {
		lg = log.Default()
	}

	switch res.Status {
	case StatusFailed:
		lg.Printf("source=%s status=%s err=%v", res.SourceID, res.Status, res.Err)
	default:
		lg.Printf("source=%s status=%s accepted=%d rejected=%d written=%d duration=%s",
			res.SourceID, res.Status, res.Accepted, res.Rejected, res.Written, res.Duration.Round(time.Millisecond))
		for _, rej := range res.Rejects {
			lg.Printf("source=%s reject %s", res.SourceID, rej)
		}
	}

	metrics.IncCounter(metrics.RowsTotal, float64(res.Accepted), metrics.Labels{"kind": "accepted"})
	metrics.IncCounter(metrics.RowsTotal, float64(res.Rejected), metrics.Labels{"kind": "rejected"})
	metrics.IncCounter(metrics.SourcesTotal, 1, metrics.Labels{"status": string(res.Status)})
	metrics.ObserveHistogram(metrics.SourceDurationSeconds, res.Duration.Seconds(),
		metrics.Labels{"source": res.SourceID, "status": string(res.Status)})
}

func (r *Runner) clock() func() time.Time {
	if r.now != nil {
		return r.now
	}
	return time.Now
}
