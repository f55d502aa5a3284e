// Command warnetl runs the WARN notice normalization pipeline: it loads the
// runtime and source configuration, reads each source's fetched payload from
// the input directory, normalizes the rows into canonical records, and writes
// them to the configured sink.
//
// Usage:
//
//	warnetl -config configs/runtime.yaml
//	warnetl -config configs/runtime.yaml -sources CA,NJ,WV
//	warnetl -config configs/runtime.yaml -validate
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"warnetl/internal/config"
	"warnetl/internal/metrics"
	"warnetl/internal/metrics/datadog"
	"warnetl/internal/reader"
	"warnetl/internal/runner"
	"warnetl/internal/sink"

	// Register all format readers and source overrides.
	_ "warnetl/internal/reader/delim"
	_ "warnetl/internal/reader/htmltable"
	_ "warnetl/internal/reader/override"
	_ "warnetl/internal/reader/pdftable"
	_ "warnetl/internal/reader/sheet"

	// Register all sink backends; config selects which one runs.
	_ "warnetl/internal/sink/all"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr))
}

// run is split out from main so the command is testable without spawning a
// process. Exit codes: 0 success, 1 runtime failure, 2 usage/config error.
func run(ctx context.Context, args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("warnetl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfgPath     = fs.String("config", "configs/runtime.yaml", "runtime config YAML path")
		sourcesFlag = fs.String("sources", "", "comma-separated source IDs (default: all configured)")
		validate    = fs.Bool("validate", false, "validate the configuration and exit")
		metricsFlag = fs.String("metrics-backend", "", "metrics backend (datadog, none); overrides config")
		verbose     = fs.Bool("v", false, "enable verbose logs")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	lg := log.New(stderr, "", log.LstdFlags)

	rt, err := config.LoadRuntime(*cfgPath)
	if err != nil {
		lg.Printf("config: %v", err)
		return 2
	}

	store, err := config.LoadSources(rt.SourcesPath, reader.Kinds())
	if err != nil {
		lg.Printf("config: %v", err)
		return 2
	}

	ids := store.IDs()
	if *sourcesFlag != "" {
		ids = splitIDs(*sourcesFlag)
		for _, id := range ids {
			if _, err := store.Resolve(id); err != nil {
				lg.Printf("config: %v", err)
				return 2
			}
		}
	}

	if *validate {
		lg.Printf("configuration is valid: %s (%d sources)", *cfgPath, store.Len())
		return 0
	}

	if code := setupMetrics(ctx, rt, *metricsFlag, *verbose, lg); code != 0 {
		return code
	}
	defer func() {
		if err := metrics.Close(); err != nil {
			lg.Printf("metrics: close/flush error: %v", err)
		}
	}()

	repo, err := sink.New(ctx, sink.Config{
		Kind: rt.Sink.Backend,
		DSN:  rt.Sink.DSN,
		Dir:  rt.Sink.Dir,
	})
	if err != nil {
		lg.Printf("sink: %v", err)
		return 1
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		lg.Printf("sink: %v", err)
		return 1
	}

	r := &runner.Runner{
		Store:      store,
		Repo:       repo,
		InputDir:   rt.InputDir,
		MaxRecords: rt.MaxRecords,
		Workers:    rt.Workers,
		Logger:     lg,
	}

	start := time.Now()
	results := r.RunAll(ctx, ids)

	var ok, partial, failed int
	for _, res := range results {
		switch res.Status {
		case runner.StatusFailed:
			failed++
		case runner.StatusPartial:
			partial++
		default:
			ok++
		}
	}
	lg.Printf("done: sources=%d success=%d partial=%d failed=%d duration=%s",
		len(results), ok, partial, failed, time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		return 1
	}
	return 0
}

// setupMetrics installs the configured metrics backend. The nop backend stays
// in place when metrics are disabled or init fails; a scrape never aborts
// because a dashboard is unreachable.
func setupMetrics(ctx context.Context, rt config.Runtime, flagValue string, verbose bool, lg *log.Logger) int {
	backendName := flagValue
	if backendName == "" {
		backendName = rt.Metrics.Backend
	}
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}

	switch backendName {
	case "datadog":
		tags := rt.Metrics.Tags
		if env := datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")); len(env) > 0 {
			tags = append(tags, env...)
		}
		flushEvery := time.Duration(rt.Metrics.FlushSeconds) * time.Second

		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName:    "warnetl",
			Tags:       tags,
			FlushEvery: flushEvery,
		})
		if err != nil {
			lg.Printf("metrics: datadog init failed: %v; using nop", err)
			return 0
		}
		if verbose {
			lg.Printf("metrics: backend=datadog tags=%v", tags)
		}
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			lg.Printf("metrics: disabled")
		}

	default:
		lg.Printf("unknown metrics backend %q", backendName)
		return 2
	}
	return 0
}

func splitIDs(s string) []string {
	var out []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}
