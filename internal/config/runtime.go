package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Runtime is the top-level runtime configuration, loaded from YAML once at
// startup. Source-specific settings live in the source store; this file only
// carries what applies to the whole run.
type Runtime struct {
	// SourcesPath locates the source store CSV.
	SourcesPath string `yaml:"sources_path"`

	// InputDir holds the fetched source payloads, one file per source named
	// "<id>.<ext>". Fetching is a separate concern; the pipeline only reads.
	InputDir string `yaml:"input_dir"`

	// Workers bounds how many sources normalize concurrently.
	Workers int `yaml:"workers"`

	// MaxRecords caps emitted records per source; 0 means no cap.
	MaxRecords int `yaml:"max_records"`

	Sink    SinkSettings    `yaml:"sink"`
	Metrics MetricsSettings `yaml:"metrics"`
}

// SinkSettings selects and parameterizes the record sink backend.
type SinkSettings struct {
	// Backend is a registered sink kind: "jsonl", "sqlite", "postgres",
	// "mssql".
	Backend string `yaml:"backend"`
	// DSN is the database connection string for database backends.
	DSN string `yaml:"dsn"`
	// Dir is the output directory for file backends.
	Dir string `yaml:"dir"`
}

// MetricsSettings selects the metrics backend.
type MetricsSettings struct {
	// Backend is "datadog" or empty for none.
	Backend string `yaml:"backend"`
	// FlushSeconds is the buffered backend's flush cadence.
	FlushSeconds int `yaml:"flush_seconds"`
	// Tags are applied to every submitted series.
	Tags []string `yaml:"tags"`
}

// DefaultRuntime returns the settings used when the config file omits them.
func DefaultRuntime() Runtime {
	return Runtime{
		SourcesPath: "sources.csv",
		InputDir:    "input",
		Workers:     4,
		Sink:        SinkSettings{Backend: "jsonl", Dir: "out"},
		Metrics:     MetricsSettings{FlushSeconds: 15},
	}
}

// LoadRuntime reads the YAML runtime configuration at path, filling omitted
// fields from DefaultRuntime. Unknown keys fail the load so a typo surfaces
// at startup instead of silently using a default.
func LoadRuntime(path string) (Runtime, error) {
	cfg := DefaultRuntime()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read runtime config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse runtime config %s: %w", path, err)
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Sink.Backend == "" {
		cfg.Sink.Backend = "jsonl"
	}
	return cfg, nil
}
