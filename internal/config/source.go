package config

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"warnetl/internal/record"
)

// SourceConfig is everything the pipeline needs to know about one source.
// Loaded once at startup and treated as read-only for the rest of the run.
type SourceConfig struct {
	// ID is the short source identifier, e.g. a state abbreviation.
	ID string
	// Name is the human-readable source name.
	Name string

	// Format selects the generic reader ("html", "pdf", "excel", "csv").
	// An override registered for ID always wins over Format.
	Format string

	// Options parameterizes the reader (header_row, sheet_name, ...).
	Options Options

	// FieldColumns maps each canonical field to the raw column that carries
	// it in this source. Validated against the canonical enumeration at load.
	FieldColumns map[record.Field]string

	// DateLayouts are the Go reference layouts tried, in order, when parsing
	// this source's dates. States change formats between years, so several
	// layouts per source are normal.
	DateLayouts []string

	// Cleaner names a registered row-cleaning hook, with CleanerStage
	// declaring whether it runs "before_map" or "after_map".
	Cleaner      string
	CleanerStage string
}

// UnknownSourceError reports a source ID with no configuration entry.
// Fatal for that source's run only, never for the batch.
type UnknownSourceError struct {
	ID string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("no configuration for source %q", e.ID)
}

// Store is the immutable per-run snapshot of all source configurations.
type Store struct {
	sources map[string]SourceConfig
}

// Resolve returns the configuration for a source ID.
func (s *Store) Resolve(id string) (SourceConfig, error) {
	cfg, ok := s.sources[id]
	if !ok {
		return SourceConfig{}, &UnknownSourceError{ID: id}
	}
	return cfg, nil
}

// IDs returns all configured source IDs, sorted.
func (s *Store) IDs() []string {
	out := make([]string, 0, len(s.sources))
	for id := range s.sources {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of configured sources.
func (s *Store) Len() int { return len(s.sources) }

// LoadSources reads the human-editable source table (CSV) at path.
//
// Expected columns, after lower_and_underscore normalization of the header:
//   - id, name, format (required)
//   - reader_options: JSON object of reader options
//   - date_layouts: "|"-separated Go reference layouts
//   - cleaner, cleaner_stage
//   - <canonical>_field: raw column name carrying that canonical field,
//     e.g. company_field, notice_date_field
//
// validFormats is the set of registered reader kinds; passing it in keeps
// this package free of a dependency on the reader registry. Google Sheets
// exports are CSV, so "google_sheets" is folded into "csv" here.
//
// The whole file is validated before any source runs: an unknown format or a
// misspelled canonical suffix fails the load, not the scrape.
func LoadSources(path string, validFormats []string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources: %w", err)
	}
	defer f.Close()
	return ParseSources(f, validFormats)
}

// ParseSources is LoadSources for an already-open reader.
func ParseSources(r io.Reader, validFormats []string) (*Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse sources csv: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("sources csv is empty")
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = lowerUnderscore(h)
	}

	formats := make(map[string]bool, len(validFormats))
	for _, k := range validFormats {
		formats[k] = true
	}

	store := &Store{sources: make(map[string]SourceConfig, len(rows)-1)}
	var problems []string

	for li, row := range rows[1:] {
		line := li + 2
		cfg := SourceConfig{
			Options:      Options{},
			FieldColumns: map[record.Field]string{},
		}
		for i, h := range header {
			if i >= len(row) {
				break
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				continue
			}
			switch h {
			case "id":
				cfg.ID = v
			case "name":
				cfg.Name = v
			case "format":
				cfg.Format = normalizeFormat(v)
			case "reader_options":
				var o Options
				if err := json.Unmarshal([]byte(v), &o); err != nil {
					problems = append(problems, fmt.Sprintf("line %d: reader_options: %v", line, err))
					continue
				}
				cfg.Options = o
			case "date_layouts":
				for _, l := range strings.Split(v, "|") {
					if l = strings.TrimSpace(l); l != "" {
						cfg.DateLayouts = append(cfg.DateLayouts, l)
					}
				}
			case "cleaner":
				cfg.Cleaner = v
			case "cleaner_stage":
				cfg.CleanerStage = v
			default:
				name, ok := strings.CutSuffix(h, "_field")
				if !ok {
					continue
				}
				fld, known := record.Known(name)
				if !known {
					problems = append(problems, fmt.Sprintf("line %d: column %q names unknown canonical field %q", line, h, name))
					continue
				}
				cfg.FieldColumns[fld] = v
			}
		}

		if cfg.ID == "" {
			problems = append(problems, fmt.Sprintf("line %d: missing id", line))
			continue
		}
		if cfg.Format == "" {
			problems = append(problems, fmt.Sprintf("line %d: source %s: missing format", line, cfg.ID))
		} else if len(formats) > 0 && !formats[cfg.Format] {
			problems = append(problems, fmt.Sprintf("line %d: source %s: unknown format %q", line, cfg.ID, cfg.Format))
		}
		if _, dup := store.sources[cfg.ID]; dup {
			problems = append(problems, fmt.Sprintf("line %d: duplicate source id %s", line, cfg.ID))
			continue
		}
		store.sources[cfg.ID] = cfg
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("invalid sources config:\n  %s", strings.Join(problems, "\n  "))
	}
	return store, nil
}

// normalizeFormat folds aliases onto registered reader kinds.
func normalizeFormat(v string) string {
	switch f := lowerUnderscore(v); f {
	case "google_sheets", "tsv":
		return "csv"
	case "xlsx", "xls", "spreadsheet":
		return "excel"
	default:
		return f
	}
}

func lowerUnderscore(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
