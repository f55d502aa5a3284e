// Package normalize turns raw tables into canonical records: per-source
// column mapping, cleaning hooks, typed coercion, and required-field
// validation. Bad rows become reject entries, never errors.
package normalize

import (
	"fmt"
	"time"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/record"
	"warnetl/internal/table"
)

// Reject reasons. Rejects are row-level: one entry means one raw row that did
// not become a record.
const (
	ReasonMissingField = "missing-field"
	ReasonInvalidDate  = "invalid-date"
	ReasonInvalidCount = "invalid-count"
)

// Reject describes one raw row dropped during normalization.
type Reject struct {
	// Row is the 1-based data row index within the raw table.
	Row    int
	Field  record.Field
	Reason string
	Err    error
}

func (r Reject) String() string {
	if r.Err != nil {
		return fmt.Sprintf("row %d: %s %s: %v", r.Row, r.Field, r.Reason, r.Err)
	}
	return fmt.Sprintf("row %d: %s %s", r.Row, r.Field, r.Reason)
}

// Sequence is a forward-only pass over one source's raw table, emitting
// normalized records lazily. The caller owns each record after Next returns
// it; the sequence keeps no reference.
type Sequence struct {
	src  config.SourceConfig
	tab  *table.RawTable
	at   time.Time
	next int

	beforeMap Cleaner
	afterMap  Cleaner

	rejects []Reject
}

// New builds a sequence over tab for the given source.
//
// Fails up front, before any row is consumed, when the configuration cannot
// work at all: a mapping that omits a required field, a raw column the table
// does not have, or a cleaner name with no registration. An empty table is
// not an error; the sequence just yields nothing.
func New(src config.SourceConfig, tab *table.RawTable, scrapedAt time.Time) (*Sequence, error) {
	if tab == nil {
		tab = &table.RawTable{}
	}
	for _, f := range record.Required {
		if _, ok := src.FieldColumns[f]; !ok {
			return nil, fmt.Errorf("source %s: required field %s has no column mapping", src.ID, f)
		}
	}
	if len(tab.Columns) > 0 {
		var missing []string
		for _, col := range src.FieldColumns {
			if tab.ColumnIndex(col) < 0 {
				missing = append(missing, col)
			}
		}
		if len(missing) > 0 {
			return nil, &reader.SchemaMismatchError{Format: src.Format, Missing: missing}
		}
	}

	s := &Sequence{src: src, tab: tab, at: scrapedAt}
	if src.Cleaner != "" {
		fn, ok := LookupCleaner(src.Cleaner)
		if !ok {
			return nil, fmt.Errorf("source %s: unknown cleaner %q", src.ID, src.Cleaner)
		}
		switch src.CleanerStage {
		case StageBeforeMap:
			s.beforeMap = fn
		case "", StageAfterMap:
			s.afterMap = fn
		default:
			return nil, fmt.Errorf("source %s: unknown cleaner stage %q", src.ID, src.CleanerStage)
		}
	}
	return s, nil
}

// Next returns the next normalized record, advancing past rejected rows.
// The second result is false once the table is exhausted.
func (s *Sequence) Next() (*record.Normalized, bool) {
	for s.next < len(s.tab.Rows) {
		s.next++
		rec, rej := s.normalizeRow(s.next - 1)
		if rej != nil {
			s.rejects = append(s.rejects, *rej)
			continue
		}
		return rec, true
	}
	return nil, false
}

// Rejects returns the rejects observed so far. Complete only after Next has
// returned false.
func (s *Sequence) Rejects() []Reject {
	return s.rejects
}

// Collect drains the sequence, returning all records and all rejects.
func (s *Sequence) Collect() ([]*record.Normalized, []Reject) {
	var recs []*record.Normalized
	for {
		rec, ok := s.Next()
		if !ok {
			return recs, s.rejects
		}
		recs = append(recs, rec)
	}
}

func (s *Sequence) normalizeRow(ri int) (*record.Normalized, *Reject) {
	raw := s.tab.RowMap(ri)
	if s.beforeMap != nil {
		s.beforeMap(raw)
	}

	// Map raw columns onto canonical names, as strings still.
	mapped := make(map[string]string, len(s.src.FieldColumns))
	for f, col := range s.src.FieldColumns {
		mapped[string(f)] = raw[col]
	}
	if s.afterMap != nil {
		s.afterMap(mapped)
	}

	rec := &record.Normalized{
		SourceID:  s.src.ID,
		ScrapedAt: s.at,
		Fields:    make(map[record.Field]any, len(mapped)),
		Raw:       raw,
	}

	for _, f := range record.Fields {
		v, ok := mapped[string(f)]
		if !ok {
			continue
		}
		if isPlaceholder(v) {
			if f.IsRequired() {
				return nil, &Reject{Row: ri + 1, Field: f, Reason: ReasonMissingField}
			}
			continue
		}
		switch f.Kind() {
		case record.KindDate:
			t, err := parseDate(v, s.src.DateLayouts)
			if err != nil {
				return nil, &Reject{Row: ri + 1, Field: f, Reason: ReasonInvalidDate, Err: err}
			}
			rec.Fields[f] = t
		case record.KindInt:
			n, err := parseCount(v)
			if err != nil {
				return nil, &Reject{Row: ri + 1, Field: f, Reason: ReasonInvalidCount, Err: err}
			}
			rec.Fields[f] = n
		default:
			rec.Fields[f] = table.CollapseSpace(v)
		}
	}

	return rec, nil
}
