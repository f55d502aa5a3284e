package sink

import (
	"time"

	"warnetl/internal/record"
)

// TableName is the shared notice table used by all database backends.
const TableName = "warn_notices"

// Columns returns the notice table's column order: provenance first, then
// every canonical field in stable order. All backends share this order so the
// insert builders stay trivial.
func Columns() []string {
	cols := make([]string, 0, len(record.Fields)+3)
	cols = append(cols, "row_hash", "source_id", "scraped_at")
	for _, f := range record.Fields {
		cols = append(cols, string(f))
	}
	return cols
}

// Values renders one record in Columns order. Absent fields become nil,
// dates become "2006-01-02" strings (every supported backend casts date text
// on insert), and counts stay int64.
func Values(rec *record.Normalized) []any {
	out := make([]any, 0, len(record.Fields)+3)
	out = append(out, rec.RowHash(), rec.SourceID, rec.ScrapedAt.UTC().Format(time.RFC3339))
	for _, f := range record.Fields {
		v, ok := rec.Get(f)
		if !ok {
			out = append(out, nil)
			continue
		}
		if t, isTime := v.(time.Time); isTime {
			out = append(out, t.Format("2006-01-02"))
			continue
		}
		out = append(out, v)
	}
	return out
}
