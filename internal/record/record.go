package record

import (
	"time"
)

// Normalized is one validated WARN notice.
//
// Fields holds only the canonical fields the source actually provided, typed
// per Field.Kind (string, time.Time, int64). A field the source lacks is
// absent from the map, never defaulted. Raw preserves every source column
// verbatim so normalization mistakes remain diagnosable after the fact.
//
// A Normalized is immutable once emitted by the normalizer; the core keeps no
// reference after handoff to a sink.
type Normalized struct {
	SourceID  string
	ScrapedAt time.Time

	Fields map[Field]any
	Raw    map[string]string
}

// Get returns the typed value for f and whether the source provided it.
func (n *Normalized) Get(f Field) (any, bool) {
	v, ok := n.Fields[f]
	return v, ok
}

// Company returns the company identity, which validation guarantees present.
func (n *Normalized) Company() string {
	s, _ := n.Fields[FieldCompany].(string)
	return s
}

// NoticeDate returns the notice date, which validation guarantees present.
func (n *Normalized) NoticeDate() time.Time {
	t, _ := n.Fields[FieldNoticeDate].(time.Time)
	return t
}

// MarshalFlat renders the record as a flat field-name→scalar mapping suitable
// for line-oriented serialization: every canonical field appears, absent ones
// as nil, dates as "2006-01-02" strings. Raw values and provenance ride along
// under fixed keys that cannot collide with canonical field names.
func (n *Normalized) MarshalFlat() map[string]any {
	out := make(map[string]any, len(Fields)+4)
	for _, f := range Fields {
		v, ok := n.Fields[f]
		if !ok {
			out[string(f)] = nil
			continue
		}
		if t, isTime := v.(time.Time); isTime {
			out[string(f)] = t.Format("2006-01-02")
			continue
		}
		out[string(f)] = v
	}
	out["source_id"] = n.SourceID
	out["scraped_at"] = n.ScrapedAt.UTC().Format(time.RFC3339)
	out["row_hash"] = n.RowHash()
	if len(n.Raw) > 0 {
		out["raw_fields"] = n.Raw
	}
	return out
}
