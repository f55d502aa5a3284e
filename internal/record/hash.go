package record

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// hashSep separates field components in the canonical hash input.
// ASCII Unit Separator cannot appear in scraped cell text.
const hashSep = "\x1f"

// RowHash computes a deterministic SHA-256 over the canonical fields plus the
// source ID, as a lowercase hex string.
//
// The hash is the dedupe key database sinks use for idempotent re-loads of
// the same archive. Canonicalization rules:
//   - fields are concatenated in Fields order as "name=value"
//   - a missing field is encoded as a single NUL byte, so missing and
//     empty-string hash differently
//   - dates are encoded as UTC RFC 3339 dates, counts as decimal
//
// It is deliberately not a cross-scrape identity: states amend notices in
// place, and assigning stable identity to amended rows is a separate concern.
func (n *Normalized) RowHash() string {
	var b strings.Builder
	b.Grow(len(Fields) * 24)

	b.WriteString("source=")
	b.WriteString(n.SourceID)

	for _, f := range Fields {
		b.WriteString(hashSep)
		b.WriteString(string(f))
		b.WriteByte('=')

		v, ok := n.Fields[f]
		if !ok || v == nil {
			b.WriteByte('\x00')
			continue
		}
		switch t := v.(type) {
		case string:
			b.WriteString(t)
		case int64:
			b.WriteString(strconv.FormatInt(t, 10))
		case int:
			b.WriteString(strconv.Itoa(t))
		case time.Time:
			b.WriteString(t.UTC().Format("2006-01-02"))
		default:
			// Canonical fields are string/int64/time.Time by construction;
			// anything else is a programming error we still hash stably.
			b.WriteString(fmt.Sprint(t))
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
