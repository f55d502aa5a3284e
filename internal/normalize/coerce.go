package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// defaultDateLayouts are tried, in order, after any source-declared layouts.
// States reformat their archives without notice, so the fallback list covers
// the formats observed across sources rather than one house style.
var defaultDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1.2.2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"Jan. 2, 2006",
	"2-Jan-06",
	"2 January 2006",
	"20060102",
}

// placeholders are cell values that mean "no value" rather than a value that
// failed to parse. They coerce to absent without rejecting the row.
var placeholders = map[string]bool{
	"":        true,
	"-":       true,
	"--":      true,
	"n/a":     true,
	"na":      true,
	"none":    true,
	"tbd":     true,
	"unknown": true,
	"pending": true,
}

// isPlaceholder reports whether the trimmed cell carries no value.
func isPlaceholder(s string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}

// parseDate coerces a cell to a date, trying the source layouts first and the
// shared fallbacks second. Trailing annotations after the date ("3/4/2024
// (amended)") are retried with the annotation stripped.
func parseDate(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, set := range [2][]string{layouts, defaultDateLayouts} {
		for _, layout := range set {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
	}
	if cut := strings.IndexAny(s, " ("); cut > 0 {
		if t, err := parseDate(s[:cut], layouts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseCount coerces a cell to a non-negative employee count. Thousands
// separators and common annotations ("~120", "350+", "1,200 employees") are
// tolerated; a negative result is an error, not a count.
func parseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "~≈")
	if cut := strings.IndexAny(s, " ("); cut > 0 {
		s = s[:cut]
	}
	s = strings.TrimRight(s, "+")
	s = strings.ReplaceAll(s, ",", "")

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable count %q", s)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count %d", n)
	}
	return n, nil
}
