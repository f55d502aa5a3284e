package normalize

import (
	"fmt"
	"strings"

	"warnetl/internal/record"
)

// Cleaner is a named row-cleaning hook. It mutates one row's cells in place,
// keyed by raw column name before mapping or by canonical field name after.
// Cleaners never reject rows; that stays with validation.
type Cleaner func(cells map[string]string)

// Cleaning stages a source may declare.
const (
	StageBeforeMap = "before_map"
	StageAfterMap  = "after_map"
)

var cleaners = map[string]Cleaner{}

// RegisterCleaner adds a cleaner under name. Called from init; a duplicate or
// empty name is a programming error.
func RegisterCleaner(name string, fn Cleaner) {
	if name == "" || fn == nil {
		panic("normalize: RegisterCleaner with empty name or nil cleaner")
	}
	if _, dup := cleaners[name]; dup {
		panic(fmt.Sprintf("normalize: RegisterCleaner called twice for %q", name))
	}
	cleaners[name] = fn
}

// LookupCleaner returns the named cleaner.
func LookupCleaner(name string) (Cleaner, bool) {
	fn, ok := cleaners[name]
	return fn, ok
}

func init() {
	RegisterCleaner("strip_footnote_markers", stripFootnoteMarkers)
	RegisterCleaner("split_company_location", splitCompanyLocation)
	RegisterCleaner("collapse_whitespace", collapseWhitespace)
}

// stripFootnoteMarkers removes trailing asterisk markers that several states
// attach to amended entries.
func stripFootnoteMarkers(cells map[string]string) {
	for k, v := range cells {
		cells[k] = strings.TrimRight(v, "* ")
	}
}

// splitCompanyLocation splits a combined "Company - City" company cell into
// company and address, for sources that never separate them. Runs after
// mapping, so keys here are canonical names.
func splitCompanyLocation(cells map[string]string) {
	company, ok := cells[string(record.FieldCompany)]
	if !ok {
		return
	}
	name, loc, found := strings.Cut(company, " - ")
	if !found {
		name, loc, found = strings.Cut(company, " – ")
	}
	if !found || strings.TrimSpace(loc) == "" {
		return
	}
	cells[string(record.FieldCompany)] = strings.TrimSpace(name)
	if cells[string(record.FieldAddress)] == "" {
		cells[string(record.FieldAddress)] = strings.TrimSpace(loc)
	}
}

// collapseWhitespace squashes internal whitespace runs in every cell. PDFs
// reconstructed from positioned text are the usual offender.
func collapseWhitespace(cells map[string]string) {
	for k, v := range cells {
		cells[k] = strings.Join(strings.Fields(v), " ")
	}
}
