// Package table defines the generic tabular structure all format readers
// produce: an ordered header plus positional string rows. It is the common
// currency between readers and the field normalizer.
package table

import (
	"strconv"
	"strings"
)

// RawTable is an ordered header and the data rows beneath it.
//
// Invariants, enforced by Build:
//   - every row has exactly len(Columns) cells (short rows are padded,
//     long rows truncated)
//   - header names have runs of whitespace collapsed to single spaces
//   - duplicate header names carry a positional suffix ("Name", "Name_2", ...)
//   - cells are trimmed; pure-whitespace cells become ""
//
// Rows are positional rather than maps to keep per-row allocations down;
// use ColumnIndex to address cells by name.
type RawTable struct {
	Columns []string
	Rows    [][]string

	index map[string]int
}

// Build constructs a RawTable from a raw header and rows, applying the
// normalization rules above and dropping rows and columns that are entirely
// empty. A nil or empty header yields a table with no columns and no rows.
func Build(header []string, rows [][]string) *RawTable {
	cols := normalizeHeader(header)
	if len(cols) == 0 {
		return &RawTable{}
	}

	clean := make([][]string, 0, len(rows))
	for _, row := range rows {
		r := make([]string, len(cols))
		empty := true
		for i := range cols {
			var v string
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			r[i] = v
			if v != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		clean = append(clean, r)
	}

	t := &RawTable{Columns: cols, Rows: clean}
	t.dropEmptyColumns()
	t.buildIndex()
	return t
}

// ColumnIndex returns the position of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	if t.index == nil {
		t.buildIndex()
	}
	ix, ok := t.index[name]
	if !ok {
		return -1
	}
	return ix
}

// Cell returns the value at (row, column name), or "" when either is absent.
func (t *RawTable) Cell(row int, name string) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	ix := t.ColumnIndex(name)
	if ix < 0 {
		return ""
	}
	return t.Rows[row][ix]
}

// RowMap returns one row as a column-name keyed map. Used for the raw-fields
// side channel on normalized records; not intended for hot paths.
func (t *RawTable) RowMap(row int) map[string]string {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	m := make(map[string]string, len(t.Columns))
	for i, c := range t.Columns {
		m[c] = t.Rows[row][i]
	}
	return m
}

// SelectColumns returns a new table containing only the named columns, in the
// given order. Missing names are reported so readers can surface a schema
// mismatch instead of silently dropping data.
func (t *RawTable) SelectColumns(names []string) (*RawTable, []string) {
	var missing []string
	ixs := make([]int, 0, len(names))
	for _, n := range names {
		ix := t.ColumnIndex(n)
		if ix < 0 {
			missing = append(missing, n)
			continue
		}
		ixs = append(ixs, ix)
	}
	if len(missing) > 0 {
		return nil, missing
	}

	rows := make([][]string, len(t.Rows))
	for ri, row := range t.Rows {
		r := make([]string, len(ixs))
		for i, ix := range ixs {
			r[i] = row[ix]
		}
		rows[ri] = r
	}
	out := &RawTable{Columns: append([]string(nil), names...), Rows: rows}
	out.buildIndex()
	return out, nil
}

// Append concatenates other's rows onto t, matching columns by name.
// Columns absent from other produce empty cells. Used by readers that stitch
// multi-sheet and multi-page sources into one table.
func (t *RawTable) Append(other *RawTable) {
	if other == nil || len(other.Rows) == 0 {
		return
	}
	ixs := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		ixs[i] = other.ColumnIndex(c)
	}
	for _, row := range other.Rows {
		r := make([]string, len(t.Columns))
		for i, ix := range ixs {
			if ix >= 0 {
				r[i] = row[ix]
			}
		}
		t.Rows = append(t.Rows, r)
	}
}

func (t *RawTable) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		t.index[c] = i
	}
}

func (t *RawTable) dropEmptyColumns() {
	keep := make([]int, 0, len(t.Columns))
	for i, c := range t.Columns {
		if c == "" && columnEmpty(t.Rows, i) {
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == len(t.Columns) {
		return
	}

	cols := make([]string, len(keep))
	for j, i := range keep {
		cols[j] = t.Columns[i]
	}
	for ri, row := range t.Rows {
		r := make([]string, len(keep))
		for j, i := range keep {
			r[j] = row[i]
		}
		t.Rows[ri] = r
	}
	t.Columns = cols
}

func columnEmpty(rows [][]string, ix int) bool {
	for _, r := range rows {
		if ix < len(r) && r[ix] != "" {
			return false
		}
	}
	return true
}

// normalizeHeader collapses whitespace and disambiguates duplicate names with
// a positional suffix, since downstream mapping is by name.
func normalizeHeader(header []string) []string {
	out := make([]string, 0, len(header))
	seen := make(map[string]int, len(header))
	for _, h := range header {
		name := CollapseSpace(h)
		seen[name]++
		if n := seen[name]; n > 1 && name != "" {
			name = name + "_" + strconv.Itoa(n)
		}
		out = append(out, name)
	}
	// Trim trailing unnamed columns; they are headerless artifacts of merged
	// cells and get re-checked by dropEmptyColumns against the data.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// CollapseSpace converts any whitespace run, newlines included, to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
