// Package pdftable reads tabular PDFs into a RawTable.
//
// PDF has no table structure, only positioned text. The reader reconstructs
// rows by clustering text fragments on their Y coordinate and cells by
// splitting each row at horizontal gaps. That covers the lattice-style layoff
// tables most states publish; sources that defeat it get an override reader.
package pdftable

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/table"
)

func init() {
	reader.Register("pdf", Read)
}

// Read parses a PDF into a RawTable.
//
// Options:
//   - pages: list of 1-based page numbers (default all)
//   - y_tolerance: max Y distance for fragments on one line (default 2.0)
//   - column_gap: min X gap that starts a new cell (default 10.0)
//   - column_names: explicit header when the printed one is unparsable
//   - column_delimiter: split a header squashed into one fragment
//   - header_repeats: header reprinted on every page (default true)
//   - skip_rows, header_row, drop_footer, column_range: see reader.Shape
//
// The first page fixes the header; repeated headers on later pages are
// dropped by exact match when header_repeats is set.
func Read(data []byte, opts config.Options) (*table.RawTable, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &reader.MalformedSourceError{Format: "pdf", Detail: "open pdf", Err: err}
	}

	pages := opts.IntSlice("pages")
	if len(pages) == 0 {
		for i := 1; i <= r.NumPage(); i++ {
			pages = append(pages, i)
		}
	}

	yTol := floatOpt(opts, "y_tolerance", 2.0)
	gap := floatOpt(opts, "column_gap", 10.0)

	var grid [][]string
	for _, n := range pages {
		if n < 1 || n > r.NumPage() {
			continue
		}
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		grid = append(grid, ClusterRows(page.Content().Text, yTol, gap)...)
	}
	if len(grid) == 0 {
		return nil, &reader.MalformedSourceError{Format: "pdf", Detail: "no text rows on selected pages"}
	}

	if delim := opts.String("column_delimiter", ""); delim != "" {
		splitSquashedHeader(grid, opts, delim)
	}

	if names := opts.StringSlice("column_names"); len(names) > 0 {
		widest := 0
		for _, row := range grid {
			if len(row) > widest {
				widest = len(row)
			}
		}
		if widest != len(names) {
			return nil, &reader.SchemaMismatchError{Format: "pdf", Missing: names}
		}
		grid = append([][]string{names}, grid...)
	}

	t, err := reader.Shape("pdf", grid, opts)
	if err != nil {
		return nil, err
	}
	if opts.Bool("header_repeats", true) {
		dropRepeatedHeaders(t)
	}
	return t, nil
}

// ClusterRows turns positioned text fragments into a cell grid.
//
// Fragments are grouped into lines top-down (PDF Y grows upward), then each
// line is split into cells wherever the horizontal gap between fragments
// exceeds gap. Adjacent fragments inside a cell are joined with a space
// unless they abut.
func ClusterRows(texts []pdf.Text, yTol, gap float64) [][]string {
	if len(texts) == 0 {
		return nil
	}

	sorted := append([]pdf.Text(nil), texts...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows [][]string
	var line []pdf.Text
	lineY := sorted[0].Y

	flush := func() {
		if len(line) == 0 {
			return
		}
		sort.Slice(line, func(i, j int) bool { return line[i].X < line[j].X })
		rows = append(rows, splitCells(line, gap))
		line = line[:0]
	}

	for _, t := range sorted {
		if lineY-t.Y > yTol {
			flush()
			lineY = t.Y
		}
		line = append(line, t)
	}
	flush()
	return rows
}

func splitCells(line []pdf.Text, gap float64) []string {
	var cells []string
	var b strings.Builder
	prevEnd := line[0].X

	for i, t := range line {
		if i > 0 && t.X-prevEnd > gap {
			cells = append(cells, strings.TrimSpace(b.String()))
			b.Reset()
		} else if i > 0 && b.Len() > 0 && t.X-prevEnd > 0.5 {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	cells = append(cells, strings.TrimSpace(b.String()))
	return cells
}

// splitSquashedHeader handles sources where poor contrast makes the header
// land in a single fragment ("Company|Date|Employees"). The first row with
// exactly one non-empty cell containing the delimiter is expanded in place.
func splitSquashedHeader(grid [][]string, opts config.Options, delim string) {
	hdr := opts.Int("skip_rows", 0) + opts.Int("header_row", 0)
	if hdr < 0 || hdr >= len(grid) {
		return
	}
	row := grid[hdr]
	var joined string
	nonEmpty := 0
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			nonEmpty++
			joined = c
		}
	}
	if nonEmpty != 1 || !strings.Contains(joined, delim) {
		return
	}
	parts := strings.Split(joined, delim)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	grid[hdr] = parts
}

// dropRepeatedHeaders removes data rows that are an exact copy of the header,
// which is what a per-page header reprint looks like after clustering.
func dropRepeatedHeaders(t *table.RawTable) {
	keep := t.Rows[:0]
	for _, row := range t.Rows {
		if sameAsHeader(t.Columns, row) {
			continue
		}
		keep = append(keep, row)
	}
	t.Rows = keep
}

func sameAsHeader(cols, row []string) bool {
	for i, c := range cols {
		if i >= len(row) || table.CollapseSpace(row[i]) != c {
			return false
		}
	}
	return true
}

func floatOpt(o config.Options, name string, def float64) float64 {
	v := o.Any(name)
	if v == nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return def
	}
}
