// Package htmltable reads HTML <table> markup into a RawTable.
package htmltable

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/table"
)

// LinkColumn is the synthetic column added when link_column is configured.
// It carries the href of the first anchor found in that cell, which is how
// most states attach the notice PDF to a table row.
const LinkColumn = "Notice Link"

func init() {
	reader.Register("html", Read)
}

// Read parses HTML and extracts tabular data.
//
// Options:
//   - table_selector: CSS selector for tables (default "table")
//   - table_index: which matched table to read; -1 (default) concatenates
//     every table whose column count matches the first
//   - link_column: cell index whose first href is promoted to LinkColumn
//   - skip_rows, header_row, drop_footer, column_range: see reader.Shape
//
// Header detection follows the usual state-site layout: <th> cells when
// present, otherwise the first row of <td> cells becomes the header.
func Read(data []byte, opts config.Options) (*table.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &reader.MalformedSourceError{Format: "html", Detail: "parse html", Err: err}
	}

	selector := opts.String("table_selector", "table")
	tables := doc.Find(selector)
	if tables.Length() == 0 {
		return nil, &reader.MalformedSourceError{Format: "html", Detail: "no <table> matched " + selector}
	}

	linkCol := opts.Int("link_column", -1)
	index := opts.Int("table_index", -1)

	if index >= 0 {
		if index >= tables.Length() {
			return nil, &reader.MalformedSourceError{
				Format: "html",
				Detail: "table_index beyond matched tables",
			}
		}
		grid := tableGrid(tables.Eq(index), linkCol)
		nameLinkHeader(grid, linkCol, opts)
		if len(grid) == 0 {
			return nil, &reader.MalformedSourceError{Format: "html", Detail: "selected table has no rows"}
		}
		return reader.Shape("html", grid, opts)
	}

	// All-tables mode: the first table fixes the schema, later tables with a
	// different column count are page furniture (summaries, nav) and skipped.
	var out *table.RawTable
	var shapeErr error
	tables.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		grid := tableGrid(sel, linkCol)
		nameLinkHeader(grid, linkCol, opts)
		if len(grid) == 0 {
			return true
		}
		t, err := reader.Shape("html", grid, opts)
		if err != nil {
			if out == nil {
				shapeErr = err
				return false
			}
			return true
		}
		if out == nil {
			out = t
			return true
		}
		if len(t.Columns) == len(out.Columns) {
			out.Append(t)
		}
		return true
	})
	if shapeErr != nil {
		return nil, shapeErr
	}
	if out == nil {
		return nil, &reader.MalformedSourceError{Format: "html", Detail: "no table rows found"}
	}
	return out, nil
}

// tableGrid flattens one <table> into a cell grid. Header cells (<th>) form
// the first grid row when present; data rows follow in DOM order.
func tableGrid(sel *goquery.Selection, linkCol int) [][]string {
	var grid [][]string

	if th := sel.Find("th"); th.Length() > 0 {
		header := make([]string, 0, th.Length())
		th.Each(func(_ int, cell *goquery.Selection) {
			header = append(header, cellText(cell))
		})
		if linkCol >= 0 {
			header = append(header, LinkColumn)
		}
		grid = append(grid, header)
	}

	sel.Find("tr").Each(func(_ int, row *goquery.Selection) {
		tds := row.Find("td")
		if tds.Length() == 0 {
			return
		}
		cells := make([]string, 0, tds.Length())
		var href string
		tds.Each(func(i int, cell *goquery.Selection) {
			cells = append(cells, cellText(cell))
			if linkCol == i {
				if h, ok := cell.Find("a[href]").First().Attr("href"); ok {
					href = strings.TrimSpace(h)
				}
			}
		})
		if linkCol >= 0 {
			cells = append(cells, href)
		}
		grid = append(grid, cells)
	})

	return grid
}

// nameLinkHeader makes sure the row Shape will use as the header carries the
// LinkColumn name in the synthetic last cell. Without this, headerless tables
// would lose the link column to empty-header trimming.
func nameLinkHeader(grid [][]string, linkCol int, opts config.Options) {
	if linkCol < 0 {
		return
	}
	hdr := opts.Int("skip_rows", 0) + opts.Int("header_row", 0)
	if hdr < 0 || hdr >= len(grid) {
		return
	}
	row := grid[hdr]
	if n := len(row); n > 0 && strings.TrimSpace(row[n-1]) == "" {
		row[n-1] = LinkColumn
	}
}

func cellText(sel *goquery.Selection) string {
	return table.CollapseSpace(sel.Text())
}
