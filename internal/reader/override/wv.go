package override

import (
	"bytes"
	"strings"

	"github.com/ledongthuc/pdf"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/reader/pdftable"
	"warnetl/internal/table"
)

func init() {
	Register("WV", ReadWV)
}

// ReadWV reads West Virginia's PDF archive.
//
// Unlike the generic lattice layout, WV prints one small two-column table per
// notice: field names down the left, values down the right. Each table
// becomes one output row. A table opening with an unnamed field holds an
// amendment note; later unnamed fields are continuations of the previous
// value (split cells), so their text is folded into it.
func ReadWV(data []byte, opts config.Options) (*table.RawTable, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &reader.MalformedSourceError{Format: "pdf", Detail: "open pdf", Err: err}
	}

	yTol := 2.0
	gap := 10.0

	var columns []string
	var rows [][]string

	for n := 1; n <= r.NumPage(); n++ {
		page := r.Page(n)
		if page.V.IsNull() {
			continue
		}
		for _, tbl := range splitNoticeTables(pdftable.ClusterRows(page.Content().Text, yTol, gap)) {
			names, values := foldNotice(tbl)
			if len(names) == 0 {
				continue
			}
			if columns == nil {
				columns = names
			}
			row := make([]string, len(columns))
			for i, c := range columns {
				for j, name := range names {
					if name == c {
						row[i] = values[j]
						break
					}
				}
			}
			rows = append(rows, row)
		}
	}

	if columns == nil {
		return nil, &reader.MalformedSourceError{Format: "pdf", Detail: "no notice tables found"}
	}
	return table.Build(columns, rows), nil
}

// splitNoticeTables cuts the page's clustered lines into per-notice blocks.
// A blank-ish separator (single empty-joined line) ends the current block.
func splitNoticeTables(lines [][]string) [][][]string {
	var tables [][][]string
	var cur [][]string

	flush := func() {
		if len(cur) > 0 {
			tables = append(tables, cur)
			cur = nil
		}
	}

	for _, line := range lines {
		if len(line) < 2 || strings.TrimSpace(strings.Join(line, "")) == "" {
			flush()
			continue
		}
		cur = append(cur, line[:2])
	}
	flush()
	return tables
}

// foldNotice converts a two-column block into parallel name/value slices,
// merging unnamed continuation lines into the previous field.
func foldNotice(block [][]string) (names, values []string) {
	prev := -1
	for i, line := range block {
		name := table.CollapseSpace(strings.TrimSuffix(line[0], ":"))
		value := strings.TrimSpace(line[1])

		switch {
		case name == "" && i == 0:
			names = append(names, "Update Note")
			values = append(values, value)
			prev = len(names) - 1
		case name == "" && prev >= 0:
			values[prev] = strings.TrimSpace(values[prev] + "\n" + value)
		case name != "":
			names = append(names, name)
			values = append(values, value)
			prev = len(names) - 1
		}
	}
	return names, values
}
