// Package delim reads delimited text sources (CSV, TSV, exported Google
// Sheets) into a RawTable.
package delim

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/table"
)

func init() {
	reader.Register("csv", Read)
}

// Read parses delimited text into a RawTable.
//
// Options:
//   - comma: field delimiter, first rune used (default ",")
//   - lazy_quotes: tolerate bare quotes inside fields
//   - charset: IANA name decoded via x/text (default: input is UTF-8)
//   - has_header: when false, column_names must supply the header
//   - column_names: explicit header, required when has_header=false
//   - skip_rows, header_row, drop_footer, column_range: see reader.Shape
//
// A UTF-8 BOM on the first cell is stripped, matching what state agencies
// routinely export from Excel.
func Read(data []byte, opts config.Options) (*table.RawTable, error) {
	var src io.Reader = bytes.NewReader(data)

	if cs := opts.String("charset", ""); cs != "" {
		enc, err := htmlindex.Get(cs)
		if err != nil {
			return nil, fmt.Errorf("delim: unknown charset %q: %w", cs, err)
		}
		src = transform.NewReader(src, enc.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.Comma = opts.Rune("comma", ',')
	cr.LazyQuotes = opts.Bool("lazy_quotes", false)
	cr.FieldsPerRecord = -1

	var grid [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &reader.MalformedSourceError{Format: "csv", Detail: "csv read", Err: err}
		}
		grid = append(grid, append([]string(nil), rec...))
	}
	if len(grid) == 0 {
		return nil, &reader.MalformedSourceError{Format: "csv", Detail: "empty input"}
	}

	if len(grid[0]) > 0 {
		grid[0][0] = strings.TrimPrefix(grid[0][0], "\uFEFF")
	}

	if !opts.Bool("has_header", true) {
		names := opts.StringSlice("column_names")
		if len(names) == 0 {
			return nil, &reader.MalformedSourceError{Format: "csv", Detail: "has_header=false requires column_names"}
		}
		grid = append([][]string{names}, grid...)
	}

	return reader.Shape("csv", grid, opts)
}
