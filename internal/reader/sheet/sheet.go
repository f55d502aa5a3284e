// Package sheet reads Excel workbooks (.xlsx) into a RawTable.
package sheet

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/table"
)

func init() {
	reader.Register("excel", Read)
}

// Read parses a workbook and stitches the selected sheets into one table.
//
// Options:
//   - sheet_name: single sheet to read; "sheets" may list several;
//     default is every sheet in workbook order
//   - skip_rows, header_row, drop_footer, column_range: see reader.Shape,
//     applied per sheet
//
// The first selected sheet fixes the header; later sheets are appended by
// column name, so year-per-sheet archives with reordered columns still line
// up. A sheet whose shaping fails is skipped rather than failing the file,
// unless it is the first one.
func Read(data []byte, opts config.Options) (*table.RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &reader.MalformedSourceError{Format: "excel", Detail: "open workbook", Err: err}
	}
	defer f.Close()

	sheets := opts.StringSlice("sheets")
	if name := opts.String("sheet_name", ""); name != "" {
		sheets = []string{name}
	}
	if len(sheets) == 0 {
		sheets = f.GetSheetList()
	}
	if len(sheets) == 0 {
		return nil, &reader.MalformedSourceError{Format: "excel", Detail: "workbook has no sheets"}
	}

	var out *table.RawTable
	for i, name := range sheets {
		grid, err := f.GetRows(name)
		if err != nil {
			return nil, &reader.MalformedSourceError{Format: "excel", Detail: "sheet " + name, Err: err}
		}
		t, err := reader.Shape("excel", grid, opts)
		if err != nil {
			if i == 0 {
				return nil, err
			}
			continue
		}
		if out == nil {
			out = t
			continue
		}
		out.Append(t)
	}
	if out == nil {
		return nil, &reader.MalformedSourceError{Format: "excel", Detail: "no sheet produced a table"}
	}
	return out, nil
}
