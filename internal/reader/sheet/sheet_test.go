package sheet

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"warnetl/internal/config"
	"warnetl/internal/reader"
)

// buildWorkbook writes an in-memory .xlsx with the given sheets, each a grid
// of rows.
func buildWorkbook(t *testing.T, sheets map[string][][]any, order []string) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), name)
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatalf("NewSheet(%s): %v", name, err)
			}
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("SetSheetRow: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestReadSingleSheet(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, map[string][][]any{
		"2024": {
			{"Company", "Notice Date", "Employees"},
			{"Acme", "1/2/2024", 10},
		},
	}, []string{"2024"})

	tab, err := Read(data, config.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []string{"Company", "Notice Date", "Employees"}
	if !reflect.DeepEqual(tab.Columns, want) {
		t.Fatalf("Columns = %v", tab.Columns)
	}
	if tab.Cell(0, "Employees") != "10" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

// TestReadAppendsSheetsByName verifies year-per-sheet workbooks stitch into
// one table even when a later sheet reorders its columns.
func TestReadAppendsSheetsByName(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, map[string][][]any{
		"2023": {
			{"Company", "Date"},
			{"Acme", "1/2/2023"},
		},
		"2024": {
			{"Date", "Company"},
			{"2/2/2024", "Widgets"},
		},
	}, []string{"2023", "2024"})

	tab, err := Read(data, config.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("Rows = %v, want 2", tab.Rows)
	}
	if tab.Cell(1, "Company") != "Widgets" || tab.Cell(1, "Date") != "2/2/2024" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

func TestReadSheetNameOption(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, map[string][][]any{
		"Notes":   {{"irrelevant"}},
		"Notices": {{"Company"}, {"Acme"}},
	}, []string{"Notes", "Notices"})

	tab, err := Read(data, config.Options{"sheet_name": "Notices"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tab.Cell(0, "Company") != "Acme" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

func TestReadMissingSheet(t *testing.T) {
	t.Parallel()

	data := buildWorkbook(t, map[string][][]any{
		"2024": {{"Company"}, {"Acme"}},
	}, []string{"2024"})

	_, err := Read(data, config.Options{"sheet_name": "2019"})
	var malformed *reader.MalformedSourceError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedSourceError", err)
	}
}

func TestReadNotAWorkbook(t *testing.T) {
	t.Parallel()

	_, err := Read([]byte("definitely not a zip"), config.Options{})
	var malformed *reader.MalformedSourceError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedSourceError", err)
	}
}
