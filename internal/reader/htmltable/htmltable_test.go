package htmltable

import (
	"errors"
	"reflect"
	"testing"

	"warnetl/internal/config"
	"warnetl/internal/reader"
)

const basicPage = `<html><body>
<table>
  <tr><th>Company</th><th>Notice Date</th><th>Employees</th></tr>
  <tr><td>Acme Corp</td><td>1/2/2024</td><td>10</td></tr>
  <tr><td>Widgets Inc</td><td>2/2/2024</td><td>20</td></tr>
</table>
</body></html>`

func TestReadBasicTable(t *testing.T) {
	t.Parallel()

	tab, err := Read([]byte(basicPage), config.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := []string{"Company", "Notice Date", "Employees"}
	if !reflect.DeepEqual(tab.Columns, want) {
		t.Fatalf("Columns = %v", tab.Columns)
	}
	if len(tab.Rows) != 2 || tab.Cell(1, "Company") != "Widgets Inc" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

func TestReadLinkColumn(t *testing.T) {
	t.Parallel()

	page := `<table>
  <tr><th>Company</th><th>Date</th></tr>
  <tr><td><a href="/warn/acme.pdf">Acme</a></td><td>1/2/2024</td></tr>
  <tr><td>Widgets</td><td>2/2/2024</td></tr>
</table>`

	tab, err := Read([]byte(page), config.Options{"link_column": 0})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tab.ColumnIndex(LinkColumn) < 0 {
		t.Fatalf("Columns = %v, want %s present", tab.Columns, LinkColumn)
	}
	if got := tab.Cell(0, LinkColumn); got != "/warn/acme.pdf" {
		t.Fatalf("link = %q", got)
	}
	// Rows without an anchor yield an empty link, not a dropped row.
	if got := tab.Cell(1, LinkColumn); got != "" {
		t.Fatalf("link without anchor = %q, want empty", got)
	}
}

// TestReadHeaderlessTableWithLinks exercises the layout where the first <td>
// row is the header: the synthetic link cell must still get its column name.
func TestReadHeaderlessTableWithLinks(t *testing.T) {
	t.Parallel()

	page := `<table>
  <tr><td>Company</td><td>Date</td></tr>
  <tr><td><a href="/n/1.pdf">Acme</a></td><td>1/2/2024</td></tr>
</table>`

	tab, err := Read([]byte(page), config.Options{"link_column": 0})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := tab.Cell(0, LinkColumn); got != "/n/1.pdf" {
		t.Fatalf("link = %q, columns = %v", got, tab.Columns)
	}
}

// TestReadConcatenatesMatchingTables covers table_index=-1: year-per-table
// archives concatenate, while furniture with a different column count is
// skipped.
func TestReadConcatenatesMatchingTables(t *testing.T) {
	t.Parallel()

	page := `
<table><tr><th>Company</th><th>Date</th></tr><tr><td>Acme</td><td>1/2/2024</td></tr></table>
<table><tr><th>Nav</th></tr><tr><td>home</td></tr></table>
<table><tr><th>Company</th><th>Date</th></tr><tr><td>Widgets</td><td>2/2/2024</td></tr></table>`

	tab, err := Read([]byte(page), config.Options{})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("Rows = %v, want 2", tab.Rows)
	}
	if tab.Cell(1, "Company") != "Widgets" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

func TestReadTableIndex(t *testing.T) {
	t.Parallel()

	page := `
<table><tr><th>A</th></tr><tr><td>first</td></tr></table>
<table><tr><th>B</th></tr><tr><td>second</td></tr></table>`

	tab, err := Read([]byte(page), config.Options{"table_index": 1})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tab.Cell(0, "B") != "second" {
		t.Fatalf("Rows = %v", tab.Rows)
	}

	_, err = Read([]byte(page), config.Options{"table_index": 9})
	var malformed *reader.MalformedSourceError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedSourceError", err)
	}
}

func TestReadTableSelector(t *testing.T) {
	t.Parallel()

	page := `
<table class="nav"><tr><th>X</th></tr><tr><td>no</td></tr></table>
<table id="notices"><tr><th>Company</th></tr><tr><td>Acme</td></tr></table>`

	tab, err := Read([]byte(page), config.Options{"table_selector": "table#notices"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if tab.Cell(0, "Company") != "Acme" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

func TestReadNoTables(t *testing.T) {
	t.Parallel()

	_, err := Read([]byte("<p>nothing tabular here</p>"), config.Options{})
	var malformed *reader.MalformedSourceError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *MalformedSourceError", err)
	}
}
