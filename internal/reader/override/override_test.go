package override

import (
	"reflect"
	"testing"

	"warnetl/internal/config"
	"warnetl/internal/table"
)

func TestLookupRegisteredSources(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"WV", "NJ", "HI"} {
		if _, ok := Lookup(id); !ok {
			t.Errorf("Lookup(%s) = false, want registered", id)
		}
	}
	if _, ok := Lookup("CA"); ok {
		t.Errorf("Lookup(CA) = true, want no override")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	t.Parallel()

	stub := func([]byte, config.Options) (*table.RawTable, error) { return nil, nil }
	Register("override-test-id", stub)

	defer func() {
		if recover() == nil {
			t.Fatalf("duplicate Register did not panic")
		}
	}()
	Register("override-test-id", stub)
}

// TestReadNJSingleRowTables covers the per-record-table layout: first table
// is the header, each later table one data row.
func TestReadNJSingleRowTables(t *testing.T) {
	t.Parallel()

	page := `
<table><tr><td>Company</td><td>Notice Date</td></tr></table>
<table><tr><td>Acme Corp</td><td>1/2/2024</td></tr></table>
<table><tr><td>Widgets Inc</td><td>2/2/2024</td></tr></table>`

	tab, err := ReadNJ([]byte(page), config.Options{})
	if err != nil {
		t.Fatalf("ReadNJ: %v", err)
	}
	if !reflect.DeepEqual(tab.Columns, []string{"Company", "Notice Date"}) {
		t.Fatalf("Columns = %v", tab.Columns)
	}
	if len(tab.Rows) != 2 || tab.Cell(1, "Company") != "Widgets Inc" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

// TestReadNJFallsBackToGenericTable verifies a conventional multi-row table
// routes through the generic HTML reader instead of the per-record layout.
func TestReadNJFallsBackToGenericTable(t *testing.T) {
	t.Parallel()

	page := `<table>
  <tr><th>Company</th><th>Notice Date</th></tr>
  <tr><td>Acme</td><td>1/2/2024</td></tr>
  <tr><td>Widgets</td><td>2/2/2024</td></tr>
</table>`

	tab, err := ReadNJ([]byte(page), config.Options{})
	if err != nil {
		t.Fatalf("ReadNJ: %v", err)
	}
	if len(tab.Rows) != 2 || tab.Cell(0, "Company") != "Acme" {
		t.Fatalf("Rows = %v", tab.Rows)
	}
}

// TestReadHIParagraphs covers the date-dash-company paragraph layout with an
// inline notice link.
func TestReadHIParagraphs(t *testing.T) {
	t.Parallel()

	page := `<div class="primary-content">
<p>1/2/2024 – <a href="/warn/acme.pdf">Acme Corp</a></p>
<p>2/2/2024 – Widgets Inc*</p>
<p>* <a href="/warn/widgets-update.pdf">Updated notice</a></p>
</div>`

	tab, err := ReadHI([]byte(page), config.Options{})
	if err != nil {
		t.Fatalf("ReadHI: %v", err)
	}
	if len(tab.Rows) != 2 {
		t.Fatalf("Rows = %v, want 2", tab.Rows)
	}
	if tab.Cell(0, "Date Received") != "1/2/2024" || tab.Cell(0, "Company") != "Acme Corp" {
		t.Fatalf("row 0 = %v", tab.Rows[0])
	}
	if tab.Cell(0, "Notice Link") != "/warn/acme.pdf" {
		t.Fatalf("row 0 link = %q", tab.Cell(0, "Notice Link"))
	}
	// The starred entry picked up a note; the continuation paragraph attached
	// its link.
	if tab.Cell(1, "Company") != "Widgets Inc" {
		t.Fatalf("row 1 company = %q", tab.Cell(1, "Company"))
	}
	if tab.Cell(1, "Notice Link") != "/warn/widgets-update.pdf" {
		t.Fatalf("row 1 link = %q", tab.Cell(1, "Notice Link"))
	}
}

func TestReadHINoParagraphs(t *testing.T) {
	t.Parallel()

	if _, err := ReadHI([]byte("<div class=\"primary-content\"></div>"), config.Options{}); err == nil {
		t.Fatalf("want error on empty archive")
	}
}

// TestSplitNoticeTables cuts clustered PDF lines into per-notice blocks at
// blank separators.
func TestSplitNoticeTables(t *testing.T) {
	t.Parallel()

	lines := [][]string{
		{"Company:", "Acme Corp"},
		{"Employees:", "10"},
		{""},
		{"Company:", "Widgets Inc"},
		{"Employees:", "20"},
	}

	got := splitNoticeTables(lines)
	if len(got) != 2 {
		t.Fatalf("blocks = %d, want 2", len(got))
	}
	if got[1][0][1] != "Widgets Inc" {
		t.Fatalf("second block = %v", got[1])
	}
}

// TestFoldNotice checks unnamed-field handling: a leading unnamed line is an
// amendment note, later unnamed lines continue the previous value.
func TestFoldNotice(t *testing.T) {
	t.Parallel()

	block := [][]string{
		{"", "AMENDED 3/1/2024"},
		{"Company:", "Acme"},
		{"Address:", "1 Main St"},
		{"", "Suite 200"},
	}

	names, values := foldNotice(block)
	wantNames := []string{"Update Note", "Company", "Address"}
	if !reflect.DeepEqual(names, wantNames) {
		t.Fatalf("names = %v, want %v", names, wantNames)
	}
	if values[2] != "1 Main St\nSuite 200" {
		t.Fatalf("folded address = %q", values[2])
	}
}
