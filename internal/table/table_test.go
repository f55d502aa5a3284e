package table

import (
	"reflect"
	"testing"
)

// TestBuildNormalizesHeaderAndRows covers the core invariants: whitespace
// collapse in names, duplicate suffixing, row padding/truncation, and cell
// trimming.
func TestBuildNormalizesHeaderAndRows(t *testing.T) {
	t.Parallel()

	tab := Build(
		[]string{" Company \n Name ", "Date", "Date", "Count"},
		[][]string{
			{"  Acme Corp ", "1/2/2024", "1/3/2024", "10", "overflow"},
			{"Widgets Inc", "2/2/2024"},
		},
	)

	wantCols := []string{"Company Name", "Date", "Date_2", "Count"}
	if !reflect.DeepEqual(tab.Columns, wantCols) {
		t.Fatalf("Columns = %v, want %v", tab.Columns, wantCols)
	}

	wantRows := [][]string{
		{"Acme Corp", "1/2/2024", "1/3/2024", "10"},
		{"Widgets Inc", "2/2/2024", "", ""},
	}
	if !reflect.DeepEqual(tab.Rows, wantRows) {
		t.Fatalf("Rows = %v, want %v", tab.Rows, wantRows)
	}
}

// TestBuildDropsEmptyRowsAndColumns checks fully-empty rows disappear, as do
// unnamed columns whose cells are all empty.
func TestBuildDropsEmptyRowsAndColumns(t *testing.T) {
	t.Parallel()

	tab := Build(
		[]string{"A", "", "B"},
		[][]string{
			{"1", "", "x"},
			{"  ", "", "   "},
			{"2", "", "y"},
		},
	)

	if !reflect.DeepEqual(tab.Columns, []string{"A", "B"}) {
		t.Fatalf("Columns = %v, want [A B]", tab.Columns)
	}
	want := [][]string{{"1", "x"}, {"2", "y"}}
	if !reflect.DeepEqual(tab.Rows, want) {
		t.Fatalf("Rows = %v, want %v", tab.Rows, want)
	}
}

// TestBuildKeepsUnnamedColumnWithData verifies a headerless column survives
// when its cells carry values.
func TestBuildKeepsUnnamedColumnWithData(t *testing.T) {
	t.Parallel()

	tab := Build(
		[]string{"A", "", "B"},
		[][]string{{"1", "link", "x"}},
	)

	if len(tab.Columns) != 3 {
		t.Fatalf("Columns = %v, want 3 columns", tab.Columns)
	}
	if tab.Rows[0][1] != "link" {
		t.Fatalf("unnamed column cell = %q, want link", tab.Rows[0][1])
	}
}

func TestBuildEmptyHeader(t *testing.T) {
	t.Parallel()

	tab := Build(nil, [][]string{{"a"}})
	if len(tab.Columns) != 0 || len(tab.Rows) != 0 {
		t.Fatalf("empty header should yield empty table, got %v / %v", tab.Columns, tab.Rows)
	}
}

func TestCellAndColumnIndex(t *testing.T) {
	t.Parallel()

	tab := Build([]string{"A", "B"}, [][]string{{"1", "2"}})

	if got := tab.ColumnIndex("B"); got != 1 {
		t.Fatalf("ColumnIndex(B) = %d, want 1", got)
	}
	if got := tab.ColumnIndex("missing"); got != -1 {
		t.Fatalf("ColumnIndex(missing) = %d, want -1", got)
	}
	if got := tab.Cell(0, "B"); got != "2" {
		t.Fatalf("Cell(0, B) = %q, want 2", got)
	}
	if got := tab.Cell(5, "B"); got != "" {
		t.Fatalf("Cell out of range = %q, want empty", got)
	}
}

func TestSelectColumns(t *testing.T) {
	t.Parallel()

	tab := Build([]string{"A", "B", "C"}, [][]string{{"1", "2", "3"}})

	sub, missing := tab.SelectColumns([]string{"C", "A"})
	if missing != nil {
		t.Fatalf("missing = %v, want nil", missing)
	}
	if !reflect.DeepEqual(sub.Columns, []string{"C", "A"}) {
		t.Fatalf("Columns = %v, want [C A]", sub.Columns)
	}
	if !reflect.DeepEqual(sub.Rows, [][]string{{"3", "1"}}) {
		t.Fatalf("Rows = %v", sub.Rows)
	}

	_, missing = tab.SelectColumns([]string{"A", "Z"})
	if !reflect.DeepEqual(missing, []string{"Z"}) {
		t.Fatalf("missing = %v, want [Z]", missing)
	}
}

// TestAppendMatchesByName verifies rows append positionally by column name,
// with absent columns producing empty cells.
func TestAppendMatchesByName(t *testing.T) {
	t.Parallel()

	a := Build([]string{"A", "B"}, [][]string{{"1", "2"}})
	b := Build([]string{"B", "C"}, [][]string{{"20", "30"}})

	a.Append(b)

	want := [][]string{{"1", "2"}, {"", "20"}}
	if !reflect.DeepEqual(a.Rows, want) {
		t.Fatalf("Rows = %v, want %v", a.Rows, want)
	}
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()

	if got := CollapseSpace("  a \n\t b  c "); got != "a b c" {
		t.Fatalf("CollapseSpace = %q", got)
	}
}
