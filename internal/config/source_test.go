package config

import (
	"errors"
	"strings"
	"testing"

	"warnetl/internal/record"
)

var testFormats = []string{"csv", "html", "pdf", "excel"}

const sourcesCSV = `ID,Name,Format,Reader Options,Date Layouts,Cleaner,Cleaner Stage,Company Field,Notice Date Field,Employee Count Field
CA,California,html,"{""table_index"": 0}",1/2/2006|2006-01-02,,,Company,Notice Date,Employees
TX,Texas,google_sheets,,,strip_footnote_markers,before_map,JOB SITE NAME,WARN NOTICE DATE,
`

func TestParseSources(t *testing.T) {
	t.Parallel()

	store, err := ParseSources(strings.NewReader(sourcesCSV), testFormats)
	if err != nil {
		t.Fatalf("ParseSources: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("Len = %d, want 2", store.Len())
	}

	ca, err := store.Resolve("CA")
	if err != nil {
		t.Fatalf("Resolve(CA): %v", err)
	}
	if ca.Name != "California" || ca.Format != "html" {
		t.Errorf("CA = %+v", ca)
	}
	if got := ca.Options.Int("table_index", -1); got != 0 {
		t.Errorf("CA table_index = %d, want 0", got)
	}
	if len(ca.DateLayouts) != 2 || ca.DateLayouts[0] != "1/2/2006" {
		t.Errorf("CA DateLayouts = %v", ca.DateLayouts)
	}
	if got := ca.FieldColumns[record.FieldCompany]; got != "Company" {
		t.Errorf("CA company column = %q", got)
	}
	if got := ca.FieldColumns[record.FieldEmployeeCount]; got != "Employees" {
		t.Errorf("CA employee count column = %q", got)
	}

	// Google Sheets exports fold into the csv reader.
	tx, err := store.Resolve("TX")
	if err != nil {
		t.Fatalf("Resolve(TX): %v", err)
	}
	if tx.Format != "csv" {
		t.Errorf("TX format = %q, want csv", tx.Format)
	}
	if tx.Cleaner != "strip_footnote_markers" || tx.CleanerStage != "before_map" {
		t.Errorf("TX cleaner = %q/%q", tx.Cleaner, tx.CleanerStage)
	}
	if _, mapped := tx.FieldColumns[record.FieldEmployeeCount]; mapped {
		t.Errorf("TX should have no employee count mapping")
	}

	if got := store.IDs(); len(got) != 2 || got[0] != "CA" || got[1] != "TX" {
		t.Errorf("IDs = %v", got)
	}
}

func TestResolveUnknownSource(t *testing.T) {
	t.Parallel()

	store, err := ParseSources(strings.NewReader(sourcesCSV), testFormats)
	if err != nil {
		t.Fatalf("ParseSources: %v", err)
	}

	_, err = store.Resolve("ZZ")
	var unknown *UnknownSourceError
	if !errors.As(err, &unknown) {
		t.Fatalf("err = %v, want *UnknownSourceError", err)
	}
	if unknown.ID != "ZZ" {
		t.Errorf("ID = %q, want ZZ", unknown.ID)
	}
}

// TestParseSourcesFailsFast checks that every config mistake surfaces at load
// time: misspelled canonical field suffixes, unknown formats, duplicates.
func TestParseSourcesFailsFast(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		csv  string
		want string
	}{
		{
			name: "unknown canonical field",
			csv:  "id,format,compny_field\nCA,html,Company\n",
			want: "unknown canonical field",
		},
		{
			name: "unknown format",
			csv:  "id,format\nCA,docx\n",
			want: `unknown format "docx"`,
		},
		{
			name: "duplicate id",
			csv:  "id,format\nCA,html\nCA,csv\n",
			want: "duplicate source id",
		},
		{
			name: "missing id",
			csv:  "id,format\n,html\n",
			want: "missing id",
		},
		{
			name: "bad reader options json",
			csv:  "id,format,reader_options\nCA,html,notjson\n",
			want: "reader_options",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSources(strings.NewReader(tc.csv), testFormats)
			if err == nil {
				t.Fatalf("want error containing %q, got nil", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}
