// Command extract-table runs one format reader against a single payload and
// prints the resulting table. It is the debugging loop for onboarding a new
// source: tweak reader options, re-run, inspect what the normalizer would see.
//
// Usage (stdin):
//
//	cat notices.html | extract-table -format html
//
// Usage (file, with reader options):
//
//	extract-table -in notices.xlsx -format excel -options '{"header_row": 2}'
//
// Usage (source override):
//
//	extract-table -in wv.pdf -source WV
//
// Debug (print outer HTML of selector matches, before table parsing):
//
//	cat page.html | extract-table -selector "div#notices table"
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/PuerkitoBio/goquery"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/reader/override"

	_ "warnetl/internal/reader/delim"
	_ "warnetl/internal/reader/htmltable"
	_ "warnetl/internal/reader/pdftable"
	_ "warnetl/internal/reader/sheet"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is split out from main so the command is testable without spawning an
// OS process. Exit codes: 0 success, 1 runtime error, 2 usage error.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("extract-table", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		in       = fs.String("in", "", "input file (default: stdin)")
		format   = fs.String("format", "", "reader format: "+fmt.Sprint(reader.Kinds()))
		source   = fs.String("source", "", "source ID; uses its registered override reader")
		optsJSON = fs.String("options", "", "reader options as a JSON object")
		asJSON   = fs.Bool("json", false, "print rows as JSON objects instead of TSV")
		selector = fs.String("selector", "", "debug: print outer HTML of CSS selector matches and exit")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *selector != "" {
		data, err := readInput(*in, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		return debugSelector(data, *selector, stdout, stderr)
	}

	var read reader.Func
	switch {
	case *source != "":
		fn, ok := override.Lookup(*source)
		if !ok {
			fmt.Fprintf(stderr, "no override registered for source %q\n", *source)
			return 2
		}
		read = fn
	case *format != "":
		fn, err := reader.Lookup(*format)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 2
		}
		read = fn
	default:
		fmt.Fprintln(stderr, "one of -format or -source is required")
		return 2
	}

	opts := config.Options{}
	if *optsJSON != "" {
		if err := json.Unmarshal([]byte(*optsJSON), &opts); err != nil {
			fmt.Fprintf(stderr, "parse -options: %v\n", err)
			return 2
		}
	}

	data, err := readInput(*in, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	tab, err := read(data, opts)
	if err != nil {
		fmt.Fprintf(stderr, "read: %v\n", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		for i := range tab.Rows {
			if err := enc.Encode(tab.RowMap(i)); err != nil {
				fmt.Fprintf(stderr, "encode: %v\n", err)
				return 1
			}
		}
		return 0
	}

	printTSV(stdout, tab.Columns)
	for _, row := range tab.Rows {
		printTSV(stdout, row)
	}
	return 0
}

// debugSelector prints each selector match as outer HTML, numbered, so a new
// source's table_selector can be dialed in against the real page.
func debugSelector(data []byte, selector string, stdout, stderr io.Writer) int {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		fmt.Fprintf(stderr, "parse html: %v\n", err)
		return 1
	}

	matches := doc.Find(selector)
	if matches.Length() == 0 {
		fmt.Fprintf(stderr, "no matches for %q\n", selector)
		return 1
	}
	matches.Each(func(i int, sel *goquery.Selection) {
		html, err := goquery.OuterHtml(sel)
		if err != nil {
			return
		}
		fmt.Fprintf(stdout, "--- match %d ---\n%s\n", i, html)
	})
	return 0
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func printTSV(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}
