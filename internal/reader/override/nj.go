package override

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/reader/htmltable"
	"warnetl/internal/table"
)

func init() {
	Register("NJ", ReadNJ)
}

// ReadNJ reads New Jersey's HTML archive.
//
// Some NJ years render each record, header included, as its own single-row
// <table>. The first table supplies the column names and every later table
// contributes one data row. Years that use a conventional table produce no
// rows under that assumption, so the generic HTML reader is the fallback.
func ReadNJ(data []byte, opts config.Options) (*table.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &reader.MalformedSourceError{Format: "html", Detail: "parse html", Err: err}
	}

	var header []string
	var rows [][]string

	doc.Find("table").Each(func(i int, sel *goquery.Selection) {
		tr := sel.Find("tr").First()
		if tr.Length() == 0 {
			return
		}
		var cells []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, table.CollapseSpace(cell.Text()))
		})
		if len(cells) == 0 {
			return
		}
		if header == nil {
			header = cells
			return
		}
		rows = append(rows, cells)
	})

	if len(rows) == 0 {
		return htmltable.Read(data, opts)
	}
	return table.Build(header, rows), nil
}
