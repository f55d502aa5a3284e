package override

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"warnetl/internal/config"
	"warnetl/internal/reader"
	"warnetl/internal/table"
)

func init() {
	Register("HI", ReadHI)
}

// ReadHI reads Hawaii's HTML archive, which is not a table at all: each
// notice is a paragraph of the form "<date> – <company>" with the notice PDF
// linked inline. Continuation paragraphs starting with "*" attach updated
// notice links or free-form notes to the previous entry.
func ReadHI(data []byte, opts config.Options) (*table.RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &reader.MalformedSourceError{Format: "html", Detail: "parse html", Err: err}
	}

	content := doc.Find("div.primary-content")
	if content.Length() == 0 {
		content = doc.Selection
	}

	header := []string{"Date Received", "Company", "Notice Link", "Notes"}
	var rows [][]string

	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := table.CollapseSpace(p.Text())
		if text == "" {
			return
		}
		href, _ := p.Find("a[href]").First().Attr("href")

		date, company, ok := strings.Cut(text, "–")
		if !ok {
			date, company, ok = strings.Cut(text, "-")
		}
		if ok && !strings.HasPrefix(text, "*") {
			company = strings.TrimSpace(company)
			note := ""
			if strings.HasSuffix(company, "*") {
				company = strings.TrimRight(company, "* ")
				note = "see source site for further information"
			}
			rows = append(rows, []string{strings.TrimSpace(date), company, strings.TrimSpace(href), note})
			return
		}

		// Continuation line: attach to the previous entry.
		if len(rows) == 0 {
			return
		}
		last := rows[len(rows)-1]
		if href != "" && last[2] == "" {
			last[2] = strings.TrimSpace(href)
			return
		}
		note := strings.TrimLeft(text, "* ")
		if last[3] != "" {
			note = last[3] + "; " + note
		}
		last[3] = note
	})

	if len(rows) == 0 {
		return nil, &reader.MalformedSourceError{Format: "html", Detail: "no notice paragraphs found"}
	}
	return table.Build(header, rows), nil
}
