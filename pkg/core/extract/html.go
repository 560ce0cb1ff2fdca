package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLExtractor reads the first data table of an HTML statement export. The
// header row supplies field names and each body row becomes one record, the
// same shape the CSV and Excel extractors produce.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

func (e *HTMLExtractor) Format() Format { return FormatHTML }

func (e *HTMLExtractor) Extract(data []byte) ([]RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedInputError{Format: FormatHTML, Reason: "cannot parse document", Err: err}
	}

	var records []RawRecord
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		var header []string
		table.Find("tr").Each(func(rowIdx int, tr *goquery.Selection) {
			cells := cellTexts(tr)
			if len(cells) == 0 {
				return
			}
			if header == nil {
				header = cells
				return
			}
			rec := RawRecord{}
			for i, cell := range cells {
				if i >= len(header) || header[i] == "" {
					continue
				}
				if cell == "" {
					rec.Fields = append(rec.Fields, Field{Name: header[i], Value: nil})
					continue
				}
				rec.Fields = append(rec.Fields, Field{Name: header[i], Value: cell})
			}
			rec.Period = periodLabel(&rec)
			records = append(records, rec)
		})
		// Only the first table with data rows is the statement.
		return len(records) == 0
	})

	if len(records) == 0 {
		return nil, &MalformedInputError{Format: FormatHTML, Reason: "no data table found"}
	}
	return records, nil
}

func cellTexts(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, strings.TrimSpace(cell.Text()))
	})
	// Rows that are entirely empty are separators, not data.
	empty := true
	for _, c := range cells {
		if c != "" {
			empty = false
			break
		}
	}
	if empty {
		return nil
	}
	return cells
}
