package extract

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	"fcff_engine/pkg/core/alias"
)

// PDFExtractor pulls metrics out of text-layer PDFs. Converted statements
// rarely carry table structure, so this is a line-heuristic pass: lines that
// look tabular accumulate into tables, everything else is scanned as free
// text. Noisy layouts will misparse; treat PDF results as best effort.
type PDFExtractor struct {
	resolver *alias.Resolver
}

func NewPDFExtractor(resolver *alias.Resolver) *PDFExtractor {
	return &PDFExtractor{resolver: resolver}
}

func (e *PDFExtractor) Format() Format { return FormatPDF }

// Table detection patterns:
//   - two or more numeric tokens separated by whitespace
//   - a header-like "item + 4-digit year" line
//   - a unit declaration line
var (
	numericColumnsPattern = regexp.MustCompile(`^[\s\t]*[\d,\.]+[\s\t]+[\d,\.]+`)
	itemYearPattern       = regexp.MustCompile(`^[\s\t]*项目[\s\t]+\d{4}`)
	unitLinePattern       = regexp.MustCompile(`^[\s\t]*(单位[：:]|unit\s*:)`)
	cellSplitPattern      = regexp.MustCompile(`\s{2,}`)

	digitOrCurrency = regexp.MustCompile(`[\d¥]`)

	// Amount patterns for free-text scanning. The first form captures a
	// number directly followed by a Chinese magnitude/currency unit.
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:¥|RMB|USD)?\s*([\d,]+(?:\.\d+)?)\s*(?:万元|亿元|元|万|亿)`),
		regexp.MustCompile(`(?:¥|RMB|USD)?\s*([\d,]+(?:\.\d+)?)`),
	}
)

type pdfTable struct {
	headers []string
	rows    [][]string
}

func (e *PDFExtractor) Extract(data []byte) ([]RawRecord, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &MalformedInputError{Format: FormatPDF, Reason: "cannot open document", Err: err}
	}

	var records []RawRecord
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		lines := pageLines(page)
		if len(lines) == 0 {
			continue
		}

		tables, freeText := splitTablesAndText(lines)
		rec := RawRecord{}
		e.scanTables(tables, &rec)
		e.scanFreeText(freeText, &rec)
		if len(rec.Fields) > 0 {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, &MalformedInputError{Format: FormatPDF, Reason: "no financial lines detected"}
	}
	return records, nil
}

// pageLines reconstructs text lines from positioned words. Words on one row
// are joined with a double space so that downstream cell splitting on
// whitespace runs lands on the original chunk boundaries.
func pageLines(page pdf.Page) []string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}
	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			s := strings.TrimSpace(word.S)
			if s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, strings.Join(parts, "  "))
		}
	}
	return lines
}

// splitTablesAndText classifies each line and accumulates consecutive tabular
// lines into tables. The first line of a run is the header, the rest are data
// rows split on runs of two or more spaces.
func splitTablesAndText(lines []string) ([]pdfTable, []string) {
	var tables []pdfTable
	var current [][]string
	var freeText []string
	inTable := false

	flush := func() {
		if len(current) > 1 { // header plus at least one data row
			tables = append(tables, pdfTable{headers: current[0], rows: current[1:]})
		}
		current = nil
		inTable = false
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isTabularLine(trimmed) {
			inTable = true
			cells := cellSplitPattern.Split(trimmed, -1)
			for i := range cells {
				cells[i] = strings.TrimSpace(cells[i])
			}
			current = append(current, cells)
			continue
		}
		if inTable {
			flush()
		}
		freeText = append(freeText, trimmed)
	}
	if inTable {
		flush()
	}
	return tables, freeText
}

func isTabularLine(line string) bool {
	return numericColumnsPattern.MatchString(line) ||
		itemYearPattern.MatchString(line) ||
		unitLinePattern.MatchString(line)
}

// scanTables looks for rows whose label cell resolves to a known metric and
// takes the first numeric-looking cell of that row. First match wins: values
// found later never overwrite ones already set.
func (e *PDFExtractor) scanTables(tables []pdfTable, rec *RawRecord) {
	for _, table := range tables {
		for _, row := range table.rows {
			metric, ok := e.rowMetric(row)
			if !ok {
				continue
			}
			if value, ok := firstNumericCell(row); ok {
				rec.Set(string(metric), value)
			}
		}
	}
}

func (e *PDFExtractor) rowMetric(row []string) (alias.MetricID, bool) {
	for _, cell := range row {
		if looksNumeric(cell) {
			continue
		}
		if metric, ok := e.resolver.Resolve(cell); ok {
			return metric, true
		}
	}
	return "", false
}

// scanFreeText regex-scans non-tabular lines for a metric keyword followed by
// an amount, applying the 万 (1e4) and 亿 (1e8) magnitude suffixes.
func (e *PDFExtractor) scanFreeText(lines []string, rec *RawRecord) {
	for _, line := range lines {
		metric, ok := e.lineMetric(line)
		if !ok {
			continue
		}
		if value, ok := extractAmount(line); ok {
			rec.Set(string(metric), value)
		}
	}
}

func (e *PDFExtractor) lineMetric(line string) (alias.MetricID, bool) {
	// Strip the numeric tail so amounts do not pollute name resolution.
	label := line
	if loc := digitOrCurrency.FindStringIndex(line); loc != nil && loc[0] > 0 {
		label = line[:loc[0]]
	}
	return e.resolver.Resolve(label)
}

func firstNumericCell(row []string) (float64, bool) {
	for _, cell := range row {
		if !looksNumeric(cell) {
			continue
		}
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, cell)
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

func looksNumeric(cell string) bool {
	digits := 0
	for _, r := range cell {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ',' || r == '.' || r == '-' || r == '¥' || r == ' ':
		default:
			return false
		}
	}
	return digits > 0
}

func extractAmount(line string) (float64, bool) {
	for _, pattern := range amountPatterns {
		match := pattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(line, "亿"):
			return v * 1e8, true
		case strings.Contains(line, "万"):
			return v * 1e4, true
		}
		return v, true
	}
	return 0, false
}
