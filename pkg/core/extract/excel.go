package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelExtractor reads the first worksheet of an .xlsx/.xls workbook. The
// first row is the header; every following row becomes one record.
type ExcelExtractor struct{}

func NewExcelExtractor() *ExcelExtractor {
	return &ExcelExtractor{}
}

func (e *ExcelExtractor) Format() Format { return FormatExcel }

func (e *ExcelExtractor) Extract(data []byte) ([]RawRecord, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedInputError{Format: FormatExcel, Reason: "cannot open workbook", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MalformedInputError{Format: FormatExcel, Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &MalformedInputError{Format: FormatExcel, Reason: "cannot read sheet", Err: err}
	}
	if len(rows) < 2 {
		return nil, &MalformedInputError{Format: FormatExcel, Reason: "sheet has no data rows"}
	}

	header := rows[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []RawRecord
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		rec := RawRecord{}
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				rec.Fields = append(rec.Fields, Field{Name: header[i], Value: nil})
				continue
			}
			rec.Fields = append(rec.Fields, Field{Name: header[i], Value: cell})
		}
		rec.Period = periodLabel(&rec)
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, &MalformedInputError{Format: FormatExcel, Reason: "no data rows"}
	}
	return records, nil
}
