package extract

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// CSVExtractor parses a delimited statement export into one record per row,
// keyed by the header line. Values stay strings; the reconciler converts.
type CSVExtractor struct{}

func NewCSVExtractor() *CSVExtractor {
	return &CSVExtractor{}
}

func (e *CSVExtractor) Format() Format { return FormatCSV }

func (e *CSVExtractor) Extract(data []byte) ([]RawRecord, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	// Statement exports frequently have ragged trailing columns.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &MalformedInputError{Format: FormatCSV, Reason: "empty file"}
	}
	if err != nil {
		return nil, &MalformedInputError{Format: FormatCSV, Reason: "unreadable header", Err: err}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedInputError{Format: FormatCSV, Reason: "unreadable row", Err: err}
		}
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
		return nil, &MalformedInputError{Format: FormatCSV, Reason: "no data rows"}
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// periodLabel pulls the reporting period from the conventional year columns.
func periodLabel(rec *RawRecord) string {
	for _, name := range []string{"年份", "年度", "year", "Year", "YEAR"} {
		if v, ok := rec.Get(name); ok && v != nil {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
