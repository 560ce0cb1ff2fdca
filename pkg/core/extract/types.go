package extract

import (
	"fmt"
	"strings"
)

// Field is one raw key/value pair from a source document. Values arrive as
// whatever the source produced: string, float64, or nil. Numeric-looking
// strings stay strings here; conversion happens in reconciliation.
type Field struct {
	Name  string
	Value interface{}
}

// RawRecord is the ordered field list for one reporting period. Order is the
// appearance order in the source document and is load-bearing: resolution and
// "first match wins" semantics depend on it, so this is a slice, not a map.
type RawRecord struct {
	Fields []Field

	// Period is the reporting period label when the source declares one
	// (a year column, an XBRL context instant). Empty when unknown.
	Period string
}

// Get returns the first value stored under name.
func (r *RawRecord) Get(name string) (interface{}, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Set appends a field unless the name is already present. First write wins,
// matching the PDF extractor's "metrics found later never overwrite" rule.
func (r *RawRecord) Set(name string, value interface{}) {
	for _, f := range r.Fields {
		if f.Name == name {
			return
		}
	}
	r.Fields = append(r.Fields, Field{Name: name, Value: value})
}

// Format identifies a supported input format.
type Format string

const (
	FormatCSV   Format = "CSV"
	FormatExcel Format = "Excel"
	FormatPDF   Format = "PDF"
	FormatXBRL  Format = "XBRL"
	FormatHTML  Format = "HTML"
)

// UnsupportedFormatError reports a file type the engine does not handle.
// Fatal to that file only; a batch keeps going.
type UnsupportedFormatError struct {
	Type string // the declared MIME type or extension
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Type)
}

// MalformedInputError reports bytes that a recognized format failed to parse.
type MalformedInputError struct {
	Format Format
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s input: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s input: %s", e.Format, e.Reason)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// DetectFormat maps a declared MIME type or file extension to a Format.
func DetectFormat(declaredType string) (Format, error) {
	t := strings.ToLower(strings.TrimSpace(declaredType))
	t = strings.TrimPrefix(t, ".")
	switch t {
	case "text/csv", "csv":
		return FormatCSV, nil
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel", "xlsx", "xls":
		return FormatExcel, nil
	case "application/pdf", "pdf":
		return FormatPDF, nil
	case "application/xml", "text/xml", "xml", "xbrl":
		return FormatXBRL, nil
	case "text/html", "html", "htm":
		return FormatHTML, nil
	}
	return "", &UnsupportedFormatError{Type: declaredType}
}
