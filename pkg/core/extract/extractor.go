package extract

import (
	"fcff_engine/pkg/core/alias"
)

// Extractor turns raw file bytes into a sequence of flat records, one per
// reporting period. Implementations are strictly sequential within one file
// (row/page order carries meaning) but independent across files.
type Extractor interface {
	Format() Format
	Extract(data []byte) ([]RawRecord, error)
}

// ForFormat returns the extractor for a detected format. All extractors share
// one alias resolver so column resolutions memoize across files.
func ForFormat(f Format, resolver *alias.Resolver) (Extractor, error) {
	switch f {
	case FormatCSV:
		return NewCSVExtractor(), nil
	case FormatExcel:
		return NewExcelExtractor(), nil
	case FormatPDF:
		return NewPDFExtractor(resolver), nil
	case FormatXBRL:
		return NewXBRLExtractor(), nil
	case FormatHTML:
		return NewHTMLExtractor(), nil
	}
	return nil, &UnsupportedFormatError{Type: string(f)}
}
