package extract

import (
	"errors"
	"testing"
)

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		declared string
		want     Format
	}{
		{"text/csv", FormatCSV},
		{".csv", FormatCSV},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatExcel},
		{"xlsx", FormatExcel},
		{"application/pdf", FormatPDF},
		{"PDF", FormatPDF},
		{"application/xml", FormatXBRL},
		{"xbrl", FormatXBRL},
		{"text/html", FormatHTML},
	}
	for _, c := range cases {
		got, err := DetectFormat(c.declared)
		if err != nil {
			t.Errorf("DetectFormat(%q) failed: %v", c.declared, err)
			continue
		}
		if got != c.want {
			t.Errorf("DetectFormat(%q) = %s, want %s", c.declared, got, c.want)
		}
	}
}

func TestDetectFormatUnsupported(t *testing.T) {
	_, err := DetectFormat("application/msword")
	var unsupported *UnsupportedFormatError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedFormatError, got %v", err)
	}
	if unsupported.Type != "application/msword" {
		t.Errorf("error carries %q, want the declared type", unsupported.Type)
	}
}

func TestCSVExtract(t *testing.T) {
	csv := "年份,营业总收入,净利润\n2023,\"1,000\",150\n"
	records, err := NewCSVExtractor().Extract([]byte(csv))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Period != "2023" {
		t.Errorf("period = %q, want 2023", rec.Period)
	}
	v, ok := rec.Get("营业总收入")
	if !ok || v != "1,000" {
		t.Errorf("营业总收入 = %v, want the raw string \"1,000\"", v)
	}
}

func TestCSVExtractEmptyCellsAreNil(t *testing.T) {
	csv := "营业总收入,折旧\n1000,\n"
	records, err := NewCSVExtractor().Extract([]byte(csv))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	v, ok := records[0].Get("折旧")
	if !ok {
		t.Fatal("empty cell should still be present")
	}
	if v != nil {
		t.Errorf("empty cell = %v, want nil", v)
	}
}

func TestCSVExtractSkipsBlankRows(t *testing.T) {
	csv := "营业总收入\n1000\n,\n\n2000\n"
	records, err := NewCSVExtractor().Extract([]byte(csv))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestCSVExtractMalformed(t *testing.T) {
	var malformed *MalformedInputError
	_, err := NewCSVExtractor().Extract(nil)
	if !errors.As(err, &malformed) {
		t.Errorf("empty input: expected MalformedInputError, got %v", err)
	}

	_, err = NewCSVExtractor().Extract([]byte("header1,header2\n"))
	if !errors.As(err, &malformed) {
		t.Errorf("header-only input: expected MalformedInputError, got %v", err)
	}
}

func TestRawRecordFirstWriteWins(t *testing.T) {
	rec := RawRecord{}
	rec.Set("revenue", 1000.0)
	rec.Set("revenue", 999.0)
	v, _ := rec.Get("revenue")
	if v != 1000.0 {
		t.Errorf("revenue = %v, first write must win", v)
	}
}
