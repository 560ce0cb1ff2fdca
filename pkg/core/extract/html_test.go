package extract

import (
	"errors"
	"testing"
)

const htmlDoc = `<html><body>
<h1>年度财务数据</h1>
<table>
  <tr><th>年份</th><th>营业总收入</th><th>净利润</th></tr>
  <tr><td>2022</td><td>1,000,000</td><td>150,000</td></tr>
  <tr><td>2023</td><td>1,100,000</td><td>170,000</td></tr>
</table>
</body></html>`

func TestHTMLExtract(t *testing.T) {
	records, err := NewHTMLExtractor().Extract([]byte(htmlDoc))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Period != "2022" || records[1].Period != "2023" {
		t.Errorf("periods = %q, %q", records[0].Period, records[1].Period)
	}
	v, ok := records[1].Get("营业总收入")
	if !ok || v != "1,100,000" {
		t.Errorf("营业总收入 = %v, want the raw cell text", v)
	}
}

func TestHTMLExtractUsesFirstDataTable(t *testing.T) {
	doc := `<table><tr><th>空表</th></tr></table>` + htmlDoc
	records, err := NewHTMLExtractor().Extract([]byte(doc))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected the statement table's 2 records, got %d", len(records))
	}
}

func TestHTMLExtractNoTable(t *testing.T) {
	var malformed *MalformedInputError
	if _, err := NewHTMLExtractor().Extract([]byte("<p>no tables here</p>")); !errors.As(err, &malformed) {
		t.Errorf("expected MalformedInputError, got %v", err)
	}
}
