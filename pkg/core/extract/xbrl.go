package extract

import (
	"encoding/xml"
	"strconv"
	"strings"

	"fcff_engine/pkg/core/alias"
)

// XBRLExtractor walks an XBRL/XML instance as a generic tree. Tags are
// matched exactly and case-sensitively against a known tag map. XBRL element
// names are close enough to canonical that fuzzy alias matching would only
// add false positives, so the alias resolver is bypassed here.
type XBRLExtractor struct{}

func NewXBRLExtractor() *XBRLExtractor {
	return &XBRLExtractor{}
}

func (e *XBRLExtractor) Format() Format { return FormatXBRL }

// xbrlTags maps element local names to canonical metrics. Exact match only.
var xbrlTags = map[string]alias.MetricID{
	"Revenue":             alias.Revenue,
	"Revenues":            alias.Revenue,
	"OperatingIncome":     alias.EBIT,
	"OperatingIncomeLoss": alias.EBIT,
	"OperatingProfit":     alias.EBIT,
	"NetIncome":           alias.NetIncome,
	"NetIncomeLoss":       alias.NetIncome,

	"Depreciation":                         alias.Depreciation,
	"DepreciationAndAmortization":          alias.Depreciation,
	"DepreciationDepletionAndAmortization": alias.Depreciation,

	"CapitalExpenditure":  alias.Capex,
	"CapitalExpenditures": alias.Capex,
	"PaymentsToAcquirePropertyPlantAndEquipment": alias.Capex,

	"WorkingCapital":     alias.WorkingCapital,
	"AssetsCurrent":      alias.CurrentAssets,
	"LiabilitiesCurrent": alias.CurrentLiability,
	"Assets":             alias.TotalAssets,
	"Liabilities":        alias.TotalLiabilities,
	"StockholdersEquity": alias.ShareholderEquity,
}

// xmlNode is a generic element tree node.
type xmlNode struct {
	XMLName  xml.Name
	Content  string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

func (e *XBRLExtractor) Extract(data []byte) ([]RawRecord, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, &MalformedInputError{Format: FormatXBRL, Reason: "cannot parse document", Err: err}
	}

	rec := RawRecord{}
	walkXBRL(&root, &rec)
	if len(rec.Fields) == 0 {
		return nil, &MalformedInputError{Format: FormatXBRL, Reason: "no known facts found"}
	}
	return []RawRecord{rec}, nil
}

// walkXBRL visits every element. Known fact tags set their canonical metric
// (first occurrence wins); the first context/period/instant sets the period.
func walkXBRL(node *xmlNode, rec *RawRecord) {
	local := node.XMLName.Local

	if metric, ok := xbrlTags[local]; ok {
		if v, ok := nodeNumber(node); ok {
			rec.Set(string(metric), v)
		}
	}

	if local == "context" && rec.Period == "" {
		if instant := findPath(node, "period", "instant"); instant != "" {
			rec.Period = periodYear(instant)
		}
	}

	for i := range node.Children {
		walkXBRL(&node.Children[i], rec)
	}
}

// nodeNumber extracts the scalar fact value, descending through wrapper
// elements that hold the value in a lone child.
func nodeNumber(node *xmlNode) (float64, bool) {
	text := strings.TrimSpace(node.Content)
	if text != "" {
		cleaned := strings.ReplaceAll(text, ",", "")
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return v, true
		}
	}
	if len(node.Children) == 1 {
		return nodeNumber(&node.Children[0])
	}
	return 0, false
}

func findPath(node *xmlNode, path ...string) string {
	current := node
	for _, name := range path {
		var next *xmlNode
		for i := range current.Children {
			if current.Children[i].XMLName.Local == name {
				next = &current.Children[i]
				break
			}
		}
		if next == nil {
			return ""
		}
		current = next
	}
	return strings.TrimSpace(current.Content)
}

// periodYear reduces an instant date ("2023-12-31") to its year.
func periodYear(instant string) string {
	if len(instant) >= 4 {
		if _, err := strconv.Atoi(instant[:4]); err == nil {
			return instant[:4]
		}
	}
	return instant
}
