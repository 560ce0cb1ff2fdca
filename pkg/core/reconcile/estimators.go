package reconcile

import (
	"strings"

	"fcff_engine/pkg/core/alias"
	"fcff_engine/pkg/core/extract"
)

// Estimator chains, evaluated in order, first success wins. Each step is a
// deterministic formula over other fields of the same record. revenue and
// netIncome have no estimators: without either there is no basis to forecast.
//
// Estimators look fields up by their own targeted alias lists rather than the
// global resolver: the permissive bidirectional matching that makes column
// resolution robust also lets "固定资产" be claimed by the capex alias that
// contains it, so balance-sheet inputs are fetched directly.
var estimatorChains = map[alias.MetricID][]estimator{
	alias.WorkingCapital: {
		{"current assets minus current liabilities", estimateWCFromBalance},
		{"15% of revenue", rateOfRevenue(0.15)},
	},
	alias.Depreciation: {
		{"10% of fixed assets", rateOfField(0.10, fixedAssetAliases)},
		{"5% of revenue", rateOfRevenue(0.05)},
	},
	alias.Capex: {
		{"fixed asset delta between periods", estimateCapexFromDelta},
		{"7% of revenue", rateOfRevenue(0.07)},
	},
	alias.EBIT: {
		{"net income grossed up at 25% tax", estimateEBITFromNetIncome},
		{"EBITDA minus depreciation", estimateEBITFromEBITDA},
	},
}

type estimator struct {
	method string
	fn     func(rec *extract.RawRecord, set MetricSet) (float64, bool)
}

func estimate(metric alias.MetricID, rec *extract.RawRecord, set MetricSet) (float64, string, bool) {
	for _, e := range estimatorChains[metric] {
		if v, ok := e.fn(rec, set); ok {
			return v, e.method, true
		}
	}
	return 0, "", false
}

var (
	currentAssetAliases     = []string{"流动资产", "流动资产合计", "流动资产总计", "current_assets", "currentassets"}
	currentLiabilityAliases = []string{"流动负债", "流动负债合计", "流动负债总计", "current_liabilities", "currentliabilities"}
	fixedAssetAliases       = []string{"固定资产", "fixed_assets", "fixedassets"}
	priorFixedAssetAliases  = []string{"上期固定资产", "prior_fixed_assets"}
	revenueAliases          = []string{"营业收入", "营业总收入", "revenue", "operating_revenue"}
	ebitdaAliases           = []string{"ebitda"}
)

func estimateWCFromBalance(rec *extract.RawRecord, _ MetricSet) (float64, bool) {
	assets, okA := findValue(rec, currentAssetAliases)
	liabilities, okL := findValue(rec, currentLiabilityAliases)
	if !okA || !okL {
		return 0, false
	}
	return assets - liabilities, true
}

func estimateCapexFromDelta(rec *extract.RawRecord, _ MetricSet) (float64, bool) {
	current, okC := findValue(rec, fixedAssetAliases)
	prior, okP := findValue(rec, priorFixedAssetAliases)
	if !okC || !okP {
		return 0, false
	}
	return current - prior, true
}

func estimateEBITFromNetIncome(rec *extract.RawRecord, set MetricSet) (float64, bool) {
	netIncome, ok := set[alias.NetIncome]
	if !ok {
		return 0, false
	}
	const assumedTaxRate = 0.25
	return netIncome / (1 - assumedTaxRate), true
}

func estimateEBITFromEBITDA(rec *extract.RawRecord, set MetricSet) (float64, bool) {
	ebitda, okE := findValue(rec, ebitdaAliases)
	if !okE {
		return 0, false
	}
	depreciation, okD := set[alias.Depreciation]
	if !okD {
		return 0, false
	}
	return ebitda - depreciation, true
}

func rateOfRevenue(rate float64) func(*extract.RawRecord, MetricSet) (float64, bool) {
	return func(rec *extract.RawRecord, set MetricSet) (float64, bool) {
		if revenue, ok := set[alias.Revenue]; ok {
			return revenue * rate, true
		}
		if revenue, ok := findValue(rec, revenueAliases); ok {
			return revenue * rate, true
		}
		return 0, false
	}
}

func rateOfField(rate float64, aliases []string) func(*extract.RawRecord, MetricSet) (float64, bool) {
	return func(rec *extract.RawRecord, _ MetricSet) (float64, bool) {
		if v, ok := findValue(rec, aliases); ok {
			return v * rate, true
		}
		return 0, false
	}
}

// findValue looks a field up by exact name first, then by normalized
// bidirectional containment against the given aliases only.
func findValue(rec *extract.RawRecord, names []string) (float64, bool) {
	for _, name := range names {
		if raw, ok := rec.Get(name); ok {
			if v, ok := ParseNumber(raw); ok {
				return v, true
			}
		}
	}
	for _, name := range names {
		norm := alias.Normalize(name)
		if norm == "" {
			continue
		}
		for _, field := range rec.Fields {
			key := alias.Normalize(field.Name)
			if key == "" {
				continue
			}
			if strings.Contains(key, norm) || strings.Contains(norm, key) {
				if v, ok := ParseNumber(field.Value); ok {
					return v, true
				}
			}
		}
	}
	return 0, false
}
