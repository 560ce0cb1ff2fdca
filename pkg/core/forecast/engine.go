package forecast

import (
	"fmt"
	"math"
)

// Inputs are the rate assumptions driving a projection. Rates are percentages
// (5 means 5%), may be negative to model decline, and must be finite.
type Inputs struct {
	RevenueGrowthRate float64 `json:"revenueGrowthRate"` // % per year
	EBITMargin        float64 `json:"ebitMargin"`        // % of revenue
	TaxRate           float64 `json:"taxRate"`           // % of EBIT
	DepreciationRate  float64 `json:"depreciationRate"`  // % of revenue
	CapexRate         float64 `json:"capexRate"`         // % of revenue
	NWCRate           float64 `json:"nwcRate"`           // % of revenue
	ProjectionYears   int     `json:"projectionYears"`
}

// Projection is one forecast year.
type Projection struct {
	Year         int     `json:"year"`
	Revenue      float64 `json:"revenue"`
	EBIT         float64 `json:"ebit"`
	NOPAT        float64 `json:"nopat"`
	Depreciation float64 `json:"depreciation"`
	Capex        float64 `json:"capex"`
	NWCChange    float64 `json:"nwcChange"`
	FCFF         float64 `json:"fcff"`
}

// InvalidAssumptionError reports an assumption the engines refuse to run on.
type InvalidAssumptionError struct {
	Field  string
	Reason string
}

func (e *InvalidAssumptionError) Error() string {
	return fmt.Sprintf("invalid assumption %s: %s", e.Field, e.Reason)
}

// Validate checks the horizon and that every rate is finite.
func (in Inputs) Validate() error {
	if in.ProjectionYears < 1 {
		return &InvalidAssumptionError{Field: "projectionYears", Reason: "must be at least 1"}
	}
	rates := map[string]float64{
		"revenueGrowthRate": in.RevenueGrowthRate,
		"ebitMargin":        in.EBITMargin,
		"taxRate":           in.TaxRate,
		"depreciationRate":  in.DepreciationRate,
		"capexRate":         in.CapexRate,
		"nwcRate":           in.NWCRate,
	}
	for field, v := range rates {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &InvalidAssumptionError{Field: field, Reason: "must be finite"}
		}
	}
	return nil
}

// Project runs the deterministic year-by-year FCFF forecast. Revenue compounds
// from the base; every other line applies its rate to the current year's
// revenue, so effects compound through revenue growth only. No rounding
// happens here; presentation rounding belongs to callers.
func Project(baseRevenue float64, in Inputs) ([]Projection, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	projections := make([]Projection, 0, in.ProjectionYears)
	for year := 1; year <= in.ProjectionYears; year++ {
		revenue := baseRevenue * math.Pow(1+in.RevenueGrowthRate/100, float64(year))
		ebit := revenue * in.EBITMargin / 100
		nopat := ebit * (1 - in.TaxRate/100)
		depreciation := revenue * in.DepreciationRate / 100
		capex := revenue * in.CapexRate / 100
		nwcChange := revenue * in.NWCRate / 100
		fcff := nopat + depreciation - capex - nwcChange

		projections = append(projections, Projection{
			Year:         year,
			Revenue:      revenue,
			EBIT:         ebit,
			NOPAT:        nopat,
			Depreciation: depreciation,
			Capex:        capex,
			NWCChange:    nwcChange,
			FCFF:         fcff,
		})
	}
	return projections, nil
}
