package forecast

import (
	"errors"
	"math"
	"testing"
)

func baseInputs() Inputs {
	return Inputs{
		RevenueGrowthRate: 5,
		EBITMargin:        20,
		TaxRate:           25,
		DepreciationRate:  5,
		CapexRate:         7,
		NWCRate:           2,
		ProjectionYears:   3,
	}
}

func TestProjectKnownScenario(t *testing.T) {
	// baseRevenue 1,000,000 with {growth 5, ebit 20, tax 25, dep 5, capex 7, nwc 2}:
	// year 1: revenue 1,050,000; ebit 210,000; nopat 157,500;
	// depreciation 52,500; capex 73,500; nwcChange 21,000; fcff 115,500.
	projections, err := Project(1_000_000, baseInputs())
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(projections) != 3 {
		t.Fatalf("expected 3 years, got %d", len(projections))
	}

	y1 := projections[0]
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"revenue", y1.Revenue, 1_050_000},
		{"ebit", y1.EBIT, 210_000},
		{"nopat", y1.NOPAT, 157_500},
		{"depreciation", y1.Depreciation, 52_500},
		{"capex", y1.Capex, 73_500},
		{"nwcChange", y1.NWCChange, 21_000},
		{"fcff", y1.FCFF, 115_500},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-6 {
			t.Errorf("year 1 %s = %f, want %f", c.name, c.got, c.want)
		}
	}
}

func TestProjectInvariants(t *testing.T) {
	projections, err := Project(123_456, Inputs{
		RevenueGrowthRate: -3.5,
		EBITMargin:        12,
		TaxRate:           21,
		DepreciationRate:  4,
		CapexRate:         6,
		NWCRate:           1.5,
		ProjectionYears:   8,
	})
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	for _, p := range projections {
		if math.Abs(p.FCFF-(p.NOPAT+p.Depreciation-p.Capex-p.NWCChange)) > 1e-9 {
			t.Errorf("year %d: fcff identity violated", p.Year)
		}
		if math.Abs(p.NOPAT-p.EBIT*(1-21.0/100)) > 1e-9 {
			t.Errorf("year %d: nopat identity violated", p.Year)
		}
	}
}

func TestProjectRatesApplyToCurrentYearRevenue(t *testing.T) {
	projections, err := Project(1000, baseInputs())
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	// Year 3 revenue compounds: 1000 * 1.05^3. Depreciation is 5% of that,
	// not of the base.
	wantRevenue := 1000 * math.Pow(1.05, 3)
	y3 := projections[2]
	if math.Abs(y3.Revenue-wantRevenue) > 1e-9 {
		t.Errorf("year 3 revenue = %f, want %f", y3.Revenue, wantRevenue)
	}
	if math.Abs(y3.Depreciation-wantRevenue*0.05) > 1e-9 {
		t.Errorf("year 3 depreciation = %f, want %f", y3.Depreciation, wantRevenue*0.05)
	}
}

func TestProjectRejectsBadHorizon(t *testing.T) {
	in := baseInputs()
	in.ProjectionYears = 0
	if _, err := Project(1000, in); err == nil {
		t.Fatal("expected InvalidAssumptionError for horizon 0")
	}

	in.ProjectionYears = -2
	_, err := Project(1000, in)
	var assumptionErr *InvalidAssumptionError
	if !errors.As(err, &assumptionErr) {
		t.Fatalf("expected InvalidAssumptionError, got %T", err)
	}
	if assumptionErr.Field != "projectionYears" {
		t.Errorf("error names field %q, want projectionYears", assumptionErr.Field)
	}
}

func TestProjectRejectsNonFiniteRates(t *testing.T) {
	in := baseInputs()
	in.CapexRate = math.NaN()
	if _, err := Project(1000, in); err == nil {
		t.Error("expected error for NaN capexRate")
	}

	in = baseInputs()
	in.EBITMargin = math.Inf(1)
	if _, err := Project(1000, in); err == nil {
		t.Error("expected error for infinite ebitMargin")
	}
}

func TestProjectAllowsNegativeRates(t *testing.T) {
	in := baseInputs()
	in.RevenueGrowthRate = -10
	projections, err := Project(1000, in)
	if err != nil {
		t.Fatalf("negative growth must be accepted: %v", err)
	}
	if projections[0].Revenue >= 1000 {
		t.Errorf("year 1 revenue = %f, want decline below 1000", projections[0].Revenue)
	}
}
