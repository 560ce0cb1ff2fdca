package forecast

// SensitivityResult is one cell of the one-parameter-at-a-time sweep.
type SensitivityResult struct {
	Parameter    string  `json:"parameter"`
	Delta        float64 `json:"delta"`        // perturbation in percentage points
	TerminalFCFF float64 `json:"terminalFcff"` // terminal-year FCFF under the shift
	ImpactPct    float64 `json:"impactPct"`    // % change vs the unperturbed terminal FCFF
}

// sweepParameter pairs an input field with its perturbation grid. Grids are
// asymmetric across parameters (growth swings wider than depreciation) but
// each includes zero, which must reproduce the base run exactly.
type sweepParameter struct {
	name  string
	grid  []float64
	apply func(in Inputs, delta float64) Inputs
}

var sweepParameters = []sweepParameter{
	{"revenueGrowthRate", []float64{-5, -2.5, 0, 2.5, 5}, func(in Inputs, d float64) Inputs { in.RevenueGrowthRate += d; return in }},
	{"ebitMargin", []float64{-4, -2, 0, 2, 4}, func(in Inputs, d float64) Inputs { in.EBITMargin += d; return in }},
	{"taxRate", []float64{-3, -1.5, 0, 1.5, 3}, func(in Inputs, d float64) Inputs { in.TaxRate += d; return in }},
	{"depreciationRate", []float64{-2, -1, 0, 1, 2}, func(in Inputs, d float64) Inputs { in.DepreciationRate += d; return in }},
	{"capexRate", []float64{-3, -1.5, 0, 1.5, 3}, func(in Inputs, d float64) Inputs { in.CapexRate += d; return in }},
	{"nwcRate", []float64{-2, -1, 0, 1, 2}, func(in Inputs, d float64) Inputs { in.NWCRate += d; return in }},
}

// Sweep re-runs the projection once per (parameter, perturbation) pair, one
// parameter shifted at a time, and reports the terminal-year FCFF impact
// relative to the unperturbed run.
func Sweep(baseRevenue float64, base Inputs) ([]SensitivityResult, error) {
	baseProjections, err := Project(baseRevenue, base)
	if err != nil {
		return nil, err
	}
	baseTerminal := baseProjections[len(baseProjections)-1].FCFF

	results := make([]SensitivityResult, 0, len(sweepParameters)*5)
	for _, param := range sweepParameters {
		for _, delta := range param.grid {
			shifted := param.apply(base, delta)
			projections, err := Project(baseRevenue, shifted)
			if err != nil {
				return nil, err
			}
			terminal := projections[len(projections)-1].FCFF

			impact := 0.0
			if baseTerminal != 0 {
				impact = (terminal - baseTerminal) / baseTerminal * 100
			}
			results = append(results, SensitivityResult{
				Parameter:    param.name,
				Delta:        delta,
				TerminalFCFF: terminal,
				ImpactPct:    impact,
			})
		}
	}
	return results, nil
}
