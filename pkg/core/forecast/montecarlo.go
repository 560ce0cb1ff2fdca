package forecast

import (
	"math/rand"
	"sort"

	"fcff_engine/pkg/core/utils"
)

// SimulationConfig bounds a Monte Carlo run. Iterations defaults to 1000.
// Workers defaults to the CPU count. The seed makes a run reproducible: the
// per-iteration draw depends only on Seed and the iteration index, so results
// are identical whether iterations run sequentially or across the pool.
type SimulationConfig struct {
	Iterations int   `json:"iterations"`
	Seed       int64 `json:"seed"`
	Workers    int   `json:"workers"`
}

// YearDistribution aggregates one forecast year's sampled FCFF values.
type YearDistribution struct {
	Year int     `json:"year"`
	P10  float64 `json:"p10"`
	P25  float64 `json:"p25"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P90  float64 `json:"p90"`
}

// Distribution is the per-year view of all iterations.
type Distribution struct {
	Iterations int                `json:"iterations"`
	Years      []YearDistribution `json:"years"`
}

// Uniform half-widths in percentage points, per parameter. Each draw is
// base + (U(0,1) - 0.5) * width.
const (
	growthWidth = 4.0 // ±2pp
	ebitWidth   = 3.0 // ±1.5pp
	taxWidth    = 2.0 // ±1pp
	depWidth    = 1.0 // ±0.5pp
	capexWidth  = 2.0 // ±1pp
	nwcWidth    = 1.0 // ±0.5pp
)

// perturb draws one jointly-perturbed input set. Draw order is fixed so a
// given (seed, iteration) always produces the same inputs.
func perturb(base Inputs, rng *rand.Rand) Inputs {
	return Inputs{
		RevenueGrowthRate: base.RevenueGrowthRate + (rng.Float64()-0.5)*growthWidth,
		EBITMargin:        base.EBITMargin + (rng.Float64()-0.5)*ebitWidth,
		TaxRate:           base.TaxRate + (rng.Float64()-0.5)*taxWidth,
		DepreciationRate:  base.DepreciationRate + (rng.Float64()-0.5)*depWidth,
		CapexRate:         base.CapexRate + (rng.Float64()-0.5)*capexWidth,
		NWCRate:           base.NWCRate + (rng.Float64()-0.5)*nwcWidth,
		ProjectionYears:   base.ProjectionYears,
	}
}

// Simulate runs the Monte Carlo analysis: every iteration perturbs all rate
// assumptions jointly, re-runs the projection, and records per-year FCFF.
// Iterations are independent pure functions of (seed, index) fanned out over
// a worker pool; aggregation happens only after every sample is in.
func Simulate(base Inputs, baseProjections []Projection, cfg SimulationConfig) (*Distribution, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = 1000
	}

	baseRevenue := 1000.0
	if len(baseProjections) > 0 {
		baseRevenue = baseProjections[0].Revenue
	}

	years := base.ProjectionYears
	// samples[i] holds iteration i's per-year FCFF; each worker writes only
	// its own index, so no locking is needed.
	samples := make([][]float64, iterations)

	pool := utils.NewWorkerPool(cfg.Workers)
	for i := 0; i < iterations; i++ {
		i := i
		pool.Submit(func() {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))
			inputs := perturb(base, rng)
			samples[i] = projectFCFF(baseRevenue, inputs)
		})
	}
	pool.Close()

	dist := &Distribution{Iterations: iterations}
	for year := 0; year < years; year++ {
		yearSamples := make([]float64, iterations)
		for i := 0; i < iterations; i++ {
			yearSamples[i] = samples[i][year]
		}
		sort.Float64s(yearSamples)
		dist.Years = append(dist.Years, YearDistribution{
			Year: year + 1,
			P10:  percentile(yearSamples, 10),
			P25:  percentile(yearSamples, 25),
			P50:  percentile(yearSamples, 50),
			P75:  percentile(yearSamples, 75),
			P90:  percentile(yearSamples, 90),
		})
	}
	return dist, nil
}

// projectFCFF is the hot-loop variant of Project: same arithmetic, no
// intermediate structs. The perturbed inputs are finite by construction, so
// validation is skipped.
func projectFCFF(baseRevenue float64, in Inputs) []float64 {
	fcffs := make([]float64, in.ProjectionYears)
	revenue := baseRevenue
	for year := 0; year < in.ProjectionYears; year++ {
		revenue *= 1 + in.RevenueGrowthRate/100
		ebit := revenue * in.EBITMargin / 100
		nopat := ebit * (1 - in.TaxRate/100)
		depreciation := revenue * in.DepreciationRate / 100
		capex := revenue * in.CapexRate / 100
		nwcChange := revenue * in.NWCRate / 100
		fcffs[year] = nopat + depreciation - capex - nwcChange
	}
	return fcffs
}

// percentile indexes a sorted sample set at floor(p/100 * n).
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := p * len(sorted) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
