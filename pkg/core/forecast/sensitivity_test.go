package forecast

import (
	"math"
	"testing"
)

func TestSweepCoversEveryParameter(t *testing.T) {
	results, err := Sweep(1_000_000, baseInputs())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if len(results) != 30 {
		t.Fatalf("expected 6 parameters x 5 deltas = 30 cells, got %d", len(results))
	}

	counts := map[string]int{}
	for _, r := range results {
		counts[r.Parameter]++
	}
	for _, name := range []string{"revenueGrowthRate", "ebitMargin", "taxRate", "depreciationRate", "capexRate", "nwcRate"} {
		if counts[name] != 5 {
			t.Errorf("parameter %s has %d cells, want 5", name, counts[name])
		}
	}
}

func TestSweepZeroDeltaIsExactlyBase(t *testing.T) {
	base := baseInputs()
	baseProjections, err := Project(1_000_000, base)
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	baseTerminal := baseProjections[len(baseProjections)-1].FCFF

	results, err := Sweep(1_000_000, base)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	for _, r := range results {
		if r.Delta != 0 {
			continue
		}
		// The zero cell re-runs the identical arithmetic, so equality is
		// exact, not within tolerance.
		if r.TerminalFCFF != baseTerminal {
			t.Errorf("%s delta 0: terminal = %f, want exactly %f", r.Parameter, r.TerminalFCFF, baseTerminal)
		}
		if r.ImpactPct != 0 {
			t.Errorf("%s delta 0: impact = %f, want exactly 0", r.Parameter, r.ImpactPct)
		}
	}
}

func TestSweepDirections(t *testing.T) {
	results, err := Sweep(1_000_000, baseInputs())
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	for _, r := range results {
		if r.Delta == 0 {
			continue
		}
		positive := r.Delta > 0
		switch r.Parameter {
		case "revenueGrowthRate", "ebitMargin", "depreciationRate":
			if positive != (r.ImpactPct > 0) {
				t.Errorf("%s delta %+.1f: impact %f has wrong sign", r.Parameter, r.Delta, r.ImpactPct)
			}
		case "taxRate", "capexRate", "nwcRate":
			if positive != (r.ImpactPct < 0) {
				t.Errorf("%s delta %+.1f: impact %f has wrong sign", r.Parameter, r.Delta, r.ImpactPct)
			}
		}
	}
}

func TestSweepDoesNotMutateBase(t *testing.T) {
	base := baseInputs()
	if _, err := Sweep(1_000_000, base); err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if base != baseInputs() {
		t.Error("Sweep mutated the base inputs")
	}
}

func TestSweepZeroBaseTerminal(t *testing.T) {
	// EBIT margin chosen so nopat + dep - capex - nwc = 0 every year:
	// margin 20, tax 25 -> nopat 15% of revenue; dep 5 - capex 18 - nwc 2 = -15.
	in := Inputs{
		RevenueGrowthRate: 5,
		EBITMargin:        20,
		TaxRate:           25,
		DepreciationRate:  5,
		CapexRate:         18,
		NWCRate:           2,
		ProjectionYears:   3,
	}
	results, err := Sweep(1000, in)
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	for _, r := range results {
		if math.IsNaN(r.ImpactPct) || math.IsInf(r.ImpactPct, 0) {
			t.Fatalf("%s delta %+.1f: impact is not finite with zero base terminal", r.Parameter, r.Delta)
		}
	}
}
