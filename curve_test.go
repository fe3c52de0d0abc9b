package bend

import (
	"math"
	"testing"
)

func TestSolveITP(t *testing.T) {
	f := func(x float64) float64 { return x*x*x - x - 2.0 }
	x := SolveITP(f, 1.0, 2.0, 1e-12, 0, 0.2, f(1.0), f(2.0))
	if n := math.Abs(f(x)); n > 6e-12 {
		t.Errorf("%v > 6e-12", n)
	}
}

func TestSolveForArclen(t *testing.T) {
	c := CubicBez{
		V3(0.0, 0.0, 0.0),
		V3(100.0/3.0, 0.0, 0.0),
		V3(200.0/3.0, 100.0/3.0, 0.0),
		V3(100.0, 100.0, 0.0),
	}
	const target = 100.0
	tt := SolveITP(
		func(t float64) float64 { return c.Subsegment(0.0, t).Arclen(1e-9) - target },
		0.0,
		1.0,
		1e-6,
		1,
		0.2,
		-target,
		c.Arclen(1e-9)-target,
	)
	if d := math.Abs(c.Subsegment(0, tt).Arclen(1e-9) - target); d > 1e-3 {
		t.Errorf("arc length at solution off by %g", d)
	}
}
