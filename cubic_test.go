package bend

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestCubicBezDeriv(t *testing.T) {
	// y = x^2, z = x
	c := CubicBez{
		V3(0.0, 0.0, 0.0),
		V3(1.0/3.0, 0.0, 1.0/3.0),
		V3(2.0/3.0, 1.0/3.0, 2.0/3.0),
		V3(1.0, 1.0, 1.0),
	}

	const n = 10
	const delta = 1e-6
	for i := range n {
		ts := float64(i) / float64(n)
		p := c.Eval(ts)
		p1 := c.Eval(ts + delta)
		dApprox := p1.Sub(p).Mul(1.0 / delta)
		d := c.Deriv(ts)
		if l := d.Sub(dApprox).Hypot(); l >= delta*2 {
			t.Errorf("got difference of %g, want at most %g", l, delta*2)
		}
	}
}

func TestCubicBezDirectionDegenerate(t *testing.T) {
	// Handles on the anchors: the derivative vanishes at the ends.
	c := CubicBez{V3(0, 0, 0), V3(0, 0, 0), V3(4, 0, 0), V3(4, 0, 0)}
	assertNear(t, c.Direction(0), AxisX, 1e-12)
	assertNear(t, c.Direction(1), AxisX, 1e-12)

	var point CubicBez
	assertNear(t, point.Direction(0.5), AxisZ, 0)
}

func TestCubicBezSplitAt(t *testing.T) {
	c := CubicBez{V3(0, 0, 0), V3(1, 2, 0), V3(3, 2, 1), V3(4, 0, 2)}
	for _, at := range []float64{0.25, 0.5, 0.8} {
		left, right := c.SplitAt(at)
		assertNear(t, left.P3, c.Eval(at), 1e-12)
		assertNear(t, right.P0, c.Eval(at), 1e-12)
		for i := range 5 {
			tt := float64(i) / 4
			assertNear(t, left.Eval(tt), c.Eval(tt*at), 1e-12)
			assertNear(t, right.Eval(tt), c.Eval(at+tt*(1-at)), 1e-12)
		}
	}
}

func TestCubicBezSubsegment(t *testing.T) {
	c := CubicBez{V3(0, 0, 0), V3(1, 2, 0), V3(3, 2, 1), V3(4, 0, 2)}
	sub := c.Subsegment(0.2, 0.7)
	for i := range 5 {
		tt := float64(i) / 4
		assertNear(t, sub.Eval(tt), c.Eval(0.2+tt*0.5), 1e-12)
	}
}

func TestCubicBezArclen(t *testing.T) {
	c := CubicBez{
		V3(0.0, 0.0, 0.0),
		V3(1.0/3.0, 0.0, 0.0),
		V3(2.0/3.0, 1.0/3.0, 0.0),
		V3(1.0, 1.0, 0.0),
	}
	trueArclen := 0.5*math.Sqrt(5.0) + 0.25*math.Log(2.0+math.Sqrt(5.0))
	for i := range 12 {
		accuracy := math.Pow(0.1, float64(i))
		diff(t, trueArclen, c.Arclen(accuracy), cmpopts.EquateApprox(0, accuracy))
	}
}

func TestCubicBezArclenRotated(t *testing.T) {
	// The same parabola, lying in a tilted plane.
	rot := Rotate3(V3(1, 1, 1), 0.7)
	c := CubicBez{
		rot.Apply(V3(0.0, 0.0, 0.0)),
		rot.Apply(V3(1.0/3.0, 0.0, 0.0)),
		rot.Apply(V3(2.0/3.0, 1.0/3.0, 0.0)),
		rot.Apply(V3(1.0, 1.0, 0.0)),
	}
	trueArclen := 0.5*math.Sqrt(5.0) + 0.25*math.Log(2.0+math.Sqrt(5.0))
	diff(t, trueArclen, c.Arclen(1e-9), cmpopts.EquateApprox(0, 1e-9))
}

func TestCubicBezInvArclen(t *testing.T) {
	// y = x^2 / 100
	c := CubicBez{
		V3(0.0, 0.0, 0.0),
		V3(100.0/3.0, 0.0, 0.0),
		V3(200.0/3.0, 100.0/3.0, 0.0),
		V3(100.0, 100.0, 0.0),
	}
	trueArclen := 100.0 * (0.5*math.Sqrt(5.0) + 0.25*math.Log(2.0+math.Sqrt(5.0)))
	for i := range 12 {
		accuracy := math.Pow(0.1, float64(i))
		n := 10
		for j := range n + 1 {
			arc := float64(j) * (1.0 / float64(n) * trueArclen)
			tt := SolveForArclen(c, arc, accuracy*0.5)
			actualArc := c.Subsegment(0.0, tt).Arclen(accuracy * 0.5)
			diff(t, arc, actualArc, cmpopts.EquateApprox(0, accuracy))
		}
	}
	// corner case: user passes accuracy larger than total arc length
	accuracy := trueArclen * 1.1
	arc := trueArclen * 0.5
	tt := SolveForArclen(c, arc, accuracy)
	actualArc := c.Subsegment(0.0, tt).Arclen(accuracy)
	diff(t, arc, actualArc, cmpopts.EquateApprox(0, 2*accuracy))
}

func TestCubicBezInvArclenAccuracy(t *testing.T) {
	c := CubicBez{
		V3(0.2, 0.73, 0),
		V3(0.35, 1.08, 0.1),
		V3(0.85, 1.08, 0.2),
		V3(1.0, 0.73, 0.3),
	}
	trueT := SolveForArclen(c, 0.5, 1e-12)
	for i := 1; i < 12; i++ {
		accuracy := math.Pow(0.1, float64(i))
		approxT := SolveForArclen(c, 0.5, accuracy)
		diff(t, trueT, approxT, cmpopts.EquateApprox(0, accuracy))
	}
}

func BenchmarkCubicBezArclen(b *testing.B) {
	c := CubicBez{V3(0, 0, 0), V3(1, 2, 0), V3(3, 2, 1), V3(4, 0, 2)}
	for b.Loop() {
		c.Arclen(DefaultAccuracy)
	}
}
