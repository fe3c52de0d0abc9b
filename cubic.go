package bend

import (
	"math"
)

var _ ParametricCurve = CubicBez{}
var _ Arclener = CubicBez{}

// CubicBez is a cubic Bézier in curve space.
type CubicBez struct {
	P0 Vec3
	P1 Vec3
	P2 Vec3
	P3 Vec3
}

func (c CubicBez) IsInf() bool {
	return c.P0.IsInf() || c.P1.IsInf() || c.P2.IsInf() || c.P3.IsInf()
}

func (c CubicBez) IsNaN() bool {
	return c.P0.IsNaN() || c.P1.IsNaN() || c.P2.IsNaN() || c.P3.IsNaN()
}

// Arclen returns the arclength of a cubic Bézier segment.
//
// This is an adaptive subdivision approach using Legendre-Gauss quadrature
func (c CubicBez) Arclen(accuracy float64) float64 {
	return c.arclen(accuracy, 0)
}

func (c CubicBez) arclen(accuracy float64, depth int) float64 {
	d03 := c.P3.Sub(c.P0)
	d01 := c.P1.Sub(c.P0)
	d12 := c.P2.Sub(c.P1)
	d23 := c.P3.Sub(c.P2)
	lplc := d01.Hypot() + d12.Hypot() + d23.Hypot() - d03.Hypot()
	dd1 := d12.Sub(d01)
	dd2 := d23.Sub(d12)
	// The following values don't have the factor of 3 for first deriv
	dm := d01.Add(d23).Mul(0.25).Add(d12.Mul(0.5)) // first derivative at midpoint
	dm1 := dd2.Add(dd1).Mul(0.5)                   // second derivative at midpoint
	dm2 := dd2.Sub(dd1).Mul(0.25)                  // 0.5 * (third derivative at midpoint)

	var est float64
	for _, coeff := range gaussLegendreCoeffs8 {
		wi, xi := coeff[0], coeff[1]
		dNorm2 := dm.Add(dm1.Mul(xi)).Add(dm2.Mul(xi * xi)).Hypot2()
		ddNorm2 := dm1.Add(dm2.Mul(2.0 * xi)).Hypot2()
		f := ddNorm2 / dNorm2
		est += wi * f
	}
	if math.IsNaN(est) || math.IsInf(est, 0) {
		// dNorm2 will be 0 as c approaches a singularity
		est = 0
	}

	estGauss8Error := min(math.Pow(est, 3)*2.5e-6, 3e-2) * lplc
	if estGauss8Error < accuracy {
		return arclenQuadratureCore(gaussLegendreCoeffs8Half[:], dm, dm1, dm2)
	}
	estGauss16Error := min(math.Pow(est, 6)*1.5e-11, 9e-3) * lplc
	if estGauss16Error < accuracy {
		return arclenQuadratureCore(gaussLegendreCoeffs16Half[:], dm, dm1, dm2)
	}
	estGauss24Error := min(math.Pow(est, 9)*3.5e-16, 3.5e-3) * lplc
	if estGauss24Error < accuracy || depth >= 20 {
		return arclenQuadratureCore(gaussLegendreCoeffs24Half[:], dm, dm1, dm2)
	}
	c0, c1 := c.Subdivide()
	return c0.arclen(accuracy*0.5, depth+1) + c1.arclen(accuracy*0.5, depth+1)
}

func arclenQuadratureCore(coeffs [][2]float64, dm Vec3, dm1 Vec3, dm2 Vec3) float64 {
	var sum float64
	for _, coeff := range coeffs {
		wi, xi := coeff[0], coeff[1]
		d := dm.Add(dm2.Mul(xi * xi))
		dpx := d.Add(dm1.Mul(xi)).Hypot()
		dmx := d.Sub(dm1.Mul(xi)).Hypot()
		sum += math.Sqrt(2.25) * wi * (dpx + dmx)
	}
	return sum
}

// Eval evaluates the cubic at t. The parameter is clamped to [0, 1].
func (c CubicBez) Eval(t float64) Vec3 {
	t = clamp01(t)
	mt := 1.0 - t
	a := c.P0.Mul(mt * mt * mt)
	b := c.P1.Mul(mt * mt * 3.0)
	cc := c.P2.Mul(mt * 3.0)
	d := c.P3
	return a.Add(b.Add(cc.Add(d.Mul(t)).Mul(t)).Mul(t))
}

// Deriv returns the first derivative of the cubic at t.
func (c CubicBez) Deriv(t float64) Vec3 {
	t = clamp01(t)
	mt := 1.0 - t
	d01 := c.P1.Sub(c.P0).Mul(3 * mt * mt)
	d12 := c.P2.Sub(c.P1).Mul(6 * mt * t)
	d23 := c.P3.Sub(c.P2).Mul(3 * t * t)
	return d01.Add(d12).Add(d23)
}

// Direction returns the normalized derivative at t. Where the derivative
// vanishes, as happens when a handle sits on its anchor, the chord between
// the neighbouring control points is used instead.
func (c CubicBez) Direction(t float64) Vec3 {
	d := c.Deriv(t)
	if d.Hypot2() > epsilon*epsilon {
		return d.Normalize()
	}
	switch {
	case t <= 0.5 && c.P2.Sub(c.P0).Hypot2() > epsilon*epsilon:
		return c.P2.Sub(c.P0).Normalize()
	case c.P3.Sub(c.P1).Hypot2() > epsilon*epsilon:
		return c.P3.Sub(c.P1).Normalize()
	default:
		return c.P3.Sub(c.P0).NormalizeOr(AxisZ)
	}
}

// Subdivide subdivides the cubic into halves, using de Casteljau.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	return c.SplitAt(0.5)
}

// SplitAt splits the cubic at t using de Casteljau's algorithm. The two
// halves join at c.Eval(t).
func (c CubicBez) SplitAt(t float64) (CubicBez, CubicBez) {
	p01 := c.P0.Lerp(c.P1, t)
	p12 := c.P1.Lerp(c.P2, t)
	p23 := c.P2.Lerp(c.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	pm := p012.Lerp(p123, t)
	return CubicBez{c.P0, p01, p012, pm}, CubicBez{pm, p123, p23, c.P3}
}

func (c CubicBez) Subsegment(t0, t1 float64) CubicBez {
	p0 := c.Eval(t0)
	p3 := c.Eval(t1)
	scale := (t1 - t0) * (1.0 / 3.0)
	p1 := p0.Add(c.Deriv(t0).Mul(scale))
	p2 := p3.Sub(c.Deriv(t1).Mul(scale))
	return CubicBez{p0, p1, p2, p3}
}

// SubsegmentCurve implements [Subsegmenter].
func (c CubicBez) SubsegmentCurve(t0, t1 float64) ParametricCurve {
	return c.Subsegment(t0, t1)
}

func (c CubicBez) Start() Vec3 {
	return c.P0
}

func (c CubicBez) End() Vec3 {
	return c.P3
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
