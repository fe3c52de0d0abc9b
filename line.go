package bend

var _ ParametricCurve = Line{}

// Line represents a line segment in curve space.
type Line struct {
	// The line's start point.
	P0 Vec3
	// The line's end point.
	P1 Vec3
}

// Length returns the length of the line.
func (l Line) Length() float64 {
	return l.P1.Sub(l.P0).Hypot()
}

// Arclen returns the length of the line
func (l Line) Arclen(accuracy float64) float64 {
	return l.Length()
}

func (l Line) IsInf() bool {
	return l.P0.IsInf() || l.P1.IsInf()
}

func (l Line) IsNaN() bool {
	return l.P0.IsNaN() || l.P1.IsNaN()
}

func (l Line) Eval(t float64) Vec3 {
	return l.P0.Lerp(l.P1, t)
}

// Nearest returns the squared distance and the parameter of the point on the
// line closest to pt.
func (l Line) Nearest(pt Vec3, accuracy float64) (distSq, t float64) {
	d := l.P1.Sub(l.P0)
	dotp := pt.Sub(l.P0).Dot(d)
	d2 := d.Dot(d)
	if dotp <= 0.0 || d2 < epsilon {
		return pt.Sub(l.P0).Hypot2(), 0.0
	} else if dotp >= d2 {
		return pt.Sub(l.P1).Hypot2(), 1.0
	} else {
		t := dotp / d2
		dist := pt.Sub(l.Eval(t)).Hypot2()
		return dist, t
	}
}

// Direction returns the unit direction of the line, or +Z for a degenerate
// line.
func (l Line) Direction() Vec3 {
	return l.P1.Sub(l.P0).NormalizeOr(AxisZ)
}

func (l Line) Start() Vec3 { return l.P0 }
func (l Line) End() Vec3   { return l.P1 }

func (l Line) Subsegment(start, end float64) Line {
	return Line{l.Eval(start), l.Eval(end)}
}
