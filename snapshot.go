package bend

import (
	"math"

	"honnef.co/go/bend/noise"
)

// Snapshot is an immutable copy of a spline's geometry and derived tables:
// the arc-length table, the fixed-parameter position table and, for
// [Dynamic] normals, the frame table. Snapshots are safe for concurrent use
// and are what deformation jobs read while the spline keeps being edited.
//
// All positions and frames are in curve-local space unless a method says
// otherwise.
type Snapshot struct {
	version    uint64
	loop       bool
	normalType NormalType
	up         Vec3
	transform  Affine3
	inverse    Affine3
	anchor     Vec3
	anchorRot  float64

	pieces []CubicBez
	segs   []segmentParams
	length float64

	// dist[i] is the arc length up to raw parameter i/(len(dist)-1).
	dist []float64
	// fixedRaw[k] is the raw parameter at arc length k/(len-1) * length.
	fixedRaw  []float64
	positions []Vec3
	frames    []Frame

	layers []noise.Layer
}

// Sample is everything the deformation job needs at one distance along the
// curve.
type Sample struct {
	Position   Vec3
	Frame      Frame
	Scale      Lateral
	SaddleSkew Lateral
	Noise      float64
}

// Version returns the spline version the snapshot was built from.
func (s *Snapshot) Version() uint64 { return s.version }

// Length returns the arc length of the curve.
func (s *Snapshot) Length() float64 { return s.length }

// Loop reports whether the curve is closed.
func (s *Snapshot) Loop() bool { return s.loop }

// Transform returns the curve-local to world transform.
func (s *Snapshot) Transform() Affine3 { return s.transform }

// NoiseLayers returns the snapshot's copy of the noise layers. The slice must
// not be modified.
func (s *Snapshot) NoiseLayers() []noise.Layer { return s.layers }

// Samples returns the number of entries of the arc-length table.
func (s *Snapshot) Samples() int { return len(s.dist) }

// Distances returns the arc-length table. The slice must not be modified.
func (s *Snapshot) Distances() []float64 { return s.dist }

// ControlPoints returns the distance of every anchor from the start of the
// curve.
func (s *Snapshot) ControlPoints() []float64 {
	out := make([]float64, len(s.segs))
	for i, seg := range s.segs {
		out[i] = seg.zPosition
	}
	return out
}

// MemoryBytes approximates the memory held by the cached tables.
func (s *Snapshot) MemoryBytes() int {
	const (
		f64   = 8
		vec   = 3 * f64
		frame = 3 * vec
		cubic = 4 * vec
		seg   = 9 * f64
	)
	return len(s.dist)*f64 +
		len(s.fixedRaw)*f64 +
		len(s.positions)*vec +
		len(s.frames)*frame +
		len(s.pieces)*cubic +
		len(s.segs)*seg
}

func (s *Snapshot) hasTables() bool {
	return len(s.positions) >= 2
}

// pieceAt splits a raw parameter into a piece index and the piece-local
// parameter. u = 1 maps to the end of the last piece.
func (s *Snapshot) pieceAt(u float64) (int, float64) {
	n := len(s.pieces)
	x := clamp01(u) * float64(n)
	i := int(math.Floor(x))
	if i >= n {
		return n - 1, 1
	}
	return i, x - float64(i)
}

// wrap maps a fixed or raw parameter into [0, 1].
func (s *Snapshot) wrap(f float64) float64 {
	if s.loop && (f < 0 || f > 1) {
		return f - math.Floor(f)
	}
	return clamp01(f)
}

// PositionRaw evaluates the Bézier pieces directly at raw parameter u.
func (s *Snapshot) PositionRaw(u float64) Vec3 {
	if len(s.pieces) == 0 {
		return s.anchor
	}
	i, t := s.pieceAt(s.wrap(u))
	return s.pieces[i].Eval(t)
}

// DirectionRaw returns the unit tangent at raw parameter u.
func (s *Snapshot) DirectionRaw(u float64) Vec3 {
	if len(s.pieces) == 0 {
		return AxisZ
	}
	i, t := s.pieceAt(s.wrap(u))
	return s.pieces[i].Direction(t)
}

// tableIndex locates fixed parameter f between two table entries.
func (s *Snapshot) tableIndex(f float64, n int) (int, float64) {
	x := s.wrap(f) * float64(n-1)
	k := int(math.Floor(x))
	if k >= n-1 {
		return n - 2, 1
	}
	return k, x - float64(k)
}

// Position returns the point at fixed parameter f, the fraction of the
// curve's length. It uses the uniform fixed-parameter table, so it costs O(1).
func (s *Snapshot) Position(f float64) Vec3 {
	if !s.hasTables() {
		return s.PositionRaw(f)
	}
	k, t := s.tableIndex(f, len(s.positions))
	return s.positions[k].Lerp(s.positions[k+1], t)
}

// RawToFixed converts a raw Bézier parameter to the constant-speed fixed
// parameter.
func (s *Snapshot) RawToFixed(u float64) float64 {
	if !s.hasTables() || s.length < epsilon {
		return s.wrap(u)
	}
	k, t := s.tableIndex(u, len(s.dist))
	d := s.dist[k] + (s.dist[k+1]-s.dist[k])*t
	return d / s.length
}

// FixedToRaw converts a fixed parameter to the raw Bézier parameter.
func (s *Snapshot) FixedToRaw(f float64) float64 {
	if !s.hasTables() {
		return s.wrap(f)
	}
	k, t := s.tableIndex(f, len(s.fixedRaw))
	return s.fixedRaw[k] + (s.fixedRaw[k+1]-s.fixedRaw[k])*t
}

// Direction returns the unit tangent at fixed parameter f.
func (s *Snapshot) Direction(f float64) Vec3 {
	return s.DirectionRaw(s.FixedToRaw(f))
}

// blendAt returns the piece at raw parameter u and the contrast-eased weight
// of its end segment.
func (s *Snapshot) blendAt(u float64) (int, float64) {
	i, t := s.pieceAt(s.wrap(u))
	c := contrastExponent(s.segs[i].contrast, s.segs[i+1].contrast)
	return i, contrastWeight(t, c)
}

// twistAt returns the authored rotation in degrees at raw parameter u.
func (s *Snapshot) twistAt(u float64) float64 {
	if len(s.pieces) == 0 {
		return s.anchorRot
	}
	i, w := s.blendAt(u)
	a, b := s.segs[i].zRotation, s.segs[i+1].zRotation
	return a + (b-a)*w
}

func (s *Snapshot) staticFrame(forward Vec3) Frame {
	if s.normalType == Static2D {
		flat := forward.Sub(s.up.Mul(forward.Dot(s.up))).NormalizeOr(perpendicular(s.up))
		return Frame{
			Right:   s.up.Cross(flat),
			Up:      s.up,
			Forward: flat,
		}
	}
	return frameFromReference(forward, s.up)
}

// Frame returns the orientation frame at fixed parameter f, including the
// authored twist.
func (s *Snapshot) Frame(f float64) Frame {
	if len(s.frames) >= 2 {
		k, t := s.tableIndex(f, len(s.frames))
		a, b := s.frames[k], s.frames[k+1]
		return Frame{
			Right:   a.Right.Lerp(b.Right, t),
			Up:      a.Up.Lerp(b.Up, t),
			Forward: a.Forward.Lerp(b.Forward, t),
		}.orthonormalize()
	}
	u := s.FixedToRaw(f)
	return s.staticFrame(s.DirectionRaw(u)).Twist(s.twistAt(u))
}

// propagateFrames builds the rotation-minimizing frame table over the fixed
// samples and applies the authored twist.
func (s *Snapshot) propagateFrames() []Frame {
	n := len(s.fixedRaw)
	frames := make([]Frame, n)
	fr := frameFromReference(s.DirectionRaw(s.fixedRaw[0]), s.up)
	frames[0] = fr
	for k := 1; k < n; k++ {
		fr = fr.transport(s.DirectionRaw(s.fixedRaw[k]))
		frames[k] = fr
	}
	if s.loop && n > 2 {
		// Spread the roll accumulated around the loop evenly so the seam
		// closes.
		end := frames[n-1]
		start := frameFromReference(end.Forward, frames[0].Up)
		phi := signedAngle(end.Up, start.Up, end.Forward) * 180 / math.Pi
		for k := range frames {
			frames[k] = frames[k].Twist(phi * float64(k) / float64(n-1))
		}
	}
	for k := range frames {
		frames[k] = frames[k].Twist(s.twistAt(s.fixedRaw[k]))
	}
	return frames
}

// Sample evaluates the curve at distance z from its start. Distances beyond
// the ends of an open curve extrapolate along the end tangents; looped curves
// wrap around.
func (s *Snapshot) Sample(z float64) Sample {
	if len(s.pieces) == 0 {
		fr := s.staticFrame(AxisZ).Twist(s.anchorRot)
		smp := Sample{Position: s.anchor.Add(fr.Forward.Mul(z)), Frame: fr, Scale: Lat(1, 1), Noise: 1}
		if len(s.segs) > 0 {
			smp.Scale, smp.SaddleSkew, smp.Noise = s.segs[0].scale, s.segs[0].saddleSkew, s.segs[0].noise
		}
		return smp
	}

	var over float64
	if s.loop && s.length > epsilon {
		z = math.Mod(z, s.length)
		if z < 0 {
			z += s.length
		}
	} else {
		zc := min(max(z, 0), s.length)
		over = z - zc
		z = zc
	}
	f := 0.0
	if s.length > epsilon {
		f = z / s.length
	}

	fr := s.Frame(f)
	u := s.FixedToRaw(f)
	i, w := s.blendAt(u)
	a, b := &s.segs[i], &s.segs[i+1]
	return Sample{
		Position:   s.Position(f).Add(fr.Forward.Mul(over)),
		Frame:      fr,
		Scale:      a.scale.lerp(b.scale, w),
		SaddleSkew: a.saddleSkew.lerp(b.saddleSkew, w),
		Noise:      a.noise + (b.noise-a.noise)*w,
	}
}

// SplineToWorld maps a curve-relative point, with z the distance along the
// curve and x and y the offsets along the frame's right and up axes, into
// world space.
func (s *Snapshot) SplineToWorld(local Vec3) Vec3 {
	smp := s.Sample(local.Z)
	p := smp.Frame.Apply(smp.Position, Vec3{X: local.X, Y: local.Y})
	return s.transform.Apply(p)
}

// WorldToSpline is the inverse of [Snapshot.SplineToWorld] for points whose
// nearest point on the curve is unique.
func (s *Snapshot) WorldToSpline(world Vec3) Vec3 {
	p := s.inverse.Apply(world)
	if !s.hasTables() {
		smp := s.Sample(0)
		return smp.Frame.Local(p.Sub(smp.Position))
	}

	n := len(s.positions)
	best, bestF := math.Inf(1), 0.0
	for k := range n - 1 {
		d2, t := Line{s.positions[k], s.positions[k+1]}.Nearest(p, 0)
		if d2 < best {
			best = d2
			bestF = (float64(k) + t) / float64(n-1)
		}
	}

	// Refine to the parameter where p - Position(f) is perpendicular to the
	// forward axis, searching outwards from the nearest table entry for a
	// sign change. Points behind the start or past the end have none.
	h := func(f float64) float64 {
		return -p.Sub(s.Position(f)).Dot(s.Frame(f).Forward)
	}
	behind := bestF <= 0 && h(0) > 0
	past := bestF >= 1 && h(1) < 0
	if !behind && !past {
		last := float64(n - 1)
		k0 := min(int(bestF*last), n-2)
	search:
		for r := range n {
			for j, k := range [2]int{k0 - r, k0 + r} {
				if k < 0 || k > n-2 || (r == 0 && j == 1) {
					continue
				}
				fa, fb := float64(k)/last, float64(k+1)/last
				ha, hb := h(fa), h(fb)
				switch {
				case ha == 0:
					bestF = fa
				case hb == 0:
					bestF = fb
				case ha < 0 && hb > 0:
					bestF = SolveITP(h, fa, fb, 1e-12, 1, 0.2/(fb-fa), ha, hb)
				default:
					continue
				}
				break search
			}
		}
	}

	fr := s.Frame(bestF)
	loc := fr.Local(p.Sub(s.Position(bestF)))
	z := bestF * s.length
	switch {
	case s.loop:
	case bestF <= 0 && loc.Z < 0:
		z = loc.Z
	case bestF >= 1 && loc.Z > 0:
		z = s.length + loc.Z
	}
	return Vec3{X: loc.X, Y: loc.Y, Z: z}
}
