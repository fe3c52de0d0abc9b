package bend

import (
	"fmt"
	"slices"

	"honnef.co/go/bend/noise"
)

// Spline is an ordered list of segments forming a chain of cubic Béziers,
// optionally closed into a loop, together with its noise layers and derived
// tables.
//
// Every edit bumps the spline's version and recomputes the derived tables
// before returning, so reads are always consistent. The derived data is
// published as an immutable [Snapshot]; deformation jobs hold on to the
// snapshot they were started with and never observe later edits.
//
// Spline is not safe for concurrent use.
type Spline struct {
	segments   []*Segment
	loop       bool
	normalType NormalType
	resolution int
	linearLen  float64
	up         Vec3
	transform  Affine3
	layers     []noise.Layer
	registry   *Registry

	version uint64
	snap    *Snapshot
}

// SplineOption configures a spline at construction.
type SplineOption func(*Spline)

// WithLoop closes the spline.
func WithLoop(loop bool) SplineOption {
	return func(s *Spline) { s.loop = loop }
}

// WithNormalType selects how frames are computed.
func WithNormalType(nt NormalType) SplineOption {
	return func(s *Spline) { s.normalType = nt }
}

// WithResolution sets the number of arc-length samples per piece.
func WithResolution(res int) SplineOption {
	return func(s *Spline) { s.resolution = max(res, 1) }
}

// WithUp sets the reference axis of static frames and of the first dynamic
// frame.
func WithUp(up Vec3) SplineOption {
	return func(s *Spline) { s.up = up.NormalizeOr(AxisY) }
}

// WithTransform sets the curve-local to world transform.
func WithTransform(aff Affine3) SplineOption {
	return func(s *Spline) { s.transform = aff }
}

// WithSettings applies the resolution and linear handle length of settings.
func WithSettings(st Settings) SplineOption {
	return func(s *Spline) {
		s.resolution = max(st.Resolution, 1)
		if st.LinearTangentLength > 0 {
			s.linearLen = st.LinearTangentLength
		}
	}
}

// NewSpline returns a spline through the given segments.
func NewSpline(segments []Segment, opts ...SplineOption) *Spline {
	s := &Spline{
		resolution: DefaultResolution,
		linearLen:  DefaultLinearTangentLength,
		up:         AxisY,
		transform:  Identity3,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.segments = make([]*Segment, len(segments))
	for i := range segments {
		seg := &Segment{}
		seg.setGeometry(segments[i])
		seg.spline = s
		s.segments[i] = seg
	}
	s.syncSeam(0)
	s.changed()
	return s
}

// Len returns the number of segments.
func (s *Spline) Len() int { return len(s.segments) }

// Segment returns a copy of segment i. It panics if i is out of range.
func (s *Spline) Segment(i int) Segment { return *s.segments[i] }

// Segments returns copies of all segments.
func (s *Spline) Segments() []Segment {
	out := make([]Segment, len(s.segments))
	for i, seg := range s.segments {
		out[i] = *seg
	}
	return out
}

// Piece returns the cubic Bézier between segment i and i+1.
func (s *Spline) Piece(i int) CubicBez {
	return s.piece(i)
}

func (s *Spline) piece(i int) CubicBez {
	a, b := s.segments[i], s.segments[i+1]
	return CubicBez{a.Anchor, a.TangentA, b.TangentB, b.Anchor}
}

func (s *Spline) Loop() bool             { return s.loop }
func (s *Spline) NormalType() NormalType { return s.normalType }
func (s *Spline) Resolution() int        { return s.resolution }
func (s *Spline) Up() Vec3               { return s.up }
func (s *Spline) Transform() Affine3     { return s.transform }
func (s *Spline) Registry() *Registry    { return s.registry }

// Version returns the edit counter of the spline.
func (s *Spline) Version() uint64 { return s.version }

// Valid reports whether the derived tables match the current version.
func (s *Spline) Valid() bool {
	return s.snap != nil && s.snap.version == s.version
}

// Invalidate marks the derived tables stale. The next read recomputes them.
func (s *Spline) Invalidate() {
	s.version++
}

// Recompute rebuilds the derived tables from scratch.
func (s *Spline) Recompute() {
	s.snap = buildSnapshot(s)
	Logger().Debug("recomputed spline tables",
		"segments", len(s.segments),
		"samples", s.snap.Samples(),
		"length", s.snap.length,
		"version", s.version)
}

// Snapshot returns the immutable derived data for the current version.
func (s *Spline) Snapshot() *Snapshot {
	if !s.Valid() {
		s.Recompute()
	}
	return s.snap
}

func (s *Spline) changed() {
	s.Invalidate()
	s.Recompute()
}

// syncSeam keeps the first and last segments of a loop identical. edited is
// the index that was changed; its data wins.
func (s *Spline) syncSeam(edited int) {
	n := len(s.segments)
	if !s.loop || n < 2 {
		return
	}
	first, last := s.segments[0], s.segments[n-1]
	if edited == n-1 {
		first.setGeometry(*last)
	} else {
		last.setGeometry(*first)
	}
}

// seam reports whether segment i is the duplicate closing a loop.
func (s *Spline) seam(i int) bool {
	return s.loop && len(s.segments) >= 2 && i == len(s.segments)-1
}

// deriveLinearTangents places the handles of linear segments on the lines to
// their neighbouring anchors.
func (s *Spline) deriveLinearTangents() {
	n := len(s.segments)
	for i, seg := range s.segments {
		if seg.Interpolation != Linear {
			continue
		}
		prev, next := i-1, i+1
		if s.loop && n > 2 {
			if i == 0 {
				prev = n - 2
			}
			if i == n-1 {
				next = 1
			}
		}
		seg.TangentA, seg.TangentB = seg.Anchor, seg.Anchor
		if next < n {
			d := s.segments[next].Anchor.Sub(seg.Anchor).NormalizeOr(Vec3{})
			seg.TangentA = seg.Anchor.Add(d.Mul(s.linearLen))
		}
		if prev >= 0 {
			d := s.segments[prev].Anchor.Sub(seg.Anchor).NormalizeOr(Vec3{})
			seg.TangentB = seg.Anchor.Add(d.Mul(s.linearLen))
		}
	}
}

func (s *Spline) index(seg *Segment) int {
	return slices.Index(s.segments, seg)
}

func (s *Spline) checkIndex(i int) error {
	if i < 0 || i >= len(s.segments) {
		return indexError(i, len(s.segments))
	}
	return nil
}

// Append adds a segment to the end of the spline and returns its index. On a
// looped spline the segment is inserted before the closing duplicate.
func (s *Spline) Append(seg Segment) int {
	i := len(s.segments)
	if s.loop && i >= 2 {
		i--
	}
	_ = s.Insert(i, seg)
	return i
}

// Insert inserts seg so that it becomes segment i.
func (s *Spline) Insert(i int, seg Segment) error {
	if i < 0 || i > len(s.segments) {
		return indexError(i, len(s.segments)+1)
	}
	ns := &Segment{spline: s}
	ns.setGeometry(seg)
	s.segments = slices.Insert(s.segments, i, ns)
	if s.registry != nil {
		s.registry.adopt(ns)
	}
	s.syncSeam(i)
	s.changed()
	return nil
}

// Split splits piece i at piece-local parameter t, inserting a new segment
// while keeping the shape of the curve. Deformation parameters of the new
// segment are interpolated from its neighbours.
func (s *Spline) Split(i int, t float64) error {
	if i < 0 || i >= len(s.segments)-1 {
		return indexError(i, max(len(s.segments)-1, 0))
	}
	t = clamp01(t)
	left, right := s.piece(i).SplitAt(t)
	a, b := s.segments[i], s.segments[i+1]

	mid := NewSegmentWithTangents(left.P3, right.P1, left.P2)
	mid.ZRotation = a.ZRotation + (b.ZRotation-a.ZRotation)*t
	mid.Contrast = a.Contrast + (b.Contrast-a.Contrast)*t
	mid.Noise = a.Noise + (b.Noise-a.Noise)*t
	mid.SaddleSkew = a.SaddleSkew.lerp(b.SaddleSkew, t)
	mid.Scale = a.Scale.lerp(b.Scale, t)

	if a.Interpolation == Bezier {
		a.TangentA = left.P1
	}
	if b.Interpolation == Bezier {
		b.TangentB = right.P2
	}
	if s.loop {
		// a or b may be one half of the seam; on a two-segment loop both are.
		first, last := s.segments[0], s.segments[len(s.segments)-1]
		if a == first {
			last.TangentA = a.TangentA
		}
		if b == last {
			first.TangentB = b.TangentB
		}
	}
	return s.Insert(i+1, mid)
}

// Remove deletes segment i, unlinking it from its link group or connector
// first. On a looped spline, removing the closing duplicate removes the first
// segment.
func (s *Spline) Remove(i int) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	if s.seam(i) {
		i = 0
	}
	seg := s.segments[i]
	if s.registry != nil {
		s.registry.forget(seg)
	}
	s.segments = slices.Delete(s.segments, i, i+1)
	seg.spline = nil
	s.syncSeam(0)
	s.changed()
	return nil
}

// SetAnchor moves the anchor of segment i to p, in curve-local space,
// carrying its handles along. Linked segments on other splines follow.
func (s *Spline) SetAnchor(i int, p Vec3) error {
	return s.Update(i, func(seg *Segment) {
		seg.translate(p)
	})
}

// SetTangentA sets the outgoing handle of segment i. Handles of linear
// segments are derived and the call has no lasting effect on them.
func (s *Spline) SetTangentA(i int, p Vec3) error {
	return s.Update(i, func(seg *Segment) { seg.TangentA = p })
}

// SetTangentB sets the incoming handle of segment i.
func (s *Spline) SetTangentB(i int, p Vec3) error {
	return s.Update(i, func(seg *Segment) { seg.TangentB = p })
}

// Update applies fn to a copy of segment i and stores the result. Derived
// fields and identity are not affected by fn.
func (s *Spline) Update(i int, fn func(seg *Segment)) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	seg := s.segments[i]
	tmp := *seg
	fn(&tmp)
	moved := tmp.Anchor != seg.Anchor
	if moved && s.registry != nil {
		if err := s.registry.checkMovable(s.linkTarget(i)); err != nil {
			return err
		}
	}
	seg.setGeometry(tmp)
	s.syncSeam(i)
	s.changed()
	if moved && s.registry != nil {
		s.registry.propagate(s.linkTarget(i))
	}
	return nil
}

// linkTarget returns the segment that represents index i in the registry:
// the closing duplicate of a loop is represented by the first segment.
func (s *Spline) linkTarget(i int) *Segment {
	if s.seam(i) {
		return s.segments[0]
	}
	return s.segments[i]
}

// moveAnchor moves segment seg to p without consulting the registry.
func (s *Spline) moveAnchor(seg *Segment, p Vec3) {
	i := s.index(seg)
	if i < 0 {
		return
	}
	seg.translate(p)
	s.syncSeam(i)
	s.changed()
}

// SetLoop opens or closes the spline. Closing a spline makes its last
// segment the duplicate of the first.
func (s *Spline) SetLoop(loop bool) {
	if s.loop == loop {
		return
	}
	s.loop = loop
	s.syncSeam(0)
	s.changed()
}

func (s *Spline) SetNormalType(nt NormalType) {
	s.normalType = nt
	s.changed()
}

// SetResolution sets the number of arc-length samples per piece.
func (s *Spline) SetResolution(res int) error {
	if res < 1 {
		return fmt.Errorf("%w: resolution %d < 1", ErrInvalidSettings, res)
	}
	s.resolution = res
	s.changed()
	return nil
}

func (s *Spline) SetUp(up Vec3) {
	s.up = up.NormalizeOr(AxisY)
	s.changed()
}

// SetTransform sets the curve-local to world transform. Anchors linked to
// other splines keep their local positions; call [Registry.Resync] to pull
// linked groups back together.
func (s *Spline) SetTransform(aff Affine3) {
	s.transform = aff
	s.changed()
}

// AddNoiseLayer appends a noise layer and returns its index.
func (s *Spline) AddNoiseLayer(l noise.Layer) int {
	s.layers = append(s.layers, l)
	s.changed()
	return len(s.layers) - 1
}

// NoiseLayer returns a copy of layer i.
func (s *Spline) NoiseLayer(i int) noise.Layer { return s.layers[i] }

// NoiseLayers returns copies of all layers.
func (s *Spline) NoiseLayers() []noise.Layer { return slices.Clone(s.layers) }

// SetNoiseLayer replaces layer i.
func (s *Spline) SetNoiseLayer(i int, l noise.Layer) error {
	return s.UpdateNoiseLayer(i, func(dst *noise.Layer) { *dst = l })
}

// UpdateNoiseLayer modifies layer i in place.
func (s *Spline) UpdateNoiseLayer(i int, fn func(l *noise.Layer)) error {
	if i < 0 || i >= len(s.layers) {
		return fmt.Errorf("noise layer %d not in [0, %d)", i, len(s.layers))
	}
	fn(&s.layers[i])
	s.changed()
	return nil
}

// RemoveNoiseLayer deletes layer i.
func (s *Spline) RemoveNoiseLayer(i int) error {
	if i < 0 || i >= len(s.layers) {
		return fmt.Errorf("noise layer %d not in [0, %d)", i, len(s.layers))
	}
	s.layers = slices.Delete(s.layers, i, i+1)
	s.changed()
	return nil
}

// Length returns the arc length of the spline.
func (s *Spline) Length() float64 { return s.Snapshot().Length() }

// Position returns the point at fixed (constant-speed) parameter f.
func (s *Spline) Position(f float64) Vec3 { return s.Snapshot().Position(f) }

// PositionRaw returns the point at raw Bézier parameter u.
func (s *Spline) PositionRaw(u float64) Vec3 { return s.Snapshot().PositionRaw(u) }

// Direction returns the unit tangent at fixed parameter f.
func (s *Spline) Direction(f float64) Vec3 { return s.Snapshot().Direction(f) }

// RawToFixed converts a raw parameter to a fixed parameter.
func (s *Spline) RawToFixed(u float64) float64 { return s.Snapshot().RawToFixed(u) }

// FixedToRaw converts a fixed parameter to a raw parameter.
func (s *Spline) FixedToRaw(f float64) float64 { return s.Snapshot().FixedToRaw(f) }

// Frame returns the orientation frame at fixed parameter f.
func (s *Spline) Frame(f float64) Frame { return s.Snapshot().Frame(f) }

// Sample evaluates the spline at distance z.
func (s *Spline) Sample(z float64) Sample { return s.Snapshot().Sample(z) }

// SplineToWorld maps a curve-relative point into world space.
func (s *Spline) SplineToWorld(local Vec3) Vec3 { return s.Snapshot().SplineToWorld(local) }

// WorldToSpline maps a world point into curve-relative coordinates.
func (s *Spline) WorldToSpline(world Vec3) Vec3 { return s.Snapshot().WorldToSpline(world) }

// WorldAnchor returns the anchor of segment i in world space.
func (s *Spline) WorldAnchor(i int) Vec3 {
	return s.transform.Apply(s.segments[i].Anchor)
}

// Stats describes a spline for inspection tools.
type Stats struct {
	Length      float64
	Segments    int
	Samples     int
	MemoryBytes int
}

// Stats returns the spline's length and cache statistics.
func (s *Spline) Stats() Stats {
	snap := s.Snapshot()
	return Stats{
		Length:      snap.Length(),
		Segments:    len(s.segments),
		Samples:     snap.Samples(),
		MemoryBytes: snap.MemoryBytes(),
	}
}
