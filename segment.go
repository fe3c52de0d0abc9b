package bend

import "fmt"

// Interpolation selects how the handles of a segment are produced.
type Interpolation uint8

const (
	// Bezier segments carry freely editable handles.
	Bezier Interpolation = iota
	// Linear segments derive their handles from the neighbouring anchors.
	Linear
)

func (i Interpolation) String() string {
	switch i {
	case Bezier:
		return "bezier"
	case Linear:
		return "linear"
	default:
		return fmt.Sprintf("Interpolation(%d)", uint8(i))
	}
}

// SegmentID identifies a segment within a [Registry]. The zero ID belongs to
// segments of unregistered splines.
type SegmentID uint64

// Segment is an anchor of a spline, together with its handles and the
// deformation parameters that apply around it.
//
// The piece between segment i and i+1 is the cubic Bézier with control points
// Anchor(i), TangentA(i), TangentB(i+1) and Anchor(i+1). TangentA is thus the
// outgoing handle and TangentB the incoming one.
type Segment struct {
	Anchor        Vec3
	TangentA      Vec3
	TangentB      Vec3
	Interpolation Interpolation

	// ZRotation twists the frame about the curve, in degrees.
	ZRotation float64
	// Contrast shapes how twist, scale and skew ease between this segment
	// and the next; 0 is a linear blend.
	Contrast float64
	// Noise scales the contribution of noise layers, in [0, 1].
	Noise      float64
	SaddleSkew Lateral
	Scale      Lateral

	zPosition float64
	length    float64
	id        SegmentID
	spline    *Spline
}

// NewSegment returns a segment at anchor with both handles on the anchor,
// unit scale and full noise strength.
func NewSegment(anchor Vec3) Segment {
	return Segment{
		Anchor:   anchor,
		TangentA: anchor,
		TangentB: anchor,
		Noise:    1,
		Scale:    Lat(1, 1),
	}
}

// NewSegmentWithTangents is like [NewSegment] but sets both handles.
func NewSegmentWithTangents(anchor, tangentA, tangentB Vec3) Segment {
	s := NewSegment(anchor)
	s.TangentA = tangentA
	s.TangentB = tangentB
	return s
}

// ZPosition returns the arc length from the start of the spline to the
// segment's anchor.
func (s Segment) ZPosition() float64 { return s.zPosition }

// Length returns the arc length of the piece that starts at this segment.
// The last segment of a spline has length 0.
func (s Segment) Length() float64 { return s.length }

// ID returns the registry ID of the segment.
func (s Segment) ID() SegmentID { return s.id }

// Spline returns the spline owning the segment.
func (s Segment) Spline() *Spline { return s.spline }

// setGeometry copies the editable fields of o into s.
func (s *Segment) setGeometry(o Segment) {
	s.Anchor = o.Anchor
	s.TangentA = o.TangentA
	s.TangentB = o.TangentB
	s.Interpolation = o.Interpolation
	s.ZRotation = o.ZRotation
	s.Contrast = o.Contrast
	s.Noise = clamp01(o.Noise)
	s.SaddleSkew = o.SaddleSkew
	s.Scale = o.Scale
}

// translate moves the anchor to p, carrying both handles along.
func (s *Segment) translate(p Vec3) {
	d := p.Sub(s.Anchor)
	s.Anchor = p
	s.TangentA = s.TangentA.Add(d)
	s.TangentB = s.TangentB.Add(d)
}

// segmentParams are the per-segment values read by snapshots.
type segmentParams struct {
	zRotation  float64
	contrast   float64
	noise      float64
	saddleSkew Lateral
	scale      Lateral
	zPosition  float64
	length     float64
}

func (s *Segment) params() segmentParams {
	return segmentParams{
		zRotation:  s.ZRotation,
		contrast:   s.Contrast,
		noise:      s.Noise,
		saddleSkew: s.SaddleSkew,
		scale:      s.Scale,
		zPosition:  s.zPosition,
		length:     s.length,
	}
}
