package bend

import (
	"fmt"
	"math"
)

// NormalType selects how orientation frames are produced along a spline.
type NormalType uint8

const (
	// Static3D derives each frame from the tangent and the spline's up axis.
	Static3D NormalType = iota
	// Static2D keeps the up axis fixed and flattens the tangent into the
	// plane it spans.
	Static2D
	// Dynamic propagates a rotation-minimizing frame along the spline.
	Dynamic
)

func (n NormalType) String() string {
	switch n {
	case Static3D:
		return "static-3d"
	case Static2D:
		return "static-2d"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("NormalType(%d)", uint8(n))
	}
}

// Frame is an orthonormal right/up/forward triple. Right = Up × Forward.
type Frame struct {
	Right   Vec3
	Up      Vec3
	Forward Vec3
}

// Apply maps a lateral offset (x along Right, y along Up, z along Forward)
// relative to origin.
func (f Frame) Apply(origin Vec3, local Vec3) Vec3 {
	return origin.
		Add(f.Right.Mul(local.X)).
		Add(f.Up.Mul(local.Y)).
		Add(f.Forward.Mul(local.Z))
}

// Local expresses v in the frame's axes.
func (f Frame) Local(v Vec3) Vec3 {
	return Vec3{X: v.Dot(f.Right), Y: v.Dot(f.Up), Z: v.Dot(f.Forward)}
}

// Twist rotates the frame about its forward axis by deg degrees.
func (f Frame) Twist(deg float64) Frame {
	if deg == 0 {
		return f
	}
	th := deg * math.Pi / 180
	f.Right = f.Right.Rotate(th, f.Forward)
	f.Up = f.Up.Rotate(th, f.Forward)
	return f
}

// frameFromReference builds the frame whose forward axis is forward and whose
// up axis is as close to up as possible.
func frameFromReference(forward, up Vec3) Frame {
	right := up.Cross(forward)
	if right.Hypot2() < 1e-12 {
		right = perpendicular(forward).Cross(forward)
	}
	right = right.Normalize()
	return Frame{
		Right:   right,
		Up:      forward.Cross(right),
		Forward: forward,
	}
}

// orthonormalize rebuilds Right and Up around Forward, keeping Up's intent.
func (f Frame) orthonormalize() Frame {
	f.Forward = f.Forward.NormalizeOr(AxisZ)
	return frameFromReference(f.Forward, f.Up)
}

// perpendicular returns some unit vector perpendicular to v.
func perpendicular(v Vec3) Vec3 {
	ax, ay, az := math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)
	var o Vec3
	switch {
	case ax <= ay && ax <= az:
		o = AxisX
	case ay <= az:
		o = AxisY
	default:
		o = AxisZ
	}
	return o.Sub(v.Mul(o.Dot(v))).NormalizeOr(AxisY)
}

// transport rotates f by the minimal rotation that carries its forward axis
// onto forward. This is one step of parallel transport.
func (f Frame) transport(forward Vec3) Frame {
	axis := f.Forward.Cross(forward)
	s := axis.Hypot()
	c := f.Forward.Dot(forward)
	if s > 1e-12 {
		th := math.Atan2(s, c)
		f.Right = f.Right.Rotate(th, axis)
		f.Up = f.Up.Rotate(th, axis)
	}
	f.Forward = forward
	return f.orthonormalize()
}

// signedAngle returns the angle in radians that rotates a onto b about axis.
func signedAngle(a, b, axis Vec3) float64 {
	return math.Atan2(a.Cross(b).Dot(axis), a.Dot(b))
}

// contrastWeight is the eased blend t^c / (t^c + (1-t)^c).
func contrastWeight(t, c float64) float64 {
	t = clamp01(t)
	if c == 1 {
		return t
	}
	a := math.Pow(t, c)
	b := math.Pow(1-t, c)
	if a+b < epsilon {
		return t
	}
	return a / (a + b)
}

// contrastExponent combines the contrast of the two segments bounding a
// piece into the exponent of [contrastWeight].
func contrastExponent(c0, c1 float64) float64 {
	return max(1+0.5*(c0+c1), 0.05)
}
