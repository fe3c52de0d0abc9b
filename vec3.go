package bend

import (
	"fmt"
	"math"

	"cogentcore.org/core/math32"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a vector in curve space. It shares its layout with [r3.Vec], so
// conversions between the two are free.
type Vec3 r3.Vec

// V3 returns the vector ⟨x, y, z⟩.
func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Axis unit vectors.
var (
	AxisX = Vec3{X: 1}
	AxisY = Vec3{Y: 1}
	AxisZ = Vec3{Z: 1}
)

// FromVector3 converts a float32 mesh vector to a curve space vector.
func FromVector3(v math32.Vector3) Vec3 {
	return Vec3{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// Vector3 converts the vector to float32 for writing into mesh buffers.
func (v Vec3) Vector3() math32.Vector3 {
	return math32.Vec3(float32(v.X), float32(v.Y), float32(v.Z))
}

func (v Vec3) String() string {
	return fmt.Sprintf("⟨%g, %g, %g⟩", v.X, v.Y, v.Z)
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return r3.Dot(r3.Vec(v), r3.Vec(o))
}

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3(r3.Cross(r3.Vec(v), r3.Vec(o)))
}

// Hypot returns the magnitude of the vector.
func (v Vec3) Hypot() float64 {
	return r3.Norm(r3.Vec(v))
}

// Hypot2 returns the squared magnitude of the vector.
//
// This function is more efficient than squaring the result of [Vec3.Hypot].
func (v Vec3) Hypot2() float64 {
	return r3.Norm2(r3.Vec(v))
}

// Distance returns the euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Hypot()
}

// Lerp linearly interpolates between two vectors.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	// v + t * (o-v)
	return v.Add(o.Sub(v).Mul(t))
}

// Normalize returns a vector of magnitude 1.0 with the same direction as v.
// This produces a NaN vector if the magnitude is 0.
func (v Vec3) Normalize() Vec3 {
	return v.Mul(1.0 / v.Hypot())
}

// NormalizeOr is like [Vec3.Normalize] but returns fallback when v is too
// short to have a meaningful direction.
func (v Vec3) NormalizeOr(fallback Vec3) Vec3 {
	h := v.Hypot()
	if h < epsilon {
		return fallback
	}
	return v.Mul(1.0 / h)
}

// Rotate rotates v by angle radians about axis, following the right-hand rule.
func (v Vec3) Rotate(angle float64, axis Vec3) Vec3 {
	if angle == 0 {
		return v
	}
	return Vec3(r3.NewRotation(angle, r3.Vec(axis)).Rotate(r3.Vec(v)))
}

// IsInf reports whether at least one of x, y and z is infinite.
func (v Vec3) IsInf() bool {
	return math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0)
}

// IsNaN reports whether at least one of x, y and z is NaN.
func (v Vec3) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// Add adds two vectors and returns the resulting vector.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3(r3.Add(r3.Vec(v), r3.Vec(o)))
}

// Sub subtracts two vectors and returns the resulting vector.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3(r3.Sub(r3.Vec(v), r3.Vec(o)))
}

func (v Vec3) Mul(f float64) Vec3 {
	return Vec3(r3.Scale(f, r3.Vec(v)))
}

// Negate returns a new vector with the signs of x, y and z flipped.
func (v Vec3) Negate() Vec3 {
	return Vec3{
		X: -v.X,
		Y: -v.Y,
		Z: -v.Z,
	}
}

// Lateral is a pair of values applied across the curve: X along a frame's
// right axis, Y along its up axis.
type Lateral struct {
	X float64
	Y float64
}

// Lat returns the lateral pair (x, y).
func Lat(x, y float64) Lateral {
	return Lateral{X: x, Y: y}
}

func (l Lateral) lerp(o Lateral, t float64) Lateral {
	return Lateral{
		X: l.X + (o.X-l.X)*t,
		Y: l.Y + (o.Y-l.Y)*t,
	}
}
