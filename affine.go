package bend

import (
	"math"

	"cogentcore.org/core/math32"
)

// Affine3 describes a 3D affine transform via coefficients.
//
// The coefficients (N0, ..., N11) are stored column by column and represent
// this augmented matrix:
//
//	| N0 N3 N6 N9  |
//	| N1 N4 N7 N10 |
//	| N2 N5 N8 N11 |
//	| 0  0  0  1   |
//
// As with the 2D formulation on [Wikipedia], (A * B) * v == A * (B * v).
//
// [Wikipedia]: https://en.wikipedia.org/wiki/Affine_transformation
type Affine3 struct {
	N0, N1, N2, N3, N4, N5, N6, N7, N8, N9, N10, N11 float64
}

// Identity3 is the identity transform.
var Identity3 = Affine3{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0}

// Scale3 creates an affine transform representing non-uniform scaling.
func Scale3(x, y, z float64) Affine3 {
	return Affine3{x, 0, 0, 0, y, 0, 0, 0, z, 0, 0, 0}
}

// Translate3 creates an affine transform representing translation.
func Translate3(v Vec3) Affine3 {
	return Affine3{1, 0, 0, 0, 1, 0, 0, 0, 1, v.X, v.Y, v.Z}
}

// Rotate3 creates an affine transform representing a rotation of th radians
// about axis, following the right-hand rule.
func Rotate3(axis Vec3, th float64) Affine3 {
	x := AxisX.Rotate(th, axis)
	y := AxisY.Rotate(th, axis)
	z := AxisZ.Rotate(th, axis)
	return Affine3{x.X, x.Y, x.Z, y.X, y.Y, y.Z, z.X, z.Y, z.Z, 0, 0, 0}
}

// RotateEuler3 creates a rotation from Euler angles in degrees, using the XYZ
// order of [math32.NewQuatEuler].
func RotateEuler3(deg Vec3) Affine3 {
	q := math32.NewQuatEuler(deg.Mul(math.Pi / 180).Vector3())
	var m math32.Matrix4
	m.SetTransform(math32.Vector3{}, q, math32.Vec3(1, 1, 1))
	return FromMatrix4(&m)
}

// FromMatrix4 converts a float32 4x4 matrix into an [Affine3]. The projective
// row is ignored.
func FromMatrix4(m *math32.Matrix4) Affine3 {
	var aff Affine3
	aff.N0, aff.N1, aff.N2 = float64(m[0]), float64(m[1]), float64(m[2])
	aff.N3, aff.N4, aff.N5 = float64(m[4]), float64(m[5]), float64(m[6])
	aff.N6, aff.N7, aff.N8 = float64(m[8]), float64(m[9]), float64(m[10])
	aff.N9, aff.N10, aff.N11 = float64(m[12]), float64(m[13]), float64(m[14])
	return aff
}

// Coefficients returns the coefficients of the transform.
func (aff Affine3) Coefficients() [12]float64 {
	return [12]float64{
		aff.N0, aff.N1, aff.N2, aff.N3, aff.N4, aff.N5,
		aff.N6, aff.N7, aff.N8, aff.N9, aff.N10, aff.N11,
	}
}

// Apply transforms a point.
func (aff Affine3) Apply(p Vec3) Vec3 {
	return Vec3{
		X: aff.N0*p.X + aff.N3*p.Y + aff.N6*p.Z + aff.N9,
		Y: aff.N1*p.X + aff.N4*p.Y + aff.N7*p.Z + aff.N10,
		Z: aff.N2*p.X + aff.N5*p.Y + aff.N8*p.Z + aff.N11,
	}
}

// ApplyVector transforms a direction, ignoring the translation.
func (aff Affine3) ApplyVector(v Vec3) Vec3 {
	return Vec3{
		X: aff.N0*v.X + aff.N3*v.Y + aff.N6*v.Z,
		Y: aff.N1*v.X + aff.N4*v.Y + aff.N7*v.Z,
		Z: aff.N2*v.X + aff.N5*v.Y + aff.N8*v.Z,
	}
}

func (aff Affine3) Mul(o Affine3) Affine3 {
	x := aff.ApplyVector(Vec3{o.N0, o.N1, o.N2})
	y := aff.ApplyVector(Vec3{o.N3, o.N4, o.N5})
	z := aff.ApplyVector(Vec3{o.N6, o.N7, o.N8})
	t := aff.Apply(Vec3{o.N9, o.N10, o.N11})
	return Affine3{x.X, x.Y, x.Z, y.X, y.Y, y.Z, z.X, z.Y, z.Z, t.X, t.Y, t.Z}
}

// Determinant computes the determinant of the linear part.
func (aff Affine3) Determinant() float64 {
	return aff.N0*(aff.N4*aff.N8-aff.N7*aff.N5) -
		aff.N3*(aff.N1*aff.N8-aff.N7*aff.N2) +
		aff.N6*(aff.N1*aff.N5-aff.N4*aff.N2)
}

// Invert computes the inverse transform.
//
// Produces NaN values when the determinant is zero.
func (aff Affine3) Invert() Affine3 {
	invDet := 1 / aff.Determinant()
	inv := Affine3{
		N0: +invDet * (aff.N4*aff.N8 - aff.N7*aff.N5),
		N1: -invDet * (aff.N1*aff.N8 - aff.N7*aff.N2),
		N2: +invDet * (aff.N1*aff.N5 - aff.N4*aff.N2),
		N3: -invDet * (aff.N3*aff.N8 - aff.N6*aff.N5),
		N4: +invDet * (aff.N0*aff.N8 - aff.N6*aff.N2),
		N5: -invDet * (aff.N0*aff.N5 - aff.N3*aff.N2),
		N6: +invDet * (aff.N3*aff.N7 - aff.N6*aff.N4),
		N7: -invDet * (aff.N0*aff.N7 - aff.N6*aff.N1),
		N8: +invDet * (aff.N0*aff.N4 - aff.N3*aff.N1),
	}
	t := inv.ApplyVector(aff.Translation()).Negate()
	inv.N9, inv.N10, inv.N11 = t.X, t.Y, t.Z
	return inv
}

// IsIdentity reports whether aff is exactly the identity transform.
func (aff Affine3) IsIdentity() bool {
	return aff == Identity3
}

func (aff Affine3) IsNaN() bool {
	for _, n := range aff.Coefficients() {
		if math.IsNaN(n) {
			return true
		}
	}
	return false
}

// Translation returns the translation component of this affine transformation.
func (aff Affine3) Translation() Vec3 {
	return Vec3{
		X: aff.N9,
		Y: aff.N10,
		Z: aff.N11,
	}
}
