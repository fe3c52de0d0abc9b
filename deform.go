package bend

import (
	"cogentcore.org/core/math32"
	"gonum.org/v1/gonum/spatial/r3"

	"honnef.co/go/bend/noise"
)

// Container holds the undeformed vertices of one mesh, in the owning
// object's local space.
type Container struct {
	Name   string
	Origin []math32.Vector3
	// Unreadable marks meshes whose vertex data is not accessible. They are
	// skipped by batches.
	Unreadable bool
}

// Object is a deformable object bent along a spline. Its local z axis runs
// along the curve and its x and y axes are lateral offsets.
type Object struct {
	Name       string
	Containers []*Container
	// Transform maps object-local space into curve-local space. Nil means
	// identity.
	Transform *math32.Matrix4
	// Mirror flips the object along the curve.
	Mirror bool
	// AlignToEnd places the object's far end on the end of the curve.
	AlignToEnd bool
	// NoiseGroup selects which noise layers apply.
	NoiseGroup string
	SnapMode   SnapMode
	Snap       SnapData
}

// ValidForRuntimeDeformation reports whether every container of o can be
// read.
func (o *Object) ValidForRuntimeDeformation() bool {
	for _, c := range o.Containers {
		if c.Unreadable {
			return false
		}
	}
	return true
}

// VertexCount returns the number of vertices of all readable containers.
func (o *Object) VertexCount() int {
	n := 0
	for _, c := range o.Containers {
		if !c.Unreadable {
			n += len(c.Origin)
		}
	}
	return n
}

func (o *Object) toCurve() Affine3 {
	if o.Transform == nil {
		return Identity3
	}
	return FromMatrix4(o.Transform)
}

// Bounds returns the bounding box of o's vertices in curve-local space.
func (o *Object) Bounds() math32.Box3 {
	box := math32.B3Empty()
	for _, c := range o.Containers {
		if c.Unreadable {
			continue
		}
		for _, v := range c.Origin {
			box.ExpandByPoint(v)
		}
	}
	if box.IsEmpty() || o.Transform == nil {
		return box
	}
	return box.MulMatrix4(o.Transform)
}

// ZRange returns the extent of o along a curve of the given length, after
// alignment but before snapping.
func (o *Object) ZRange(length float64) ZRange {
	b := o.Bounds()
	if b.IsEmpty() {
		return ZRange{}
	}
	r := ZRange{float64(b.Min.Z), float64(b.Max.Z)}
	if o.AlignToEnd {
		r = r.shift(length - r.Max)
	}
	return r
}

// UpdateSnap recomputes o's snap targets against snap and the other objects
// on the same curve, keeping the user offset.
func (o *Object) UpdateSnap(snap *Snapshot, others []*Object, st Settings) {
	length := snap.Length()
	var ranges []ZRange
	for _, other := range others {
		if other != o {
			ranges = append(ranges, other.ZRange(length).shift(other.Snap.Offset))
		}
	}
	offset := o.Snap.Offset
	o.Snap = ComputeSnap(o.SnapMode, o.ZRange(length), snap, ranges, st.SnapStartThreshold, st.SnapEndThreshold)
	o.Snap.Offset = offset
}

// Placement is everything needed to deform the vertices of one object
// against one snapshot. It is immutable and safe for concurrent use.
type Placement struct {
	snap      *Snapshot
	toCurve   Affine3
	fromCurve Affine3
	mirror    bool
	bounds    ZRange
	align     float64
	data      SnapData
	noise     noise.Stack
}

// Place prepares o for deformation along snap.
func (o *Object) Place(snap *Snapshot) *Placement {
	b := o.Bounds()
	bounds := ZRange{}
	if !b.IsEmpty() {
		bounds = ZRange{float64(b.Min.Z), float64(b.Max.Z)}
	}
	p := &Placement{
		snap:    snap,
		toCurve: o.toCurve(),
		mirror:  o.Mirror,
		bounds:  bounds,
		data:    o.Snap,
		noise:   noise.Compile(snap.layers, o.NoiseGroup),
	}
	p.fromCurve = p.toCurve.Invert()
	if o.AlignToEnd {
		p.align = snap.Length() - bounds.Max
	}
	return p
}

// Deform maps one object-local vertex onto the curve and returns the result
// in object-local space.
func (p *Placement) Deform(v math32.Vector3) math32.Vector3 {
	local := p.toCurve.Apply(FromVector3(v))
	if p.mirror {
		local.Z = p.bounds.Min + p.bounds.Max - local.Z
		local.X = -local.X
	}
	z := local.Z + p.align
	z = p.data.remap(z, p.bounds.shift(p.align))

	smp := p.snap.Sample(z)
	x := local.X*smp.Scale.X + smp.SaddleSkew.X*local.Y*local.Y
	y := local.Y*smp.Scale.Y + smp.SaddleSkew.Y*local.X*local.X
	pos := smp.Frame.Apply(smp.Position, Vec3{X: x, Y: y})
	if len(p.noise) > 0 && smp.Noise > 0 {
		d := Vec3(p.noise.Displacement(r3.Vec(pos)))
		pos = pos.Add(smp.Frame.Apply(Vec3{}, d).Mul(smp.Noise))
	}
	return p.fromCurve.Apply(pos).Vector3()
}

// DeformVertex deforms a single vertex of o along snap. It places o anew on
// every call, compiling its noise layers each time; to deform many vertices,
// call [Object.Place] once and use [Placement.Deform].
func DeformVertex(snap *Snapshot, o *Object, v math32.Vector3) math32.Vector3 {
	return o.Place(snap).Deform(v)
}
