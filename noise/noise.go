// Package noise provides the coherent noise layers that displace deformed
// vertices. Every layer type is built on a seeded 3D gradient noise, with
// fractal, ridged, terraced, warped and cellular variants layered on top.
//
// Samplers are immutable after construction and safe for concurrent use,
// which lets a deformation job evaluate them from many goroutines.
package noise

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"gonum.org/v1/gonum/spatial/r3"
)

// Type selects the noise function of a [Layer].
type Type uint8

const (
	Perlin Type = iota
	Billow
	DomainWarp
	Voronoi
	Terrace
	Ridged
	FBM
	HybridMultifractal
)

var typeNames = [...]string{
	Perlin:             "perlin",
	Billow:             "billow",
	DomainWarp:         "domain-warp",
	Voronoi:            "voronoi",
	Terrace:            "terrace",
	Ridged:             "ridged",
	FBM:                "fbm",
	HybridMultifractal: "hybrid-multifractal",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Layer describes one named noise layer of a spline.
type Layer struct {
	Name string
	Type Type
	// Scale weighs the displacement along the frame's right, up and forward
	// axes.
	Scale     r3.Vec
	Seed      int64
	Octaves   int
	Frequency float64
	Amplitude float64
	// Group tags the layer; objects only receive layers of their own group.
	Group   string
	Enabled bool
}

// NewLayer returns an enabled layer with unit scale, one octave and unit
// frequency and amplitude.
func NewLayer(name string, typ Type) Layer {
	return Layer{
		Name:      name,
		Type:      typ,
		Scale:     r3.Vec{X: 1, Y: 1, Z: 1},
		Octaves:   1,
		Frequency: 1,
		Amplitude: 1,
		Enabled:   true,
	}
}

const (
	lacunarity = 2.0
	gain       = 0.5
	// ridgeOffset and hybridOffset follow Musgrave's suggested constants.
	ridgeOffset  = 1.0
	hybridOffset = 0.7
	warpStrength = 0.5
)

// axis offsets decorrelate the three displacement channels.
var axisOffsets = [3]r3.Vec{
	{},
	{X: 31.416, Y: 11.73, Z: 47.853},
	{X: -19.19, Y: 73.21, Z: -5.731},
}

// Sampler evaluates a single compiled [Layer].
type Sampler struct {
	layer Layer
	grad  *perlin.Perlin
	warp  *perlin.Perlin
}

// NewSampler compiles a layer.
func NewSampler(l Layer) *Sampler {
	if l.Octaves < 1 {
		l.Octaves = 1
	}
	return &Sampler{
		layer: l,
		grad:  perlin.NewPerlin(2, 2, 1, l.Seed),
		warp:  perlin.NewPerlin(2, 2, 1, l.Seed^0x5bd1e995),
	}
}

// Layer returns the layer the sampler was compiled from.
func (s *Sampler) Layer() Layer { return s.layer }

// Value evaluates the scalar noise at p, scaled by the layer's frequency but
// not its amplitude. Results lie roughly in [-1, 1].
func (s *Sampler) Value(p r3.Vec) float64 {
	p = r3.Scale(s.layer.Frequency, p)
	switch s.layer.Type {
	case Perlin:
		return s.gradient(p)
	case Billow:
		return s.billow(p)
	case DomainWarp:
		q := r3.Vec{
			X: s.warpValue(p),
			Y: s.warpValue(r3.Add(p, axisOffsets[1])),
			Z: s.warpValue(r3.Add(p, axisOffsets[2])),
		}
		return s.fbm(r3.Add(p, r3.Scale(warpStrength, q)))
	case Voronoi:
		return s.cellular(p)
	case Terrace:
		return terrace(s.fbm(p), s.layer.Octaves+1)
	case Ridged:
		return s.ridged(p)
	case FBM:
		return s.fbm(p)
	case HybridMultifractal:
		return s.hybrid(p)
	default:
		return 0
	}
}

// Displacement returns the layer's displacement at p, expressed along the
// right, up and forward axes of the frame at p.
func (s *Sampler) Displacement(p r3.Vec) r3.Vec {
	sc := s.layer.Scale
	var d r3.Vec
	if sc.X != 0 {
		d.X = sc.X * s.Value(p)
	}
	if sc.Y != 0 {
		d.Y = sc.Y * s.Value(r3.Add(p, axisOffsets[1]))
	}
	if sc.Z != 0 {
		d.Z = sc.Z * s.Value(r3.Add(p, axisOffsets[2]))
	}
	return r3.Scale(s.layer.Amplitude, d)
}

func (s *Sampler) gradient(p r3.Vec) float64 {
	// go-perlin returns values in about [-0.5, 0.5] for a single octave.
	return 2 * s.grad.Noise3D(p.X, p.Y, p.Z)
}

func (s *Sampler) warpValue(p r3.Vec) float64 {
	return 2 * s.warp.Noise3D(p.X, p.Y, p.Z)
}

func (s *Sampler) fbm(p r3.Vec) float64 {
	var sum, norm float64
	amp := 1.0
	for range s.layer.Octaves {
		sum += amp * s.gradient(p)
		norm += amp
		amp *= gain
		p = r3.Scale(lacunarity, p)
	}
	return sum / norm
}

func (s *Sampler) billow(p r3.Vec) float64 {
	var sum, norm float64
	amp := 1.0
	for range s.layer.Octaves {
		sum += amp * (2*math.Abs(s.gradient(p)) - 1)
		norm += amp
		amp *= gain
		p = r3.Scale(lacunarity, p)
	}
	return sum / norm
}

func (s *Sampler) ridged(p r3.Vec) float64 {
	var sum, norm float64
	amp, weight := 1.0, 1.0
	for range s.layer.Octaves {
		signal := ridgeOffset - math.Abs(s.gradient(p))
		signal *= signal * weight
		weight = clamp(signal*2, 0, 1)
		sum += amp * signal
		norm += amp
		amp *= gain
		p = r3.Scale(lacunarity, p)
	}
	// Map [0, 1] onto [-1, 1] to match the other types.
	return 2*sum/norm - 1
}

func (s *Sampler) hybrid(p r3.Vec) float64 {
	amp := 1.0
	result := (s.gradient(p) + hybridOffset) * amp
	weight := result
	norm := amp * (1 + hybridOffset)
	p = r3.Scale(lacunarity, p)
	for i := 1; i < s.layer.Octaves; i++ {
		weight = min(weight, 1)
		amp *= gain
		signal := (s.gradient(p) + hybridOffset) * amp
		result += weight * signal
		norm += amp * (1 + hybridOffset)
		weight *= signal
		p = r3.Scale(lacunarity, p)
	}
	return 2*result/norm - 1
}

func terrace(v float64, steps int) float64 {
	// Quantize [-1, 1] into steps plateaus with smoothstepped risers.
	x := (v + 1) * 0.5 * float64(steps)
	base := math.Floor(x)
	f := x - base
	f = f * f * (3 - 2*f)
	return (base+f)/float64(steps)*2 - 1
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
