package noise

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// cellular returns Worley F1 noise: the distance from p to the nearest
// feature point, one point jittered inside each unit cell. The distance is
// mapped from [0, √3] to [-1, 1].
func (s *Sampler) cellular(p r3.Vec) float64 {
	cx, cy, cz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	best := math.Inf(1)
	for dz := -1.0; dz <= 1; dz++ {
		for dy := -1.0; dy <= 1; dy++ {
			for dx := -1.0; dx <= 1; dx++ {
				x, y, z := cx+dx, cy+dy, cz+dz
				h := cellHash(int64(x), int64(y), int64(z), s.layer.Seed)
				feature := r3.Vec{
					X: x + unitFloat(h),
					Y: y + unitFloat(h>>21),
					Z: z + unitFloat(h>>42),
				}
				best = min(best, r3.Norm2(r3.Sub(feature, p)))
			}
		}
	}
	return math.Sqrt(best)/math.Sqrt(3)*2 - 1
}

// cellHash mixes cell coordinates and seed with the splitmix64 finalizer.
func cellHash(x, y, z, seed int64) uint64 {
	h := uint64(seed) ^ uint64(x)*0x9e3779b97f4a7c15 ^ uint64(y)*0xc2b2ae3d27d4eb4f ^ uint64(z)*0x165667b19e3779f9
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return h
}

// unitFloat maps the low 21 bits of h to [0, 1).
func unitFloat(h uint64) float64 {
	return float64(h&(1<<21-1)) / (1 << 21)
}
