package bend

import (
	"slices"
)

// buildSnapshot recomputes every derived table of sp. It also writes the
// derived segment data (linear handles, z positions and lengths) back into
// sp's segments.
func buildSnapshot(sp *Spline) *Snapshot {
	snap := &Snapshot{
		version:    sp.version,
		loop:       sp.loop,
		normalType: sp.normalType,
		up:         sp.up.NormalizeOr(AxisY),
		transform:  sp.transform,
		inverse:    sp.transform.Invert(),
		layers:     slices.Clone(sp.layers),
	}
	n := len(sp.segments)
	if n == 0 {
		return snap
	}
	sp.deriveLinearTangents()
	snap.anchor = sp.segments[0].Anchor
	snap.anchorRot = sp.segments[0].ZRotation

	pieces := n - 1
	snap.pieces = make([]CubicBez, pieces)
	for i := range pieces {
		snap.pieces[i] = sp.piece(i)
	}
	if pieces == 0 {
		seg := sp.segments[0]
		seg.zPosition, seg.length = 0, 0
		snap.segs = []segmentParams{seg.params()}
		return snap
	}

	res := sp.resolution
	samples := res*pieces + 1
	accuracy := DefaultAccuracy / float64(res)
	dist := make([]float64, samples)
	for i, c := range snap.pieces {
		for j := range res {
			t0 := float64(j) / float64(res)
			t1 := float64(j+1) / float64(res)
			k := i*res + j
			dist[k+1] = dist[k] + c.Subsegment(t0, t1).Arclen(accuracy)
		}
	}
	snap.dist = dist
	snap.length = dist[samples-1]

	snap.segs = make([]segmentParams, n)
	for i, seg := range sp.segments {
		seg.zPosition = dist[i*res]
		seg.length = 0
		if i < pieces {
			seg.length = dist[(i+1)*res] - dist[i*res]
		}
		snap.segs[i] = seg.params()
	}

	snap.fixedRaw = make([]float64, samples)
	snap.positions = make([]Vec3, samples)
	last := float64(samples - 1)
	j := 0
	for k := range samples {
		var u float64
		if snap.length < epsilon {
			u = float64(k) / last
		} else {
			target := snap.length * float64(k) / last
			for j < samples-2 && dist[j+1] < target {
				j++
			}
			frac := 0.0
			if span := dist[j+1] - dist[j]; span > epsilon {
				// Steps are exact sub-curves of their piece, so the step-local
				// parameter maps linearly onto the raw parameter.
				t0 := float64(j%res) / float64(res)
				step := snap.pieces[j/res].Subsegment(t0, t0+1/float64(res))
				frac = SolveForArclen(step, target-dist[j], accuracy)
			}
			u = (float64(j) + frac) / last
		}
		snap.fixedRaw[k] = u
		snap.positions[k] = snap.PositionRaw(u)
	}
	snap.fixedRaw[0], snap.fixedRaw[samples-1] = 0, 1
	snap.positions[0] = snap.pieces[0].P0
	snap.positions[samples-1] = snap.pieces[pieces-1].P3

	if sp.normalType == Dynamic {
		snap.frames = snap.propagateFrames()
	}
	return snap
}
