package bend

import (
	"fmt"
	"math"
)

// SnapMode selects what an object's bounds snap to.
type SnapMode uint8

const (
	SnapNone SnapMode = iota
	// SnapToControlPoints snaps to the distances of the spline's anchors.
	SnapToControlPoints
	// SnapToOtherObjects snaps to the bounds of neighbouring objects on the
	// same spline.
	SnapToOtherObjects
)

func (m SnapMode) String() string {
	switch m {
	case SnapNone:
		return "none"
	case SnapToControlPoints:
		return "control points"
	case SnapToOtherObjects:
		return "other objects"
	default:
		return fmt.Sprintf("SnapMode(%d)", uint8(m))
	}
}

// ZRange is an interval of distances along a curve.
type ZRange struct {
	Min, Max float64
}

func (r ZRange) Len() float64 { return r.Max - r.Min }

func (r ZRange) shift(d float64) ZRange { return ZRange{r.Min + d, r.Max + d} }

// SnapData is the snapping result of one object. Start and End are the
// distances the object's bounds are moved to, valid if StartOK or EndOK is
// set. Offset is a user offset added after snapping.
type SnapData struct {
	Start, End     float64
	StartOK, EndOK bool
	Offset         float64
}

// ComputeSnap finds snap targets for an object occupying bounds. The start
// target is the nearest candidate at or before bounds.Min within
// startThreshold; the end target the nearest candidate at or after
// bounds.Max within endThreshold.
//
// For SnapToControlPoints the candidates are the anchor distances of snap.
// For SnapToOtherObjects the ends of others are start candidates and their
// starts are end candidates.
func ComputeSnap(mode SnapMode, bounds ZRange, snap *Snapshot, others []ZRange, startThreshold, endThreshold float64) SnapData {
	var starts, ends []float64
	switch mode {
	case SnapToControlPoints:
		starts = snap.ControlPoints()
		ends = starts
	case SnapToOtherObjects:
		for _, o := range others {
			starts = append(starts, o.Max)
			ends = append(ends, o.Min)
		}
	default:
		return SnapData{}
	}

	var sd SnapData
	best := math.Inf(1)
	for _, c := range starts {
		if d := bounds.Min - c; d >= 0 && d <= startThreshold && d < best {
			best, sd.Start, sd.StartOK = d, c, true
		}
	}
	best = math.Inf(1)
	for _, c := range ends {
		if d := c - bounds.Max; d >= 0 && d <= endThreshold && d < best {
			best, sd.End, sd.EndOK = d, c, true
		}
	}
	return sd
}

// remap maps a distance of an object occupying bounds onto its snapped
// position. Snapping both sides stretches the object between its targets.
func (sd SnapData) remap(z float64, bounds ZRange) float64 {
	switch {
	case sd.StartOK && sd.EndOK && bounds.Len() > epsilon:
		z = sd.Start + (z-bounds.Min)*(sd.End-sd.Start)/bounds.Len()
	case sd.StartOK:
		z += sd.Start - bounds.Min
	case sd.EndOK:
		z += sd.End - bounds.Max
	}
	return z + sd.Offset
}
