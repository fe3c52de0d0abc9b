package bend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func assertNear(t *testing.T, got, want Vec3, epsilon float64) {
	t.Helper()
	if d := got.Sub(want).Hypot(); d > epsilon {
		t.Fatalf("got %s, expected %s", got, want)
	}
}

func straightSpline(opts ...SplineOption) *Spline {
	return NewSpline([]Segment{
		NewSegmentWithTangents(V3(0, 0, 0), V3(0, 0, 10.0/3), V3(0, 0, -10.0/3)),
		NewSegmentWithTangents(V3(0, 0, 10), V3(0, 0, 40.0/3), V3(0, 0, 20.0/3)),
	}, opts...)
}

func curvySpline(opts ...SplineOption) *Spline {
	return NewSpline([]Segment{
		NewSegmentWithTangents(V3(0, 0, 0), V3(2, 1, 3), V3(-2, -1, -3)),
		NewSegmentWithTangents(V3(5, 2, 8), V3(8, 2, 10), V3(2, 2, 6)),
		NewSegmentWithTangents(V3(6, -1, 16), V3(6, -2, 19), V3(6, 0, 13)),
	}, opts...)
}
