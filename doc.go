// Package bend deforms meshes along 3D spline curves.
//
// A [Spline] is a chain of cubic Béziers through a list of [Segment]
// anchors. Each segment also carries the deformation parameters that apply
// around it: a twist about the curve, lateral scale, saddle skew, noise
// strength and a contrast that shapes how these ease into the next segment.
//
// # Parameters and distances
//
// Curves are evaluated at two kinds of parameters. The raw parameter u runs
// uniformly over the Bézier pieces, so that u * (number of pieces) selects
// a piece and its local t. The fixed parameter f is proportional to arc
// length. Splines keep an arc-length table, built by adaptive Legendre-Gauss
// quadrature, to convert between the two (see [Spline.RawToFixed] and
// [Spline.FixedToRaw]) and a table of positions at uniform fixed parameters
// so that [Spline.Position] is a constant time lookup.
//
// Objects are placed on a curve by distance: an object's local z coordinate
// is a distance along the curve, and x and y are offsets along the right and
// up axes of the [Frame] at that distance. Frames are either derived per
// query from a fixed reference axis ([Static3D], [Static2D]) or propagated
// along the curve as rotation-minimizing frames ([Dynamic]).
//
// # Caching
//
// Every edit of a spline bumps its version and rebuilds the derived tables
// before returning. The tables are published as an immutable [Snapshot],
// which is what deformation jobs read. Snapshots may be used concurrently
// and stay valid while the spline keeps changing.
//
// # Deformation
//
// A [Batch] collects the vertex buffers of [Object] values bent along one
// spline and deforms them in parallel jobs capped by a vertex budget.
// Vertex data never crosses between goroutines: every vertex is a pure
// function of the snapshot, the object's placement and its origin position.
//
// # Links and connectors
//
// A [Registry] tracks segments of several splines. Anchors at the same point
// can be linked so that moving one moves all of them, and anchors can be
// pinned to a [Connector], which also dictates the direction of their handles
// and their twist.
//
// # Logging
//
// The package logs through [log/slog]. It is silent unless a logger is
// installed with [SetLogger].
package bend
