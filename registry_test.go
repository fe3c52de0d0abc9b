package bend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linkedPair(t *testing.T) (*Registry, *Spline, *Spline) {
	t.Helper()
	r := NewRegistry(DefaultSettings())
	a := straightSpline()
	b := NewSpline([]Segment{
		NewSegmentWithTangents(V3(0, 0, 10), V3(1, 0, 10), V3(-1, 0, 10)),
		NewSegmentWithTangents(V3(5, 0, 10), V3(6, 0, 10), V3(4, 0, 10)),
	})
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	return r, a, b
}

func TestRegistryLinkMovesMembers(t *testing.T) {
	r, a, b := linkedPair(t)
	group, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)
	require.ElementsMatch(t, []SegmentID{a.Segment(1).ID(), b.Segment(0).ID()}, group)

	assert.Equal(t, LinkedToAnchor, a.Segment(1).LinkState())
	assert.Equal(t, LinkedToAnchor, b.Segment(0).LinkState())
	assert.Equal(t, Unlinked, a.Segment(0).LinkState())

	require.NoError(t, a.SetAnchor(1, V3(1, 0, 10)))
	assert.Equal(t, V3(1, 0, 10), a.Segment(1).Anchor)
	assertNear(t, b.Segment(0).Anchor, V3(1, 0, 10), 1e-12)
	// Handles travel with the anchor.
	assertNear(t, b.Segment(0).TangentA, V3(2, 0, 10), 1e-12)
	// The linked spline's tables were rebuilt.
	assertNear(t, b.Position(0), V3(1, 0, 10), 1e-12)
	assert.True(t, b.Valid())
}

func TestRegistryLinksSymmetric(t *testing.T) {
	r, a, b := linkedPair(t)
	c := NewSpline([]Segment{NewSegment(V3(0, 0, 10)), NewSegment(V3(0, 5, 10))})
	require.NoError(t, r.Register(c))
	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)

	ids := []SegmentID{a.Segment(1).ID(), b.Segment(0).ID(), c.Segment(0).ID()}
	for _, x := range ids {
		links := r.Links(x)
		assert.Len(t, links, 2)
		assert.NotContains(t, links, x)
		for _, y := range links {
			assert.Contains(t, r.Links(y), x, "link %d -> %d is not symmetric", x, y)
		}
	}

	require.NoError(t, c.SetAnchor(0, V3(2, 2, 2)))
	for _, id := range ids {
		sp, i, err := r.Lookup(id)
		require.NoError(t, err)
		assertNear(t, sp.Segment(i).Anchor, V3(2, 2, 2), 1e-12)
	}
}

func TestRegistryLinkWorldSpace(t *testing.T) {
	r := NewRegistry(DefaultSettings())
	a := straightSpline()
	b := straightSpline(WithTransform(Translate3(V3(0, 0, 10))))
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))

	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)
	require.NoError(t, a.SetAnchor(1, V3(0, 3, 10)))
	assertNear(t, b.Segment(0).Anchor, V3(0, 3, 0), 1e-12)
	assertNear(t, b.WorldAnchor(0), a.WorldAnchor(1), 1e-12)
}

func TestRegistryLinkTooFew(t *testing.T) {
	r, a, _ := linkedPair(t)
	before := a.Segment(0)
	_, err := r.LinkToAnchor(V3(0, 0, 0))
	assert.ErrorIs(t, err, ErrNoAnchors)
	assert.Equal(t, Unlinked, a.Segment(0).LinkState())
	assert.Equal(t, before.Anchor, a.Segment(0).Anchor)
}

func TestRegistryLinkSnapsWithinTolerance(t *testing.T) {
	r, a, b := linkedPair(t)
	require.NoError(t, b.SetAnchor(0, V3(0, 0.0005, 10)))
	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, V3(0, 0, 10), a.Segment(1).Anchor)
	assert.Equal(t, V3(0, 0, 10), b.Segment(0).Anchor)
}

func TestRegistryLinkMergesGroups(t *testing.T) {
	r, a, b := linkedPair(t)
	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)
	c := NewSpline([]Segment{NewSegment(V3(0, 0, 10)), NewSegment(V3(0, 5, 10))})
	require.NoError(t, r.Register(c))
	group, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)
	assert.Len(t, group, 3)
	ga, _ := r.Group(a.Segment(1).ID())
	gc, _ := r.Group(c.Segment(0).ID())
	gb, _ := r.Group(b.Segment(0).ID())
	assert.Equal(t, ga, gc)
	assert.Equal(t, ga, gb)
}

func TestRegistryUnlink(t *testing.T) {
	r, a, b := linkedPair(t)
	c := NewSpline([]Segment{NewSegment(V3(0, 0, 10)), NewSegment(V3(0, 5, 10))})
	require.NoError(t, r.Register(c))
	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)

	idA, idB, idC := a.Segment(1).ID(), b.Segment(0).ID(), c.Segment(0).ID()
	require.NoError(t, r.Unlink(idC))
	assert.Equal(t, Unlinked, r.LinkState(idC))
	assert.ElementsMatch(t, []SegmentID{idB}, r.Links(idA))
	assert.ElementsMatch(t, []SegmentID{idA}, r.Links(idB))

	// Moving an unlinked anchor leaves the group alone.
	require.NoError(t, c.SetAnchor(0, V3(9, 9, 9)))
	assert.Equal(t, V3(0, 0, 10), a.Segment(1).Anchor)

	// A group of one dissolves.
	require.NoError(t, r.Unlink(idA))
	assert.Equal(t, Unlinked, r.LinkState(idB))
	assert.Empty(t, r.Links(idB))

	assert.ErrorIs(t, r.Unlink(idA), ErrNotLinked)
	assert.ErrorIs(t, r.Unlink(9999), ErrUnknownSegment)
}

func TestRegistryRemoveLinkedSegment(t *testing.T) {
	r, a, b := linkedPair(t)
	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)
	idB := b.Segment(0).ID()
	require.NoError(t, a.Remove(1))
	assert.Equal(t, Unlinked, r.LinkState(idB))
	_, _, err = r.Lookup(idB)
	require.NoError(t, err)
}

func TestRegistryUnregister(t *testing.T) {
	r, a, b := linkedPair(t)
	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)
	idB := b.Segment(0).ID()
	r.Unregister(a)
	assert.Nil(t, a.Registry())
	assert.Equal(t, SegmentID(0), a.Segment(1).ID())
	assert.Equal(t, Unlinked, r.LinkState(idB))
	assert.Len(t, r.Splines(), 1)
	assert.ErrorIs(t, r.Register(b), ErrRegistered)
}

func TestRegistryLoopSeamExcluded(t *testing.T) {
	r := NewRegistry(DefaultSettings())
	loop := loopSpline()
	other := NewSpline([]Segment{NewSegment(V3(0, 0, 0)), NewSegment(V3(0, -5, 0))})
	require.NoError(t, r.Register(loop))
	require.NoError(t, r.Register(other))

	group, err := r.LinkToAnchor(V3(0, 0, 0))
	require.NoError(t, err)
	assert.ElementsMatch(t, []SegmentID{loop.Segment(0).ID(), other.Segment(0).ID()}, group)

	// Editing the closing duplicate moves the group too.
	require.NoError(t, loop.SetAnchor(loop.Len()-1, V3(0, 1, 0)))
	assertNear(t, other.Segment(0).Anchor, V3(0, 1, 0), 1e-12)
	assertNear(t, loop.Segment(0).Anchor, V3(0, 1, 0), 1e-12)
}

func TestConnectorRotationZ(t *testing.T) {
	r, a, _ := linkedPair(t)
	seg := a.Segment(1)
	da := seg.TangentA.Distance(seg.Anchor)
	db := seg.TangentB.Distance(seg.Anchor)

	cid := r.AddConnector(Connector{Position: V3(0, 0, 10), Rotation: V3(0, 0, 90)})
	got, err := r.LinkToConnector(seg.ID(), V3(0, 0, 10))
	require.NoError(t, err)
	assert.Equal(t, cid, got)
	assert.Equal(t, LinkedToConnector, r.LinkState(seg.ID()))

	seg = a.Segment(1)
	assert.Equal(t, 90.0, seg.ZRotation)
	assertNear(t, seg.TangentA, V3(0, 0, 10+da), 1e-6)
	assertNear(t, seg.TangentB, V3(0, 0, 10-db), 1e-6)
	assertNear(t, a.Frame(1).Right, AxisY, 1e-6)
}

func TestConnectorRotationY(t *testing.T) {
	r, a, _ := linkedPair(t)
	seg := a.Segment(1)
	da := seg.TangentA.Distance(seg.Anchor)
	db := seg.TangentB.Distance(seg.Anchor)

	r.AddConnector(Connector{Position: V3(0, 0, 10), Rotation: V3(0, 90, 0)})
	_, err := r.LinkToConnector(seg.ID(), V3(0, 0, 10.0005))
	require.NoError(t, err)

	seg = a.Segment(1)
	fwd := seg.TangentA.Sub(seg.Anchor)
	assertNear(t, fwd, V3(da, 0, 0), 1e-5)
	assertNear(t, seg.TangentB.Sub(seg.Anchor), V3(-db, 0, 0), 1e-5)
	assert.InDelta(t, da, fwd.Hypot(), 1e-9)
}

func TestConnectorMirrorAndMove(t *testing.T) {
	r, a, _ := linkedPair(t)
	id := a.Segment(1).ID()
	cid := r.AddConnector(Connector{Position: V3(0, 0, 10), Mirror: true})
	_, err := r.LinkToConnector(id, V3(0, 0, 10))
	require.NoError(t, err)
	seg := a.Segment(1)
	assert.Less(t, seg.TangentA.Z, seg.Anchor.Z)

	require.NoError(t, r.MoveConnector(cid, Connector{Position: V3(2, 0, 12), Rotation: V3(0, 0, 45)}))
	seg = a.Segment(1)
	assertNear(t, seg.Anchor, V3(2, 0, 12), 1e-6)
	assert.Equal(t, 45.0, seg.ZRotation)
	assert.Greater(t, seg.TangentA.Z, seg.Anchor.Z)
	assert.Equal(t, []SegmentID{id}, r.ConnectorMembers(cid))
}

func TestConnectorPinsAnchor(t *testing.T) {
	r, a, _ := linkedPair(t)
	id := a.Segment(1).ID()
	r.AddConnector(Connector{Position: V3(0, 0, 10)})
	_, err := r.LinkToConnector(id, V3(0, 0, 10))
	require.NoError(t, err)

	v := a.Version()
	err = a.SetAnchor(1, V3(5, 5, 5))
	assert.ErrorIs(t, err, ErrPinned)
	assert.Equal(t, V3(0, 0, 10), a.Segment(1).Anchor)
	assert.Equal(t, v, a.Version())

	// Non-positional edits are allowed.
	require.NoError(t, a.Update(1, func(seg *Segment) { seg.Scale = Lat(2, 2) }))

	_, err = r.LinkToConnector(id, V3(0, 0, 10))
	assert.ErrorIs(t, err, ErrAlreadyLinked)
	_, err = r.LinkToAnchor(V3(0, 0, 10))
	assert.ErrorIs(t, err, ErrNoAnchors)
}

func TestConnectorErrors(t *testing.T) {
	r, a, _ := linkedPair(t)
	id := a.Segment(0).ID()
	r.AddConnector(Connector{Position: V3(0, 0, 10)})
	_, err := r.LinkToConnector(id, V3(3, 3, 3))
	assert.ErrorIs(t, err, ErrNoConnector)
	_, err = r.LinkToConnector(12345, V3(0, 0, 10))
	assert.ErrorIs(t, err, ErrUnknownSegment)
	assert.ErrorIs(t, r.MoveConnector(77, Connector{}), ErrNoConnector)
	assert.ErrorIs(t, r.RemoveConnector(77), ErrNoConnector)
}

func TestConnectorRemove(t *testing.T) {
	r, a, _ := linkedPair(t)
	id := a.Segment(1).ID()
	cid := r.AddConnector(Connector{Position: V3(0, 0, 10)})
	_, err := r.LinkToConnector(id, V3(0, 0, 10))
	require.NoError(t, err)
	require.NoError(t, r.RemoveConnector(cid))
	assert.Equal(t, Unlinked, r.LinkState(id))
	_, ok := r.Connector(cid)
	assert.False(t, ok)
	require.NoError(t, a.SetAnchor(1, V3(1, 1, 1)))
}

func TestRegistryResync(t *testing.T) {
	r := NewRegistry(DefaultSettings())
	a := straightSpline()
	b := straightSpline(WithTransform(Translate3(V3(0, 0, 10))))
	require.NoError(t, r.Register(a))
	require.NoError(t, r.Register(b))
	_, err := r.LinkToAnchor(V3(0, 0, 10))
	require.NoError(t, err)

	b.SetTransform(Translate3(V3(0, 0, 11)))
	r.Resync()
	assertNear(t, b.WorldAnchor(0), a.WorldAnchor(1), 1e-12)
}
