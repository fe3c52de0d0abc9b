package bend

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// LinkState is the linking state of a segment's anchor.
type LinkState uint8

const (
	Unlinked LinkState = iota
	// LinkedToAnchor anchors share one world position with the other members
	// of their link group.
	LinkedToAnchor
	// LinkedToConnector anchors are pinned and oriented by a connector.
	LinkedToConnector
)

func (ls LinkState) String() string {
	switch ls {
	case Unlinked:
		return "unlinked"
	case LinkedToAnchor:
		return "linked to anchor"
	case LinkedToConnector:
		return "linked to connector"
	default:
		return fmt.Sprintf("LinkState(%d)", uint8(ls))
	}
}

// GroupID identifies a link group.
type GroupID uint64

// ConnectorID identifies a connector.
type ConnectorID uint64

// Connector is a fixed point and orientation in world space that pins the
// anchors attached to it. Rotation holds Euler angles in degrees. Attached
// segments get their handles laid along the connector's forward (+Z) axis,
// reversed if Mirror is set, and take the Z angle as their twist.
type Connector struct {
	Position Vec3
	Rotation Vec3
	Mirror   bool
}

// Forward returns the connector's forward axis in world space.
func (c Connector) Forward() Vec3 {
	fwd := RotateEuler3(c.Rotation).ApplyVector(AxisZ).NormalizeOr(AxisZ)
	if c.Mirror {
		fwd = fwd.Negate()
	}
	return fwd
}

type connectorEntry struct {
	Connector
	members []SegmentID
}

// Registry tracks the segments of a set of splines and the links between
// them. Segments are addressed by ID; link groups and connector memberships
// are kept as ID lists, never as references between segments.
//
// Moving an anchor through its spline propagates the new position to every
// other member of its group before the call returns.
type Registry struct {
	tolerance float64

	splines  []*Spline
	segments map[SegmentID]*Segment
	nextID   SegmentID

	groupOf   map[SegmentID]GroupID
	groups    map[GroupID][]SegmentID
	nextGroup GroupID

	connectors    map[ConnectorID]*connectorEntry
	pinned        map[SegmentID]ConnectorID
	nextConnector ConnectorID

	propagating bool
}

// NewRegistry returns an empty registry using the link tolerance of st.
func NewRegistry(st Settings) *Registry {
	return &Registry{
		tolerance:  st.LinkTolerance,
		segments:   map[SegmentID]*Segment{},
		groupOf:    map[SegmentID]GroupID{},
		groups:     map[GroupID][]SegmentID{},
		connectors: map[ConnectorID]*connectorEntry{},
		pinned:     map[SegmentID]ConnectorID{},
	}
}

// Register adds sp and all of its segments to the registry.
func (r *Registry) Register(sp *Spline) error {
	if sp.registry != nil {
		return ErrRegistered
	}
	sp.registry = r
	r.splines = append(r.splines, sp)
	for _, seg := range sp.segments {
		r.adopt(seg)
	}
	return nil
}

// Unregister removes sp from the registry, unlinking all of its segments.
func (r *Registry) Unregister(sp *Spline) {
	if sp.registry != r {
		return
	}
	for _, seg := range sp.segments {
		r.forget(seg)
	}
	sp.registry = nil
	r.splines = slices.DeleteFunc(r.splines, func(o *Spline) bool { return o == sp })
}

// Splines returns the registered splines.
func (r *Registry) Splines() []*Spline { return slices.Clone(r.splines) }

func (r *Registry) adopt(seg *Segment) {
	r.nextID++
	seg.id = r.nextID
	r.segments[seg.id] = seg
}

func (r *Registry) forget(seg *Segment) {
	if _, ok := r.segments[seg.id]; !ok {
		return
	}
	if r.LinkState(seg.id) != Unlinked {
		r.unlink(seg.id)
	}
	delete(r.segments, seg.id)
	seg.id = 0
}

// Lookup returns the spline and index of segment id.
func (r *Registry) Lookup(id SegmentID) (*Spline, int, error) {
	seg, ok := r.segments[id]
	if !ok {
		return nil, -1, fmt.Errorf("%w: %d", ErrUnknownSegment, id)
	}
	return seg.spline, seg.spline.index(seg), nil
}

// LinkState reports the linking state of segment id.
func (r *Registry) LinkState(id SegmentID) LinkState {
	if _, ok := r.pinned[id]; ok {
		return LinkedToConnector
	}
	if _, ok := r.groupOf[id]; ok {
		return LinkedToAnchor
	}
	return Unlinked
}

// LinkState reports the linking state of the segment. Segments of splines
// without a registry are always unlinked.
func (s Segment) LinkState() LinkState {
	if s.spline == nil || s.spline.registry == nil {
		return Unlinked
	}
	return s.spline.registry.LinkState(s.id)
}

func worldAnchor(seg *Segment) Vec3 {
	return seg.spline.transform.Apply(seg.Anchor)
}

// setWorldAnchor moves seg so that its anchor lies at the world point p.
func setWorldAnchor(seg *Segment, p Vec3) {
	seg.spline.moveAnchor(seg, seg.spline.transform.Invert().Apply(p))
}

// LinkToAnchor links all anchors lying within the link tolerance of the world
// point. Existing groups of those anchors are merged, and every member is
// moved exactly onto point. It returns the IDs of the resulting group.
//
// Fewer than two matching anchors is reported as [ErrNoAnchors] and leaves
// all state unchanged. Closing duplicates of looped splines and anchors held
// by connectors are never matched.
func (r *Registry) LinkToAnchor(point Vec3) ([]SegmentID, error) {
	var found []SegmentID
	for _, sp := range r.splines {
		for i, seg := range sp.segments {
			if sp.seam(i) || r.LinkState(seg.id) == LinkedToConnector {
				continue
			}
			if worldAnchor(seg).Distance(point) <= r.tolerance {
				found = append(found, seg.id)
			}
		}
	}
	if len(found) < 2 {
		return nil, warn(ErrNoAnchors, "point", point, "found", len(found))
	}

	members := map[SegmentID]struct{}{}
	for _, id := range found {
		members[id] = struct{}{}
		if gid, ok := r.groupOf[id]; ok {
			for _, m := range r.groups[gid] {
				members[m] = struct{}{}
			}
			delete(r.groups, gid)
		}
	}
	r.nextGroup++
	gid := r.nextGroup
	group := slices.Sorted(maps.Keys(members))
	r.groups[gid] = group
	for _, id := range group {
		r.groupOf[id] = gid
	}

	r.propagating = true
	for _, id := range group {
		setWorldAnchor(r.segments[id], point)
	}
	r.propagating = false

	Logger().Debug("linked anchors", "group", gid, "members", len(group), "point", point)
	return slices.Clone(group), nil
}

// Links returns the other members of segment id's link group.
func (r *Registry) Links(id SegmentID) []SegmentID {
	gid, ok := r.groupOf[id]
	if !ok {
		return nil
	}
	out := make([]SegmentID, 0, len(r.groups[gid])-1)
	for _, m := range r.groups[gid] {
		if m != id {
			out = append(out, m)
		}
	}
	return out
}

// Group returns the link group of segment id.
func (r *Registry) Group(id SegmentID) (GroupID, bool) {
	gid, ok := r.groupOf[id]
	return gid, ok
}

// Unlink removes segment id from its link group or connector. A group left
// with a single member is dissolved.
func (r *Registry) Unlink(id SegmentID) error {
	if _, ok := r.segments[id]; !ok {
		return warn(fmt.Errorf("%w: %d", ErrUnknownSegment, id))
	}
	if r.LinkState(id) == Unlinked {
		return warn(ErrNotLinked, "segment", id)
	}
	r.unlink(id)
	return nil
}

func (r *Registry) unlink(id SegmentID) {
	if cid, ok := r.pinned[id]; ok {
		delete(r.pinned, id)
		if c := r.connectors[cid]; c != nil {
			c.members = slices.DeleteFunc(c.members, func(m SegmentID) bool { return m == id })
		}
		return
	}
	gid := r.groupOf[id]
	delete(r.groupOf, id)
	rest := slices.DeleteFunc(r.groups[gid], func(m SegmentID) bool { return m == id })
	if len(rest) <= 1 {
		for _, m := range rest {
			delete(r.groupOf, m)
		}
		delete(r.groups, gid)
		return
	}
	r.groups[gid] = rest
}

func (r *Registry) checkMovable(seg *Segment) error {
	if cid, ok := r.pinned[seg.id]; ok {
		return warn(ErrPinned, "segment", seg.id, "connector", cid)
	}
	return nil
}

// propagate copies seg's world anchor onto every other member of its group.
func (r *Registry) propagate(seg *Segment) {
	if r.propagating {
		return
	}
	gid, ok := r.groupOf[seg.id]
	if !ok {
		return
	}
	r.propagating = true
	defer func() { r.propagating = false }()
	p := worldAnchor(seg)
	for _, id := range r.groups[gid] {
		if id != seg.id {
			setWorldAnchor(r.segments[id], p)
		}
	}
}

// Resync pulls every link group onto the position of its first member and
// reapplies all connectors. It is needed after changing the transform of a
// spline with linked anchors.
func (r *Registry) Resync() {
	for _, gid := range slices.Sorted(maps.Keys(r.groups)) {
		r.propagate(r.segments[r.groups[gid][0]])
	}
	for _, cid := range slices.Sorted(maps.Keys(r.connectors)) {
		r.applyConnector(r.connectors[cid])
	}
}

// AddConnector adds a connector and returns its ID.
func (r *Registry) AddConnector(c Connector) ConnectorID {
	r.nextConnector++
	r.connectors[r.nextConnector] = &connectorEntry{Connector: c}
	return r.nextConnector
}

// Connector returns connector id.
func (r *Registry) Connector(id ConnectorID) (Connector, bool) {
	c, ok := r.connectors[id]
	if !ok {
		return Connector{}, false
	}
	return c.Connector, true
}

// ConnectorMembers returns the segments attached to connector id.
func (r *Registry) ConnectorMembers(id ConnectorID) []SegmentID {
	if c, ok := r.connectors[id]; ok {
		return slices.Clone(c.members)
	}
	return nil
}

// MoveConnector replaces the position and rotation of connector id and
// re-derives all attached segments.
func (r *Registry) MoveConnector(id ConnectorID, c Connector) error {
	entry, ok := r.connectors[id]
	if !ok {
		return warn(fmt.Errorf("%w: id %d", ErrNoConnector, id))
	}
	entry.Connector = c
	r.applyConnector(entry)
	return nil
}

// RemoveConnector deletes connector id. Its segments become unlinked and
// keep their current geometry.
func (r *Registry) RemoveConnector(id ConnectorID) error {
	entry, ok := r.connectors[id]
	if !ok {
		return warn(fmt.Errorf("%w: id %d", ErrNoConnector, id))
	}
	for _, m := range entry.members {
		delete(r.pinned, m)
	}
	delete(r.connectors, id)
	return nil
}

// LinkToConnector attaches segment id to the connector nearest to the world
// point, within the link tolerance, and snaps the segment onto it.
func (r *Registry) LinkToConnector(id SegmentID, point Vec3) (ConnectorID, error) {
	seg, ok := r.segments[id]
	if !ok {
		return 0, warn(fmt.Errorf("%w: %d", ErrUnknownSegment, id))
	}
	if r.LinkState(id) != Unlinked {
		return 0, warn(ErrAlreadyLinked, "segment", id)
	}
	var (
		best     ConnectorID
		bestDist = math.Inf(1)
	)
	for _, cid := range slices.Sorted(maps.Keys(r.connectors)) {
		d := r.connectors[cid].Position.Distance(point)
		if d <= r.tolerance && d < bestDist {
			best, bestDist = cid, d
		}
	}
	if best == 0 {
		return 0, warn(ErrNoConnector, "point", point)
	}
	entry := r.connectors[best]
	entry.members = append(entry.members, id)
	r.pinned[id] = best
	r.applyTo(entry.Connector, seg)
	return best, nil
}

func (r *Registry) applyConnector(entry *connectorEntry) {
	for _, m := range entry.members {
		r.applyTo(entry.Connector, r.segments[m])
	}
}

// applyTo moves seg onto the connector and lays its handles along the
// connector's forward axis, keeping their distances from the anchor.
func (r *Registry) applyTo(c Connector, seg *Segment) {
	sp := seg.spline
	i := sp.index(seg)
	if i < 0 {
		return
	}
	inv := sp.transform.Invert()
	anchor := inv.Apply(c.Position)
	fwd := inv.ApplyVector(c.Forward()).NormalizeOr(AxisZ)
	da := seg.TangentA.Distance(seg.Anchor)
	db := seg.TangentB.Distance(seg.Anchor)

	seg.Anchor = anchor
	seg.TangentA = anchor.Add(fwd.Mul(da))
	seg.TangentB = anchor.Sub(fwd.Mul(db))
	seg.ZRotation = c.Rotation.Z
	seg.Interpolation = Bezier
	sp.syncSeam(i)
	sp.changed()
}
