package pathway

import (
	"fmt"

	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/model"
)

// Move translates an element. Groups move all their members; lines move
// their free points and waypoints while linked points stay with their
// targets. Anchors cannot be moved on their own.
func (d *Document) Move(id string, dx, dy float64) (Changes, error) {
	el, ok := d.Lookup(id)
	if !ok {
		return Changes{}, fmt.Errorf("element %s: %w", id, diag.ErrNotFound)
	}
	if el.Kind == model.KindAnchor {
		return Changes{}, fmt.Errorf("anchor %s follows its line: %w", id, diag.ErrInvalidParameter)
	}

	var moving []*model.Element
	d.collectMoving(el, &moving, map[string]bool{})
	set := make(map[string]bool, len(moving))
	for _, m := range moving {
		set[m.ID] = true
	}

	var ch Changes
	for _, m := range moving {
		d.translate(m, dx, dy, set)
		ch.add(m.ID)
	}
	return ch, nil
}

// collectMoving lists el and, for groups, all nested members once each.
func (d *Document) collectMoving(el *model.Element, out *[]*model.Element, seen map[string]bool) {
	if seen[el.ID] {
		return
	}
	seen[el.ID] = true
	*out = append(*out, el)
	if el.Kind == model.KindGroup {
		for _, m := range d.Members(el.ID) {
			d.collectMoving(m, out, seen)
		}
	}
}

func (d *Document) translate(el *model.Element, dx, dy float64, moving map[string]bool) {
	switch {
	case el.Kind == model.KindState:
		el.Bounds = el.Bounds.Translate(dx, dy)
		// A state dragged without its host takes a new place on the host.
		if el.State != nil && !moving[el.State.HostRef] {
			if host, ok := d.Lookup(el.State.HostRef); ok {
				el.State.RelX, el.State.RelY = geom.ToRelativeRotated(el.Bounds.Center, host.Bounds, host.Rotation)
			}
		}
	case el.Kind.Shaped(), el.Kind == model.KindGroup:
		el.Bounds = el.Bounds.Translate(dx, dy)
	case el.Kind == model.KindLine:
		for _, p := range el.Line.Points {
			if !p.Linked() {
				p.Pos = p.Pos.Add(geom.Pt(dx, dy))
			}
		}
		d.markDirty(el.ID)
	}
}

// Resize changes the extent of a shaped element around its center.
func (d *Document) Resize(id string, width, height float64) (Changes, error) {
	el, err := d.shaped(id)
	if err != nil {
		return Changes{}, err
	}
	if width < 0 || height < 0 {
		return Changes{}, fmt.Errorf("size %vx%v: %w", width, height, diag.ErrInvalidParameter)
	}
	el.Bounds.Width, el.Bounds.Height = width, height
	return Changes{Elements: []string{id}}, nil
}

// Rotate sets the rotation of a shaped element in degrees.
func (d *Document) Rotate(id string, degrees float64) (Changes, error) {
	el, err := d.shaped(id)
	if err != nil {
		return Changes{}, err
	}
	el.Rotation = degrees
	return Changes{Elements: []string{id}}, nil
}

func (d *Document) shaped(id string) (*model.Element, error) {
	el, ok := d.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("element %s: %w", id, diag.ErrNotFound)
	}
	if !el.Kind.Shaped() {
		return nil, fmt.Errorf("%s is a %s without own bounds: %w", id, el.Kind, diag.ErrInvalidParameter)
	}
	return el, nil
}

// MovePoint moves one point of a line. A linked endpoint slides over its
// target: its relative coordinates are re-derived and it stays linked,
// except on anchors, where it is unlinked. Interior points become
// preferred waypoints.
func (d *Document) MovePoint(lineID string, index int, pos geom.Point) (Changes, error) {
	line, err := d.line(lineID)
	if err != nil {
		return Changes{}, err
	}
	if index < 0 || index >= len(line.Points) {
		return Changes{}, fmt.Errorf("point %d of %s: %w", index, lineID, diag.ErrOutOfRange)
	}
	ch := Changes{Elements: []string{lineID}}
	p := line.Points[index]

	if t, ok := d.Target(p.Ref); ok && p.Linked() {
		if t.Kind == model.TargetAnchor {
			ch.Demoted = append(ch.Demoted, PointRef{LineID: lineID, Index: index, Target: p.Ref})
			d.unlinkPoint(line, p)
		} else {
			p.RelX, p.RelY = geom.ToRelativeRotated(pos, t.Bounds, t.Rotation)
		}
	}
	p.Pos = pos

	if index > 0 && index < len(line.Points)-1 {
		line.PreferredWaypoints = true
	}
	d.markDirty(lineID)
	return ch, nil
}

// SetWaypoints replaces the interior points of a line with preferred
// waypoints. Straight lines have none.
func (d *Document) SetWaypoints(lineID string, pts []geom.Point) (Changes, error) {
	line, err := d.line(lineID)
	if err != nil {
		return Changes{}, err
	}
	if !line.Routable() {
		return Changes{}, fmt.Errorf("line %s has fewer than two points: %w", lineID, diag.ErrStructuralViolation)
	}
	if line.Topology == model.TopologyStraight && len(pts) > 0 {
		return Changes{}, fmt.Errorf("straight line %s takes no waypoints: %w", lineID, diag.ErrInvalidParameter)
	}
	line.SetWaypoints(pts)
	line.PreferredWaypoints = len(pts) > 0
	d.markDirty(lineID)
	return Changes{Elements: []string{lineID}}, nil
}

// Link attaches an endpoint of a line to a target. The relative
// coordinates come from the point's current position, so linking does
// not move the point.
func (d *Document) Link(lineID string, index int, targetID string) (Changes, error) {
	line, err := d.line(lineID)
	if err != nil {
		return Changes{}, err
	}
	if index != 0 && index != len(line.Points)-1 {
		return Changes{}, fmt.Errorf("point %d of %s is not an endpoint: %w", index, lineID, diag.ErrInvalidParameter)
	}
	t, ok := d.Target(targetID)
	if !ok {
		if _, exists := d.Lookup(targetID); exists {
			return Changes{}, fmt.Errorf("%s cannot be linked: %w", targetID, diag.ErrInvalidParameter)
		}
		return Changes{}, fmt.Errorf("target %s: %w", targetID, diag.ErrNotFound)
	}
	if t.Kind == model.TargetAnchor && t.Anchor.Line == line {
		return Changes{}, fmt.Errorf("%s is an anchor of %s itself: %w", targetID, lineID, diag.ErrLinkCycle)
	}

	p := line.Points[index]
	d.refreshPoint(p)
	var relX, relY float64
	if t.Kind != model.TargetAnchor {
		relX, relY = geom.ToRelativeRotated(p.Pos, t.Bounds, t.Rotation)
	}
	if err := d.Attach(lineID, index, targetID, relX, relY); err != nil {
		return Changes{}, err
	}
	return Changes{Elements: []string{lineID}}, nil
}

// Unlink demotes an endpoint to a free point at its current position.
func (d *Document) Unlink(lineID string, index int) (Changes, error) {
	line, err := d.line(lineID)
	if err != nil {
		return Changes{}, err
	}
	if index < 0 || index >= len(line.Points) {
		return Changes{}, fmt.Errorf("point %d of %s: %w", index, lineID, diag.ErrOutOfRange)
	}
	p := line.Points[index]
	if !p.Linked() {
		return Changes{}, nil
	}
	ch := Changes{
		Elements: []string{lineID},
		Demoted:  []PointRef{{LineID: lineID, Index: index, Target: p.Ref}},
	}
	d.refreshPoint(p)
	d.unlinkPoint(line, p)
	d.markDirty(lineID)
	return ch, nil
}

func (d *Document) unlinkPoint(line *model.Line, p *model.LinePoint) {
	old := p.Ref
	p.Unlink()
	d.dropEdgeIfUnused(old, line)
}

// SetTopology changes the routing style of a line and drops its
// waypoints.
func (d *Document) SetTopology(lineID string, topology model.Topology) (Changes, error) {
	line, err := d.line(lineID)
	if err != nil {
		return Changes{}, err
	}
	if _, err := model.ParseTopology(string(topology)); err != nil {
		return Changes{}, fmt.Errorf("%w: %v", diag.ErrInvalidParameter, err)
	}
	line.Topology = topology
	line.SetWaypoints(nil)
	line.PreferredWaypoints = false
	d.markDirty(lineID)
	return Changes{Elements: []string{lineID}}, nil
}

// AddAnchor creates an anchor at fraction position of a line's path.
func (d *Document) AddAnchor(lineID string, position float64, shape model.AnchorShape) (*model.Anchor, Changes, error) {
	if position < 0 || position > 1 {
		return nil, Changes{}, fmt.Errorf("anchor position %v: %w", position, diag.ErrOutOfRange)
	}
	if _, err := d.line(lineID); err != nil {
		return nil, Changes{}, err
	}
	if shape == "" {
		shape = model.AnchorNone
	}
	a := &model.Anchor{ID: d.GenerateID("anchor"), Position: position, Shape: shape}
	if err := d.RegisterAnchor(lineID, a); err != nil {
		d.ReleaseIDs(a.ID)
		return nil, Changes{}, err
	}
	return a, Changes{Elements: []string{a.ID}}, nil
}

// SetAnchorPosition moves an anchor along its line.
func (d *Document) SetAnchorPosition(anchorID string, position float64) (Changes, error) {
	if position < 0 || position > 1 {
		return Changes{}, fmt.Errorf("anchor position %v: %w", position, diag.ErrOutOfRange)
	}
	a, err := d.anchor(anchorID)
	if err != nil {
		return Changes{}, err
	}
	a.Position = position
	return Changes{Elements: []string{anchorID}}, nil
}

// RemoveAnchor deletes an anchor. Lines linked to it keep their
// endpoints where the anchor last was.
func (d *Document) RemoveAnchor(anchorID string) (Changes, error) {
	a, err := d.anchor(anchorID)
	if err != nil {
		return Changes{}, err
	}
	var ch Changes
	d.removeAnchor(a, &ch)
	return ch, nil
}

// AddElement authors a new shaped element or group. An empty id is
// generated.
func (d *Document) AddElement(kind model.ElementKind, id string, bounds geom.Rect) (*model.Element, Changes, error) {
	if !kind.Shaped() && kind != model.KindGroup {
		return nil, Changes{}, fmt.Errorf("cannot author a %s here: %w", kind, diag.ErrInvalidParameter)
	}
	if id == "" {
		id = d.GenerateID("id")
	}
	el := &model.Element{ID: id, Kind: kind, Bounds: bounds}
	if err := d.Register(el); err != nil {
		return nil, Changes{}, err
	}
	return el, Changes{Elements: []string{id}}, nil
}

// AddLine authors a new line through free points.
func (d *Document) AddLine(id string, topology model.Topology, pts ...geom.Point) (*model.Element, Changes, error) {
	if len(pts) < 2 {
		return nil, Changes{}, fmt.Errorf("a line needs two points, got %d: %w", len(pts), diag.ErrStructuralViolation)
	}
	if id == "" {
		id = d.GenerateID("line")
	}
	line := &model.Line{Topology: topology}
	for _, p := range pts {
		line.Points = append(line.Points, &model.LinePoint{Pos: p})
	}
	line.PreferredWaypoints = len(pts) > 2 && topology != model.TopologyStraight
	el := &model.Element{ID: id, Kind: model.KindLine, Line: line}
	if err := d.Register(el); err != nil {
		return nil, Changes{}, err
	}
	return el, Changes{Elements: []string{id}}, nil
}

// Delete removes an element. Everything that referenced it is demoted to
// free geometry at its last resolved position: line points become free
// points, states keep their place, members leave the group. Deleting a
// line deletes its anchors the same way.
func (d *Document) Delete(id string) (Changes, error) {
	el, ok := d.Lookup(id)
	if !ok {
		return Changes{}, fmt.Errorf("element %s: %w", id, diag.ErrNotFound)
	}

	var ch Changes
	switch el.Kind {
	case model.KindAnchor:
		return d.RemoveAnchor(id)
	case model.KindLine:
		for _, a := range append([]*model.Anchor(nil), el.Line.Anchors...) {
			d.removeAnchor(a, &ch)
		}
		delete(d.cache, id)
	}

	d.demoteDependents(id, &ch)
	if el.GroupRef != "" {
		ch.add(el.GroupRef)
	}

	d.refs.RemoveNode(id)
	d.reg.Unregister(id)
	d.removeFromArena(id)

	logging.Debug("Deleted element", "id", id, "kind", el.Kind, "demoted", len(ch.Demoted))
	return ch, nil
}

func (d *Document) removeAnchor(a *model.Anchor, ch *Changes) {
	d.demoteDependents(a.ID, ch)
	line := a.Line
	for i, other := range line.Anchors {
		if other == a {
			line.Anchors = append(line.Anchors[:i], line.Anchors[i+1:]...)
			break
		}
	}
	d.refs.RemoveNode(a.ID)
	d.reg.Unregister(a.ID)
}

// demoteDependents cuts every reference to id. Positions are refreshed
// first so that points keep their last resolved coordinates.
func (d *Document) demoteDependents(id string, ch *Changes) {
	for _, depID := range d.refs.Dependents(id) {
		dep, ok := d.Lookup(depID)
		if !ok {
			continue
		}
		switch {
		case dep.Kind == model.KindLine:
			for i, p := range dep.Line.Points {
				if p.Ref != id {
					continue
				}
				d.refreshPoint(p)
				ch.Demoted = append(ch.Demoted, PointRef{LineID: depID, Index: i, Target: id})
				p.Unlink()
			}
			d.markDirty(depID)
			ch.add(depID)
		case dep.Kind == model.KindState && dep.State != nil && dep.State.HostRef == id:
			dep.State = nil
		case dep.Kind == model.KindGroup:
			// Edges into a group come from members, not from references.
		}
	}
	for _, memberID := range d.refs.Dependencies(id) {
		if m, ok := d.Lookup(memberID); ok && m.GroupRef == id {
			m.GroupRef = ""
		}
	}
}
