package pathway

import (
	"fmt"

	"github.com/ritzau/pathlink/pkg/connector"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/model"
)

// Shape returns the current geometry of a line, recomputing it first if
// it is dirty.
func (d *Document) Shape(lineID string) (connector.Shape, error) {
	line, err := d.line(lineID)
	if err != nil {
		return connector.Shape{}, err
	}
	return d.shapeOf(line), nil
}

// PointAtFraction returns the point at fraction t along a line's path.
func (d *Document) PointAtFraction(lineID string, t float64) (geom.Point, error) {
	if t < 0 || t > 1 {
		return geom.Point{}, fmt.Errorf("fraction %v: %w", t, diag.ErrOutOfRange)
	}
	line, err := d.line(lineID)
	if err != nil {
		return geom.Point{}, err
	}
	return d.pointOnLine(line, t), nil
}

// AnchorPosition returns the absolute position of an anchor, derived from
// its line's current path.
func (d *Document) AnchorPosition(anchorID string) (geom.Point, error) {
	a, err := d.anchor(anchorID)
	if err != nil {
		return geom.Point{}, err
	}
	return d.pointOnLine(a.Line, a.Position), nil
}

// Bounds returns the current bounding box of an element. Groups are
// bounded by their members, lines by their points.
func (d *Document) Bounds(id string) (geom.Rect, error) {
	el, ok := d.Lookup(id)
	if !ok {
		return geom.Rect{}, fmt.Errorf("element %s: %w", id, diag.ErrNotFound)
	}
	switch {
	case el.Kind.Shaped():
		return el.Bounds, nil
	case el.Kind == model.KindGroup:
		return d.groupBounds(el, map[string]bool{}), nil
	case el.Kind == model.KindLine:
		return d.lineBounds(el.Line), nil
	default:
		p, _ := d.AnchorPosition(id)
		return geom.Rect{Center: p}, nil
	}
}

// Target resolves a link target to its tagged form.
func (d *Document) Target(id string) (model.Target, bool) {
	el, ok := d.Lookup(id)
	if !ok {
		return model.Target{}, false
	}
	switch {
	case el.Kind == model.KindState:
		return model.Target{Kind: model.TargetState, ID: id, Bounds: el.Bounds, Rotation: el.Rotation}, true
	case el.Kind.Shaped():
		return model.Target{Kind: model.TargetShape, ID: id, Bounds: el.Bounds, Rotation: el.Rotation}, true
	case el.Kind == model.KindGroup:
		return model.Target{Kind: model.TargetGroup, ID: id, Bounds: d.groupBounds(el, map[string]bool{})}, true
	case el.Kind == model.KindAnchor:
		return model.Target{Kind: model.TargetAnchor, ID: id, Anchor: el.Anchor}, true
	}
	return model.Target{}, false
}

func (d *Document) shapeOf(line *model.Line) connector.Shape {
	c := d.cache[line.ID]
	if c == nil {
		return connector.Shape{}
	}
	if c.state == stateDirty {
		d.recompute(line)
	}
	// A line being computed further up the stack answers with its last
	// path; this is what ends cyclic anchor chains.
	return c.shape
}

func (d *Document) pointOnLine(line *model.Line, t float64) geom.Point {
	s := d.shapeOf(line)
	if s.Routable() {
		return s.PointAtFraction(t)
	}
	if len(line.Points) > 0 {
		return line.Points[0].Pos
	}
	return geom.Point{}
}

func (d *Document) recompute(line *model.Line) {
	c := d.cache[line.ID]
	c.state = stateComputing
	if d.pass != nil {
		d.pass.recomputed = append(d.pass.recomputed, line.ID)
	}

	if !line.Routable() {
		c.shape = connector.Shape{Topology: line.Topology}
		if len(line.Points) == 1 {
			c.shape.Start = line.Points[0].Pos
			c.shape.End = line.Points[0].Pos
		}
		c.state = stateClean
		return
	}

	for _, p := range line.Points {
		d.refreshPoint(p)
	}

	start, end := line.Start(), line.End()
	in := connector.Input{
		Topology: line.Topology,
		Start:    d.endpoint(start, end, true),
		End:      d.endpoint(end, start, false),
	}
	if line.Topology == model.TopologyCurved || line.PreferredWaypoints {
		in.Waypoints = line.Waypoints()
	}

	shape := connector.Compute(in, d.opts.Policy)
	switch line.Topology {
	case model.TopologyElbow:
		if !shape.Reused {
			if line.PreferredWaypoints {
				logging.Trace("Discarding preferred waypoints", "line", line.ID, "stored", len(in.Waypoints), "needed", len(shape.Waypoints))
			}
			line.SetWaypoints(shape.Waypoints)
			line.PreferredWaypoints = false
		}
	case model.TopologyStraight:
		if len(line.Points) > 2 {
			line.SetWaypoints(nil)
		}
	}

	c.shape = shape
	c.state = stateClean
}

// refreshPoint re-derives the absolute position of a linked point. A
// point whose target is gone keeps its last position.
func (d *Document) refreshPoint(p *model.LinePoint) {
	if !p.Linked() {
		return
	}
	if pos, ok := d.resolvePoint(p); ok {
		p.Pos = pos
	}
}

func (d *Document) resolvePoint(p *model.LinePoint) (geom.Point, bool) {
	t, ok := d.Target(p.Ref)
	if !ok {
		return geom.Point{}, false
	}
	if t.Kind == model.TargetAnchor {
		return d.pointOnLine(t.Anchor.Line, t.Anchor.Position), true
	}
	return geom.ToAbsoluteRotated(p.RelX, p.RelY, t.Bounds, t.Rotation), true
}

// endpoint builds the engine view of one end of a line.
func (d *Document) endpoint(p, far *model.LinePoint, start bool) connector.Endpoint {
	q := connector.SideQuery{Kind: connector.FreeEndpoint, Start: start}

	if t, ok := d.Target(p.Ref); ok {
		if t.Kind == model.TargetAnchor {
			host := t.Anchor.Line
			hostShape := d.shapeOf(host)
			q.Anchor = p.Pos
			q.FarEnd = far.Pos
			if host.Topology == model.TopologyElbow {
				q.Kind = connector.ElbowAnchorEndpoint
				q.HostSegment, _ = hostShape.SegmentAtFraction(t.Anchor.Position)
			} else {
				q.Kind = connector.AnchorEndpoint
				q.HostTangent = hostShape.TangentAtFraction(t.Anchor.Position)
			}
		} else {
			q.Kind = connector.ShapeEndpoint
			q.RelX, q.RelY = p.RelX, p.RelY
		}
	}

	return connector.Endpoint{
		Point: p.Pos,
		Side:  connector.InferSide(q, d.opts.Policy),
		Free:  q.Kind == connector.FreeEndpoint,
		Gap:   d.opts.Gaps.Gap(p.ArrowHead),
	}
}

// groupBounds is the union of the members' bounds grown by the group
// margin. seen guards against nesting cycles.
func (d *Document) groupBounds(g *model.Element, seen map[string]bool) geom.Rect {
	if seen[g.ID] {
		return g.Bounds
	}
	seen[g.ID] = true

	var (
		bounds geom.Rect
		found  bool
	)
	for _, m := range d.Members(g.ID) {
		var b geom.Rect
		switch {
		case m.Kind.Shaped():
			b = m.Bounds
		case m.Kind == model.KindGroup:
			if seen[m.ID] {
				continue
			}
			b = d.groupBounds(m, seen)
		case m.Kind == model.KindLine:
			if len(m.Line.Points) == 0 {
				continue
			}
			b = d.lineBounds(m.Line)
		default:
			continue
		}
		if !found {
			bounds, found = b, true
		} else {
			bounds = bounds.Union(b)
		}
	}
	if !found {
		return g.Bounds
	}
	return bounds.Grow(d.opts.GroupMargin)
}

func (d *Document) lineBounds(line *model.Line) geom.Rect {
	pts := make([]geom.Point, 0, len(line.Points))
	for _, p := range line.Points {
		pts = append(pts, p.Pos)
	}
	return geom.BoundsOf(pts...)
}

// placeState moves a state to its position on its host.
func (d *Document) placeState(el *model.Element) {
	if el.State == nil || el.State.HostRef == "" {
		return
	}
	host, ok := d.Lookup(el.State.HostRef)
	if !ok || !host.Kind.Shaped() {
		return
	}
	el.Bounds.Center = geom.ToAbsoluteRotated(el.State.RelX, el.State.RelY, host.Bounds, host.Rotation)
}
