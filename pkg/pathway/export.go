package pathway

import "github.com/ritzau/pathlink/pkg/model"

// Export returns the persisted form of the document. Dirty lines are
// recomputed first so linked points carry current coordinates. Elbow
// lines write their current waypoints, which become preferred waypoints
// when the document is loaded again.
func (d *Document) Export() *model.RawDocument {
	doc := &model.RawDocument{Name: d.Name}
	for _, el := range d.elements {
		doc.Elements = append(doc.Elements, d.exportElement(el))
	}
	return doc
}

func (d *Document) exportElement(el *model.Element) model.RawElement {
	raw := model.RawElement{
		ID:       el.ID,
		Kind:     el.Kind,
		Name:     el.Name,
		GroupRef: el.GroupRef,
	}

	if el.Kind != model.KindLine {
		raw.X, raw.Y = el.Bounds.Center.X, el.Bounds.Center.Y
		raw.Width, raw.Height = el.Bounds.Width, el.Bounds.Height
		raw.Rotation = el.Rotation
	}
	if el.State != nil {
		raw.GraphRef = el.State.HostRef
		raw.RelX, raw.RelY = el.State.RelX, el.State.RelY
	}
	if el.Kind != model.KindLine {
		return raw
	}

	line := el.Line
	d.shapeOf(line)
	raw.Topology = line.Topology
	for _, p := range line.Points {
		raw.Points = append(raw.Points, model.RawPoint{
			X:         p.Pos.X,
			Y:         p.Pos.Y,
			GraphRef:  p.Ref,
			RelX:      p.RelX,
			RelY:      p.RelY,
			ArrowHead: p.ArrowHead,
		})
	}
	for _, a := range line.Anchors {
		raw.Anchors = append(raw.Anchors, model.RawAnchor{ID: a.ID, Position: a.Position, Shape: a.Shape})
	}
	return raw
}
