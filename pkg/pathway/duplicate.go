package pathway

import (
	"fmt"

	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/model"
)

// Duplicate copies a set of elements offset by (dx, dy) and returns the
// id of each copy keyed by the original id. All new ids are generated
// before any copy is registered. References between copied elements
// point at the copies; references leaving the set keep their targets.
func (d *Document) Duplicate(ids []string, dx, dy float64) (map[string]string, Changes, error) {
	var originals []*model.Element
	for _, id := range ids {
		el, ok := d.Lookup(id)
		if !ok {
			return nil, Changes{}, fmt.Errorf("element %s: %w", id, diag.ErrNotFound)
		}
		if el.Kind == model.KindAnchor {
			return nil, Changes{}, fmt.Errorf("anchor %s is copied with its line: %w", id, diag.ErrInvalidParameter)
		}
		originals = append(originals, el)
	}

	mapping := make(map[string]string)
	for _, el := range originals {
		if _, done := mapping[el.ID]; done {
			continue
		}
		mapping[el.ID] = d.GenerateID(idPrefix(el.Kind))
		if el.Kind == model.KindLine {
			for _, a := range el.Line.Anchors {
				mapping[a.ID] = d.GenerateID("anchor")
			}
		}
	}
	remap := func(id string) string {
		if n, ok := mapping[id]; ok {
			return n
		}
		return id
	}

	var ch Changes
	var pairs []copyPair
	fail := func(err error) (map[string]string, Changes, error) {
		d.discardCopies(pairs, mapping)
		return nil, Changes{}, err
	}
	for _, el := range originals {
		if ch.Has(mapping[el.ID]) {
			continue
		}
		cp := &model.Element{
			ID:       mapping[el.ID],
			Kind:     el.Kind,
			Name:     el.Name,
			Bounds:   el.Bounds.Translate(dx, dy),
			Rotation: el.Rotation,
		}
		if el.Kind == model.KindLine {
			cp.Line = &model.Line{Topology: el.Line.Topology, PreferredWaypoints: el.Line.PreferredWaypoints}
			for _, p := range el.Line.Points {
				cp.Line.Points = append(cp.Line.Points, &model.LinePoint{
					Pos:       p.Pos.Add(geom.Pt(dx, dy)),
					ArrowHead: p.ArrowHead,
				})
			}
		}
		if err := d.Register(cp); err != nil {
			return fail(err)
		}
		pairs = append(pairs, copyPair{orig: el, cp: cp})
		ch.add(cp.ID)
	}

	// Anchors of every copied line exist before any point links to one.
	for _, pr := range pairs {
		if pr.orig.Kind != model.KindLine {
			continue
		}
		for _, a := range pr.orig.Line.Anchors {
			if err := d.RegisterAnchor(pr.cp.ID, &model.Anchor{ID: mapping[a.ID], Position: a.Position, Shape: a.Shape}); err != nil {
				return fail(err)
			}
		}
	}

	for _, pr := range pairs {
		orig, cp := pr.orig, pr.cp
		if orig.GroupRef != "" {
			if err := d.SetGroup(cp.ID, remap(orig.GroupRef)); err != nil {
				return fail(err)
			}
		}
		if orig.State != nil {
			if err := d.AttachState(cp.ID, remap(orig.State.HostRef), orig.State.RelX, orig.State.RelY); err != nil {
				return fail(err)
			}
		}
		if orig.Kind != model.KindLine {
			continue
		}
		for j, p := range orig.Line.Points {
			if !p.Linked() {
				continue
			}
			if err := d.Attach(cp.ID, j, remap(p.Ref), p.RelX, p.RelY); err != nil {
				return fail(err)
			}
		}
	}
	return mapping, ch, nil
}

type copyPair struct{ orig, cp *model.Element }

// discardCopies undoes a failed Duplicate: registered copies are deleted
// along with their anchors and every generated id is released.
func (d *Document) discardCopies(pairs []copyPair, mapping map[string]string) {
	for i := len(pairs) - 1; i >= 0; i-- {
		if _, ok := d.Lookup(pairs[i].cp.ID); ok {
			d.Delete(pairs[i].cp.ID)
		}
	}
	released := make([]string, 0, len(mapping))
	for _, id := range mapping {
		released = append(released, id)
	}
	d.ReleaseIDs(released...)
}

func idPrefix(kind model.ElementKind) string {
	switch kind {
	case model.KindLine:
		return "line"
	case model.KindGroup:
		return "group"
	default:
		return "id"
	}
}
