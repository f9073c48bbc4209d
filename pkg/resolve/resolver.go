// Package resolve turns a raw element list into a linked document. It
// runs in four passes, each an explicit call, because later passes refer
// to ids only guaranteed to exist after earlier ones:
//
//  1. Register assigns and validates ids.
//  2. ResolveGroups wires groupRef, groups first so nesting resolves.
//  3. ResolveLines builds points and anchors of every line.
//  4. ResolveLinks wires point references and state hosts.
//
// Within a pass, elements may arrive in any order. Problems other than
// duplicate ids are recorded as diagnostics and never abort the load.
package resolve

import (
	"errors"
	"fmt"

	"github.com/ritzau/pathlink/pkg/cycles"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
)

// ErrPassOrder is returned when a pass is called before the passes it
// depends on, or after a later pass already ran.
var ErrPassOrder = errors.New("resolver pass out of order")

type stage int

const (
	stageRegister stage = iota
	stageGroups
	stageLines
	stageLinks
)

type pending struct {
	raw model.RawElement
	el  *model.Element
}

// Resolver builds one document.
type Resolver struct {
	doc     *pathway.Document
	diags   diag.List
	pending []pending
	stage   stage
}

// New creates a resolver filling doc.
func New(doc *pathway.Document) *Resolver {
	return &Resolver{doc: doc}
}

// Document returns the document being built.
func (r *Resolver) Document() *pathway.Document {
	return r.doc
}

// Diagnostics returns everything recorded so far.
func (r *Resolver) Diagnostics() diag.List {
	return r.diags
}

// Register is pass 1. Elements with explicit ids are registered first and
// elements without one get a generated id afterwards, so a generated id
// never takes an explicit id of the same call. Explicit anchor ids are
// reserved here too. A duplicate id is a hard error.
func (r *Resolver) Register(raws ...model.RawElement) error {
	if r.stage != stageRegister {
		return fmt.Errorf("%w: register after %s", ErrPassOrder, r.stage)
	}

	var unnamed []model.RawElement
	for _, raw := range raws {
		if raw.ID == "" {
			unnamed = append(unnamed, raw)
			continue
		}
		if err := r.register(raw); err != nil {
			return err
		}
	}
	for _, raw := range unnamed {
		kind, _ := model.ParseElementKind(string(raw.Kind))
		raw.ID = r.doc.GenerateID(prefixFor(kind))
		if err := r.register(raw); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) register(raw model.RawElement) error {
	kind, err := model.ParseElementKind(string(raw.Kind))
	if err != nil || kind == model.KindAnchor {
		r.diags.Add(raw.ID, diag.KindStructuralViolation, "skipped element of kind %q", raw.Kind)
		r.doc.ReleaseIDs(raw.ID)
		return nil
	}

	el := &model.Element{
		ID:       raw.ID,
		Kind:     kind,
		Name:     raw.Name,
		Bounds:   geom.Rect{Center: geom.Pt(raw.X, raw.Y), Width: raw.Width, Height: raw.Height},
		Rotation: raw.Rotation,
	}
	if kind == model.KindLine {
		topology, err := model.ParseTopology(string(raw.Topology))
		if err != nil {
			r.diags.Add(raw.ID, diag.KindInvalidParameter, "%v; routing straight", err)
			topology = model.TopologyStraight
		}
		el.Line = &model.Line{Topology: topology}
	}

	if err := r.doc.Register(el); err != nil {
		return fmt.Errorf("register %s: %w", raw.ID, err)
	}
	for _, a := range raw.Anchors {
		if a.ID == "" {
			continue
		}
		if err := r.doc.ReserveID(a.ID); err != nil {
			return fmt.Errorf("register anchor %s of %s: %w", a.ID, raw.ID, err)
		}
	}

	r.pending = append(r.pending, pending{raw: raw, el: el})
	return nil
}

// ResolveGroups is pass 2. Cyclic nesting is broken by dropping the
// groupRef of the greatest group id on each cycle.
func (r *Resolver) ResolveGroups() error {
	if err := r.advance(stageGroups); err != nil {
		return err
	}

	for _, p := range r.pending {
		ref := p.raw.GroupRef
		if ref == "" {
			continue
		}
		if ref == p.el.ID {
			r.diags.Add(ref, diag.KindStructuralViolation, "group contains itself; groupRef dropped")
			continue
		}
		if err := r.doc.SetGroup(p.el.ID, ref); err != nil {
			r.record(p.el.ID, err, "groupRef %s ignored", ref)
		}
	}

	for {
		cyc := r.groupCycles()
		if len(cyc) == 0 {
			break
		}
		for _, c := range cyc {
			breaker := c[len(c)-1]
			r.doc.ClearGroup(breaker)
			r.diags.Add(breaker, diag.KindStructuralViolation, "cyclic groupRef through %v; groupRef dropped", c)
			logging.Warn("Broke group cycle", "groups", c, "dropped", breaker)
		}
	}
	return nil
}

// groupCycles returns nesting cycles among groups, each sorted by id.
func (r *Resolver) groupCycles() [][]string {
	var out [][]string
	for _, c := range cycles.FindReferenceCycles(r.doc.References()) {
		allGroups := true
		for _, id := range c.Elements {
			if el, ok := r.doc.Lookup(id); !ok || el.Kind != model.KindGroup {
				allGroups = false
				break
			}
		}
		if allGroups {
			out = append(out, c.Elements)
		}
	}
	return out
}

// ResolveLines is pass 3: points and anchors join their lines. Lines with
// fewer than two points stay in the document but cannot be routed.
func (r *Resolver) ResolveLines() error {
	if err := r.advance(stageLines); err != nil {
		return err
	}

	for _, p := range r.pending {
		if p.el.Kind != model.KindLine {
			continue
		}
		line := p.el.Line
		for _, rp := range p.raw.Points {
			line.Points = append(line.Points, &model.LinePoint{
				Pos:       geom.Pt(rp.X, rp.Y),
				ArrowHead: rp.ArrowHead,
			})
		}
		if !line.Routable() {
			r.diags.Add(p.el.ID, diag.KindStructuralViolation, "line has %d points, needs at least 2", len(line.Points))
		}
		if len(line.Points) > 2 && line.Topology != model.TopologyStraight {
			line.PreferredWaypoints = true
		}

		for _, ra := range p.raw.Anchors {
			if ra.Position < 0 || ra.Position > 1 {
				r.diags.Add(orID(ra.ID, p.el.ID), diag.KindInvalidParameter, "anchor position %v outside [0,1]; anchor dropped", ra.Position)
				r.doc.ReleaseIDs(ra.ID)
				continue
			}
			id := ra.ID
			if id == "" {
				id = r.doc.GenerateID("anchor")
			}
			shape := ra.Shape
			if shape == "" {
				shape = model.AnchorNone
			}
			if err := r.doc.RegisterAnchor(p.el.ID, &model.Anchor{ID: id, Position: ra.Position, Shape: shape}); err != nil {
				return fmt.Errorf("anchor %s of %s: %w", id, p.el.ID, err)
			}
		}
	}
	return nil
}

// ResolveLinks is pass 4. A reference to a missing or unlinkable id
// leaves the point free at its stored coordinates.
func (r *Resolver) ResolveLinks() error {
	if err := r.advance(stageLinks); err != nil {
		return err
	}

	for _, p := range r.pending {
		switch p.el.Kind {
		case model.KindState:
			if p.raw.GraphRef == "" {
				continue
			}
			if err := r.doc.AttachState(p.el.ID, p.raw.GraphRef, p.raw.RelX, p.raw.RelY); err != nil {
				r.record(p.el.ID, err, "state host %s ignored", p.raw.GraphRef)
			}
		case model.KindLine:
			for i, rp := range p.raw.Points {
				if rp.GraphRef == "" || i >= len(p.el.Line.Points) {
					continue
				}
				if err := r.doc.Attach(p.el.ID, i, rp.GraphRef, rp.RelX, rp.RelY); err != nil {
					r.record(p.el.ID, err, "point %d demoted to free point", i)
				}
			}
		}
	}
	return nil
}

// record turns a wiring error into a diagnostic of the matching kind.
func (r *Resolver) record(id string, err error, format string, args ...any) {
	kind := diag.KindStructuralViolation
	switch {
	case errors.Is(err, diag.ErrDanglingReference):
		kind = diag.KindDanglingReference
	case errors.Is(err, diag.ErrInvalidParameter):
		kind = diag.KindInvalidParameter
	}
	r.diags.Add(id, kind, "%s: %v", fmt.Sprintf(format, args...), err)
	logging.Debug("Recorded diagnostic", "element", id, "kind", kind, "error", err)
}

func (r *Resolver) advance(next stage) error {
	if r.stage != next-1 {
		return fmt.Errorf("%w: %s after %s", ErrPassOrder, next, r.stage)
	}
	r.stage = next
	return nil
}

func (s stage) String() string {
	switch s {
	case stageRegister:
		return "register"
	case stageGroups:
		return "groups"
	case stageLines:
		return "lines"
	default:
		return "links"
	}
}

func prefixFor(kind model.ElementKind) string {
	switch kind {
	case model.KindLine:
		return "line"
	case model.KindGroup:
		return "group"
	default:
		return "id"
	}
}

func orID(id, fallback string) string {
	if id != "" {
		return id
	}
	return fallback
}
