// Package pathway is the in-memory document: an arena of elements keyed by
// id, the reference graph between them and the lazily recomputed geometry
// of every line. The document is not safe for concurrent use; callers
// that share one must serialize access.
package pathway

import (
	"fmt"

	"github.com/ritzau/pathlink/pkg/connector"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/graph"
	"github.com/ritzau/pathlink/pkg/ids"
	"github.com/ritzau/pathlink/pkg/model"
)

// Options configures geometry for a document.
type Options struct {
	Policy      connector.Policy
	Gaps        model.GapTable
	GroupMargin float64
}

// DefaultOptions returns the standard routing options.
func DefaultOptions() Options {
	return Options{
		Policy:      connector.DefaultPolicy(),
		Gaps:        model.DefaultGaps(),
		GroupMargin: 8,
	}
}

type cacheState int

const (
	stateDirty cacheState = iota
	stateClean
	stateComputing
)

type lineCache struct {
	state cacheState
	shape connector.Shape
}

// Document is a pathway with its derived geometry.
type Document struct {
	Name string

	opts     Options
	reg      *ids.Registry[*model.Element]
	elements []*model.Element // Arena in declaration order, anchors excluded
	refs     *graph.RefGraph
	cache    map[string]*lineCache
	order    int

	pass *passState // Set while Propagate runs
}

// New creates an empty document.
func New(opts Options) *Document {
	if opts.Gaps == nil {
		opts.Gaps = model.DefaultGaps()
	}
	return &Document{
		opts:  opts,
		reg:   ids.NewRegistry[*model.Element](),
		refs:  graph.NewRefGraph(),
		cache: make(map[string]*lineCache),
	}
}

// Options returns the document's geometry options.
func (d *Document) Options() Options {
	return d.opts
}

// Register adds an element to the arena. The element needs an id; lines
// are registered without anchors, which go through RegisterAnchor.
func (d *Document) Register(el *model.Element) error {
	if el.Kind == model.KindAnchor {
		return fmt.Errorf("%w: anchors are registered with their line", diag.ErrInvalidParameter)
	}
	if err := d.reg.Register(el.ID, el); err != nil {
		return err
	}
	el.Order = d.order
	d.order++
	d.elements = append(d.elements, el)
	d.refs.AddNode(el.ID)

	if el.Kind == model.KindLine {
		if el.Line == nil {
			el.Line = &model.Line{}
		}
		el.Line.ID = el.ID
		d.cache[el.ID] = &lineCache{}
	}
	return nil
}

// RegisterAnchor adds an anchor to a registered line. The position must
// be in [0,1].
func (d *Document) RegisterAnchor(lineID string, a *model.Anchor) error {
	line, err := d.line(lineID)
	if err != nil {
		return err
	}
	if a.Position < 0 || a.Position > 1 {
		return fmt.Errorf("anchor %s position %v: %w", a.ID, a.Position, diag.ErrOutOfRange)
	}
	el := &model.Element{ID: a.ID, Kind: model.KindAnchor, Anchor: a}
	if err := d.reg.Register(a.ID, el); err != nil {
		return err
	}
	a.Line = line
	line.Anchors = append(line.Anchors, a)
	d.refs.AddEdge(lineID, a.ID)
	return nil
}

// GenerateID returns an id that collides with nothing registered or
// generated before it.
func (d *Document) GenerateID(prefix string) string {
	return d.reg.GenerateUnique(prefix)
}

// ReserveID claims an explicit id before its element is registered.
func (d *Document) ReserveID(id string) error {
	return d.reg.Reserve(id)
}

// ReleaseIDs drops reservations of generated ids that were never used.
func (d *Document) ReleaseIDs(ids ...string) {
	d.reg.Release(ids...)
}

// Lookup returns the element registered under id, anchors included.
func (d *Document) Lookup(id string) (*model.Element, bool) {
	return d.reg.Lookup(id)
}

// Elements returns the arena in declaration order. Anchors are reachable
// through their lines.
func (d *Document) Elements() []*model.Element {
	return append([]*model.Element(nil), d.elements...)
}

// Lines returns all line elements in declaration order.
func (d *Document) Lines() []*model.Element {
	var out []*model.Element
	for _, el := range d.elements {
		if el.Kind == model.KindLine {
			out = append(out, el)
		}
	}
	return out
}

// Len returns the number of registered ids, anchors included.
func (d *Document) Len() int {
	return d.reg.Len()
}

// References returns the reference graph. It must not be modified.
func (d *Document) References() *graph.RefGraph {
	return d.refs
}

// SetGroup makes member part of group.
func (d *Document) SetGroup(memberID, groupID string) error {
	member, ok := d.Lookup(memberID)
	if !ok {
		return fmt.Errorf("member %s: %w", memberID, diag.ErrNotFound)
	}
	group, ok := d.Lookup(groupID)
	if !ok {
		return fmt.Errorf("group %s: %w", groupID, diag.ErrDanglingReference)
	}
	if group.Kind != model.KindGroup {
		return fmt.Errorf("%s is a %s, not a group: %w", groupID, group.Kind, diag.ErrInvalidParameter)
	}
	d.ClearGroup(memberID)
	member.GroupRef = groupID
	d.refs.AddEdge(memberID, groupID)
	return nil
}

// ClearGroup removes member from its group, if any.
func (d *Document) ClearGroup(memberID string) {
	member, ok := d.Lookup(memberID)
	if !ok || member.GroupRef == "" {
		return
	}
	d.refs.RemoveEdge(memberID, member.GroupRef)
	member.GroupRef = ""
}

// Members returns the direct members of a group in declaration order.
func (d *Document) Members(groupID string) []*model.Element {
	var out []*model.Element
	for _, id := range d.refs.Dependencies(groupID) {
		if el, ok := d.Lookup(id); ok && el.GroupRef == groupID {
			out = append(out, el)
		}
	}
	return out
}

// AttachState places a state on its host data node.
func (d *Document) AttachState(stateID, hostID string, relX, relY float64) error {
	state, ok := d.Lookup(stateID)
	if !ok || state.Kind != model.KindState {
		return fmt.Errorf("state %s: %w", stateID, diag.ErrNotFound)
	}
	host, ok := d.Lookup(hostID)
	if !ok {
		return fmt.Errorf("state host %s: %w", hostID, diag.ErrDanglingReference)
	}
	if !host.Kind.Shaped() {
		return fmt.Errorf("state host %s is a %s: %w", hostID, host.Kind, diag.ErrInvalidParameter)
	}
	state.State = &model.StateAttachment{HostRef: hostID, RelX: relX, RelY: relY}
	d.refs.AddEdge(hostID, stateID)
	return nil
}

// Attach links point index of a line to a target with stored relative
// coordinates. It is the load-time form of Link and does not recompute.
func (d *Document) Attach(lineID string, index int, targetID string, relX, relY float64) error {
	line, err := d.line(lineID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(line.Points) {
		return fmt.Errorf("point %d of %s: %w", index, lineID, diag.ErrOutOfRange)
	}
	target, ok := d.Lookup(targetID)
	if !ok {
		return fmt.Errorf("%s point %d: %w: %s", lineID, index, diag.ErrDanglingReference, targetID)
	}
	if !target.Kind.Linkable() {
		return fmt.Errorf("%s is a %s and cannot be linked: %w", targetID, target.Kind, diag.ErrInvalidParameter)
	}
	p := line.Points[index]
	if p.Linked() && p.Ref != targetID {
		old := p.Ref
		p.Ref = ""
		d.dropEdgeIfUnused(old, line)
	}
	p.Ref, p.RelX, p.RelY = targetID, relX, relY
	d.refs.AddEdge(targetID, lineID)
	d.markDirty(lineID)
	return nil
}

func (d *Document) dropEdgeIfUnused(targetID string, line *model.Line) {
	for _, p := range line.Points {
		if p.Ref == targetID {
			return
		}
	}
	d.refs.RemoveEdge(targetID, line.ID)
}

func (d *Document) line(id string) (*model.Line, error) {
	el, ok := d.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("line %s: %w", id, diag.ErrNotFound)
	}
	if el.Kind != model.KindLine {
		return nil, fmt.Errorf("%s is a %s, not a line: %w", id, el.Kind, diag.ErrInvalidParameter)
	}
	return el.Line, nil
}

func (d *Document) anchor(id string) (*model.Anchor, error) {
	el, ok := d.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("anchor %s: %w", id, diag.ErrNotFound)
	}
	if el.Kind != model.KindAnchor {
		return nil, fmt.Errorf("%s is a %s, not an anchor: %w", id, el.Kind, diag.ErrInvalidParameter)
	}
	return el.Anchor, nil
}

func (d *Document) markDirty(lineID string) {
	if c, ok := d.cache[lineID]; ok && c.state == stateClean {
		c.state = stateDirty
	}
}

func (d *Document) removeFromArena(id string) {
	for i, el := range d.elements {
		if el.ID == id {
			d.elements = append(d.elements[:i], d.elements[i+1:]...)
			return
		}
	}
}
