package model

import (
	"fmt"
	"strings"

	"github.com/ritzau/pathlink/pkg/geom"
)

// ElementKind represents the type of a pathway element
type ElementKind string

const (
	KindShape    ElementKind = "Shape"    // Free-standing graphical shape
	KindDataNode ElementKind = "DataNode" // Gene product, metabolite, pathway reference
	KindLabel    ElementKind = "Label"    // Text label
	KindState    ElementKind = "State"    // State glyph attached to a data node
	KindGroup    ElementKind = "Group"    // Container of other elements
	KindLine     ElementKind = "Line"     // Interaction or graphical line
	KindAnchor   ElementKind = "Anchor"   // Point on a line, owned by the line
)

// ParseElementKind matches a kind name case-insensitively. "Interaction"
// and "GraphicalLine" are accepted as lines.
func ParseElementKind(name string) (ElementKind, error) {
	switch strings.ToLower(name) {
	case "shape":
		return KindShape, nil
	case "datanode":
		return KindDataNode, nil
	case "label":
		return KindLabel, nil
	case "state":
		return KindState, nil
	case "group":
		return KindGroup, nil
	case "line", "interaction", "graphicalline":
		return KindLine, nil
	case "anchor":
		return KindAnchor, nil
	}
	return "", fmt.Errorf("unknown element kind %q", name)
}

// Shaped reports whether elements of this kind own a bounding box.
func (k ElementKind) Shaped() bool {
	switch k {
	case KindShape, KindDataNode, KindLabel, KindState:
		return true
	}
	return false
}

// Linkable reports whether a line endpoint may attach to this kind.
func (k ElementKind) Linkable() bool {
	return k.Shaped() || k == KindGroup || k == KindAnchor
}

// Topology is the routing style of a line
type Topology string

const (
	TopologyStraight Topology = "Straight"
	TopologyElbow    Topology = "Elbow"
	TopologyCurved   Topology = "Curved"
)

// ParseTopology matches a topology name case-insensitively. An empty name
// is a straight line.
func ParseTopology(name string) (Topology, error) {
	switch strings.ToLower(name) {
	case "", "straight":
		return TopologyStraight, nil
	case "elbow":
		return TopologyElbow, nil
	case "curved":
		return TopologyCurved, nil
	}
	return "", fmt.Errorf("unknown topology %q", name)
}

// AnchorShape is the glyph tag of an anchor. It carries no geometry.
type AnchorShape string

const (
	AnchorNone     AnchorShape = "None"
	AnchorCircular AnchorShape = "Circular"
)

// Element is one entry of the document arena. Kind selects which of the
// optional parts is set.
type Element struct {
	ID       string
	Kind     ElementKind
	Name     string    // Text label, carried for round trip only
	GroupRef string    // Containing group, "" when none
	Bounds   geom.Rect // Shaped elements; for groups the stored fallback bounds
	Rotation float64   // Degrees around the bounds center

	State  *StateAttachment // Kind == KindState
	Line   *Line            // Kind == KindLine
	Anchor *Anchor          // Kind == KindAnchor

	Order int // Declaration order, used for stable export
}

// StateAttachment places a state relative to its host data node.
type StateAttachment struct {
	HostRef    string
	RelX, RelY float64
}

// LinePoint is one point of a line. When Ref is set the point is linked
// and Pos is only a cached projection of (RelX, RelY) on the target.
type LinePoint struct {
	Pos       geom.Point
	Ref       string
	RelX      float64
	RelY      float64
	ArrowHead ArrowHead
}

// Linked reports whether the point follows another element.
func (p *LinePoint) Linked() bool {
	return p.Ref != ""
}

// Unlink demotes the point to a free point at its last position.
func (p *LinePoint) Unlink() {
	p.Ref = ""
	p.RelX, p.RelY = 0, 0
}

// Line is a connector between its first and last point.
type Line struct {
	ID       string
	Topology Topology
	Points   []*LinePoint
	Anchors  []*Anchor

	// PreferredWaypoints is set when the interior points came from the
	// user or the source file. Generated waypoints are not preferred and
	// are regenerated on every recompute.
	PreferredWaypoints bool
}

// Routable reports whether the line has the two points routing needs.
func (l *Line) Routable() bool {
	return len(l.Points) >= 2
}

func (l *Line) Start() *LinePoint {
	if len(l.Points) == 0 {
		return nil
	}
	return l.Points[0]
}

func (l *Line) End() *LinePoint {
	if len(l.Points) == 0 {
		return nil
	}
	return l.Points[len(l.Points)-1]
}

// Waypoints returns the positions of the interior points.
func (l *Line) Waypoints() []geom.Point {
	if len(l.Points) <= 2 {
		return nil
	}
	out := make([]geom.Point, 0, len(l.Points)-2)
	for _, p := range l.Points[1 : len(l.Points)-1] {
		out = append(out, p.Pos)
	}
	return out
}

// SetWaypoints replaces the interior points, keeping both endpoints.
func (l *Line) SetWaypoints(pts []geom.Point) {
	if !l.Routable() {
		return
	}
	start, end := l.Start(), l.End()
	points := make([]*LinePoint, 0, len(pts)+2)
	points = append(points, start)
	for _, p := range pts {
		points = append(points, &LinePoint{Pos: p})
	}
	l.Points = append(points, end)
}

// Anchor returns the anchor with the given id.
func (l *Line) Anchor(id string) (*Anchor, bool) {
	for _, a := range l.Anchors {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Anchor is a point at a fractional position along its line's path.
type Anchor struct {
	ID       string
	Position float64 // In [0,1]
	Shape    AnchorShape
	Line     *Line
}
