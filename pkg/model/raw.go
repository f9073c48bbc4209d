package model

// RawDocument is the persisted form of a pathway: a flat element list in
// source order with references as id strings.
type RawDocument struct {
	Name     string       `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Elements []RawElement `json:"elements" yaml:"elements" msgpack:"elements"`
}

// RawElement is one persisted element. Fields apply by kind: bounds for
// shaped elements and groups, host fields for states, topology with
// points and anchors for lines.
type RawElement struct {
	ID       string      `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Kind     ElementKind `json:"kind" yaml:"kind" msgpack:"kind"`
	Name     string      `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	GroupRef string      `json:"groupRef,omitempty" yaml:"groupRef,omitempty" msgpack:"groupRef,omitempty"`

	X        float64 `json:"x,omitempty" yaml:"x,omitempty" msgpack:"x,omitempty"` // Center
	Y        float64 `json:"y,omitempty" yaml:"y,omitempty" msgpack:"y,omitempty"`
	Width    float64 `json:"width,omitempty" yaml:"width,omitempty" msgpack:"width,omitempty"`
	Height   float64 `json:"height,omitempty" yaml:"height,omitempty" msgpack:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty" yaml:"rotation,omitempty" msgpack:"rotation,omitempty"`

	GraphRef string  `json:"graphRef,omitempty" yaml:"graphRef,omitempty" msgpack:"graphRef,omitempty"` // State host
	RelX     float64 `json:"relX,omitempty" yaml:"relX,omitempty" msgpack:"relX,omitempty"`
	RelY     float64 `json:"relY,omitempty" yaml:"relY,omitempty" msgpack:"relY,omitempty"`

	Topology Topology    `json:"topology,omitempty" yaml:"topology,omitempty" msgpack:"topology,omitempty"`
	Points   []RawPoint  `json:"points,omitempty" yaml:"points,omitempty" msgpack:"points,omitempty"`
	Anchors  []RawAnchor `json:"anchors,omitempty" yaml:"anchors,omitempty" msgpack:"anchors,omitempty"`
}

// RawPoint is a persisted line point. Interior points of elbow lines are
// the preferred waypoints.
type RawPoint struct {
	X         float64   `json:"x" yaml:"x" msgpack:"x"`
	Y         float64   `json:"y" yaml:"y" msgpack:"y"`
	GraphRef  string    `json:"graphRef,omitempty" yaml:"graphRef,omitempty" msgpack:"graphRef,omitempty"`
	RelX      float64   `json:"relX,omitempty" yaml:"relX,omitempty" msgpack:"relX,omitempty"`
	RelY      float64   `json:"relY,omitempty" yaml:"relY,omitempty" msgpack:"relY,omitempty"`
	ArrowHead ArrowHead `json:"arrowHead,omitempty" yaml:"arrowHead,omitempty" msgpack:"arrowHead,omitempty"`
}

// RawAnchor is a persisted anchor.
type RawAnchor struct {
	ID       string      `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Position float64     `json:"position" yaml:"position" msgpack:"position"`
	Shape    AnchorShape `json:"shape,omitempty" yaml:"shape,omitempty" msgpack:"shape,omitempty"`
}

// ElementCount returns the number of elements by kind.
func (d *RawDocument) ElementCount() map[ElementKind]int {
	counts := make(map[ElementKind]int)
	for _, e := range d.Elements {
		counts[e.Kind]++
	}
	return counts
}
