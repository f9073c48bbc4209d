package model

import "github.com/ritzau/pathlink/pkg/geom"

// TargetKind is the tag of a link target.
type TargetKind int

const (
	TargetShape  TargetKind = iota // Shapes, data nodes and labels
	TargetState                    // States, placed on their host
	TargetGroup                    // Groups, bounded by their members
	TargetAnchor                   // Anchors, placed on their line
)

func (k TargetKind) String() string {
	switch k {
	case TargetShape:
		return "shape"
	case TargetState:
		return "state"
	case TargetGroup:
		return "group"
	default:
		return "anchor"
	}
}

// Target is what a line endpoint can attach to. Box targets carry their
// current bounds; anchor targets carry the anchor.
type Target struct {
	Kind     TargetKind
	ID       string
	Bounds   geom.Rect
	Rotation float64
	Anchor   *Anchor
}
