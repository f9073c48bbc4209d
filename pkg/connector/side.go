package connector

import (
	"math"

	"github.com/ritzau/pathlink/pkg/geom"
)

// EndpointKind says what a line end is attached to, which selects the
// side inference rule.
type EndpointKind int

const (
	FreeEndpoint        EndpointKind = iota // Not linked
	ShapeEndpoint                           // Linked to an element with bounds
	ElbowAnchorEndpoint                     // Linked to an anchor on an elbow line
	AnchorEndpoint                          // Linked to an anchor on another line
)

// SideQuery carries what side inference needs about one endpoint.
type SideQuery struct {
	Kind  EndpointKind
	Start bool

	// ShapeEndpoint
	RelX, RelY float64

	// Anchor kinds
	Anchor geom.Point // Anchor position
	FarEnd geom.Point // Other end of the attaching line

	HostSegment geom.Segment // ElbowAnchorEndpoint: host segment under the anchor
	HostTangent geom.Point   // AnchorEndpoint: host direction at the anchor
}

// InferSide chooses the compass side an endpoint attaches on.
func InferSide(q SideQuery, p Policy) geom.Side {
	switch q.Kind {
	case ShapeEndpoint:
		return geom.SideOf(geom.Pt(q.RelX, q.RelY))

	case ElbowAnchorEndpoint:
		// Perpendicular to the segment under the anchor, toward this
		// line's far end.
		toFar := q.FarEnd.Sub(q.Anchor)
		if q.HostSegment.Vertical() {
			if toFar.X >= 0 {
				return geom.East
			}
			return geom.West
		}
		if toFar.Y >= 0 {
			return geom.South
		}
		return geom.North

	case AnchorEndpoint:
		side := geom.SideOf(q.FarEnd.Sub(q.Anchor))
		if AlmostAligned(q.HostTangent, side, p.AlignmentThreshold) {
			side = side.RotateCW()
		}
		return side

	default:
		if q.Start {
			return geom.West
		}
		return geom.East
	}
}

// AlmostAligned reports whether direction d lies within threshold
// degrees of the axis of side. A zero direction is never aligned.
func AlmostAligned(d geom.Point, side geom.Side, threshold float64) bool {
	l := d.Len()
	if l < geom.Epsilon {
		return false
	}
	cos := math.Abs(d.Dot(side.Vector())) / l
	angle := math.Acos(math.Min(1, cos)) * 180 / math.Pi
	return angle <= threshold
}
