package connector

import (
	"math"

	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/model"
)

// Endpoint is one end of a connector as the engine sees it.
type Endpoint struct {
	Point geom.Point
	Side  geom.Side
	// Free endpoints have no body to leave from: their side names where
	// they sit on the connector, so the path leaves them the other way.
	Free bool
	Gap  float64
}

// Direction returns the unit vector along which the path leaves the
// endpoint.
func (e Endpoint) Direction() geom.Point {
	if e.Free {
		return e.Side.Opposite().Vector()
	}
	return e.Side.Vector()
}

// Input is everything Compute needs for one line.
type Input struct {
	Topology   model.Topology
	Start, End Endpoint
	// Waypoints are the stored interior points: preferred waypoints for
	// elbow lines, control points for curved lines. Straight lines ignore
	// them.
	Waypoints []geom.Point
}

// Shape is the computed geometry of a line.
type Shape struct {
	Topology  model.Topology
	Segments  []geom.Segment
	Waypoints []geom.Point
	Start     geom.Point
	End       geom.Point
	StartSide geom.Side
	EndSide   geom.Side

	// AdjustedStart and AdjustedEnd are the endpoints after trimming the
	// arrowhead gaps.
	AdjustedStart geom.Point
	AdjustedEnd   geom.Point

	// Reused is set when stored waypoints were kept as given.
	Reused bool

	cum    []float64
	trimLo float64
	trimHi float64
}

// Compute routes a line.
func Compute(in Input, p Policy) Shape {
	s := Shape{
		Topology:  in.Topology,
		Start:     in.Start.Point,
		End:       in.End.Point,
		StartSide: in.Start.Side,
		EndSide:   in.End.Side,
	}

	switch in.Topology {
	case model.TopologyElbow:
		s.Segments, s.Waypoints, s.Reused = routeElbow(in, p)
	case model.TopologyCurved:
		s.Segments, s.Waypoints = routeCurved(in, p)
		s.Reused = len(in.Waypoints) > 0
	default:
		s.Segments = []geom.Segment{geom.Seg(in.Start.Point, in.End.Point)}
	}

	s.measure()
	s.trim(in.Start.Gap, in.End.Gap)
	return s
}

func (s *Shape) measure() {
	s.cum = make([]float64, len(s.Segments)+1)
	for i, seg := range s.Segments {
		s.cum[i+1] = s.cum[i] + seg.Len()
	}
}

// trim places the adjusted endpoints. Straight and elbow paths trim along
// their terminal segments; curves trim along the path.
func (s *Shape) trim(startGap, endGap float64) {
	total := s.Length()
	lo, hi := math.Max(0, startGap), math.Max(0, endGap)
	if len(s.Segments) > 0 && s.Topology != model.TopologyCurved {
		lo = math.Min(lo, s.Segments[0].Len())
		hi = math.Min(hi, s.Segments[len(s.Segments)-1].Len())
	}
	if lo+hi > total {
		if lo+hi == 0 {
			lo, hi = 0, 0
		} else {
			scale := total / (lo + hi)
			lo, hi = lo*scale, hi*scale
		}
	}
	s.trimLo, s.trimHi = lo, hi
	s.AdjustedStart = s.pointAtDistance(lo)
	s.AdjustedEnd = s.pointAtDistance(total - hi)
}

// Length returns the total path length.
func (s Shape) Length() float64 {
	if len(s.cum) == 0 {
		return 0
	}
	return s.cum[len(s.cum)-1]
}

// Routable reports whether the shape has a path.
func (s Shape) Routable() bool {
	return len(s.Segments) > 0
}

// PointAtFraction returns the point at fraction t of the path length.
// t is clamped to [0,1].
func (s Shape) PointAtFraction(t float64) geom.Point {
	t = math.Max(0, math.Min(1, t))
	return s.pointAtDistance(t * s.Length())
}

func (s Shape) pointAtDistance(d float64) geom.Point {
	i := s.segmentAtDistance(d)
	if i < 0 {
		return s.Start
	}
	seg := s.Segments[i]
	l := seg.Len()
	if l < geom.Epsilon {
		return seg.Start
	}
	return seg.PointAt(math.Min(1, (d-s.cum[i])/l))
}

// segmentAtDistance returns the first segment whose cumulative end
// reaches d, or -1 when there are no segments.
func (s Shape) segmentAtDistance(d float64) int {
	if len(s.Segments) == 0 {
		return -1
	}
	for i := range s.Segments {
		if s.cum[i+1] >= d {
			return i
		}
	}
	return len(s.Segments) - 1
}

// SegmentAtFraction returns the segment under fraction t. For a path
// position exactly on a corner the earlier segment wins, unless it has
// no length.
func (s Shape) SegmentAtFraction(t float64) (geom.Segment, bool) {
	t = math.Max(0, math.Min(1, t))
	d := t * s.Length()
	i := s.segmentAtDistance(d)
	if i < 0 {
		return geom.Segment{}, false
	}
	for i < len(s.Segments)-1 && s.Segments[i].Len() < geom.Epsilon {
		i++
	}
	return s.Segments[i], true
}

// TangentAtFraction returns the unit direction of the path at t.
func (s Shape) TangentAtFraction(t float64) geom.Point {
	seg, ok := s.SegmentAtFraction(t)
	if !ok {
		return geom.Point{}
	}
	return seg.Direction()
}

// FractionAt maps an absolute point to the fraction of the closest path
// position. It is the inverse of PointAtFraction for points on the path.
func (s Shape) FractionAt(p geom.Point) float64 {
	total := s.Length()
	if total < geom.Epsilon {
		return 0
	}
	best, bestDist := 0.0, math.Inf(1)
	for i, seg := range s.Segments {
		t, d := seg.Project(p)
		if d < bestDist-geom.Epsilon {
			bestDist = d
			best = (s.cum[i] + t*seg.Len()) / total
		}
	}
	return best
}

// AdjustedSegments returns the path with both arrowhead gaps cut off.
func (s Shape) AdjustedSegments() []geom.Segment {
	total := s.Length()
	lo, hi := s.trimLo, total-s.trimHi
	var out []geom.Segment
	for i, seg := range s.Segments {
		a, b := s.cum[i], s.cum[i+1]
		if b <= lo+geom.Epsilon || a >= hi-geom.Epsilon {
			continue
		}
		start, end := seg.Start, seg.End
		if a < lo {
			start = s.AdjustedStart
		}
		if b > hi {
			end = s.AdjustedEnd
		}
		out = append(out, geom.Seg(start, end))
	}
	if len(out) == 0 && len(s.Segments) > 0 {
		out = append(out, geom.Seg(s.AdjustedStart, s.AdjustedEnd))
	}
	return out
}

// Points returns the path as a polyline: the start, every corner, and
// the end.
func (s Shape) Points() []geom.Point {
	if len(s.Segments) == 0 {
		return []geom.Point{s.Start}
	}
	pts := make([]geom.Point, 0, len(s.Segments)+1)
	pts = append(pts, s.Segments[0].Start)
	for _, seg := range s.Segments {
		pts = append(pts, seg.End)
	}
	return pts
}

func polyline(pts []geom.Point) []geom.Segment {
	segs := make([]geom.Segment, 0, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		segs = append(segs, geom.Seg(pts[i-1], pts[i]))
	}
	return segs
}
