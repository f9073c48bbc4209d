package geom

import "math"

// Segment is one straight piece of a connector path.
type Segment struct {
	Start Point `json:"start" yaml:"start" msgpack:"start"`
	End   Point `json:"end" yaml:"end" msgpack:"end"`
}

func Seg(a, b Point) Segment {
	return Segment{Start: a, End: b}
}

func (s Segment) Len() float64 {
	return s.Start.Dist(s.End)
}

// Horizontal reports whether the segment runs along the x axis. A
// zero-length segment is neither horizontal nor vertical.
func (s Segment) Horizontal() bool {
	return math.Abs(s.End.Y-s.Start.Y) <= Epsilon && math.Abs(s.End.X-s.Start.X) > Epsilon
}

func (s Segment) Vertical() bool {
	return math.Abs(s.End.X-s.Start.X) <= Epsilon && math.Abs(s.End.Y-s.Start.Y) > Epsilon
}

// Direction returns the unit vector from Start to End.
func (s Segment) Direction() Point {
	return s.End.Sub(s.Start).Unit()
}

// PointAt returns the point at parameter t in [0,1] along the segment.
func (s Segment) PointAt(t float64) Point {
	return s.Start.Lerp(s.End, t)
}

// Center returns the segment midpoint.
func (s Segment) Center() Point {
	return s.PointAt(0.5)
}

// Project returns the parameter of the closest point on s to p, clamped
// to [0,1], and the distance from p to that point.
func (s Segment) Project(p Point) (t, dist float64) {
	d := s.End.Sub(s.Start)
	l2 := d.Dot(d)
	if l2 < Epsilon {
		return 0, p.Dist(s.Start)
	}
	t = p.Sub(s.Start).Dot(d) / l2
	t = math.Max(0, math.Min(1, t))
	return t, p.Dist(s.PointAt(t))
}
