package connector

import (
	"math"

	"github.com/ritzau/pathlink/pkg/geom"
)

// routeElbow builds an orthogonal path. Segments alternate between the
// axis of the start direction and the other axis, and the last segment
// runs on the axis of the end direction. Waypoints are the midpoints of
// the inner segments, so n segments carry n-2 waypoints and the corners
// follow from the waypoints alone.
func routeElbow(in Input, p Policy) ([]geom.Segment, []geom.Point, bool) {
	s, e := in.Start.Point, in.End.Point
	ds, de := in.Start.Direction(), in.End.Direction()

	n, generated := elbowWaypoints(s, ds, e, de, p.ElbowOffset)

	if len(in.Waypoints) > 0 && len(in.Waypoints) == n-2 {
		pts := elbowCorners(s, ds, e, in.Waypoints)
		if validElbow(pts, ds, de) {
			wps := append([]geom.Point(nil), in.Waypoints...)
			return polyline(pts), wps, true
		}
	}

	return polyline(elbowCorners(s, ds, e, generated)), generated, false
}

// elbowCorners turns waypoints into the full point list: start, corners,
// end.
func elbowCorners(s, ds, e geom.Point, wps []geom.Point) []geom.Point {
	pts := make([]geom.Point, 0, len(wps)+3)
	pts = append(pts, s)
	prev := s
	horizontal := isHorizontal(ds)
	for _, w := range wps {
		// The next segment runs through w on the other axis.
		horizontal = !horizontal
		prev = corner(prev, w, horizontal)
		pts = append(pts, prev)
	}
	if len(wps) > 0 || !aligned(s, e, isHorizontal(ds)) {
		horizontal = !horizontal
		pts = append(pts, corner(prev, e, horizontal))
	}
	return append(pts, e)
}

// corner is where a segment leaving prev meets the segment through q.
// nextHorizontal is the orientation of the segment through q.
func corner(prev, q geom.Point, nextHorizontal bool) geom.Point {
	if nextHorizontal {
		return geom.Pt(prev.X, q.Y)
	}
	return geom.Pt(q.X, prev.Y)
}

// validElbow checks that the first segment leaves the start along its
// direction and the last one enters the end against its direction.
func validElbow(pts []geom.Point, ds, de geom.Point) bool {
	n := len(pts)
	if n < 2 {
		return false
	}
	if pts[1].Sub(pts[0]).Dot(ds) < -geom.Epsilon {
		return false
	}
	return pts[n-2].Sub(pts[n-1]).Dot(de) >= -geom.Epsilon
}

func isHorizontal(d geom.Point) bool {
	return math.Abs(d.X) > math.Abs(d.Y)
}

func aligned(s, e geom.Point, horizontal bool) bool {
	if horizontal {
		return math.Abs(s.Y-e.Y) <= geom.Epsilon
	}
	return math.Abs(s.X-e.X) <= geom.Epsilon
}

// elbowWaypoints picks the segment count for the endpoint configuration
// and generates the waypoints of a default route. Vertical starts are
// solved in transposed coordinates.
func elbowWaypoints(s, ds, e, de geom.Point, offset float64) (int, []geom.Point) {
	if !isHorizontal(ds) {
		n, wps := elbowWaypointsH(transpose(s), transpose(ds), transpose(e), transpose(de), offset)
		for i := range wps {
			wps[i] = transpose(wps[i])
		}
		return n, wps
	}
	return elbowWaypointsH(s, ds, e, de, offset)
}

func transpose(p geom.Point) geom.Point {
	return geom.Pt(p.Y, p.X)
}

// elbowWaypointsH handles a start leaving along the x axis.
func elbowWaypointsH(s, ds, e, de geom.Point, offset float64) (int, []geom.Point) {
	sx := math.Copysign(1, ds.X)

	if isHorizontal(de) {
		ex := math.Copysign(1, de.X)
		if sx == ex {
			// Both ends leave the same way: run out past the farther one.
			x := math.Max(s.X, e.X) + offset
			if sx < 0 {
				x = math.Min(s.X, e.X) - offset
			}
			return 3, []geom.Point{geom.Pt(x, (s.Y+e.Y)/2)}
		}

		if (e.X-s.X)*sx > geom.Epsilon {
			// Facing each other with the end ahead.
			if aligned(s, e, true) {
				return 1, nil
			}
			return 3, []geom.Point{s.Lerp(e, 0.5)}
		}

		// Facing each other with the end behind: go around.
		x1 := s.X + sx*offset
		x2 := e.X + ex*offset
		ym := (s.Y + e.Y) / 2
		return 5, []geom.Point{
			geom.Pt(x1, (s.Y+ym)/2),
			geom.Pt((x1+x2)/2, ym),
			geom.Pt(x2, (ym+e.Y)/2),
		}
	}

	ey := math.Copysign(1, de.Y)
	if (e.X-s.X)*sx > geom.Epsilon && (s.Y-e.Y)*ey > geom.Epsilon {
		// The single corner lies ahead of both ends.
		return 2, nil
	}

	y2 := e.Y + ey*offset
	x1 := s.X + sx*offset
	if (e.X-s.X)*sx > geom.Epsilon {
		x1 = (s.X + e.X) / 2
	}
	return 4, []geom.Point{
		geom.Pt(x1, (s.Y+y2)/2),
		geom.Pt((x1+e.X)/2, y2),
	}
}
