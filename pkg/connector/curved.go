package connector

import "github.com/ritzau/pathlink/pkg/geom"

// routeCurved flattens the Bézier curve whose control polygon is the
// start, the stored waypoints and the end. Without stored waypoints the
// corners of the elbow route serve as control points, so the curve still
// leaves each end along its side.
func routeCurved(in Input, p Policy) ([]geom.Segment, []geom.Point) {
	var ctrl []geom.Point
	var stored []geom.Point
	if len(in.Waypoints) > 0 {
		stored = append(stored, in.Waypoints...)
		ctrl = append(ctrl, in.Start.Point)
		ctrl = append(ctrl, in.Waypoints...)
		ctrl = append(ctrl, in.End.Point)
	} else {
		_, wps := elbowWaypoints(in.Start.Point, in.Start.Direction(), in.End.Point, in.End.Direction(), p.ElbowOffset)
		ctrl = elbowCorners(in.Start.Point, in.Start.Direction(), in.End.Point, wps)
	}

	n := p.CurveSamples
	if n < 1 {
		n = 1
	}
	if len(ctrl) == 2 {
		n = 1
	}
	pts := make([]geom.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		pts = append(pts, bezier(ctrl, float64(i)/float64(n)))
	}
	return polyline(pts), stored
}

// bezier evaluates a Bézier curve with de Casteljau's algorithm.
func bezier(ctrl []geom.Point, t float64) geom.Point {
	work := append([]geom.Point(nil), ctrl...)
	for k := len(work) - 1; k > 0; k-- {
		for i := 0; i < k; i++ {
			work[i] = work[i].Lerp(work[i+1], t)
		}
	}
	return work[0]
}
