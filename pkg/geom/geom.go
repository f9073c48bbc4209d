// Package geom holds the value types shared by the routing core: points,
// axis-aligned boxes, segments and compass sides. All coordinates are in
// document units; nothing here knows about zoom.
package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Epsilon is the tolerance used for geometric comparisons.
const Epsilon = 1e-9

// Point is a position in document coordinates. The y axis grows downward.
type Point struct {
	X float64 `json:"x" yaml:"x" msgpack:"x"`
	Y float64 `json:"y" yaml:"y" msgpack:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Vec converts p to a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec(p)
}

func fromVec(v r2.Vec) Point {
	return Point(v)
}

func (p Point) Add(q Point) Point {
	return fromVec(r2.Add(p.Vec(), q.Vec()))
}

func (p Point) Sub(q Point) Point {
	return fromVec(r2.Sub(p.Vec(), q.Vec()))
}

func (p Point) Scale(f float64) Point {
	return fromVec(r2.Scale(f, p.Vec()))
}

func (p Point) Dot(q Point) float64 {
	return r2.Dot(p.Vec(), q.Vec())
}

// Len returns the Euclidean norm of p as a vector.
func (p Point) Len() float64 {
	return r2.Norm(p.Vec())
}

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 {
	return q.Sub(p).Len()
}

// Unit returns p scaled to length 1, or the zero point if p is zero.
func (p Point) Unit() Point {
	if p.Len() < Epsilon {
		return Point{}
	}
	return fromVec(r2.Unit(p.Vec()))
}

// Lerp interpolates linearly from p to q.
func (p Point) Lerp(q Point, t float64) Point {
	return p.Add(q.Sub(p).Scale(t))
}

// Rotate rotates p around center by the given angle in degrees.
func (p Point) Rotate(center Point, degrees float64) Point {
	if degrees == 0 {
		return p
	}
	return fromVec(r2.Rotate(p.Vec(), degrees*math.Pi/180, center.Vec()))
}

// ApproxEqual reports whether p and q are within tol on both axes.
func (p Point) ApproxEqual(q Point, tol float64) bool {
	return math.Abs(p.X-q.X) <= tol && math.Abs(p.Y-q.Y) <= tol
}

// Rect is an axis-aligned box described by its center and extent, the way
// pathway elements store their bounds.
type Rect struct {
	Center Point   `json:"center" yaml:"center" msgpack:"center"`
	Width  float64 `json:"width" yaml:"width" msgpack:"width"`
	Height float64 `json:"height" yaml:"height" msgpack:"height"`
}

// RectFromBounds builds a Rect from its min and max corners.
func RectFromBounds(minX, minY, maxX, maxY float64) Rect {
	return Rect{
		Center: Pt((minX+maxX)/2, (minY+maxY)/2),
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

func (r Rect) MinX() float64 { return r.Center.X - r.Width/2 }
func (r Rect) MaxX() float64 { return r.Center.X + r.Width/2 }
func (r Rect) MinY() float64 { return r.Center.Y - r.Height/2 }
func (r Rect) MaxY() float64 { return r.Center.Y + r.Height/2 }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.Center = r.Center.Add(Pt(dx, dy))
	return r
}

// Union returns the smallest Rect containing r and o.
func (r Rect) Union(o Rect) Rect {
	return RectFromBounds(
		math.Min(r.MinX(), o.MinX()),
		math.Min(r.MinY(), o.MinY()),
		math.Max(r.MaxX(), o.MaxX()),
		math.Max(r.MaxY(), o.MaxY()),
	)
}

// Grow returns r expanded by m on every side.
func (r Rect) Grow(m float64) Rect {
	r.Width += 2 * m
	r.Height += 2 * m
	return r
}

// IsDegenerate reports whether r has zero extent on either axis.
func (r Rect) IsDegenerate() bool {
	return r.Width <= Epsilon || r.Height <= Epsilon
}

// BoundsOf returns the bounding box of a non-empty point set.
func BoundsOf(pts ...Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return RectFromBounds(minX, minY, maxX, maxY)
}
