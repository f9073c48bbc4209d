package geom

// ToRelative maps an absolute point into the local frame of r, where the
// center is (0,0) and the box edges are at -1 and 1. An axis with zero
// extent maps to 0 instead of dividing by zero.
func ToRelative(p Point, r Rect) (relX, relY float64) {
	d := p.Sub(r.Center)
	if hw := r.Width / 2; hw > Epsilon {
		relX = d.X / hw
	}
	if hh := r.Height / 2; hh > Epsilon {
		relY = d.Y / hh
	}
	return relX, relY
}

// ToAbsolute is the inverse of ToRelative.
func ToAbsolute(relX, relY float64, r Rect) Point {
	return Pt(r.Center.X+relX*r.Width/2, r.Center.Y+relY*r.Height/2)
}

// ToRelativeRotated is ToRelative for a box rotated by degrees around its
// center.
func ToRelativeRotated(p Point, r Rect, degrees float64) (relX, relY float64) {
	return ToRelative(p.Rotate(r.Center, -degrees), r)
}

// ToAbsoluteRotated is the inverse of ToRelativeRotated.
func ToAbsoluteRotated(relX, relY float64, r Rect, degrees float64) Point {
	return ToAbsolute(relX, relY, r).Rotate(r.Center, degrees)
}
