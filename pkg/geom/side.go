package geom

import (
	"fmt"
	"math"
	"strings"
)

// Side is a compass side of an element or endpoint.
type Side int

const (
	North Side = iota
	East
	South
	West
)

var sideNames = [...]string{"north", "east", "south", "west"}

func (s Side) String() string {
	if s < North || s > West {
		return fmt.Sprintf("Side(%d)", int(s))
	}
	return sideNames[s]
}

// ParseSide parses a side name case-insensitively.
func ParseSide(name string) (Side, error) {
	for i, n := range sideNames {
		if strings.EqualFold(name, n) {
			return Side(i), nil
		}
	}
	return North, fmt.Errorf("unknown side %q", name)
}

// Vector returns the outward unit vector of the side in screen
// coordinates, where north points to negative y.
func (s Side) Vector() Point {
	switch s {
	case North:
		return Pt(0, -1)
	case East:
		return Pt(1, 0)
	case South:
		return Pt(0, 1)
	default:
		return Pt(-1, 0)
	}
}

// Horizontal reports whether leaving through s travels along the x axis.
func (s Side) Horizontal() bool {
	return s == East || s == West
}

func (s Side) Opposite() Side {
	return (s + 2) % 4
}

// RotateCW returns the side 90 degrees clockwise on screen: N, E, S, W.
func (s Side) RotateCW() Side {
	return (s + 1) % 4
}

// SideOf returns the side whose axis dominates v. Ties go to the
// vertical axis, and a non-positive y picks North.
func SideOf(v Point) Side {
	if math.Abs(v.X) > math.Abs(v.Y) {
		if v.X > 0 {
			return East
		}
		return West
	}
	if v.Y > 0 {
		return South
	}
	return North
}
