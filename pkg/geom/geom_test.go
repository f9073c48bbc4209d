package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectUnionAndGrow(t *testing.T) {
	a := RectFromBounds(0, 0, 10, 10)
	b := RectFromBounds(20, 5, 30, 40)

	u := a.Union(b)
	assert.Equal(t, 0.0, u.MinX())
	assert.Equal(t, 0.0, u.MinY())
	assert.Equal(t, 30.0, u.MaxX())
	assert.Equal(t, 40.0, u.MaxY())

	g := u.Grow(8)
	assert.Equal(t, -8.0, g.MinX())
	assert.Equal(t, 48.0, g.MaxY())
}

func TestSegmentProject(t *testing.T) {
	s := Seg(Pt(0, 0), Pt(10, 0))

	tt, d := s.Project(Pt(4, 3))
	assert.InDelta(t, 0.4, tt, 1e-12)
	assert.InDelta(t, 3.0, d, 1e-12)

	tt, _ = s.Project(Pt(-5, 0))
	assert.Equal(t, 0.0, tt)
	assert.True(t, s.Horizontal())
	assert.False(t, s.Vertical())
}

func TestSides(t *testing.T) {
	assert.Equal(t, East, North.RotateCW())
	assert.Equal(t, North, West.RotateCW())
	assert.Equal(t, South, North.Opposite())
	assert.Equal(t, West, East.Opposite())

	assert.Equal(t, East, SideOf(Pt(5, 1)))
	assert.Equal(t, West, SideOf(Pt(-5, 1)))
	assert.Equal(t, South, SideOf(Pt(1, 5)))
	assert.Equal(t, North, SideOf(Pt(0, 0)))

	s, err := ParseSide("East")
	assert.NoError(t, err)
	assert.Equal(t, East, s)
	_, err = ParseSide("up")
	assert.Error(t, err)
}
