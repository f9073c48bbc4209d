package connector

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ritzau/pathlink/pkg/geom"
)

func TestInferSideShape(t *testing.T) {
	tests := []struct {
		relX, relY float64
		want       geom.Side
	}{
		{1, 0, geom.East},
		{-1, 0.5, geom.West},
		{0.2, 1, geom.South},
		{0.2, -1, geom.North},
		{0.5, 0.5, geom.South},
	}
	for _, tt := range tests {
		got := InferSide(SideQuery{Kind: ShapeEndpoint, RelX: tt.relX, RelY: tt.relY}, DefaultPolicy())
		assert.Equal(t, tt.want, got, "rel (%v, %v)", tt.relX, tt.relY)
	}
}

func TestInferSideElbowAnchor(t *testing.T) {
	horizontal := geom.Seg(geom.Pt(0, 0), geom.Pt(100, 0))
	vertical := geom.Seg(geom.Pt(0, 0), geom.Pt(0, 100))

	q := SideQuery{Kind: ElbowAnchorEndpoint, Anchor: geom.Pt(50, 0), HostSegment: horizontal}

	q.FarEnd = geom.Pt(200, 40)
	assert.Equal(t, geom.South, InferSide(q, DefaultPolicy()), "horizontal host, far end below")
	q.FarEnd = geom.Pt(200, -40)
	assert.Equal(t, geom.North, InferSide(q, DefaultPolicy()), "horizontal host, far end above")

	q = SideQuery{Kind: ElbowAnchorEndpoint, Anchor: geom.Pt(0, 50), HostSegment: vertical}
	q.FarEnd = geom.Pt(-10, 500)
	assert.Equal(t, geom.West, InferSide(q, DefaultPolicy()), "vertical host, far end left")
}

func TestInferSideAnchor(t *testing.T) {
	q := SideQuery{
		Kind:        AnchorEndpoint,
		Anchor:      geom.Pt(50, 0),
		HostTangent: geom.Pt(1, 0),
	}

	t.Run("perpendicular keeps candidate", func(t *testing.T) {
		q := q
		q.FarEnd = geom.Pt(50, 100)
		assert.Equal(t, geom.South, InferSide(q, DefaultPolicy()))
	})

	t.Run("aligned rotates clockwise", func(t *testing.T) {
		q := q
		q.FarEnd = geom.Pt(150, 10)
		assert.Equal(t, geom.South, InferSide(q, DefaultPolicy()))

		q.FarEnd = geom.Pt(-150, 10)
		assert.Equal(t, geom.North, InferSide(q, DefaultPolicy()))
	})

	t.Run("threshold is configurable", func(t *testing.T) {
		q := q
		rad := 40 * math.Pi / 180
		q.HostTangent = geom.Pt(math.Cos(rad), math.Sin(rad))
		q.FarEnd = geom.Pt(150, 10)

		assert.Equal(t, geom.East, InferSide(q, DefaultPolicy()), "40 degrees is not aligned at 30")

		p := DefaultPolicy()
		p.AlignmentThreshold = 45
		assert.Equal(t, geom.South, InferSide(q, p), "40 degrees is aligned at 45")
	})

	t.Run("degenerate host never aligned", func(t *testing.T) {
		q := q
		q.HostTangent = geom.Point{}
		q.FarEnd = geom.Pt(150, 10)
		assert.Equal(t, geom.East, InferSide(q, DefaultPolicy()))
	})
}

func TestInferSideFree(t *testing.T) {
	assert.Equal(t, geom.West, InferSide(SideQuery{Kind: FreeEndpoint, Start: true}, DefaultPolicy()))
	assert.Equal(t, geom.East, InferSide(SideQuery{Kind: FreeEndpoint}, DefaultPolicy()))

	// A free start leaves heading east, a free end is entered heading east.
	assert.Equal(t, geom.Pt(1, 0), Endpoint{Side: geom.West, Free: true}.Direction())
	assert.Equal(t, geom.Pt(-1, 0), Endpoint{Side: geom.East, Free: true}.Direction())
}
