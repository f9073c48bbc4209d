package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/geom"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
)

func box(id string, kind model.ElementKind, x, y float64) model.RawElement {
	return model.RawElement{ID: id, Kind: kind, X: x, Y: y, Width: 40, Height: 40}
}

func line(id string, topology model.Topology, pts ...model.RawPoint) model.RawElement {
	return model.RawElement{ID: id, Kind: model.KindLine, Topology: topology, Points: pts}
}

func build(t *testing.T, elements ...model.RawElement) (*pathway.Document, diag.List) {
	t.Helper()
	doc, diags, err := Build(&model.RawDocument{Name: "test", Elements: elements}, pathway.DefaultOptions())
	require.NoError(t, err)
	return doc, diags
}

func TestForwardGroupReferences(t *testing.T) {
	elements := []model.RawElement{
		{ID: "G2", Kind: model.KindGroup, GroupRef: "G1"},
		{ID: "N1", Kind: model.KindDataNode, GroupRef: "G2", X: 100, Y: 100, Width: 40, Height: 20},
		{ID: "G1", Kind: model.KindGroup},
	}
	reversed := []model.RawElement{elements[2], elements[1], elements[0]}

	forward, diags := build(t, elements...)
	assert.Empty(t, diags)
	backward, _ := build(t, reversed...)

	for _, doc := range []*pathway.Document{forward, backward} {
		g2, ok := doc.Lookup("G2")
		require.True(t, ok)
		assert.Equal(t, "G1", g2.GroupRef)

		b, err := doc.Bounds("G1")
		require.NoError(t, err)
		assert.InDelta(t, 40+4*8, b.Width, 1e-9)
		assert.InDelta(t, 20+4*8, b.Height, 1e-9)
		assert.True(t, b.Center.ApproxEqual(geom.Pt(100, 100), 1e-6))
	}
}

func TestDuplicateIDIsHardError(t *testing.T) {
	_, _, err := Build(&model.RawDocument{Elements: []model.RawElement{
		box("A", model.KindDataNode, 0, 0),
		box("A", model.KindShape, 10, 10),
	}}, pathway.DefaultOptions())
	assert.ErrorIs(t, err, diag.ErrDuplicateID)
}

func TestAnchorIDCollidesWithElement(t *testing.T) {
	l := line("L", model.TopologyStraight, model.RawPoint{X: 0, Y: 0}, model.RawPoint{X: 100, Y: 0})
	l.Anchors = []model.RawAnchor{{ID: "A", Position: 0.5}}

	_, _, err := Build(&model.RawDocument{Elements: []model.RawElement{
		l,
		box("A", model.KindDataNode, 0, 0),
	}}, pathway.DefaultOptions())
	assert.ErrorIs(t, err, diag.ErrDuplicateID)
}

func TestGeneratedIDs(t *testing.T) {
	doc, diags := build(t,
		model.RawElement{Kind: model.KindLine, Points: []model.RawPoint{{X: 0, Y: 0}, {X: 10, Y: 0}},
			Anchors: []model.RawAnchor{{Position: 0.5}}},
		box("line1", model.KindShape, 0, 0),
	)
	assert.Empty(t, diags)
	lines := doc.Lines()
	require.Len(t, lines, 1)
	assert.NotEqual(t, "line1", lines[0].ID)
	require.Len(t, lines[0].Line.Anchors, 1)
	assert.NotEmpty(t, lines[0].Line.Anchors[0].ID)
	assert.Equal(t, model.AnchorNone, lines[0].Line.Anchors[0].Shape)
}

func TestUnknownKindIsSkipped(t *testing.T) {
	doc, diags := build(t,
		model.RawElement{ID: "X", Kind: "Legend"},
		box("A", model.KindShape, 0, 0),
	)
	_, ok := doc.Lookup("X")
	assert.False(t, ok)
	require.Len(t, diags.For("X"), 1)
	assert.Equal(t, diag.KindStructuralViolation, diags.For("X")[0].Kind)
}

func TestAnchorOutOfRange(t *testing.T) {
	l := line("L", model.TopologyStraight, model.RawPoint{X: 0, Y: 0}, model.RawPoint{X: 100, Y: 0})
	l.Anchors = []model.RawAnchor{{ID: "bad", Position: 1.5}, {ID: "good", Position: 0.25}}

	doc, diags := build(t, l)

	_, ok := doc.Lookup("bad")
	assert.False(t, ok)
	require.Len(t, diags.For("bad"), 1)
	assert.Equal(t, diag.KindInvalidParameter, diags.For("bad")[0].Kind)

	p, err := doc.AnchorPosition("good")
	require.NoError(t, err)
	assert.True(t, p.ApproxEqual(geom.Pt(25, 0), 1e-6))
}

func TestLineWithTooFewPoints(t *testing.T) {
	doc, diags := build(t, line("L", model.TopologyElbow, model.RawPoint{X: 5, Y: 5}))

	require.Len(t, diags.For("L"), 1)
	assert.Equal(t, diag.KindStructuralViolation, diags.For("L")[0].Kind)

	s, err := doc.Shape("L")
	require.NoError(t, err)
	assert.False(t, s.Routable())
}

func TestDanglingReferenceDemotesPoint(t *testing.T) {
	doc, diags := build(t,
		box("A", model.KindDataNode, 0, 0),
		line("L", model.TopologyStraight,
			model.RawPoint{X: 20, Y: 0, GraphRef: "A", RelX: 1},
			model.RawPoint{X: 100, Y: 0, GraphRef: "missing"}),
	)

	ds := diags.For("L")
	require.Len(t, ds, 1)
	assert.Equal(t, diag.KindDanglingReference, ds[0].Kind)
	assert.ErrorIs(t, ds[0], diag.ErrDanglingReference)

	el, _ := doc.Lookup("L")
	assert.True(t, el.Line.Start().Linked())
	assert.False(t, el.Line.End().Linked())
	assert.Equal(t, geom.Pt(100, 0), el.Line.End().Pos)
}

func TestLinkToUnlinkableKind(t *testing.T) {
	_, diags := build(t,
		line("L1", model.TopologyStraight, model.RawPoint{X: 0, Y: 0}, model.RawPoint{X: 10, Y: 0}),
		line("L2", model.TopologyStraight,
			model.RawPoint{X: 0, Y: 10, GraphRef: "L1"},
			model.RawPoint{X: 10, Y: 10}),
	)
	ds := diags.For("L2")
	require.Len(t, ds, 1)
	assert.Equal(t, diag.KindInvalidParameter, ds[0].Kind)
}

func TestCyclicGroupRefTerminates(t *testing.T) {
	doc, diags := build(t,
		model.RawElement{ID: "G1", Kind: model.KindGroup, GroupRef: "G2"},
		model.RawElement{ID: "G2", Kind: model.KindGroup, GroupRef: "G3"},
		model.RawElement{ID: "G3", Kind: model.KindGroup, GroupRef: "G1"},
		box("N", model.KindDataNode, 0, 0),
	)

	ds := diags.For("G3")
	require.Len(t, ds, 1)
	assert.Equal(t, diag.KindStructuralViolation, ds[0].Kind)

	g1, _ := doc.Lookup("G1")
	g3, _ := doc.Lookup("G3")
	assert.Equal(t, "G2", g1.GroupRef)
	assert.Empty(t, g3.GroupRef)

	_, err := doc.Bounds("G3")
	assert.NoError(t, err)
}

func TestSelfContainedGroup(t *testing.T) {
	doc, diags := build(t, model.RawElement{ID: "G", Kind: model.KindGroup, GroupRef: "G"})
	require.Len(t, diags.For("G"), 1)
	g, _ := doc.Lookup("G")
	assert.Empty(t, g.GroupRef)
}

func TestStateFollowsHost(t *testing.T) {
	doc, diags := build(t,
		model.RawElement{ID: "S", Kind: model.KindState, GraphRef: "N", RelX: 1, RelY: -1, Width: 10, Height: 10},
		model.RawElement{ID: "N", Kind: model.KindDataNode, X: 50, Y: 50, Width: 80, Height: 40},
	)
	assert.Empty(t, diags)
	s, _ := doc.Lookup("S")
	assert.True(t, s.Bounds.Center.ApproxEqual(geom.Pt(90, 30), 1e-6))
}

func TestAnchorChainResolves(t *testing.T) {
	host := line("L1", model.TopologyStraight, model.RawPoint{X: 0, Y: 0}, model.RawPoint{X: 100, Y: 0})
	host.Anchors = []model.RawAnchor{{ID: "a1", Position: 0.5}}

	doc, diags := build(t,
		line("L2", model.TopologyStraight,
			model.RawPoint{X: 0, Y: 0, GraphRef: "a1"},
			model.RawPoint{X: 50, Y: 100}),
		host,
	)
	assert.Empty(t, diags)

	s, err := doc.Shape("L2")
	require.NoError(t, err)
	assert.True(t, s.Start.ApproxEqual(geom.Pt(50, 0), 1e-6))
}

func TestInteriorPointsArePreferredWaypoints(t *testing.T) {
	doc, _ := build(t,
		line("E", model.TopologyElbow,
			model.RawPoint{X: 0, Y: 0},
			model.RawPoint{X: 40, Y: 50},
			model.RawPoint{X: 100, Y: 100}),
		line("S", model.TopologyStraight,
			model.RawPoint{X: 0, Y: 0},
			model.RawPoint{X: 40, Y: 50},
			model.RawPoint{X: 100, Y: 100}),
	)
	e, _ := doc.Lookup("E")
	assert.True(t, e.Line.PreferredWaypoints)
	s, _ := doc.Lookup("S")
	assert.False(t, s.Line.PreferredWaypoints)
	assert.Len(t, s.Line.Points, 2)
}

func TestPassOrder(t *testing.T) {
	r := New(pathway.New(pathway.DefaultOptions()))
	assert.ErrorIs(t, r.ResolveLinks(), ErrPassOrder)

	require.NoError(t, r.Register(box("A", model.KindShape, 0, 0)))
	require.NoError(t, r.ResolveGroups())
	assert.ErrorIs(t, r.ResolveGroups(), ErrPassOrder)
	assert.ErrorIs(t, r.Register(box("B", model.KindShape, 0, 0)), ErrPassOrder)
	require.NoError(t, r.ResolveLines())
	require.NoError(t, r.ResolveLinks())
}

func TestExportRoundTrip(t *testing.T) {
	l := line("L", model.TopologyElbow,
		model.RawPoint{X: 20, Y: 0, GraphRef: "S", RelX: 1},
		model.RawPoint{X: 100, Y: 100, GraphRef: "T", RelX: -1, ArrowHead: model.Arrow})
	l.Anchors = []model.RawAnchor{{ID: "a1", Position: 0.3, Shape: model.AnchorCircular}}

	doc, diags := build(t,
		box("S", model.KindDataNode, 0, 0),
		box("T", model.KindDataNode, 120, 100),
		l,
		model.RawElement{ID: "St", Kind: model.KindState, GraphRef: "S", RelX: -1, RelY: -1, Width: 8, Height: 8},
	)
	require.Empty(t, diags)

	ch, err := doc.Move("S", 10, 0)
	require.NoError(t, err)
	doc.Propagate(ch)

	raw := doc.Export()
	again, diags := build(t, raw.Elements...)
	require.Empty(t, diags)

	want, err := doc.Shape("L")
	require.NoError(t, err)
	got, err := again.Shape("L")
	require.NoError(t, err)
	assert.Equal(t, len(want.Segments), len(got.Segments))
	for i := range want.Segments {
		assert.True(t, want.Segments[i].Start.ApproxEqual(got.Segments[i].Start, 1e-6))
		assert.True(t, want.Segments[i].End.ApproxEqual(got.Segments[i].End, 1e-6))
	}
	assert.True(t, got.Reused)

	p1, _ := doc.AnchorPosition("a1")
	p2, err := again.AnchorPosition("a1")
	require.NoError(t, err)
	assert.True(t, p1.ApproxEqual(p2, 1e-6))

	st, _ := again.Lookup("St")
	assert.True(t, st.Bounds.Center.ApproxEqual(geom.Pt(-10, -20), 1e-6))
	assert.Equal(t, raw, again.Export())
}
