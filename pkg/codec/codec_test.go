package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/pathlink/pkg/model"
)

func sample() *model.RawDocument {
	return &model.RawDocument{
		Name: "glycolysis",
		Elements: []model.RawElement{
			{ID: "G", Kind: model.KindGroup},
			{ID: "A", Kind: model.KindDataNode, GroupRef: "G", X: 10, Y: 20, Width: 80, Height: 30},
			{ID: "L", Kind: model.KindLine, Topology: model.TopologyElbow,
				Points: []model.RawPoint{
					{X: 50, Y: 20, GraphRef: "A", RelX: 1},
					{X: 200, Y: 120, ArrowHead: model.Arrow},
				},
				Anchors: []model.RawAnchor{{ID: "a1", Position: 0.5, Shape: model.AnchorCircular}},
			},
		},
	}
}

func TestCodecs(t *testing.T) {
	for _, c := range []Codec{JSON{}, YAML{}, Msgpack{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, c.Encode(&buf, sample()))
			got, err := c.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, sample(), got)
		})
	}
}

func TestJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON{}.Encode(&buf, sample()))
	out := buf.String()
	assert.Contains(t, out, `"groupRef": "G"`)
	assert.Contains(t, out, `"graphRef": "A"`)
	assert.Contains(t, out, `"arrowHead": "Arrow"`)
	assert.NotContains(t, out, `"rotation"`)
}

func TestDecodeYAMLByHand(t *testing.T) {
	src := `
name: small
elements:
  - id: A
    kind: DataNode
    x: 0
    y: 0
    width: 40
    height: 40
  - kind: Interaction
    points:
      - {x: 20, y: 0, graphRef: A, relX: 1}
      - {x: 100, y: 0}
`
	doc, err := YAML{}.Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, doc.Elements, 2)
	assert.Equal(t, model.ElementKind("Interaction"), doc.Elements[1].Kind)
	assert.Equal(t, "A", doc.Elements[1].Points[0].GraphRef)
}

func TestDecodeErrors(t *testing.T) {
	_, err := JSON{}.Decode(strings.NewReader("{"))
	assert.Error(t, err)
	_, err = YAML{}.Decode(strings.NewReader("elements: [1, 2"))
	assert.Error(t, err)
}

func TestForPath(t *testing.T) {
	for path, want := range map[string]string{
		"a.json":          "json",
		"dir/b.YAML":      "yaml",
		"c.yml":           "yaml",
		"pathway.msgpack": "msgpack",
	} {
		c, err := ForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, c.Name(), path)
	}

	_, err := ForPath("noext")
	assert.Error(t, err)
	_, err = ForPath("a.gpml")
	assert.Error(t, err)
}
