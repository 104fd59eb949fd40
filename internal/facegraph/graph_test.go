package facegraph

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/linkfunc"
)

// buildGraph wires up jaw and lip sources feeding a mouth combiner that
// drives a morph target, plus a corrective link.
func buildGraph(t *testing.T, reg *linkfunc.Registry) *Graph {
	t.Helper()
	g := New()
	for _, n := range []*Node{
		NewNode("combiner", "jaw"),
		NewNode("combiner", "lips"),
		NewNode("combiner", "mouth"),
		NewNode("morph_target", "mouth_open"),
	} {
		require.NoError(t, g.AddNode(n))
	}
	g.FindNode("mouth_open").AddUserProperty(StringProperty("target", "MouthOpen"))
	_, err := g.LinkByName(reg, "jaw", "mouth", linkfunc.NameLinear, 0.5)
	require.NoError(t, err)
	_, err = g.LinkByName(reg, "lips", "mouth", linkfunc.NameQuadratic)
	require.NoError(t, err)
	_, err = g.LinkByName(reg, "mouth", "mouth_open", linkfunc.NameLinear)
	require.NoError(t, err)
	_, err = g.LinkByName(reg, "lips", "mouth_open", linkfunc.NameCorrective, 0.8)
	require.NoError(t, err)
	return g
}

type linkShape struct {
	Source string
	Fn     string
	Params []float32
}

type nodeShape struct {
	Name, Class string
	Min, Max    float32
	Op          InputOperation
	Inputs      []linkShape
	Outputs     []string
	Props       int
}

func shapeOf(g *Graph) []nodeShape {
	var out []nodeShape
	for _, n := range g.Nodes() {
		s := nodeShape{Name: n.Name(), Class: n.Class(), Min: n.Min, Max: n.Max, Op: n.InputOp, Props: len(n.UserProperties())}
		for _, l := range n.Inputs() {
			s.Inputs = append(s.Inputs, linkShape{Source: l.SourceName(), Fn: l.FunctionName(), Params: l.Params()})
		}
		for _, o := range n.Outputs() {
			s.Outputs = append(s.Outputs, o.Name())
		}
		out = append(out, s)
	}
	return out
}

func TestGraph_AddAndFind(t *testing.T) {
	g := New()
	require.NoError(t, g.AddNode(NewNode("combiner", "a")))
	assert.ErrorIs(t, g.AddNode(NewNode("delta", "a")), ErrDuplicateNode)
	assert.NotNil(t, g.FindNode("a"))
	assert.Nil(t, g.FindNode("b"))
	assert.Equal(t, 1, g.Len())
}

func TestGraph_Link(t *testing.T) {
	reg := linkfunc.NewStarted()
	g := buildGraph(t, reg)

	_, err := g.LinkByName(reg, "nope", "mouth", linkfunc.NameLinear)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = g.LinkByName(reg, "jaw", "nope", linkfunc.NameLinear)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, err = g.LinkByName(reg, "jaw", "mouth", "bogus")
	assert.ErrorIs(t, err, ErrUnknownLinkFunction)

	var names []string
	for _, n := range g.Terminals() {
		names = append(names, n.Name())
	}
	assert.Equal(t, []string{"mouth_open"}, names)
	assert.False(t, g.HasCycles())
}

func TestGraph_RemoveNode(t *testing.T) {
	reg := linkfunc.NewStarted()
	g := buildGraph(t, reg)

	require.NoError(t, g.RemoveNode("lips"))
	assert.Nil(t, g.FindNode("lips"))
	assert.Equal(t, 1, g.FindNode("mouth").NumInputs())
	assert.Equal(t, 1, g.FindNode("mouth_open").NumInputs())

	require.NoError(t, g.RemoveNode("mouth"))
	assert.Empty(t, g.FindNode("jaw").Outputs())
	assert.Zero(t, g.FindNode("mouth_open").NumInputs())

	assert.ErrorIs(t, g.RemoveNode("mouth"), ErrNodeNotFound)
}

func TestGraph_FindCycle(t *testing.T) {
	reg := linkfunc.NewStarted()
	g := buildGraph(t, reg)
	_, err := g.LinkByName(reg, "mouth_open", "jaw", linkfunc.NameLinear)
	require.NoError(t, err)

	at, found := g.FindCycle()
	require.True(t, found)
	assert.Contains(t, []string{"jaw", "mouth", "mouth_open"}, at.Name())
}

func TestGraph_Clone(t *testing.T) {
	reg := linkfunc.NewStarted()
	g := buildGraph(t, reg)
	c := g.Clone()

	if diff := cmp.Diff(shapeOf(g), shapeOf(c)); diff != "" {
		t.Errorf("clone differs (-orig +clone):\n%s", diff)
	}
	assert.NotSame(t, g.FindNode("mouth"), c.FindNode("mouth"))
	assert.Same(t, c.FindNode("jaw"), c.FindNode("mouth").Inputs()[0].Source())
}

func TestGraph_SerializeRoundTrip(t *testing.T) {
	reg := linkfunc.NewStarted()
	g := buildGraph(t, reg)

	var buf bytes.Buffer
	require.NoError(t, g.Serialize(archive.NewWriter(&buf), reg))

	loaded := New()
	require.NoError(t, loaded.Serialize(archive.NewReader(&buf), reg))

	if diff := cmp.Diff(shapeOf(g), shapeOf(loaded)); diff != "" {
		t.Errorf("loaded graph differs (-saved +loaded):\n%s", diff)
	}
	l := loaded.FindNode("mouth_open").Inputs()[1]
	assert.True(t, l.Corrective())
	assert.Equal(t, linkfunc.TypeCorrective, l.FunctionType())
	assert.Same(t, loaded.FindNode("lips"), l.Source())

	p, ok := loaded.FindNode("mouth_open").FindUserProperty("target")
	require.True(t, ok)
	assert.Equal(t, "MouthOpen", p.Str())
}

func TestNodeLink_LoadVersionOne(t *testing.T) {
	reg := linkfunc.NewStarted()

	// A version 1 link stored a function tag that is stale: 3 is cubic, but
	// the name says linear. The name wins.
	var buf bytes.Buffer
	w := archive.NewWriter(&buf)
	w.Version("NodeLink", 1)
	src, stale, fn := "jaw", int32(linkfunc.TypeCubic), linkfunc.NameLinear
	w.String(&src)
	w.Int32(&stale)
	w.String(&fn)
	params := linkfunc.Parameters{2}
	require.NoError(t, params.Serialize(w))

	var l NodeLink
	require.NoError(t, l.Serialize(archive.NewReader(&buf), reg))
	assert.Equal(t, "jaw", l.SourceName())
	assert.Equal(t, linkfunc.TypeLinear, l.FunctionType())
	assert.Equal(t, []float32{2}, l.Params())
}

func TestNodeLink_LoadDeprecatedClearsParams(t *testing.T) {
	reg := linkfunc.NewStarted()
	src := NewNode("combiner", "jaw")
	l := NewNodeLink(src, reg.FindByName(linkfunc.NamePerlinNoise), 1, 2, 3)

	var buf bytes.Buffer
	require.NoError(t, l.Serialize(archive.NewWriter(&buf), reg))

	var loaded NodeLink
	require.NoError(t, loaded.Serialize(archive.NewReader(&buf), reg))
	assert.Equal(t, linkfunc.TypePerlinNoise, loaded.FunctionType())
	assert.Empty(t, loaded.Params())
}

func TestGraph_BindMissingSource(t *testing.T) {
	g := New()
	n := NewNode("combiner", "a")
	n.AddInputLink(UnboundLink("ghost", linkfunc.NameLinear))
	require.NoError(t, g.AddNode(n))
	assert.ErrorIs(t, g.Bind(linkfunc.NewStarted()), ErrNodeNotFound)
}

func TestGraph_BindFailureKeepsOutputs(t *testing.T) {
	reg := linkfunc.NewStarted()
	g := New()
	jaw := NewNode("combiner", "jaw")
	mouth := NewNode("morph_target", "mouth")
	require.NoError(t, g.AddNode(jaw))
	require.NoError(t, g.AddNode(mouth))
	_, err := g.LinkByName(reg, "jaw", "mouth", linkfunc.NameLinear)
	require.NoError(t, err)

	mouth.AddInputLink(UnboundLink("ghost", linkfunc.NameLinear))
	require.ErrorIs(t, g.Bind(reg), ErrNodeNotFound)

	assert.Equal(t, []*Node{mouth}, jaw.Outputs())
	assert.Equal(t, []*Node{mouth}, g.Terminals())
}
