package compiler

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/compiled"
	"github.com/vk/facegraph/internal/ctxlog"
	"github.com/vk/facegraph/internal/facegraph"
	"github.com/vk/facegraph/internal/linkfunc"
	"github.com/vk/facegraph/internal/testutil"
)

type edge struct {
	from, to, fn string
	params       []float32
}

func buildGraph(t *testing.T, reg *linkfunc.Registry, nodes [][2]string, edges []edge) *facegraph.Graph {
	t.Helper()
	g := facegraph.New()
	for _, n := range nodes {
		require.NoError(t, g.AddNode(facegraph.NewNode(n[0], n[1])))
	}
	for _, e := range edges {
		_, err := g.LinkByName(reg, e.from, e.to, e.fn, e.params...)
		require.NoError(t, err)
	}
	return g
}

// diamond: c feeds a and b, both feed top, top drives a morph target.
func diamond(t *testing.T, reg *linkfunc.Registry) *facegraph.Graph {
	return buildGraph(t, reg,
		[][2]string{
			{ClassCombiner, "c"},
			{ClassCombiner, "a"},
			{ClassCombiner, "b"},
			{ClassCombiner, "top"},
			{ClassMorphTarget, "smile"},
		},
		[]edge{
			{"c", "a", linkfunc.NameLinear, nil},
			{"c", "b", linkfunc.NameQuadratic, []float32{2}},
			{"a", "top", linkfunc.NameLinear, nil},
			{"b", "top", linkfunc.NameLinear, nil},
			{"top", "smile", linkfunc.NameLinear, nil},
		})
}

type shape struct {
	Name    string
	Type    compiled.NodeType
	Min     float32
	Max     float32
	Op      facegraph.InputOperation
	Sources []string
	FnTypes []linkfunc.Type
}

func compiledShape(g *compiled.Graph) []shape {
	var out []shape
	for i := range int32(g.NumNodes()) {
		n, _ := g.Node(i)
		s := shape{Name: n.Name, Type: n.Type, Min: n.Min, Max: n.Max, Op: n.InputOp}
		for _, l := range g.NodeLinks(i) {
			src, _ := g.Node(l.Source)
			s.Sources = append(s.Sources, src.Name)
			s.FnTypes = append(s.FnTypes, l.FnType)
		}
		out = append(out, s)
	}
	return out
}

type editShape struct {
	Min, Max float32
	Op       facegraph.InputOperation
	Inputs   []string
}

func editableShape(g *facegraph.Graph) map[string]editShape {
	out := make(map[string]editShape)
	for _, n := range g.Nodes() {
		s := editShape{Min: n.Min, Max: n.Max, Op: n.InputOp}
		for _, l := range n.Inputs() {
			s.Inputs = append(s.Inputs, l.SourceName()+"|"+l.FunctionName())
		}
		out[n.Name()] = s
	}
	return out
}

func TestCompile_DiamondCompilesSharedNodeOnce(t *testing.T) {
	reg := linkfunc.NewStarted()
	c := New(reg, nil)

	cg, err := c.Compile(context.Background(), diamond(t, reg))
	require.NoError(t, err)
	assert.Equal(t, 5, cg.NumNodes())
	assert.Equal(t, 4, cg.CountNodesOfType(compiled.NodeCombiner))
	assert.Equal(t, 1, cg.CountNodesOfType(compiled.NodeMorphTarget))
	assert.Equal(t, 5, cg.NumLinks())

	// Every link reads an earlier node.
	for i := range int32(cg.NumNodes()) {
		for _, l := range cg.NodeLinks(i) {
			assert.Less(t, l.Source, i)
		}
	}
	assert.Equal(t, int32(0), cg.FindNodeIndex("c"))
	assert.Equal(t, int32(4), cg.FindNodeIndex("smile"))
}

func TestCompile_Deterministic(t *testing.T) {
	reg := linkfunc.NewStarted()
	c := New(reg, nil)
	g := diamond(t, reg)

	first, err := c.Compile(context.Background(), g)
	require.NoError(t, err)
	second, err := c.Compile(context.Background(), g)
	require.NoError(t, err)

	if diff := cmp.Diff(compiledShape(first), compiledShape(second)); diff != "" {
		t.Errorf("compiling twice differs (-first +second):\n%s", diff)
	}
	want := []string{"c", "a", "b", "top", "smile"}
	var got []string
	for _, s := range compiledShape(first) {
		got = append(got, s.Name)
	}
	assert.Equal(t, want, got)
}

func TestCompile_Failures(t *testing.T) {
	reg := linkfunc.NewStarted()

	testCases := []struct {
		name    string
		build   func(t *testing.T) *facegraph.Graph
		wantErr error
	}{
		{
			name: "two node cycle",
			build: func(t *testing.T) *facegraph.Graph {
				return buildGraph(t, reg,
					[][2]string{{ClassCombiner, "a"}, {ClassCombiner, "b"}},
					[]edge{{"a", "b", linkfunc.NameLinear, nil}, {"b", "a", linkfunc.NameLinear, nil}})
			},
			wantErr: ErrCycle,
		},
		{
			name: "unknown class",
			build: func(t *testing.T) *facegraph.Graph {
				return buildGraph(t, reg, [][2]string{{"wrinkle_map", "w"}}, nil)
			},
			wantErr: ErrUnknownNodeClass,
		},
		{
			name: "unknown link function",
			build: func(t *testing.T) *facegraph.Graph {
				g := buildGraph(t, reg, [][2]string{{ClassCombiner, "a"}, {ClassCombiner, "b"}}, nil)
				g.FindNode("b").AddInputLink(facegraph.UnboundLink("a", "warp"))
				require.NoError(t, g.Bind(reg))
				return g
			},
			wantErr: ErrUnknownLinkFunction,
		},
		{
			name: "unbound link",
			build: func(t *testing.T) *facegraph.Graph {
				g := buildGraph(t, reg, [][2]string{{ClassCombiner, "b"}}, nil)
				g.FindNode("b").AddInputLink(facegraph.UnboundLink("ghost", linkfunc.NameLinear))
				return g
			},
			wantErr: ErrUnboundLink,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cg, err := New(reg, nil).Compile(context.Background(), tc.build(t))
			assert.Nil(t, cg)
			require.ErrorIs(t, err, tc.wantErr)
			var ge *GraphError
			assert.ErrorAs(t, err, &ge)
		})
	}
}

func TestDecompile_RoundTrip(t *testing.T) {
	reg := linkfunc.NewStarted()
	c := New(reg, nil)
	g := diamond(t, reg)
	g.FindNode("top").InputOp = facegraph.OpMax
	g.FindNode("smile").Min = -1
	g.FindNode("smile").AddUserProperty(facegraph.StringProperty("target", "Smile"))

	cg, err := c.Compile(context.Background(), g)
	require.NoError(t, err)
	back, err := c.Decompile(context.Background(), cg)
	require.NoError(t, err)

	if diff := cmp.Diff(editableShape(g), editableShape(back)); diff != "" {
		t.Errorf("round trip differs (-orig +decompiled):\n%s", diff)
	}
	assert.Equal(t, ClassMorphTarget, back.FindNode("smile").Class())
	p, ok := back.FindNode("smile").FindUserProperty("target")
	require.True(t, ok)
	assert.Equal(t, "Smile", p.Str())
	assert.Equal(t, []float32{2}, back.FindNode("b").Inputs()[0].Params())
	assert.False(t, back.HasCycles())
}

func TestDecompile_FromLoadedBlob(t *testing.T) {
	reg := linkfunc.NewStarted()
	c := New(reg, nil)
	cg, err := c.Compile(context.Background(), diamond(t, reg))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cg.Serialize(archive.NewWriter(&buf)))
	loaded := &compiled.Graph{}
	require.NoError(t, loaded.Serialize(archive.NewReader(&buf)))

	// Unbound links fall back to the registry by type.
	back, err := c.Decompile(context.Background(), loaded)
	require.NoError(t, err)
	assert.Equal(t, 5, back.Len())
	assert.Equal(t, linkfunc.NameQuadratic, back.FindNode("b").Inputs()[0].FunctionName())
}

func TestCompile_EvaluatesDiamond(t *testing.T) {
	reg := linkfunc.NewStarted()
	cg, err := New(reg, nil).Compile(context.Background(), diamond(t, reg))
	require.NoError(t, err)

	in := compiled.NewInstance(cg)
	in.SetUserValue(cg.FindNodeIndex("c"), 0.25, compiled.OpReplace)
	in.Tick(0)
	// a = 0.25, b = 2 * 0.25^2 = 0.125
	assert.InDelta(t, 0.375, in.FinalValue(cg.FindNodeIndex("smile")), 1e-6)
}

func TestCompileAsset_KeepsPreviousOnFailure(t *testing.T) {
	reg := linkfunc.NewStarted()
	c := New(reg, nil)
	g := diamond(t, reg)

	var logs testutil.SafeBuffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, nil)))

	var asset Asset
	assert.Nil(t, asset.Graph())
	require.NoError(t, c.CompileAsset(ctx, &asset, g))
	first := asset.Graph()
	require.NotNil(t, first)

	_, err := g.LinkByName(reg, "smile", "c", linkfunc.NameLinear)
	require.NoError(t, err)
	require.ErrorIs(t, c.CompileAsset(ctx, &asset, g), ErrCycle)
	assert.Same(t, first, asset.Graph())
	assert.True(t, strings.Contains(logs.String(), "keeping previous compiled graph"))
}

func TestNodeTypeTable(t *testing.T) {
	types := DefaultNodeTypes()
	assert.Equal(t, []string{
		ClassBonePose, ClassCombiner, ClassCurrentTime, ClassDelta,
		ClassGenericTarget, ClassMaterialParameter, ClassMorphTarget,
	}, types.Classes())

	nt, ok := types.Lookup(ClassDelta)
	require.True(t, ok)
	n := nt.New("speed")
	assert.Equal(t, float32(-1), n.Min)
	assert.Equal(t, ClassDelta, n.Class())

	require.NoError(t, types.Register("eyelid", compiled.NodeBonePose, nil))
	assert.ErrorIs(t, types.Register("eyelid", compiled.NodeBonePose, nil), ErrDuplicateNodeClass)
	assert.Panics(t, func() { types.MustRegister(ClassCombiner, compiled.NodeCombiner, nil) })

	bp, ok := types.ForType(compiled.NodeBonePose)
	require.True(t, ok)
	assert.Equal(t, ClassBonePose, bp.Class, "the first class registered for a type decompiles it")

	_, ok = types.ForType(compiled.NodeType(42))
	assert.False(t, ok)
}
