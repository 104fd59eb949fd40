package facegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/facegraph/internal/linkfunc"
)

func newTestLink(t *testing.T, src *Node, fn string, params ...float32) *NodeLink {
	t.Helper()
	l, err := NewNodeLinkByName(linkfunc.NewStarted(), src, fn, params...)
	require.NoError(t, err)
	return l
}

func TestNode_InputLinks(t *testing.T) {
	a := NewNode("combiner", "a")
	b := NewNode("combiner", "b")
	c := NewNode("combiner", "c")

	t.Run("add keeps outputs consistent", func(t *testing.T) {
		c.AddInputLink(newTestLink(t, a, linkfunc.NameLinear))
		c.AddInputLink(newTestLink(t, a, linkfunc.NameCubic, 2))
		c.AddInputLink(newTestLink(t, b, linkfunc.NameNegate))

		assert.Equal(t, 3, c.NumInputs())
		assert.Equal(t, []*Node{c}, a.Outputs(), "duplicate source links record the consumer once")
		assert.Equal(t, []*Node{c}, b.Outputs())
	})

	t.Run("out of range", func(t *testing.T) {
		assert.ErrorIs(t, c.RemoveInputLink(3), ErrLinkIndexOutOfRange)
		assert.ErrorIs(t, c.RemoveInputLink(-1), ErrLinkIndexOutOfRange)
		assert.ErrorIs(t, c.ModifyInputLink(7, newTestLink(t, a, linkfunc.NameLinear)), ErrLinkIndexOutOfRange)
		_, err := c.InputLink(3)
		assert.ErrorIs(t, err, ErrLinkIndexOutOfRange)
	})

	t.Run("remove keeps source while another link remains", func(t *testing.T) {
		require.NoError(t, c.RemoveInputLink(0))
		assert.Equal(t, []*Node{c}, a.Outputs())

		require.NoError(t, c.RemoveInputLink(0))
		assert.Empty(t, a.Outputs())
		assert.Equal(t, 1, c.NumInputs())
	})

	t.Run("modify moves the back-reference", func(t *testing.T) {
		require.NoError(t, c.ModifyInputLink(0, newTestLink(t, a, linkfunc.NameLinear)))
		assert.Empty(t, b.Outputs())
		assert.Equal(t, []*Node{c}, a.Outputs())

		l, err := c.InputLink(0)
		require.NoError(t, err)
		assert.Equal(t, "a", l.SourceName())
	})
}

func TestNode_UserProperties(t *testing.T) {
	n := NewNode("bone_pose", "jaw")

	n.AddUserProperty(StringProperty("bone", "jaw_bone"))
	n.AddUserProperty(StringProperty("bone", "ignored"))
	p, ok := n.FindUserProperty("bone")
	require.True(t, ok)
	assert.Equal(t, "jaw_bone", p.Str(), "add is a no-op for an existing name")

	n.ReplaceUserProperty(StringProperty("bone", "chin_bone"))
	p, _ = n.FindUserProperty("bone")
	assert.Equal(t, "chin_bone", p.Str())

	n.ReplaceUserProperty(IntProperty("missing", 3))
	_, ok = n.FindUserProperty("missing")
	assert.False(t, ok, "replace is a no-op for a missing name")

	n.AddUserProperty(IntProperty("lod", 2))
	assert.Len(t, n.UserProperties(), 2)
	n.RemoveUserProperty("lod")
	assert.Len(t, n.UserProperties(), 1)
}

func TestNode_HasCycles(t *testing.T) {
	t.Run("diamond is not a cycle", func(t *testing.T) {
		c := NewNode("combiner", "c")
		a := NewNode("combiner", "a")
		b := NewNode("combiner", "b")
		top := NewNode("combiner", "top")
		a.AddInputLink(newTestLink(t, c, linkfunc.NameLinear))
		b.AddInputLink(newTestLink(t, c, linkfunc.NameLinear))
		top.AddInputLink(newTestLink(t, a, linkfunc.NameLinear))
		top.AddInputLink(newTestLink(t, b, linkfunc.NameLinear))

		assert.False(t, top.HasCycles())
		assert.False(t, top.HasCycles(), "a second traversal sees no leftover markers")
	})

	t.Run("two node cycle", func(t *testing.T) {
		a := NewNode("combiner", "a")
		b := NewNode("combiner", "b")
		a.AddInputLink(newTestLink(t, b, linkfunc.NameLinear))
		b.AddInputLink(newTestLink(t, a, linkfunc.NameLinear))
		assert.True(t, a.HasCycles())
		assert.True(t, b.HasCycles())
	})

	t.Run("self link", func(t *testing.T) {
		a := NewNode("combiner", "a")
		a.AddInputLink(newTestLink(t, a, linkfunc.NameLinear))
		assert.True(t, a.HasCycles())
	})
}

func TestNode_Clone(t *testing.T) {
	src := NewNode("combiner", "src")
	n := NewNode("morph_target", "smile")
	n.Min, n.Max, n.InputOp = -1, 2, OpMultiply
	n.AddUserProperty(StringProperty("target", "Smile_L"))
	n.AddInputLink(newTestLink(t, src, linkfunc.NameLinear))

	c := n.Clone()
	assert.Equal(t, "smile", c.Name())
	assert.Equal(t, "morph_target", c.Class())
	assert.Equal(t, float32(-1), c.Min)
	assert.Equal(t, float32(2), c.Max)
	assert.Equal(t, OpMultiply, c.InputOp)
	assert.Zero(t, c.NumInputs(), "inputs are structural and not cloned")
	assert.Empty(t, c.Outputs())

	c.ReplaceUserProperty(StringProperty("target", "Frown"))
	p, _ := n.FindUserProperty("target")
	assert.Equal(t, "Smile_L", p.Str(), "properties are copied by value")
}

func TestNodeLink_Function(t *testing.T) {
	reg := linkfunc.NewStarted()
	src := NewNode("combiner", "src")

	l, err := NewNodeLinkByName(reg, src, linkfunc.NameLinear, 2)
	require.NoError(t, err)
	assert.Equal(t, linkfunc.TypeLinear, l.FunctionType())
	assert.False(t, l.Corrective())

	require.NoError(t, l.SetFunction(reg, linkfunc.NameCorrective))
	assert.Equal(t, linkfunc.TypeCorrective, l.FunctionType())
	assert.True(t, l.Corrective())

	assert.ErrorIs(t, l.SetFunction(reg, "bogus"), ErrUnknownLinkFunction)
	_, err = NewNodeLinkByName(reg, src, "bogus")
	assert.ErrorIs(t, err, ErrUnknownLinkFunction)
}
