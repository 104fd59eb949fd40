package compiled

import (
	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/facegraph"
	"github.com/vk/facegraph/internal/linkfunc"
)

// Node is one flattened node. Its input links are the window
// [FirstLink, FirstLink+NumLinks) of the graph's link array.
type Node struct {
	Name    string
	Type    NodeType
	Min     float32
	Max     float32
	InvMin  float32 // 1/Min, or 0 when Min is 0
	InvMax  float32 // 1/Max, or 0 when Max is 0
	InputOp facegraph.InputOperation

	FirstLink int32
	NumLinks  int32

	Properties []facegraph.UserProperty
}

func reciprocal(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

func (n *Node) precompute() {
	n.InvMin = reciprocal(n.Min)
	n.InvMax = reciprocal(n.Max)
}

func (n *Node) clamp(v float32) float32 {
	return min(max(v, n.Min), n.Max)
}

const nodeVersion = 1

// Serialize reads or writes the node. The reciprocals are recomputed on
// load rather than stored.
func (n *Node) Serialize(ar archive.Archive) error {
	ar.Version("CompiledFaceGraphNode", nodeVersion)
	ar.String(&n.Name)
	typ := int32(n.Type)
	ar.Int32(&typ)
	n.Type = NodeType(typ)
	ar.Float32(&n.Min)
	ar.Float32(&n.Max)
	op := int32(n.InputOp)
	ar.Int32(&op)
	n.InputOp = facegraph.InputOperation(op)
	ar.Int32(&n.FirstLink)
	ar.Int32(&n.NumLinks)
	if err := facegraph.SerializeProperties(ar, &n.Properties); err != nil {
		return err
	}
	if ar.IsLoading() {
		n.precompute()
	}
	return ar.Err()
}

// Link is a flattened input edge addressing its source by node index.
type Link struct {
	Source int32
	FnType linkfunc.Type
	Params linkfunc.Parameters

	fn *linkfunc.Descriptor
}

// NewLink returns a link from the node at source through fn.
func NewLink(source int32, fn *linkfunc.Descriptor, params ...float32) Link {
	l := Link{Source: source, FnType: linkfunc.TypeInvalid, Params: linkfunc.Parameters(params).Clone(), fn: fn}
	if fn != nil {
		l.FnType = fn.Type
	}
	return l
}

// Function returns the bound descriptor, or nil before Bind.
func (l *Link) Function() *linkfunc.Descriptor { return l.fn }

// Corrective reports whether the bound function is corrective.
func (l *Link) Corrective() bool { return l.fn != nil && l.fn.Corrective }

func (l *Link) eval(x float32) float32 {
	if l.fn == nil || l.fn.Eval == nil {
		return 0
	}
	return l.fn.Eval(x, l.Params)
}

const linkVersion = 1

// Serialize reads or writes the link. A loaded link is unbound.
func (l *Link) Serialize(ar archive.Archive) error {
	ar.Version("CompiledFaceGraphLink", linkVersion)
	ar.Int32(&l.Source)
	typ := int32(l.FnType)
	ar.Int32(&typ)
	l.FnType = linkfunc.Type(typ)
	if err := l.Params.Serialize(ar); err != nil {
		return err
	}
	if ar.IsLoading() {
		l.fn = nil
	}
	return ar.Err()
}
