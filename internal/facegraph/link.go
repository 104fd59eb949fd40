package facegraph

import (
	"fmt"

	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/linkfunc"
)

// NodeLink is an input edge of a node: a source node, a link function and
// the function's parameter values.
type NodeLink struct {
	source string
	node   *Node // resolved from source; nil until bound

	fnName     string
	fnType     linkfunc.Type // always derived from fnName
	corrective bool

	params linkfunc.Parameters
}

// NewNodeLink returns a link from source through fn. An empty params list
// selects the function's zero-parameter form.
func NewNodeLink(source *Node, fn *linkfunc.Descriptor, params ...float32) *NodeLink {
	l := &NodeLink{
		source: source.Name(),
		node:   source,
		params: linkfunc.Parameters(params).Clone(),
	}
	l.setDescriptor(fn)
	return l
}

// NewNodeLinkByName resolves fnName against reg and returns a link from
// source through it.
func NewNodeLinkByName(reg *linkfunc.Registry, source *Node, fnName string, params ...float32) (*NodeLink, error) {
	fn := reg.FindByName(fnName)
	if fn == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownLinkFunction, fnName)
	}
	return NewNodeLink(source, fn, params...), nil
}

// UnboundLink returns a link that refers to its source by name only. Graph
// Bind resolves it.
func UnboundLink(source, fnName string, params ...float32) *NodeLink {
	return &NodeLink{
		source: source,
		fnName: fnName,
		fnType: linkfunc.TypeInvalid,
		params: linkfunc.Parameters(params).Clone(),
	}
}

func (l *NodeLink) setDescriptor(fn *linkfunc.Descriptor) {
	if fn == nil {
		l.fnType = linkfunc.TypeInvalid
		l.corrective = false
		return
	}
	l.fnName = fn.Name
	l.fnType = fn.Type
	l.corrective = fn.Corrective
}

// SourceName returns the name of the source node.
func (l *NodeLink) SourceName() string { return l.source }

// Source returns the bound source node, or nil.
func (l *NodeLink) Source() *Node { return l.node }

// FunctionName returns the link function name.
func (l *NodeLink) FunctionName() string { return l.fnName }

// FunctionType returns the link function tag resolved from the name.
func (l *NodeLink) FunctionType() linkfunc.Type { return l.fnType }

// Corrective reports whether the link function is corrective.
func (l *NodeLink) Corrective() bool { return l.corrective }

// Params returns a copy of the parameter list.
func (l *NodeLink) Params() []float32 { return l.params.Clone() }

// SetParams replaces the parameter list.
func (l *NodeLink) SetParams(params ...float32) {
	l.params = linkfunc.Parameters(params).Clone()
}

// SetFunction changes the link function by name and re-resolves its tag.
func (l *NodeLink) SetFunction(reg *linkfunc.Registry, name string) error {
	fn := reg.FindByName(name)
	if fn == nil {
		return fmt.Errorf("%w: '%s'", ErrUnknownLinkFunction, name)
	}
	l.setDescriptor(fn)
	return nil
}

// Resolve recomputes the cached function tag and corrective flag from the
// function name. An unknown name leaves the tag at TypeInvalid.
func (l *NodeLink) Resolve(reg *linkfunc.Registry) {
	l.setDescriptor(reg.FindByName(l.fnName))
}

// Clone returns a copy pointing at the same source.
func (l *NodeLink) Clone() *NodeLink {
	c := *l
	c.params = l.params.Clone()
	return &c
}

func (l *NodeLink) bind(n *Node) {
	l.node = n
	if n != nil {
		l.source = n.Name()
	}
}

// Class versions of NodeLink. Version 1 also stored the function tag, which
// is now always derived from the name.
const (
	nodeLinkVersionStoredType = 1
	nodeLinkVersion           = 2
)

// Serialize reads or writes the link. On load the function tag is resolved
// from the stored name, and the parameters are dropped when the function
// turns out to be null or deprecated.
func (l *NodeLink) Serialize(ar archive.Archive, reg *linkfunc.Registry) error {
	version := ar.Version("NodeLink", nodeLinkVersion)
	ar.String(&l.source)
	if version == nodeLinkVersionStoredType && ar.IsLoading() {
		var stale int32
		ar.Int32(&stale)
	}
	ar.String(&l.fnName)
	if err := l.params.Serialize(ar); err != nil {
		return err
	}

	if ar.IsLoading() {
		l.node = nil
		l.Resolve(reg)
		if fn := reg.FindByType(l.fnType); fn != nil && fn.IsNull() {
			l.params = nil
		}
	}
	return ar.Err()
}
