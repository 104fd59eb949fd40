package facegraph

import (
	"slices"

	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/linkfunc"
)

// Node is a named vertex of the editable graph.
type Node struct {
	name  string
	class string

	// Min and Max clamp the node's output.
	Min, Max float32
	// InputOp folds the non-corrective input values together.
	InputOp InputOperation

	inputs  []*NodeLink
	outputs []*Node
	props   []UserProperty
}

// NewNode returns a node of the given implementation class with a [0, 1]
// clamp range that sums its inputs.
func NewNode(class, name string) *Node {
	return &Node{name: name, class: class, Min: 0, Max: 1, InputOp: OpSum}
}

// Name returns the graph-wide unique node name.
func (n *Node) Name() string { return n.name }

// Class returns the implementation class used to classify the node when
// compiling.
func (n *Node) Class() string { return n.class }

// Inputs returns the input links in order. The slice must not be modified.
func (n *Node) Inputs() []*NodeLink { return n.inputs }

// NumInputs returns the number of input links.
func (n *Node) NumInputs() int { return len(n.inputs) }

// InputLink returns the link at index i.
func (n *Node) InputLink(i int) (*NodeLink, error) {
	if i < 0 || i >= len(n.inputs) {
		return nil, linkIndexError(n.name, i, len(n.inputs))
	}
	return n.inputs[i], nil
}

// Outputs returns the nodes consuming this node. The order carries no
// meaning and the slice must not be modified.
func (n *Node) Outputs() []*Node { return n.outputs }

// AddInputLink appends l. Several links from the same source are allowed.
func (n *Node) AddInputLink(l *NodeLink) {
	n.inputs = append(n.inputs, l)
	if l.node != nil {
		l.node.AddOutput(n)
	}
}

// RemoveInputLink removes the link at index i.
func (n *Node) RemoveInputLink(i int) error {
	if i < 0 || i >= len(n.inputs) {
		return linkIndexError(n.name, i, len(n.inputs))
	}
	old := n.inputs[i]
	n.inputs = slices.Delete(n.inputs, i, i+1)
	n.releaseSource(old.node)
	return nil
}

// ModifyInputLink replaces the link at index i with l.
func (n *Node) ModifyInputLink(i int, l *NodeLink) error {
	if i < 0 || i >= len(n.inputs) {
		return linkIndexError(n.name, i, len(n.inputs))
	}
	old := n.inputs[i]
	n.inputs[i] = l
	if l.node != nil {
		l.node.AddOutput(n)
	}
	if old.node != l.node {
		n.releaseSource(old.node)
	}
	return nil
}

// releaseSource drops n from src's outputs once no input of n comes from src.
func (n *Node) releaseSource(src *Node) {
	if src == nil {
		return
	}
	for _, l := range n.inputs {
		if l.node == src {
			return
		}
	}
	src.RemoveOutput(n)
}

// AddOutput records that consumer reads this node. Adding the same consumer
// twice records it once.
func (n *Node) AddOutput(consumer *Node) {
	if !slices.Contains(n.outputs, consumer) {
		n.outputs = append(n.outputs, consumer)
	}
}

// RemoveOutput forgets consumer.
func (n *Node) RemoveOutput(consumer *Node) {
	if i := slices.Index(n.outputs, consumer); i >= 0 {
		n.outputs = slices.Delete(n.outputs, i, i+1)
	}
}

// AddUserProperty adds p unless a property with the same name exists.
func (n *Node) AddUserProperty(p UserProperty) {
	if _, ok := n.FindUserProperty(p.Name); ok {
		return
	}
	n.props = append(n.props, p.Clone())
}

// FindUserProperty returns the named property.
func (n *Node) FindUserProperty(name string) (UserProperty, bool) {
	for _, p := range n.props {
		if p.Name == name {
			return p.Clone(), true
		}
	}
	return UserProperty{}, false
}

// ReplaceUserProperty overwrites the property named p.Name. It does nothing
// when no such property exists.
func (n *Node) ReplaceUserProperty(p UserProperty) {
	for i := range n.props {
		if n.props[i].Name == p.Name {
			n.props[i] = p.Clone()
			return
		}
	}
}

// RemoveUserProperty deletes the named property if present.
func (n *Node) RemoveUserProperty(name string) {
	n.props = slices.DeleteFunc(n.props, func(p UserProperty) bool { return p.Name == name })
}

// UserProperties returns a copy of the node's properties in order.
func (n *Node) UserProperties() []UserProperty { return CloneProperties(n.props) }

// HasCycles reports whether a cycle is reachable from n by following input
// links. Nodes reached along several paths are not mistaken for cycles.
func (n *Node) HasCycles() bool {
	_, found := findCycle(n, make(map[*Node]struct{}), make(map[*Node]struct{}))
	return found
}

// findCycle walks inputs depth first. visiting holds the current path and
// is unwound on return; done holds nodes already proven acyclic.
func findCycle(n *Node, visiting, done map[*Node]struct{}) (*Node, bool) {
	if _, ok := visiting[n]; ok {
		return n, true
	}
	if _, ok := done[n]; ok {
		return nil, false
	}
	visiting[n] = struct{}{}
	for _, l := range n.inputs {
		if l.node == nil {
			continue
		}
		if at, found := findCycle(l.node, visiting, done); found {
			delete(visiting, n)
			return at, true
		}
	}
	delete(visiting, n)
	done[n] = struct{}{}
	return nil, false
}

// Clone deep-copies the clamp range, operation and user properties. Inputs
// and outputs are structural and are not copied.
func (n *Node) Clone() *Node {
	return &Node{
		name:    n.name,
		class:   n.class,
		Min:     n.Min,
		Max:     n.Max,
		InputOp: n.InputOp,
		props:   CloneProperties(n.props),
	}
}

// CloneAs is Clone with a new name.
func (n *Node) CloneAs(name string) *Node {
	c := n.Clone()
	c.name = name
	return c
}

const nodeVersion = 1

// Serialize reads or writes the node and its input links. Loaded links are
// unbound; Graph.Bind resolves them.
func (n *Node) Serialize(ar archive.Archive, reg *linkfunc.Registry) error {
	ar.Version("FaceGraphNode", nodeVersion)
	ar.String(&n.name)
	ar.String(&n.class)
	ar.Float32(&n.Min)
	ar.Float32(&n.Max)
	op := int32(n.InputOp)
	ar.Int32(&op)
	n.InputOp = InputOperation(op)
	if err := SerializeProperties(ar, &n.props); err != nil {
		return err
	}

	count := len(n.inputs)
	ar.Len(&count)
	if ar.IsLoading() {
		n.inputs = make([]*NodeLink, count)
		n.outputs = nil
		for i := range n.inputs {
			n.inputs[i] = &NodeLink{}
		}
	}
	for _, l := range n.inputs {
		if err := l.Serialize(ar, reg); err != nil {
			return err
		}
	}
	return ar.Err()
}
