package facegraph

import (
	"fmt"
	"slices"

	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/linkfunc"
)

// Graph owns a set of uniquely named nodes. Iteration follows insertion
// order, which keeps compilation deterministic.
type Graph struct {
	nodes map[string]*Node
	order []*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds n to the graph.
func (g *Graph) AddNode(n *Node) error {
	if _, exists := g.nodes[n.name]; exists {
		return fmt.Errorf("%w: '%s'", ErrDuplicateNode, n.name)
	}
	g.nodes[n.name] = n
	g.order = append(g.order, n)
	return nil
}

// FindNode returns the named node, or nil.
func (g *Graph) FindNode(name string) *Node {
	return g.nodes[name]
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []*Node { return slices.Clone(g.order) }

// Terminals returns the nodes nothing consumes, in insertion order. These
// are the graph's outputs and the roots of compilation.
func (g *Graph) Terminals() []*Node {
	var out []*Node
	for _, n := range g.order {
		if len(n.outputs) == 0 {
			out = append(out, n)
		}
	}
	return out
}

// RemoveNode deletes the named node together with every link into or out
// of it.
func (g *Graph) RemoveNode(name string) error {
	n, ok := g.nodes[name]
	if !ok {
		return fmt.Errorf("%w: '%s'", ErrNodeNotFound, name)
	}
	for _, consumer := range slices.Clone(n.outputs) {
		for i := len(consumer.inputs) - 1; i >= 0; i-- {
			if consumer.inputs[i].node == n {
				_ = consumer.RemoveInputLink(i)
			}
		}
	}
	for i := len(n.inputs) - 1; i >= 0; i-- {
		_ = n.RemoveInputLink(i)
	}
	delete(g.nodes, name)
	g.order = slices.DeleteFunc(g.order, func(o *Node) bool { return o == n })
	return nil
}

// Link adds an input link on target reading source through fn.
func (g *Graph) Link(source, target string, fn *linkfunc.Descriptor, params ...float32) (*NodeLink, error) {
	src, ok := g.nodes[source]
	if !ok {
		return nil, fmt.Errorf("%w: source '%s'", ErrNodeNotFound, source)
	}
	dst, ok := g.nodes[target]
	if !ok {
		return nil, fmt.Errorf("%w: target '%s'", ErrNodeNotFound, target)
	}
	if fn == nil {
		return nil, fmt.Errorf("%w: link '%s' -> '%s' has no function", ErrUnknownLinkFunction, source, target)
	}
	l := NewNodeLink(src, fn, params...)
	dst.AddInputLink(l)
	return l, nil
}

// LinkByName is Link with the function looked up by name in reg.
func (g *Graph) LinkByName(reg *linkfunc.Registry, source, target, fnName string, params ...float32) (*NodeLink, error) {
	fn := reg.FindByName(fnName)
	if fn == nil {
		return nil, fmt.Errorf("%w: '%s' on link '%s' -> '%s'", ErrUnknownLinkFunction, fnName, source, target)
	}
	return g.Link(source, target, fn, params...)
}

// HasCycles reports whether any node reaches itself through its inputs.
func (g *Graph) HasCycles() bool {
	_, found := g.FindCycle()
	return found
}

// FindCycle returns a node on the first cycle found, walking nodes in
// insertion order.
func (g *Graph) FindCycle() (*Node, bool) {
	visiting := make(map[*Node]struct{})
	done := make(map[*Node]struct{})
	for _, n := range g.order {
		if at, found := findCycle(n, visiting, done); found {
			return at, true
		}
	}
	return nil, false
}

// Bind resolves every link's source pointer by name and its function tag
// by function name, then rebuilds the output back-references. It is called
// after loading and is safe to call again at any time. On a missing source
// the graph is left unchanged.
func (g *Graph) Bind(reg *linkfunc.Registry) error {
	for _, n := range g.order {
		for _, l := range n.inputs {
			if _, ok := g.nodes[l.source]; !ok {
				return fmt.Errorf("%w: '%s' links from missing node '%s'", ErrNodeNotFound, n.name, l.source)
			}
		}
	}

	for _, n := range g.order {
		n.outputs = nil
	}
	for _, n := range g.order {
		for _, l := range n.inputs {
			src := g.nodes[l.source]
			l.bind(src)
			l.Resolve(reg)
			src.AddOutput(n)
		}
	}
	return nil
}

// Clone returns a deep copy with links rebuilt between the copied nodes.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, n := range g.order {
		_ = c.AddNode(n.Clone())
	}
	for _, n := range g.order {
		dst := c.nodes[n.name]
		for _, l := range n.inputs {
			cl := l.Clone()
			cl.bind(c.nodes[l.source])
			dst.AddInputLink(cl)
		}
	}
	return c
}

const graphVersion = 1

// Serialize reads or writes every node. A loaded graph is bound against reg
// before returning.
func (g *Graph) Serialize(ar archive.Archive, reg *linkfunc.Registry) error {
	ar.Version("FaceGraph", graphVersion)
	count := len(g.order)
	ar.Len(&count)

	if ar.IsSaving() {
		for _, n := range g.order {
			if err := n.Serialize(ar, reg); err != nil {
				return fmt.Errorf("saving node '%s': %w", n.name, err)
			}
		}
		return ar.Err()
	}

	g.nodes = make(map[string]*Node, count)
	g.order = nil
	for range count {
		n := &Node{}
		if err := n.Serialize(ar, reg); err != nil {
			return fmt.Errorf("loading node %d: %w", len(g.order), err)
		}
		if err := g.AddNode(n); err != nil {
			return err
		}
	}
	if err := ar.Err(); err != nil {
		return err
	}
	return g.Bind(reg)
}
