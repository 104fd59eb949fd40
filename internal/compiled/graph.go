package compiled

import (
	"fmt"
	"unique"

	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/linkfunc"
)

// Graph is a flattened face graph. Nodes are stored so that every link
// reads a node with a lower index. Apart from the values used by Graph.Tick
// and the setters, a Graph is never modified after it is built; Instances
// share it.
type Graph struct {
	nodes  []Node
	links  []Link
	values valueSet
	index  map[unique.Handle[string]]int32
}

// Builder appends nodes in evaluation order.
type Builder struct {
	g *Graph
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{g: &Graph{index: make(map[unique.Handle[string]]int32)}}
}

// AddNode appends n with its input links and returns its index. The link
// window of n is assigned here. Every link must read an already added node.
func (b *Builder) AddNode(n Node, links []Link) (int32, error) {
	g := b.g
	idx := int32(len(g.nodes))
	key := unique.Make(n.Name)
	if _, exists := g.index[key]; exists {
		return InvalidIndex, fmt.Errorf("%w: duplicate node '%s'", ErrInvalidGraph, n.Name)
	}
	for i, l := range links {
		if l.Source < 0 || l.Source >= idx {
			return InvalidIndex, fmt.Errorf("%w: link %d of '%s' reads node %d, which is not evaluated before it", ErrInvalidGraph, i, n.Name, l.Source)
		}
	}
	n.FirstLink = int32(len(g.links))
	n.NumLinks = int32(len(links))
	n.precompute()
	for _, l := range links {
		l.Params = l.Params.Clone()
		g.links = append(g.links, l)
	}
	g.nodes = append(g.nodes, n)
	g.values = append(g.values, Values{})
	g.index[key] = idx
	return idx, nil
}

// Len returns the number of nodes added so far.
func (b *Builder) Len() int { return len(b.g.nodes) }

// Build returns the graph. The builder must not be used afterwards.
func (b *Builder) Build() *Graph {
	g := b.g
	b.g = nil
	return g
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumLinks returns the number of links.
func (g *Graph) NumLinks() int { return len(g.links) }

// Node returns the node at i.
func (g *Graph) Node(i int32) (Node, bool) {
	if i < 0 || int(i) >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[i], true
}

// NodeLinks returns the input links of the node at i. The slice aliases the
// graph and must not be modified.
func (g *Graph) NodeLinks(i int32) []Link {
	if i < 0 || int(i) >= len(g.nodes) {
		return nil
	}
	n := &g.nodes[i]
	return g.links[n.FirstLink : n.FirstLink+n.NumLinks]
}

// FindNodeIndex returns the index of the named node, or InvalidIndex.
func (g *Graph) FindNodeIndex(name string) int32 {
	if i, ok := g.index[unique.Make(name)]; ok {
		return i
	}
	return InvalidIndex
}

// CountNodesOfType returns how many nodes have type t.
func (g *Graph) CountNodesOfType(t NodeType) int {
	count := 0
	for i := range g.nodes {
		if g.nodes[i].Type == t {
			count++
		}
	}
	return count
}

// Outputs returns the indices of nodes whose type feeds an engine consumer,
// in evaluation order.
func (g *Graph) Outputs() []int32 {
	var out []int32
	for i := range g.nodes {
		if g.nodes[i].Type.IsOutput() {
			out = append(out, int32(i))
		}
	}
	return out
}

// Clear releases every array. The graph evaluates nothing until rebuilt.
func (g *Graph) Clear() {
	g.nodes = nil
	g.links = nil
	g.values = nil
	g.index = make(map[unique.Handle[string]]int32)
}

// NewRegisters returns a register array sized for the graph.
func (g *Graph) NewRegisters() []Register {
	return make([]Register, len(g.nodes))
}

// Tick evaluates the graph against its own values. regs must be sized with
// NewRegisters; see Instance for concurrent evaluation.
func (g *Graph) Tick(time float32, regs []Register, tickedBefore bool) {
	g.tick(g.values, regs, time, tickedBefore)
}

// SetUserValue sets the user value of node i and how it is applied.
func (g *Graph) SetUserValue(i int32, v float32, op ValueOp) { g.values.setUser(i, v, op) }

// ClearUserValue removes the user value of node i.
func (g *Graph) ClearUserValue(i int32) { g.values.clearUser(i) }

// SetTrackValue sets the animation track contribution of node i.
func (g *Graph) SetTrackValue(i int32, v float32) { g.values.setTrack(i, v) }

// ClearTrackValue removes the track contribution of node i.
func (g *Graph) ClearTrackValue(i int32) { g.values.clearTrack(i) }

// FinalValue returns the last value computed for node i, or 0.
func (g *Graph) FinalValue(i int32) float32 { return g.values.final(i) }

// Bind resolves every link's descriptor from its type tag. A loaded graph
// evaluates its links as zero until bound.
func (g *Graph) Bind(reg *linkfunc.Registry) error {
	for i := range g.links {
		l := &g.links[i]
		fn := reg.FindByType(l.FnType)
		if fn == nil {
			return fmt.Errorf("%w: %d on link %d", ErrUnknownLinkFunction, l.FnType, i)
		}
		l.fn = fn
	}
	return nil
}

// validate checks the layout of a loaded graph and rebuilds the name index.
func (g *Graph) validate() error {
	g.index = make(map[unique.Handle[string]]int32, len(g.nodes))
	var next int32
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.FirstLink != next || n.NumLinks < 0 || int64(n.FirstLink)+int64(n.NumLinks) > int64(len(g.links)) {
			return fmt.Errorf("%w: node '%s' has link window [%d, +%d)", ErrInvalidGraph, n.Name, n.FirstLink, n.NumLinks)
		}
		next += n.NumLinks
		for _, l := range g.links[n.FirstLink:next] {
			if l.Source < 0 || int(l.Source) >= i {
				return fmt.Errorf("%w: node '%s' reads node %d", ErrInvalidGraph, n.Name, l.Source)
			}
		}
		key := unique.Make(n.Name)
		if _, exists := g.index[key]; exists {
			return fmt.Errorf("%w: duplicate node '%s'", ErrInvalidGraph, n.Name)
		}
		g.index[key] = int32(i)
	}
	if int(next) != len(g.links) {
		return fmt.Errorf("%w: %d links are not owned by any node", ErrInvalidGraph, len(g.links)-int(next))
	}
	return nil
}

const graphVersion = 1

// Serialize reads or writes the graph. A loaded graph is validated, its
// values reset, and it must be bound with Bind before it is ticked.
func (g *Graph) Serialize(ar archive.Archive) error {
	ar.Version("CompiledFaceGraph", graphVersion)

	count := len(g.nodes)
	ar.Len(&count)
	if ar.IsLoading() {
		g.nodes = make([]Node, count)
	}
	for i := range g.nodes {
		if err := g.nodes[i].Serialize(ar); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
	}

	count = len(g.links)
	ar.Len(&count)
	if ar.IsLoading() {
		g.links = make([]Link, count)
	}
	for i := range g.links {
		if err := g.links[i].Serialize(ar); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
	}
	if err := ar.Err(); err != nil {
		return err
	}

	if ar.IsLoading() {
		g.values = make(valueSet, len(g.nodes))
		return g.validate()
	}
	return nil
}
