package compiler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/vk/facegraph/internal/compiled"
	"github.com/vk/facegraph/internal/ctxlog"
	"github.com/vk/facegraph/internal/facegraph"
	"github.com/vk/facegraph/internal/linkfunc"
)

// Compiler converts between editable and compiled graphs. It holds no
// per-compilation state and may be shared.
type Compiler struct {
	reg   *linkfunc.Registry
	types *NodeTypeTable
}

// New returns a compiler resolving link functions in reg and node classes
// in types. A nil types uses DefaultNodeTypes.
func New(reg *linkfunc.Registry, types *NodeTypeTable) *Compiler {
	if types == nil {
		types = DefaultNodeTypes()
	}
	return &Compiler{reg: reg, types: types}
}

// Types returns the node type table.
func (c *Compiler) Types() *NodeTypeTable { return c.types }

// Compile flattens g. The graph must not be edited while this runs.
func (c *Compiler) Compile(ctx context.Context, g *facegraph.Graph) (*compiled.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compile: Starting.", "node_count", g.Len())

	// First pass: cycles.
	if at, found := g.FindCycle(); found {
		return nil, graphErrorf(ErrCycle, "node '%s' reaches itself through its inputs", at.Name())
	}
	logger.Debug("Compile: Cycle detection passed.")

	// Second pass: classify.
	classes := make(map[*facegraph.Node]NodeType, g.Len())
	for _, n := range g.Nodes() {
		nt, ok := c.types.Lookup(n.Class())
		if !ok {
			return nil, graphErrorf(ErrUnknownNodeClass, "'%s' on node '%s'", n.Class(), n.Name())
		}
		classes[n] = nt
	}
	logger.Debug("Compile: Classification complete.")

	// Third pass: flatten from the terminals. Any node not reachable from a
	// terminal, which only happens with stale output back-references, is
	// flattened afterwards in insertion order.
	f := &flattener{
		reg:     c.reg,
		classes: classes,
		b:       compiled.NewBuilder(),
		memo:    make(map[*facegraph.Node]int32, g.Len()),
	}
	terminals := g.Terminals()
	for _, n := range terminals {
		if _, err := f.visit(n); err != nil {
			return nil, err
		}
	}
	for _, n := range g.Nodes() {
		if _, err := f.visit(n); err != nil {
			return nil, err
		}
	}
	cg := f.b.Build()
	logger.Debug("Compile: Flatten complete.", "terminal_count", len(terminals), "node_count", cg.NumNodes(), "link_count", cg.NumLinks())
	return cg, nil
}

type flattener struct {
	reg     *linkfunc.Registry
	classes map[*facegraph.Node]NodeType
	b       *compiled.Builder
	memo    map[*facegraph.Node]int32
}

// visit emits n after its sources and returns its index.
func (f *flattener) visit(n *facegraph.Node) (int32, error) {
	if idx, ok := f.memo[n]; ok {
		return idx, nil
	}

	links := make([]compiled.Link, 0, n.NumInputs())
	for i, l := range n.Inputs() {
		src := l.Source()
		if src == nil {
			return compiled.InvalidIndex, graphErrorf(ErrUnboundLink, "input %d of '%s' reads '%s'", i, n.Name(), l.SourceName())
		}
		srcIdx, err := f.visit(src)
		if err != nil {
			return compiled.InvalidIndex, err
		}
		fn := f.reg.FindByName(l.FunctionName())
		if fn == nil {
			return compiled.InvalidIndex, graphErrorf(ErrUnknownLinkFunction, "'%s' on input %d of '%s'", l.FunctionName(), i, n.Name())
		}
		links = append(links, compiled.NewLink(srcIdx, fn, l.Params()...))
	}

	node := compiled.Node{
		Name:       n.Name(),
		Type:       f.classes[n].Type,
		Min:        n.Min,
		Max:        n.Max,
		InputOp:    n.InputOp,
		Properties: n.UserProperties(),
	}
	idx, err := f.b.AddNode(node, links)
	if err != nil {
		return compiled.InvalidIndex, err
	}
	f.memo[n] = idx
	return idx, nil
}

// Decompile rebuilds an editable graph with one node per compiled node,
// created through the type table's constructor for the node's type.
func (c *Compiler) Decompile(ctx context.Context, cg *compiled.Graph) (*facegraph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	g := facegraph.New()

	for i := range int32(cg.NumNodes()) {
		cn, _ := cg.Node(i)
		nt, ok := c.types.ForType(cn.Type)
		if !ok {
			return nil, graphErrorf(ErrUnknownNodeClass, "no class for %s node '%s'", cn.Type, cn.Name)
		}
		n := nt.New(cn.Name)
		n.Min, n.Max, n.InputOp = cn.Min, cn.Max, cn.InputOp
		for _, p := range cn.Properties {
			n.AddUserProperty(p)
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	for i := range int32(cg.NumNodes()) {
		cn, _ := cg.Node(i)
		for li, l := range cg.NodeLinks(i) {
			src, _ := cg.Node(l.Source)
			fn := l.Function()
			if fn == nil {
				fn = c.reg.FindByType(l.FnType)
			}
			if fn == nil {
				return nil, graphErrorf(ErrUnknownLinkFunction, "type %d on input %d of '%s'", l.FnType, li, cn.Name)
			}
			if _, err := g.Link(src.Name, cn.Name, fn, l.Params...); err != nil {
				return nil, fmt.Errorf("rewiring '%s': %w", cn.Name, err)
			}
		}
	}
	logger.Debug("Decompile: Complete.", "node_count", g.Len())
	return g, nil
}

// Asset holds the compiled graph currently in use for one face graph.
type Asset struct {
	current atomic.Pointer[compiled.Graph]
}

// Graph returns the current compiled graph, or nil before the first
// successful compile.
func (a *Asset) Graph() *compiled.Graph { return a.current.Load() }

// CompileAsset compiles g and installs the result in a. On failure a keeps
// its previous graph.
func (c *Compiler) CompileAsset(ctx context.Context, a *Asset, g *facegraph.Graph) error {
	cg, err := c.Compile(ctx, g)
	if err != nil {
		if a.Graph() != nil {
			ctxlog.FromContext(ctx).Warn("Recompile failed, keeping previous compiled graph.", "error", err)
		}
		return err
	}
	a.current.Store(cg)
	return nil
}
