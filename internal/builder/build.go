package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/facegraph/internal/compiler"
	"github.com/vk/facegraph/internal/config"
	"github.com/vk/facegraph/internal/ctxlog"
	"github.com/vk/facegraph/internal/facegraph"
	"github.com/vk/facegraph/internal/linkfunc"
)

// ErrUnknownNodeClass is returned for a node description whose class has
// no entry in the node type table.
var ErrUnknownNodeClass = errors.New("unknown node class")

// Build constructs an editable graph from a description model.
func Build(ctx context.Context, model *config.Model, reg *linkfunc.Registry, types *compiler.NodeTypeTable) (*facegraph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	// First pass: legacy functions.
	if err := registerDeprecated(ctx, model, reg); err != nil {
		return nil, err
	}

	// Second pass: nodes.
	g := facegraph.New()
	if err := createNodes(ctx, model, types, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.Len())

	// Third pass: links.
	if err := linkNodes(ctx, model, reg, g); err != nil {
		return nil, err
	}
	logger.Debug("Build: Node linking complete.")

	logger.Info("Build: Graph construction successful.", "node_count", g.Len(), "terminal_count", len(g.Terminals()))
	return g, nil
}

func registerDeprecated(ctx context.Context, model *config.Model, reg *linkfunc.Registry) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range model.DeprecatedFunctions {
		if reg.FindByName(name) != nil {
			logger.Debug("Build: Deprecated function already registered.", "function", name)
			continue
		}
		t, err := reg.AddDeprecated(name)
		if err != nil {
			return fmt.Errorf("registering deprecated function '%s': %w", name, err)
		}
		logger.Debug("Build: Registered deprecated function.", "function", name, "type", t)
	}
	return nil
}

func createNodes(ctx context.Context, model *config.Model, types *compiler.NodeTypeTable, g *facegraph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	for _, def := range model.Nodes {
		nt, ok := types.Lookup(def.Class)
		if !ok {
			return fmt.Errorf("%w: '%s' on node '%s' (%s)", ErrUnknownNodeClass, def.Class, def.Name, def.File)
		}
		n := nt.New(def.Name)
		if def.Min != nil {
			n.Min = float32(*def.Min)
		}
		if def.Max != nil {
			n.Max = float32(*def.Max)
		}
		if n.Min > n.Max {
			return fmt.Errorf("node '%s': min %g is greater than max %g", def.Name, n.Min, n.Max)
		}
		op, err := facegraph.ParseInputOperation(def.Operation)
		if err != nil {
			return fmt.Errorf("node '%s': %w", def.Name, err)
		}
		n.InputOp = op

		for _, pd := range def.Properties {
			typ, err := facegraph.ParsePropertyType(pd.Type)
			if err != nil {
				return fmt.Errorf("node '%s': %w", def.Name, err)
			}
			p, err := facegraph.NewProperty(pd.Name, typ, pd.Value, pd.Choices)
			if err != nil {
				return fmt.Errorf("node '%s': %w", def.Name, err)
			}
			if _, exists := n.FindUserProperty(p.Name); exists {
				logger.Warn("Build: Duplicate property ignored.", "node", def.Name, "property", p.Name)
				continue
			}
			n.AddUserProperty(p)
		}

		if err := g.AddNode(n); err != nil {
			return err
		}
		logger.Debug("Build: Created node.", "node", def.Name, "class", def.Class)
	}
	return nil
}

func linkNodes(ctx context.Context, model *config.Model, reg *linkfunc.Registry, g *facegraph.Graph) error {
	logger := ctxlog.FromContext(ctx)
	for _, def := range model.Nodes {
		for _, in := range def.Inputs {
			fnName := in.Function
			if fnName == "" {
				fnName = linkfunc.NameLinear
			}
			params := make([]float32, len(in.Params))
			for i, p := range in.Params {
				params[i] = float32(p)
			}
			if _, err := g.LinkByName(reg, in.Source, def.Name, fnName, params...); err != nil {
				return fmt.Errorf("linking '%s' -> '%s': %w", in.Source, def.Name, err)
			}
			logger.Debug("Build: Linked nodes.", "source", in.Source, "target", def.Name, "function", fnName)
		}
	}
	return nil
}
