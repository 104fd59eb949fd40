package app

import (
	"context"
	"fmt"

	"github.com/vk/facegraph/internal/builder"
	"github.com/vk/facegraph/internal/ctxlog"
)

// Load reads the graph description, builds the editable graph and compiles
// it. On failure the previously compiled graph stays in use.
func (a *App) Load(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := a.logger
	logger.Debug("Loading graph description...", "graph_path", a.config.GraphPath)

	model, err := a.loader.Load(ctx, a.config.GraphPath)
	if err != nil {
		return fmt.Errorf("failed to load graph description: %w", err)
	}
	if len(model.Nodes) == 0 {
		return fmt.Errorf("no nodes found under %s", a.config.GraphPath)
	}

	g, err := builder.Build(ctx, model, a.registry, a.compiler.Types())
	if err != nil {
		return fmt.Errorf("failed to build face graph: %w", err)
	}

	if err := a.compiler.CompileAsset(ctx, &a.asset, g); err != nil {
		return fmt.Errorf("failed to compile face graph: %w", err)
	}
	a.graph = g
	logger.Info("Face graph compiled.", "nodes", a.asset.Graph().NumNodes(), "links", a.asset.Graph().NumLinks(), "outputs", len(a.asset.Graph().Outputs()))
	return nil
}
