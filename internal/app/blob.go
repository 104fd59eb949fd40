package app

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/vk/facegraph/internal/archive"
	"github.com/vk/facegraph/internal/compiled"
	"github.com/vk/facegraph/internal/ctxlog"
)

// SaveBlob writes the compiled graph to path.
func (a *App) SaveBlob(ctx context.Context, path string) error {
	cg := a.asset.Graph()
	if cg == nil {
		return fmt.Errorf("no compiled graph to save")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create blob: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := cg.Serialize(archive.NewWriter(w)); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write blob %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("Compiled graph saved.", "path", path)
	return f.Close()
}

// LoadBlob reads a compiled graph written by SaveBlob and binds it against
// the app's registry.
func (a *App) LoadBlob(ctx context.Context, path string) (*compiled.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	defer f.Close()

	cg := &compiled.Graph{}
	if err := cg.Serialize(archive.NewReader(bufio.NewReader(f))); err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", path, err)
	}
	if err := cg.Bind(a.registry); err != nil {
		return nil, fmt.Errorf("failed to bind blob %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Debug("Compiled graph loaded.", "path", path, "nodes", cg.NumNodes())
	return cg, nil
}
