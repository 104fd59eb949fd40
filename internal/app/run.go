package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/facegraph/internal/ctxlog"
	"github.com/vk/facegraph/internal/livelink"
)

// Run loads and compiles the graph, then evaluates it frame by frame and
// prints every frame. When a live link URL is configured the frames are
// published as well.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if err := a.Load(ctx); err != nil {
		return err
	}

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	cg := a.asset.Graph()
	if a.config.BlobPath != "" {
		if err := a.SaveBlob(ctx, a.config.BlobPath); err != nil {
			return err
		}
		loaded, err := a.LoadBlob(ctx, a.config.BlobPath)
		if err != nil {
			return err
		}
		cg = loaded
	}

	var pub *livelink.Publisher
	if a.config.LiveURL != "" {
		p, err := livelink.Dial(ctx, livelink.Options{
			URL:       a.config.LiveURL,
			Namespace: a.config.LiveNamespace,
		})
		if err != nil {
			return fmt.Errorf("failed to open live link: %w", err)
		}
		defer p.Close()
		pub = p
	}

	a.logger.Info("🚀 Starting evaluation...", "frames", a.config.Frames, "fps", a.config.FPS)
	err := a.Simulate(ctx, cg, func(f livelink.Frame) {
		names := make([]string, 0, len(f.Values))
		for name := range f.Values {
			names = append(names, name)
		}
		slices.Sort(names)
		fmt.Fprintln(a.outW, formatFrame(f, names))
		if pub != nil {
			pub.Publish(ctx, f)
		}
	})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	a.logger.Info("🏁 Evaluation finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
