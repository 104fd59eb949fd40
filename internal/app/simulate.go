package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/facegraph/internal/compiled"
	"github.com/vk/facegraph/internal/ctxlog"
	"github.com/vk/facegraph/internal/livelink"
)

// Simulate ticks cg for the configured number of frames, applying the
// configured user values and blends, and hands every frame to sink.
func (a *App) Simulate(ctx context.Context, cg *compiled.Graph, sink func(livelink.Frame)) error {
	logger := ctxlog.FromContext(ctx)
	in := compiled.NewInstance(cg)

	for _, uv := range a.config.UserValues {
		idx := cg.FindNodeIndex(uv.Node)
		if idx == compiled.InvalidIndex {
			return fmt.Errorf("user value names unknown node '%s'", uv.Node)
		}
		in.SetUserValue(idx, uv.Value, uv.Op)
		logger.Debug("User value set.", "node", uv.Node, "value", uv.Value, "op", uv.Op)
	}
	for _, b := range a.config.Blends {
		idx := cg.FindNodeIndex(b.Node)
		if idx == compiled.InvalidIndex {
			return fmt.Errorf("blend names unknown node '%s'", b.Node)
		}
		in.Blend(idx, b.Value, compiled.OpReplace, b.Seconds)
		logger.Debug("Blend requested.", "node", b.Node, "value", b.Value, "seconds", b.Seconds)
	}

	outputs := cg.Outputs()
	if len(outputs) == 0 {
		logger.Warn("Graph has no output nodes, reporting every node.")
		for i := range int32(cg.NumNodes()) {
			outputs = append(outputs, i)
		}
	}
	names := make([]string, len(outputs))
	for i, idx := range outputs {
		n, _ := cg.Node(idx)
		names[i] = n.Name
	}

	for frame := range a.config.Frames {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := float32(float64(frame) / a.config.FPS)
		in.Tick(t)

		f := livelink.Frame{Frame: frame, Time: t, Values: make(map[string]float32, len(outputs))}
		for i, idx := range outputs {
			f.Values[names[i]] = in.FinalValue(idx)
		}
		sink(f)
	}
	logger.Debug("Simulation finished.", "frames", a.config.Frames)
	return nil
}

// formatFrame renders a frame as one line with values in the given order.
func formatFrame(f livelink.Frame, names []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "frame=%d time=%.4f", f.Frame, f.Time)
	for _, name := range names {
		fmt.Fprintf(&sb, " %s=%.4f", name, f.Values[name])
	}
	return sb.String()
}
