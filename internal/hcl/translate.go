package hcl

import (
	"context"
	"fmt"

	"github.com/vk/facegraph/internal/config"
	"github.com/vk/facegraph/internal/ctxlog"
)

// translateNode converts a node block into the agnostic model.
func translateNode(ctx context.Context, b *nodeBlock) (*config.Node, error) {
	logger := ctxlog.FromContext(ctx).With("node_class", b.Class, "node_name", b.Name)
	logger.Debug("Translating HCL node to internal config model.")

	n := &config.Node{
		Class: b.Class,
		Name:  b.Name,
		Min:   b.Min,
		Max:   b.Max,
	}
	if b.Operation != nil {
		n.Operation = *b.Operation
	}
	for _, in := range b.Inputs {
		link := &config.Input{Source: in.Source, Params: in.Params}
		if in.Function != nil {
			link.Function = *in.Function
		}
		n.Inputs = append(n.Inputs, link)
	}
	for _, p := range b.Properties {
		val, diags := p.Value.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid value for property '%s' of node '%s': %w", p.Name, b.Name, diags)
		}
		n.Properties = append(n.Properties, &config.Property{
			Name:    p.Name,
			Type:    p.Type,
			Value:   val,
			Choices: p.Choices,
		})
	}
	logger.Debug("Translated node.", "inputs", len(n.Inputs), "properties", len(n.Properties))
	return n, nil
}
