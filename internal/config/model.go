package config

import "github.com/zclconf/go-cty/cty"

// Model is a whole face graph description.
type Model struct {
	Nodes []*Node
	// DeprecatedFunctions are legacy link function names that load as null.
	DeprecatedFunctions []string
}

// Node describes one editable graph node. Nil Min and Max keep the class
// defaults; an empty Operation means sum.
type Node struct {
	Class      string
	Name       string
	Min        *float64
	Max        *float64
	Operation  string
	Inputs     []*Input
	Properties []*Property
	// File is the description file the node came from, for error messages.
	File string
}

// Input describes one input link of a node.
type Input struct {
	Source   string
	Function string
	Params   []float64
}

// Property describes one user property. Type is one of integer, bool,
// float, string or choice.
type Property struct {
	Name    string
	Type    string
	Value   cty.Value
	Choices []string
}

// FindNode returns the named node description, or nil.
func (m *Model) FindNode(name string) *Node {
	for _, n := range m.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}
