package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot decodes every top-level block of a description file.
type fileRoot struct {
	Nodes      []*nodeBlock       `hcl:"node,block"`
	Deprecated []*deprecatedBlock `hcl:"deprecated_function,block"`
}

type nodeBlock struct {
	Class      string           `hcl:"class,label"`
	Name       string           `hcl:"name,label"`
	Min        *float64         `hcl:"min,optional"`
	Max        *float64         `hcl:"max,optional"`
	Operation  *string          `hcl:"operation,optional"`
	Inputs     []*inputBlock    `hcl:"input,block"`
	Properties []*propertyBlock `hcl:"property,block"`
}

type inputBlock struct {
	Source   string    `hcl:"source,label"`
	Function *string   `hcl:"function,optional"`
	Params   []float64 `hcl:"params,optional"`
}

type propertyBlock struct {
	Name    string         `hcl:"name,label"`
	Type    string         `hcl:"type"`
	Value   hcl.Expression `hcl:"value"`
	Choices []string       `hcl:"choices,optional"`
}

type deprecatedBlock struct {
	Name string `hcl:"name,label"`
}
