// Package hcl provides the HCL implementation of config.Loader. It parses
// face graph description files and translates their blocks into the
// format-agnostic config.Model.
//
// A description file holds node blocks and optional deprecated_function
// blocks:
//
//	deprecated_function "wobble" {}
//
//	node "morph_target" "jaw_open" {
//	  min       = 0
//	  max       = 1
//	  operation = "sum"
//
//	  input "jaw" {
//	    function = "linear"
//	    params   = [0.5]
//	  }
//
//	  property "target" {
//	    type  = "string"
//	    value = "JawOpen"
//	  }
//	}
package hcl
