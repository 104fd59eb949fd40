// Package linkfunc holds the table of named scalar transform functions that
// can be applied to a value flowing across a face graph link.
//
// A Registry is constructed explicitly and shared by reference between the
// builder, the compiler and the evaluator. Functions are pure: the output
// depends only on the input value and the link's parameter list. Every
// function defines its behavior for short parameter lists and degenerate
// inputs, so evaluation never fails at runtime.
package linkfunc
