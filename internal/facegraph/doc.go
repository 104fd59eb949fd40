// Package facegraph is the editable face graph: named nodes owned by a Graph
// arena, connected by NodeLinks that carry a link function and its
// parameters.
//
// Links hold their source weakly (by name, plus a resolved pointer that Bind
// refreshes after loading). Each node also tracks the nodes that consume it;
// these back-references exist only for traversal and are never read when a
// value is computed.
package facegraph
