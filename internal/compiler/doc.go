// Package compiler flattens an editable facegraph.Graph into a
// compiled.Graph and rebuilds editable graphs from compiled ones.
//
// Compilation runs in three passes: a graph-wide cycle check, classification
// of every node class through a NodeTypeTable, and a memoized post-order
// flatten driven from the graph's terminal nodes. It either succeeds or
// returns an error; a partially compiled graph is never returned.
package compiler
