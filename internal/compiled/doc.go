// Package compiled holds the flattened, index-addressed runtime form of a
// face graph and evaluates it once per frame.
//
// A Graph is immutable topology: nodes stored in dependency order, a flat
// link array that nodes address by window, and a name to index hash. Driving
// values and interpolation registers live next to it in parallel arrays, so
// any number of Instances can tick the same Graph concurrently.
package compiled
