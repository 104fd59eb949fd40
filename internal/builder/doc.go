/*
Package builder constructs an editable facegraph.Graph from a config.Model.

Construction runs in passes:

 1. Function registration: legacy link function names listed in the model
    are registered as deprecated aliases so that links naming them resolve.

 2. Node creation: every node description becomes a facegraph.Node created
    through the node type table's constructor, so class defaults apply
    before the description's own clamp range, operation and properties.

 3. Linking: each input description becomes a NodeLink on its consumer.
    Sources and link functions are resolved by name.

The result is not checked for cycles; the compiler does that.
*/
package builder
