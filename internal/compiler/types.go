package compiler

import (
	"math"
	"sort"
	"sync"

	"github.com/vk/facegraph/internal/compiled"
	"github.com/vk/facegraph/internal/facegraph"
)

// Class names of the built-in node implementations.
const (
	ClassCombiner          = "combiner"
	ClassDelta             = "delta"
	ClassCurrentTime       = "current_time"
	ClassGenericTarget     = "generic_target"
	ClassBonePose          = "bone_pose"
	ClassMorphTarget       = "morph_target"
	ClassMaterialParameter = "material_parameter"
)

// Constructor creates an editable node of one class with its defaults.
type Constructor func(name string) *facegraph.Node

// NodeType is a NodeTypeTable entry.
type NodeType struct {
	Class string
	Type  compiled.NodeType
	New   Constructor
}

// NodeTypeTable maps implementation class names to compiled node types.
type NodeTypeTable struct {
	mu      sync.RWMutex
	byClass map[string]NodeType
	byType  map[compiled.NodeType]string // first class registered per type
}

// NewNodeTypeTable returns an empty table.
func NewNodeTypeTable() *NodeTypeTable {
	return &NodeTypeTable{
		byClass: make(map[string]NodeType),
		byType:  make(map[compiled.NodeType]string),
	}
}

// DefaultNodeTypes returns a table holding the built-in classes.
func DefaultNodeTypes() *NodeTypeTable {
	t := NewNodeTypeTable()
	ranged := func(class string, lo, hi float32) Constructor {
		return func(name string) *facegraph.Node {
			n := facegraph.NewNode(class, name)
			n.Min, n.Max = lo, hi
			return n
		}
	}
	t.MustRegister(ClassCombiner, compiled.NodeCombiner, ranged(ClassCombiner, 0, 1))
	t.MustRegister(ClassDelta, compiled.NodeDelta, ranged(ClassDelta, -1, 1))
	t.MustRegister(ClassCurrentTime, compiled.NodeCurrentTime, ranged(ClassCurrentTime, 0, math.MaxFloat32))
	t.MustRegister(ClassGenericTarget, compiled.NodeGenericTarget, ranged(ClassGenericTarget, 0, 1))
	t.MustRegister(ClassBonePose, compiled.NodeBonePose, ranged(ClassBonePose, 0, 1))
	t.MustRegister(ClassMorphTarget, compiled.NodeMorphTarget, ranged(ClassMorphTarget, 0, 1))
	t.MustRegister(ClassMaterialParameter, compiled.NodeMaterialParameter, ranged(ClassMaterialParameter, 0, 1))
	return t
}

// Register adds class. A nil constructor creates plain nodes of the class.
func (t *NodeTypeTable) Register(class string, typ compiled.NodeType, ctor Constructor) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.byClass[class]; exists {
		return graphErrorf(ErrDuplicateNodeClass, "'%s'", class)
	}
	if ctor == nil {
		ctor = func(name string) *facegraph.Node { return facegraph.NewNode(class, name) }
	}
	t.byClass[class] = NodeType{Class: class, Type: typ, New: ctor}
	if _, exists := t.byType[typ]; !exists {
		t.byType[typ] = class
	}
	return nil
}

// MustRegister is Register that panics on a duplicate class.
func (t *NodeTypeTable) MustRegister(class string, typ compiled.NodeType, ctor Constructor) {
	if err := t.Register(class, typ, ctor); err != nil {
		panic(err)
	}
}

// Lookup returns the entry of class.
func (t *NodeTypeTable) Lookup(class string) (NodeType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nt, ok := t.byClass[class]
	return nt, ok
}

// ForType returns the entry used to decompile nodes of typ.
func (t *NodeTypeTable) ForType(typ compiled.NodeType) (NodeType, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	class, ok := t.byType[typ]
	if !ok {
		return NodeType{}, false
	}
	return t.byClass[class], true
}

// Classes returns the registered class names, sorted.
func (t *NodeTypeTable) Classes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.byClass))
	for c := range t.byClass {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
