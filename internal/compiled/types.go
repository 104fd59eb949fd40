package compiled

import "fmt"

// InvalidIndex is returned by lookups that miss.
const InvalidIndex int32 = -1

// NodeType classifies a compiled node. Persisted, so values must not change.
type NodeType int32

const (
	NodeCombiner NodeType = iota
	NodeDelta
	NodeCurrentTime
	NodeGenericTarget
	NodeBonePose
	NodeMorphTarget
	NodeMaterialParameter
)

var nodeTypeNames = [...]string{
	NodeCombiner:          "Combiner",
	NodeDelta:             "Delta",
	NodeCurrentTime:       "CurrentTime",
	NodeGenericTarget:     "GenericTarget",
	NodeBonePose:          "BonePose",
	NodeMorphTarget:       "MorphTarget",
	NodeMaterialParameter: "MaterialParameter",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return fmt.Sprintf("NodeType(%d)", int32(t))
}

// IsOutput reports whether nodes of this type feed an engine consumer.
func (t NodeType) IsOutput() bool {
	switch t {
	case NodeGenericTarget, NodeBonePose, NodeMorphTarget, NodeMaterialParameter:
		return true
	}
	return false
}

// ValueOp combines an external or register value with a node's value.
type ValueOp int32

const (
	OpNone ValueOp = iota
	OpAdd
	OpMultiply
	OpReplace
)

func (op ValueOp) String() string {
	switch op {
	case OpNone:
		return "none"
	case OpAdd:
		return "add"
	case OpMultiply:
		return "multiply"
	case OpReplace:
		return "replace"
	}
	return fmt.Sprintf("ValueOp(%d)", int32(op))
}

// ParseValueOp parses "add", "multiply", "replace" or "none".
func ParseValueOp(s string) (ValueOp, error) {
	switch s {
	case "none":
		return OpNone, nil
	case "add":
		return OpAdd, nil
	case "multiply":
		return OpMultiply, nil
	case "replace":
		return OpReplace, nil
	}
	return OpNone, fmt.Errorf("unknown value operation '%s'", s)
}

// apply folds v into base.
func (op ValueOp) apply(base, v float32) float32 {
	switch op {
	case OpAdd:
		return base + v
	case OpMultiply:
		return base * v
	case OpReplace:
		return v
	}
	return base
}

// NextRegOp is the operation of a queued register blend. The Load variants
// take the node's visible value as the blend start when promoted.
type NextRegOp int32

const (
	NextNone NextRegOp = iota
	NextLoadAdd
	NextLoadMultiply
	NextLoadReplace
)

func (op NextRegOp) String() string {
	switch op {
	case NextNone:
		return "none"
	case NextLoadAdd:
		return "load-add"
	case NextLoadMultiply:
		return "load-multiply"
	case NextLoadReplace:
		return "load-replace"
	}
	return fmt.Sprintf("NextRegOp(%d)", int32(op))
}

// GetUserOpForRegOp returns the value operation the active register slot
// uses once a queued blend with op is promoted.
func GetUserOpForRegOp(op NextRegOp) ValueOp {
	switch op {
	case NextLoadAdd:
		return OpAdd
	case NextLoadMultiply:
		return OpMultiply
	case NextLoadReplace:
		return OpReplace
	}
	return OpNone
}

// RegOpForValueOp is the inverse of GetUserOpForRegOp.
func RegOpForValueOp(op ValueOp) NextRegOp {
	switch op {
	case OpAdd:
		return NextLoadAdd
	case OpMultiply:
		return NextLoadMultiply
	case OpReplace:
		return NextLoadReplace
	}
	return NextNone
}
