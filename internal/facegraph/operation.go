package facegraph

import (
	"fmt"
	"strings"
)

// InputOperation selects how a node folds its input link values together.
type InputOperation int32

const (
	OpSum InputOperation = iota
	OpMultiply
	OpMax
	OpMin
)

func (op InputOperation) String() string {
	switch op {
	case OpSum:
		return "sum"
	case OpMultiply:
		return "multiply"
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	default:
		return "unknown"
	}
}

// ParseInputOperation accepts the lower-case names produced by String. An
// empty string means sum.
func ParseInputOperation(s string) (InputOperation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sum":
		return OpSum, nil
	case "multiply":
		return OpMultiply, nil
	case "max":
		return OpMax, nil
	case "min":
		return OpMin, nil
	}
	return OpSum, fmt.Errorf("unknown input operation %q", s)
}
