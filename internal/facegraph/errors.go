package facegraph

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateNode       = errors.New("duplicate node name")
	ErrNodeNotFound        = errors.New("node not found")
	ErrLinkIndexOutOfRange = errors.New("link index out of range")
	ErrUnknownLinkFunction = errors.New("unknown link function")
	ErrInvalidProperty     = errors.New("invalid user property")
)

func linkIndexError(node string, index, count int) error {
	return fmt.Errorf("%w: node '%s' has %d inputs, index %d", ErrLinkIndexOutOfRange, node, count, index)
}
