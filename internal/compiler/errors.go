package compiler

import (
	"errors"
	"fmt"
)

var (
	ErrCycle               = errors.New("cycle detected")
	ErrUnknownNodeClass    = errors.New("unknown node class")
	ErrUnknownLinkFunction = errors.New("unknown link function")
	ErrUnboundLink         = errors.New("link source is not bound")
	ErrDuplicateNodeClass  = errors.New("duplicate node class")
)

// GraphError wraps a structural compilation failure.
type GraphError struct {
	Kind error
	Msg  string
}

func (e *GraphError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *GraphError) Unwrap() error { return e.Kind }

func graphErrorf(kind error, format string, args ...any) error {
	return &GraphError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
