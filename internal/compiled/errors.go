package compiled

import "errors"

var (
	// ErrInvalidGraph is returned when nodes or links violate the flat
	// layout: duplicate names, link windows out of range, or a link reading
	// a node that is not evaluated before its consumer.
	ErrInvalidGraph = errors.New("invalid compiled graph")
	// ErrUnknownLinkFunction is returned by Bind for a tag the registry
	// does not know.
	ErrUnknownLinkFunction = errors.New("unknown link function type")
)
