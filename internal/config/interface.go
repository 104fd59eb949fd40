package config

import "context"

// Loader is the interface for a format-specific graph description loader.
type Loader interface {
	// Load reads every description file found under paths and merges them
	// into one model. Files are read in lexical path order.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
