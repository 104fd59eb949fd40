// Package config defines the format-agnostic description of a face graph
// and the Loader interface that produces it.
//
// The config.Model is the single source of truth for the builder package.
// Concrete loaders, such as the HCL one, live in separate packages.
package config
