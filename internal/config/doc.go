// Package config defines the format-agnostic model of a benchmark sweep,
// along with the Loader interface that reads it from disk.
//
// The `config.Model` is the single source of truth for the `sweep` package.
// Concrete loaders, such as the HCL one, live in separate packages.
package config
