// Package config handles application configuration loading and validation.
//
// Configuration is loaded from a YAML file and validated using struct
// tags. CLI flags override the file's values; the URI section builds
// the shared URI strategy.
package config
