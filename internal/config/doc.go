// Package config loads the yaml configuration file and supplies defaults
// for everything it omits. Configuration lives in a single directory
// (default ~/.config/mcpforge) containing config.yaml; the data directory
// for artifacts and records defaults to a subdirectory of it.
package config
