// Package logging provides a structured logging system for mcpforge with
// unified log handling and level filtering.
//
// The package wraps Go's standard slog package. Every log entry carries a
// subsystem identifier so output from the pipeline stages (Codegen, Assembler,
// Deploy, Pipeline, Store, Gateway) can be filtered and correlated.
//
// # Usage
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Info("Assembler", "Promoted build %s", buildID)
//	logging.Error("Deploy", err, "Target %s failed", targetID)
//
// Init must be called once at startup before any subsystem logs.
package logging
