// Package api is the central contract layer of mcpforge.
//
// It follows the Service Locator Pattern: concrete components (the pipeline
// controller, the assistant client) register handler implementations here
// during startup, and consumers (the MCP gateway, the CLI commands) resolve
// them through the Get* accessors. This keeps the outer surfaces decoupled
// from the pipeline internals and avoids import cycles between packages.
//
// The package also owns:
//   - the wire-level build specification types (BuildSpecRequest and friends)
//     shared between the gateway, the CLI and the validator,
//   - the error taxonomy of the pipeline (ValidationError, ConfigError,
//     UnsupportedTargetError, InvalidStateError, UpstreamError, TimeoutError,
//     ProviderFailure) together with errors.As based predicates,
//   - the ToolProvider abstraction the gateway uses to expose pipeline
//     operations as MCP tools.
//
// No package under internal/ may reach around this layer to call another
// component's concrete type directly.
package api
