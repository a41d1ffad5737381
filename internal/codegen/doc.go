// Package codegen renders a validated build specification into the source
// file set of a runnable MCP server.
//
// For a spec with N tools the generator emits exactly N handler files, one
// manifest file (manifest.json, the discovery handshake document) and one
// bootstrap file that registers every tool and starts the request-serving
// loop. Two runtime flavors are supported: python and node.
//
// Output is a pure function of the spec. Templates contain no timestamps,
// random identifiers or environment lookups, so regenerating from the same
// spec is byte-identical. Generation is atomic: any failure aborts before a
// single file is returned.
package codegen
