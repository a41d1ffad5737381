// Package gateway exposes the pipeline as an MCP server. Every operation
// of the produced interface is published as a tool (build_submit,
// deploy_submit, deploy_targets, ...) over either stdio or streamable
// HTTP; handlers are looked up through the api service locator so the
// gateway carries no pipeline logic of its own.
package gateway
