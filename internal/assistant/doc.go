// Package assistant provides the client for the external suggestion
// service. Suggestions enrich tool hints and operator-facing text; they
// are strictly advisory and never gate pipeline progress.
package assistant
