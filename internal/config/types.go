package config

import "time"

// ForgeConfig is the top-level configuration structure.
type ForgeConfig struct {
	// DataDir is the root for build artifacts, deployment workspaces,
	// persisted records and the drop-in specs directory.
	DataDir string `yaml:"dataDir,omitempty"`

	Gateway   GatewayConfig   `yaml:"gateway"`
	Assistant AssistantConfig `yaml:"assistant"`
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
}

// Gateway transport names.
const (
	TransportStreamableHTTP = "streamable-http"
	TransportStdio          = "stdio"
)

// GatewayConfig defines the configuration for the MCP gateway.
type GatewayConfig struct {
	Port      int    `yaml:"port,omitempty"`      // Port for the streamable HTTP endpoint (default: 8090)
	Host      string `yaml:"host,omitempty"`      // Host to bind to (default: localhost)
	Transport string `yaml:"transport,omitempty"` // Transport to use (default: streamable-http)
}

// AssistantConfig defines the external suggestion collaborator.
type AssistantConfig struct {
	Endpoint string        `yaml:"endpoint,omitempty"` // Base URL; empty disables suggestions
	Timeout  time.Duration `yaml:"timeout,omitempty"`  // Per-call budget (default: 30s)
}

// TimeoutConfig bounds each pipeline stage. A stage that exceeds its
// budget fails the job with a timeout classification.
type TimeoutConfig struct {
	Assemble time.Duration `yaml:"assemble,omitempty"` // default: 1m
	Config   time.Duration `yaml:"config,omitempty"`   // default: 30s
	Deploy   time.Duration `yaml:"deploy,omitempty"`   // default: 10m
}
