package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"mcpforge/internal/api"
	"mcpforge/internal/config"
	"mcpforge/pkg/logging"
)

const subsystem = "Gateway"

// Server publishes the pipeline operations over MCP.
type Server struct {
	mu sync.Mutex

	config  config.GatewayConfig
	version string

	server               *mcpserver.MCPServer
	streamableHTTPServer *mcpserver.StreamableHTTPServer
	stdioServer          *mcpserver.StdioServer

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewServer creates a gateway server for the given transport config.
func NewServer(cfg config.GatewayConfig, version string) *Server {
	return &Server{config: cfg, version: version}
}

// Start registers all provider tools and starts the configured transport.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("gateway server already started")
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	s.server = mcpserver.NewMCPServer(
		"mcpforge",
		s.version,
		mcpserver.WithToolCapabilities(true),
	)

	provider := NewToolProvider()
	s.server.AddTools(createServerTools(provider)...)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	switch s.config.Transport {
	case config.TransportStdio:
		logging.Info(subsystem, "Starting MCP gateway with stdio transport")
		s.stdioServer = mcpserver.NewStdioServer(s.server)
		stdioServer := s.stdioServer
		go func() {
			if err := stdioServer.Listen(s.ctx, os.Stdin, os.Stdout); err != nil {
				logging.Error(subsystem, err, "Stdio server error")
			}
		}()

	case config.TransportStreamableHTTP:
		fallthrough
	default:
		logging.Info(subsystem, "Starting MCP gateway with streamable-http transport on %s", addr)
		s.streamableHTTPServer = mcpserver.NewStreamableHTTPServer(s.server)
		streamableServer := s.streamableHTTPServer
		go func() {
			if err := streamableServer.Start(addr); err != nil && err != http.ErrServerClosed {
				logging.Error(subsystem, err, "Streamable HTTP server error")
			}
		}()
	}

	return nil
}

// Stop shuts the transport down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	if s.streamableHTTPServer != nil {
		if err := s.streamableHTTPServer.Shutdown(ctx); err != nil {
			return err
		}
		s.streamableHTTPServer = nil
	}
	s.server = nil
	s.stdioServer = nil

	logging.Info(subsystem, "Gateway stopped")
	return nil
}

// createServerTools wraps every provider tool into an MCP server tool.
func createServerTools(provider api.ToolProvider) []mcpserver.ServerTool {
	metas := provider.GetTools()
	tools := make([]mcpserver.ServerTool, 0, len(metas))
	for _, meta := range metas {
		tools = append(tools, mcpserver.ServerTool{
			Tool: mcp.Tool{
				Name:        meta.Name,
				Description: meta.Description,
				InputSchema: convertToMCPSchema(meta.Args),
			},
			Handler: createToolHandler(provider, meta.Name),
		})
	}
	return tools
}

// createToolHandler wraps a provider tool in an MCP handler. Execution
// failures become tool errors, never protocol errors.
func createToolHandler(provider api.ToolProvider, toolName string) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := make(map[string]interface{})
		if req.Params.Arguments != nil {
			if argsMap, ok := req.Params.Arguments.(map[string]interface{}); ok {
				args = argsMap
			}
		}

		result, err := provider.ExecuteTool(ctx, toolName, args)
		if err != nil {
			logging.Error(subsystem, err, "Tool execution failed for %s", toolName)
			return mcp.NewToolResultError(fmt.Sprintf("Tool execution failed: %v", err)), nil
		}
		return convertToMCPResult(result), nil
	}
}

// convertToMCPSchema converts arg metadata to the MCP input schema format.
func convertToMCPSchema(args []api.ArgMetadata) mcp.ToolInputSchema {
	properties := make(map[string]interface{})
	required := []string{}

	for _, arg := range args {
		propSchema := map[string]interface{}{
			"type":        arg.Type,
			"description": arg.Description,
		}
		if arg.Default != nil {
			propSchema["default"] = arg.Default
		}
		properties[arg.Name] = propSchema

		if arg.Required {
			required = append(required, arg.Name)
		}
	}

	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// convertToMCPResult converts an internal tool result to MCP format.
func convertToMCPResult(result *api.CallToolResult) *mcp.CallToolResult {
	mcpContent := make([]mcp.Content, len(result.Content))

	for i, content := range result.Content {
		if text, ok := content.(string); ok {
			mcpContent[i] = mcp.NewTextContent(text)
		} else {
			jsonBytes, _ := json.Marshal(content)
			mcpContent[i] = mcp.NewTextContent(string(jsonBytes))
		}
	}

	return &mcp.CallToolResult{
		Content: mcpContent,
		IsError: result.IsError,
	}
}
