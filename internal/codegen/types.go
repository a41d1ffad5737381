package codegen

import (
	"encoding/json"
	"fmt"

	"mcpforge/internal/api"
	"mcpforge/internal/buildspec"
)

// File is one generated source file. Path is relative to the build root and
// always uses forward slashes.
type File struct {
	Path    string
	Content []byte
}

// manifest is the discovery handshake document served by generated servers.
// The field layout follows the manifest the original server template serves
// on GET /.
type manifest struct {
	Protocol manifestProtocol `json:"protocol"`
	Server   manifestServer   `json:"server"`
	Tools    []manifestTool   `json:"tools"`
}

type manifestProtocol struct {
	Schema  string `json:"schema"`
	Version string `json:"version"`
}

type manifestServer struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Vendor      string `json:"vendor"`
}

type manifestTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema manifestSchema `json:"inputSchema"`
}

type manifestSchema struct {
	Type       string                            `json:"type"`
	Properties map[string]map[string]interface{} `json:"properties"`
	Required   []string                          `json:"required"`
}

// schemaForParameter is the fixed type-mapping table from declared parameter
// types to validation schema fragments. object and array stay passthrough
// placeholders; nested validation is left to the implementer.
func schemaForParameter(p buildspec.ToolParameter) map[string]interface{} {
	prop := map[string]interface{}{
		"type": string(p.Type),
	}
	if p.Description != "" {
		prop["description"] = p.Description
	}
	if p.Default != nil {
		prop["default"] = p.Default
	}
	return prop
}

// buildManifest assembles the manifest document for a spec. encoding/json
// sorts map keys, so the output is stable across runs.
func buildManifest(spec *buildspec.BuildSpec) ([]byte, error) {
	m := manifest{
		Protocol: manifestProtocol{Schema: "mcp", Version: "0.1.0"},
		Server: manifestServer{
			Name:        spec.ServerName,
			Version:     "1.0.0",
			Description: spec.Description,
			Vendor:      "mcpforge",
		},
		Tools: make([]manifestTool, 0, len(spec.Tools)),
	}

	for _, tool := range spec.Tools {
		mt := manifestTool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: manifestSchema{
				Type:       "object",
				Properties: make(map[string]map[string]interface{}, len(tool.Parameters)),
				Required:   []string{},
			},
		}
		for _, p := range tool.Parameters {
			mt.InputSchema.Properties[p.Name] = schemaForParameter(p)
			if p.Required {
				mt.InputSchema.Required = append(mt.InputSchema.Required, p.Name)
			}
		}
		m.Tools = append(m.Tools, mt)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// pythonTypeCheck returns the isinstance() target for a parameter type, or
// empty when the type is a passthrough placeholder.
func pythonTypeCheck(t api.ParameterType) string {
	switch t {
	case api.TypeString:
		return "str"
	case api.TypeNumber:
		return "(int, float)"
	case api.TypeBoolean:
		return "bool"
	default:
		// object and array: implementer-defined nested validation
		return ""
	}
}

// nodeTypeCheck returns the typeof result expected for a parameter type, or
// empty for passthrough placeholders.
func nodeTypeCheck(t api.ParameterType) string {
	switch t {
	case api.TypeString:
		return "string"
	case api.TypeNumber:
		return "number"
	case api.TypeBoolean:
		return "boolean"
	default:
		return ""
	}
}
