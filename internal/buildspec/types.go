package buildspec

import (
	"mcpforge/internal/api"
)

// ToolParameter is a validated parameter of a tool.
type ToolParameter struct {
	Name        string            `yaml:"name" json:"name"`
	Type        api.ParameterType `yaml:"type" json:"type"`
	Required    bool              `yaml:"required" json:"required"`
	Default     interface{}       `yaml:"default,omitempty" json:"default,omitempty"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
}

// ToolDefinition is a validated tool. Parameter order is preserved from the
// submitted request so generation stays deterministic.
type ToolDefinition struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description,omitempty" json:"description,omitempty"`
	Parameters  []ToolParameter `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Hint        string          `yaml:"hint,omitempty" json:"hint,omitempty"`
}

// BuildSpec is the validated, normalized build specification. BuildID is
// assigned at creation by the pipeline controller and immutable thereafter;
// the spec is frozen once generation starts.
type BuildSpec struct {
	BuildID     string            `yaml:"buildId" json:"buildId"`
	ServerName  string            `yaml:"serverName" json:"serverName"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Flavor      api.RuntimeFlavor `yaml:"flavor" json:"flavor"`
	Tools       []ToolDefinition  `yaml:"tools" json:"tools"`
}

// Tool returns the tool definition with the given name, or nil.
func (s *BuildSpec) Tool(name string) *ToolDefinition {
	for i := range s.Tools {
		if s.Tools[i].Name == name {
			return &s.Tools[i]
		}
	}
	return nil
}
