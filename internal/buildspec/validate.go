package buildspec

import (
	"fmt"
	"regexp"
	"strings"

	"mcpforge/internal/api"
)

// toolNamePattern constrains tool and parameter names to identifiers that
// are valid in both generated runtimes.
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validParameterTypes is the closed set of supported parameter types.
var validParameterTypes = map[api.ParameterType]bool{
	api.TypeString:  true,
	api.TypeNumber:  true,
	api.TypeBoolean: true,
	api.TypeObject:  true,
	api.TypeArray:   true,
}

// Normalize validates a wire-level build request and converts it into the
// internal BuildSpec representation. It is pure: the input is never mutated,
// and on failure no state of any kind is touched. Calling Normalize on the
// request twice yields equal results.
//
// The returned BuildSpec has no BuildID yet; the pipeline controller assigns
// one when the build is accepted.
func Normalize(req api.BuildSpecRequest) (*BuildSpec, error) {
	serverName := strings.TrimSpace(req.ServerName)
	if serverName == "" {
		return nil, api.NewValidationError("serverName", "must not be empty")
	}

	if len(req.Tools) == 0 {
		return nil, api.NewValidationError("tools", "at least one tool is required")
	}

	flavor, err := normalizeFlavor(req.Flavor)
	if err != nil {
		return nil, err
	}

	spec := &BuildSpec{
		ServerName:  serverName,
		Description: strings.TrimSpace(req.Description),
		Flavor:      flavor,
		Tools:       make([]ToolDefinition, 0, len(req.Tools)),
	}

	seenTools := make(map[string]bool, len(req.Tools))
	for i, tool := range req.Tools {
		field := fmt.Sprintf("tools[%d]", i)

		name := strings.TrimSpace(tool.Name)
		if name == "" {
			return nil, api.NewValidationError(field+".name", "must not be empty")
		}
		if !toolNamePattern.MatchString(name) {
			return nil, api.NewValidationError(field+".name", "%q is not a valid tool identifier", name)
		}
		if seenTools[name] {
			return nil, api.NewValidationError(field+".name", "duplicate tool name %q", name)
		}
		seenTools[name] = true

		def := ToolDefinition{
			Name:        name,
			Description: strings.TrimSpace(tool.Description),
			Hint:        strings.TrimSpace(tool.Hint),
			Parameters:  make([]ToolParameter, 0, len(tool.Parameters)),
		}

		seenParams := make(map[string]bool, len(tool.Parameters))
		for j, param := range tool.Parameters {
			paramField := fmt.Sprintf("%s.parameters[%d]", field, j)

			paramName := strings.TrimSpace(param.Name)
			if paramName == "" {
				return nil, api.NewValidationError(paramField+".name", "must not be empty")
			}
			if !toolNamePattern.MatchString(paramName) {
				return nil, api.NewValidationError(paramField+".name", "%q is not a valid parameter identifier", paramName)
			}
			if seenParams[paramName] {
				return nil, api.NewValidationError(paramField+".name", "duplicate parameter name %q in tool %q", paramName, name)
			}
			seenParams[paramName] = true

			paramType := api.ParameterType(strings.ToLower(strings.TrimSpace(param.Type)))
			if !validParameterTypes[paramType] {
				return nil, api.NewValidationError(paramField+".type", "unknown parameter type %q", param.Type)
			}

			def.Parameters = append(def.Parameters, ToolParameter{
				Name:        paramName,
				Type:        paramType,
				Required:    param.Required,
				Default:     param.Default,
				Description: strings.TrimSpace(param.Description),
			})
		}

		spec.Tools = append(spec.Tools, def)
	}

	return spec, nil
}

// normalizeFlavor maps the requested runtime flavor onto the supported set.
// An empty flavor defaults to python.
func normalizeFlavor(raw string) (api.RuntimeFlavor, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "python", "py":
		return api.FlavorPython, nil
	case "node", "nodejs", "javascript", "js":
		return api.FlavorNode, nil
	default:
		return "", api.NewValidationError("flavor", "unknown runtime flavor %q (supported: python, node)", raw)
	}
}
