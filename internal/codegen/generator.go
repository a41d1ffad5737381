package codegen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"mcpforge/internal/api"
	"mcpforge/internal/buildspec"
	"mcpforge/pkg/logging"
)

const codegenSubsystem = "Codegen"

// Generate renders the full source file set for a validated spec. The
// returned order is fixed: handler files in spec order, then manifest.json,
// then the bootstrap entrypoint.
//
// Generation is all-or-nothing. Rendering happens entirely in memory and any
// error aborts before a single file is returned.
func Generate(spec *buildspec.BuildSpec) ([]File, error) {
	if spec == nil || len(spec.Tools) == 0 {
		return nil, api.NewValidationError("tools", "at least one tool is required")
	}

	handlerTmpl, bootstrapTmpl, ext, err := flavorTemplates(spec.Flavor)
	if err != nil {
		return nil, err
	}

	data := templateData{
		ServerName:  spec.ServerName,
		Description: spec.Description,
		Tools:       make([]toolTemplateData, 0, len(spec.Tools)),
	}
	for _, tool := range spec.Tools {
		data.Tools = append(data.Tools, toolData(tool))
	}

	files := make([]File, 0, len(spec.Tools)+2)

	for _, tool := range data.Tools {
		var buf bytes.Buffer
		if err := handlerTmpl.Execute(&buf, handlerData{ServerName: spec.ServerName, Tool: tool}); err != nil {
			return nil, fmt.Errorf("failed to render handler for tool %s: %w", tool.Name, err)
		}
		files = append(files, File{
			Path:    fmt.Sprintf("tool_%s.%s", tool.Name, ext),
			Content: buf.Bytes(),
		})
	}

	manifestContent, err := buildManifest(spec)
	if err != nil {
		return nil, err
	}
	files = append(files, File{Path: "manifest.json", Content: manifestContent})

	var buf bytes.Buffer
	if err := bootstrapTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render bootstrap: %w", err)
	}
	files = append(files, File{Path: "server." + ext, Content: buf.Bytes()})

	logging.Debug(codegenSubsystem, "Generated %d files for server %s (%s)", len(files), spec.ServerName, spec.Flavor)
	return files, nil
}

// BootstrapFileName returns the entrypoint file name for a flavor.
func BootstrapFileName(flavor api.RuntimeFlavor) string {
	if flavor == api.FlavorNode {
		return "server.js"
	}
	return "server.py"
}

func flavorTemplates(flavor api.RuntimeFlavor) (*template.Template, *template.Template, string, error) {
	switch flavor {
	case api.FlavorPython:
		return pythonHandlerTmpl, pythonBootstrapTmpl, "py", nil
	case api.FlavorNode:
		return nodeHandlerTmpl, nodeBootstrapTmpl, "js", nil
	default:
		return nil, nil, "", api.NewValidationError("flavor", "unknown runtime flavor %q", flavor)
	}
}

func toolData(tool buildspec.ToolDefinition) toolTemplateData {
	td := toolTemplateData{
		Name:        tool.Name,
		Description: tool.Description,
		Params:      make([]paramTemplateData, 0, len(tool.Parameters)),
	}
	if tool.Hint != "" {
		td.HintLines = hintLines(tool.Hint)
	}
	for _, p := range tool.Parameters {
		td.Params = append(td.Params, paramTemplateData{
			Name:        p.Name,
			Description: p.Description,
			Type:        string(p.Type),
			Required:    p.Required,
			PyCheck:     pythonTypeCheck(p.Type),
			JsCheck:     nodeTypeCheck(p.Type),
		})
	}
	return td
}

// hintLines splits a free-text implementation hint into comment-safe lines.
func hintLines(hint string) []string {
	var lines []string
	for _, line := range strings.Split(hint, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) > 0 {
		lines = append([]string{"Implementation hint:"}, lines...)
	}
	return lines
}
