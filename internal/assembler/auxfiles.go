package assembler

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"mcpforge/internal/api"
	"mcpforge/internal/buildspec"
	"mcpforge/internal/codegen"
)

const readmeTemplate = `# {{ .Spec.ServerName }}

{{ if .Spec.Description }}{{ .Spec.Description }}

{{ end }}This MCP server was generated by mcpforge ({{ .Spec.Flavor }} runtime).

## Tools

{{ range .Spec.Tools }}- ` + "`{{ .Name }}`" + `{{ if .Description }} - {{ .Description }}{{ end }}
{{ range .Parameters }}  - ` + "`{{ .Name }}`" + ` ({{ .Type }}{{ if .Required }}, required{{ end }}){{ if .Description }}: {{ .Description }}{{ end }}
{{ end }}{{ end }}
## Running

` + "```sh" + `
{{ .RunCommand }}
` + "```" + `

The server listens on HOST:PORT (defaults 0.0.0.0:8000) and serves the MCP
discovery manifest on GET / and tool invocations on POST /<tool-name>.

Tool handlers are generated as stubs in the ` + "`tool_*`" + ` files. Edit the
handle() function of each handler to implement the tool behavior.
`

const installShTemplate = `#!/bin/sh
# Install script for {{ .Spec.ServerName }} ({{ .Spec.Flavor }} runtime).
set -e

if ! command -v {{ .Runtime }} >/dev/null 2>&1; then
    echo "{{ .Runtime }} is required but was not found in PATH" >&2
    exit 1
fi

echo "{{ .Spec.ServerName | replace "\"" "'" }} is ready."
echo "Start it with: {{ .RunCommand }}"
`

const installBatTemplate = `@echo off
rem Install script for {{ .Spec.ServerName }} ({{ .Spec.Flavor }} runtime).

where {{ .Runtime }} >nul 2>nul
if %errorlevel% neq 0 (
    echo {{ .Runtime }} is required but was not found in PATH
    exit /b 1
)

echo {{ .Spec.ServerName }} is ready.
echo Start it with: {{ .RunCommand }}
`

const dockerfileTemplate = `FROM {{ .BaseImage }}
WORKDIR /app
COPY . .
EXPOSE 8000
ENV HOST=0.0.0.0 PORT=8000
CMD [{{ .CmdJSON }}]
`

var (
	readmeTmpl     = template.Must(template.New("readme").Funcs(sprig.TxtFuncMap()).Parse(readmeTemplate))
	installShTmpl  = template.Must(template.New("install-sh").Funcs(sprig.TxtFuncMap()).Parse(installShTemplate))
	installBatTmpl = template.Must(template.New("install-bat").Funcs(sprig.TxtFuncMap()).Parse(installBatTemplate))
	dockerfileTmpl = template.Must(template.New("dockerfile").Funcs(sprig.TxtFuncMap()).Parse(dockerfileTemplate))
)

// auxData is the rendering context shared by all auxiliary file templates.
type auxData struct {
	Spec       *buildspec.BuildSpec
	Runtime    string
	RunCommand string
	BaseImage  string
	CmdJSON    string
}

func newAuxData(spec *buildspec.BuildSpec) auxData {
	bootstrap := codegen.BootstrapFileName(spec.Flavor)
	data := auxData{Spec: spec}
	switch spec.Flavor {
	case api.FlavorNode:
		data.Runtime = "node"
		data.RunCommand = "node " + bootstrap
		data.BaseImage = "node:20-alpine"
		data.CmdJSON = fmt.Sprintf("%q, %q", "node", bootstrap)
	default:
		data.Runtime = "python3"
		data.RunCommand = "python3 " + bootstrap
		data.BaseImage = "python:3.12-slim"
		data.CmdJSON = fmt.Sprintf("%q, %q", "python3", bootstrap)
	}
	return data
}

// auxiliaryFiles renders the flavor-specific auxiliary artifacts: install
// scripts for both host shell environments, the README and the
// containerization descriptor. Rendering is deterministic like codegen.
func auxiliaryFiles(spec *buildspec.BuildSpec) ([]codegen.File, error) {
	data := newAuxData(spec)

	render := func(tmpl *template.Template) ([]byte, error) {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
		}
		return buf.Bytes(), nil
	}

	readme, err := render(readmeTmpl)
	if err != nil {
		return nil, err
	}
	installSh, err := render(installShTmpl)
	if err != nil {
		return nil, err
	}
	installBat, err := render(installBatTmpl)
	if err != nil {
		return nil, err
	}
	dockerfile, err := render(dockerfileTmpl)
	if err != nil {
		return nil, err
	}

	return []codegen.File{
		{Path: "README.md", Content: readme},
		{Path: "install.sh", Content: installSh},
		{Path: "install.bat", Content: installBat},
		{Path: "Dockerfile", Content: dockerfile},
	}, nil
}
