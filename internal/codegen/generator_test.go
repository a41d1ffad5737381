package codegen

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpforge/internal/api"
	"mcpforge/internal/buildspec"
)

func helloWorldSpec(flavor api.RuntimeFlavor) *buildspec.BuildSpec {
	return &buildspec.BuildSpec{
		BuildID:     "b-1",
		ServerName:  "Greeting Server",
		Description: "Says hello",
		Flavor:      flavor,
		Tools: []buildspec.ToolDefinition{
			{
				Name:        "hello_world",
				Description: "Return a greeting message",
				Parameters: []buildspec.ToolParameter{
					{Name: "name", Type: api.TypeString, Required: true, Description: "Name to greet"},
				},
			},
		},
	}
}

func multiToolSpec() *buildspec.BuildSpec {
	spec := helloWorldSpec(api.FlavorPython)
	spec.Tools = append(spec.Tools,
		buildspec.ToolDefinition{
			Name: "lookup",
			Hint: "Query the upstream API\nand cache the result",
			Parameters: []buildspec.ToolParameter{
				{Name: "query", Type: api.TypeString, Required: true},
				{Name: "limit", Type: api.TypeNumber},
				{Name: "filters", Type: api.TypeObject},
			},
		},
		buildspec.ToolDefinition{
			Name: "toggle",
			Parameters: []buildspec.ToolParameter{
				{Name: "enabled", Type: api.TypeBoolean, Required: true},
				{Name: "tags", Type: api.TypeArray},
			},
		},
	)
	return spec
}

func fileByPath(t *testing.T, files []File, path string) File {
	t.Helper()
	for _, f := range files {
		if f.Path == path {
			return f
		}
	}
	t.Fatalf("file %s not found in generated set", path)
	return File{}
}

func TestGenerate_FileCount(t *testing.T) {
	spec := multiToolSpec()

	files, err := Generate(spec)
	require.NoError(t, err)

	// N handler files + manifest + bootstrap
	require.Len(t, files, len(spec.Tools)+2)

	handlers := 0
	for _, f := range files {
		if strings.HasPrefix(f.Path, "tool_") {
			handlers++
		}
	}
	assert.Equal(t, len(spec.Tools), handlers)
	fileByPath(t, files, "manifest.json")
	fileByPath(t, files, "server.py")
}

func TestGenerate_Deterministic(t *testing.T) {
	spec := multiToolSpec()

	first, err := Generate(spec)
	require.NoError(t, err)
	second, err := Generate(spec)
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
		assert.Equal(t, string(first[i].Content), string(second[i].Content),
			"regeneration of %s must be byte-identical", first[i].Path)
	}
}

func TestGenerate_HelloWorldPython(t *testing.T) {
	files, err := Generate(helloWorldSpec(api.FlavorPython))
	require.NoError(t, err)

	handler := string(fileByPath(t, files, "tool_hello_world.py").Content)
	assert.Contains(t, handler, `TOOL_NAME = "hello_world"`)
	assert.Contains(t, handler, `if "name" not in params:`)
	assert.Contains(t, handler, `isinstance(params["name"], str)`)

	bootstrap := string(fileByPath(t, files, "server.py").Content)
	assert.Contains(t, bootstrap, "import tool_hello_world")
	assert.Contains(t, bootstrap, "tool_hello_world.TOOL_NAME: tool_hello_world.handle")
	assert.Contains(t, bootstrap, "HTTPServer")
}

func TestGenerate_HelloWorldNode(t *testing.T) {
	files, err := Generate(helloWorldSpec(api.FlavorNode))
	require.NoError(t, err)

	handler := string(fileByPath(t, files, "tool_hello_world.js").Content)
	assert.Contains(t, handler, `const TOOL_NAME = 'hello_world';`)
	assert.Contains(t, handler, `if (!('name' in params))`)
	assert.Contains(t, handler, `typeof params['name'] !== 'string'`)

	bootstrap := string(fileByPath(t, files, "server.js").Content)
	assert.Contains(t, bootstrap, `require('./tool_hello_world.js')`)
	assert.Contains(t, bootstrap, "http.createServer")
}

func TestGenerate_Manifest(t *testing.T) {
	spec := multiToolSpec()
	files, err := Generate(spec)
	require.NoError(t, err)

	var m struct {
		Protocol struct {
			Schema string `json:"schema"`
		} `json:"protocol"`
		Server struct {
			Name   string `json:"name"`
			Vendor string `json:"vendor"`
		} `json:"server"`
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Type       string                            `json:"type"`
				Properties map[string]map[string]interface{} `json:"properties"`
				Required   []string                          `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(fileByPath(t, files, "manifest.json").Content, &m))

	assert.Equal(t, "mcp", m.Protocol.Schema)
	assert.Equal(t, "Greeting Server", m.Server.Name)
	require.Len(t, m.Tools, 3)

	lookup := m.Tools[1]
	assert.Equal(t, "lookup", lookup.Name)
	assert.Equal(t, "object", lookup.InputSchema.Type)
	assert.Equal(t, []string{"query"}, lookup.InputSchema.Required)
	assert.Equal(t, "number", lookup.InputSchema.Properties["limit"]["type"])
	// object parameters stay passthrough placeholders
	assert.Equal(t, "object", lookup.InputSchema.Properties["filters"]["type"])
}

func TestGenerate_PassthroughTypesSkipChecks(t *testing.T) {
	spec := multiToolSpec()
	files, err := Generate(spec)
	require.NoError(t, err)

	handler := string(fileByPath(t, files, "tool_lookup.py").Content)
	assert.NotContains(t, handler, `isinstance(params["filters"]`)
	assert.Contains(t, handler, "filters (object): nested validation is left to the implementer.")
}

func TestGenerate_HintRenderedAsComments(t *testing.T) {
	spec := multiToolSpec()
	files, err := Generate(spec)
	require.NoError(t, err)

	handler := string(fileByPath(t, files, "tool_lookup.py").Content)
	assert.Contains(t, handler, "# Implementation hint:")
	assert.Contains(t, handler, "# Query the upstream API")
	assert.Contains(t, handler, "# and cache the result")
}

func TestGenerate_EmptySpecRejected(t *testing.T) {
	_, err := Generate(&buildspec.BuildSpec{ServerName: "x", Flavor: api.FlavorPython})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))

	_, err = Generate(nil)
	require.Error(t, err)
}
