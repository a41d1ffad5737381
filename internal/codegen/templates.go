package codegen

import (
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateData is the root rendering context for bootstrap templates.
type templateData struct {
	ServerName  string
	Description string
	Tools       []toolTemplateData
}

// handlerData is the rendering context for a single handler file.
type handlerData struct {
	ServerName string
	Tool       toolTemplateData
}

type toolTemplateData struct {
	Name        string
	Description string
	HintLines   []string
	Params      []paramTemplateData
}

type paramTemplateData struct {
	Name        string
	Description string
	Type        string
	Required    bool
	PyCheck     string
	JsCheck     string
}

const pythonHandlerTemplate = `"""Handler for the {{ .Tool.Name }} tool of {{ .ServerName }}."""

TOOL_NAME = "{{ .Tool.Name }}"
TOOL_DESCRIPTION = {{ .Tool.Description | quote }}


def validate(params):
    """Check required parameters and declared parameter types."""
    if not isinstance(params, dict):
        raise ValueError("params must be an object")
{{- range .Tool.Params }}
{{- if .Required }}
    if "{{ .Name }}" not in params:
        raise ValueError("{{ .Name }} parameter is required")
{{- end }}
{{- if .PyCheck }}
    if "{{ .Name }}" in params and not isinstance(params["{{ .Name }}"], {{ .PyCheck }}):
        raise ValueError("{{ .Name }} must be of type {{ .Type }}")
{{- else }}
    # {{ .Name }} ({{ .Type }}): nested validation is left to the implementer.
{{- end }}
{{- end }}
    return params


def handle(params):
    """Execute the {{ .Tool.Name }} tool."""
    params = validate(params)
{{- range .Tool.HintLines }}
    # {{ . }}
{{- end }}
    # TODO: implement {{ .Tool.Name }}
    return {"result": "{{ .Tool.Name }} executed", "params": params}
`

const pythonBootstrapTemplate = `#!/usr/bin/env python3
"""{{ .ServerName }} - generated MCP server entrypoint."""

import json
import os
from http.server import HTTPServer, BaseHTTPRequestHandler

{{ range .Tools }}import tool_{{ .Name }}
{{ end }}
HOST = os.environ.get("HOST", "0.0.0.0")
PORT = int(os.environ.get("PORT", 8000))

HANDLERS = {
{{- range .Tools }}
    tool_{{ .Name }}.TOOL_NAME: tool_{{ .Name }}.handle,
{{- end }}
}

_manifest_path = os.path.join(os.path.dirname(os.path.abspath(__file__)), "manifest.json")
with open(_manifest_path) as _f:
    MANIFEST = json.load(_f)


class RequestHandler(BaseHTTPRequestHandler):
    def _send_json(self, status, payload):
        body = json.dumps(payload).encode()
        self.send_response(status)
        self.send_header("Content-Type", "application/json")
        self.send_header("Access-Control-Allow-Origin", "*")
        self.send_header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
        self.send_header("Access-Control-Allow-Headers", "Content-Type")
        self.end_headers()
        self.wfile.write(body)

    def do_OPTIONS(self):
        self._send_json(200, {})

    def do_GET(self):
        if self.path in ("", "/"):
            self._send_json(200, MANIFEST)
        else:
            self._send_json(404, {"error": "not found"})

    def do_POST(self):
        length = int(self.headers.get("Content-Length", 0))
        raw = self.rfile.read(length).decode("utf-8") if length else "{}"
        try:
            params = json.loads(raw)
        except json.JSONDecodeError:
            self._send_json(400, {"error": "invalid JSON"})
            return

        tool = self.path.strip("/")
        handler = HANDLERS.get(tool)
        if handler is None:
            self._send_json(404, {"error": "tool not found: " + tool})
            return

        try:
            self._send_json(200, handler(params))
        except ValueError as exc:
            self._send_json(400, {"error": str(exc)})
        except Exception as exc:
            self._send_json(500, {"error": str(exc)})


def run_server():
    httpd = HTTPServer((HOST, PORT), RequestHandler)
    print({{ .ServerName | quote }} + f" running at http://{HOST}:{PORT}")
    httpd.serve_forever()


if __name__ == "__main__":
    run_server()
`

const nodeHandlerTemplate = `'use strict';

// Handler for the {{ .Tool.Name }} tool of {{ .ServerName }}.

const TOOL_NAME = '{{ .Tool.Name }}';
const TOOL_DESCRIPTION = {{ .Tool.Description | quote }};

function validate(params) {
  if (typeof params !== 'object' || params === null || Array.isArray(params)) {
    throw new Error('params must be an object');
  }
{{- range .Tool.Params }}
{{- if .Required }}
  if (!('{{ .Name }}' in params)) {
    throw new Error('{{ .Name }} parameter is required');
  }
{{- end }}
{{- if .JsCheck }}
  if ('{{ .Name }}' in params && typeof params['{{ .Name }}'] !== '{{ .JsCheck }}') {
    throw new Error('{{ .Name }} must be of type {{ .Type }}');
  }
{{- else }}
  // {{ .Name }} ({{ .Type }}): nested validation is left to the implementer.
{{- end }}
{{- end }}
  return params;
}

function handle(params) {
  params = validate(params);
{{- range .Tool.HintLines }}
  // {{ . }}
{{- end }}
  // TODO: implement {{ .Tool.Name }}
  return { result: '{{ .Tool.Name }} executed', params: params };
}

module.exports = { TOOL_NAME, TOOL_DESCRIPTION, validate, handle };
`

const nodeBootstrapTemplate = `'use strict';

// {{ .ServerName }} - generated MCP server entrypoint.

const http = require('http');
const fs = require('fs');
const path = require('path');

{{ range .Tools }}const tool_{{ .Name }} = require('./tool_{{ .Name }}.js');
{{ end }}
const HOST = process.env.HOST || '0.0.0.0';
const PORT = parseInt(process.env.PORT || '8000', 10);

const HANDLERS = {
{{- range .Tools }}
  [tool_{{ .Name }}.TOOL_NAME]: tool_{{ .Name }}.handle,
{{- end }}
};

const MANIFEST = JSON.parse(fs.readFileSync(path.join(__dirname, 'manifest.json'), 'utf8'));

function sendJSON(res, status, payload) {
  res.writeHead(status, {
    'Content-Type': 'application/json',
    'Access-Control-Allow-Origin': '*',
    'Access-Control-Allow-Methods': 'GET, POST, OPTIONS',
    'Access-Control-Allow-Headers': 'Content-Type',
  });
  res.end(JSON.stringify(payload));
}

const server = http.createServer((req, res) => {
  if (req.method === 'OPTIONS') {
    sendJSON(res, 200, {});
    return;
  }
  if (req.method === 'GET') {
    if (req.url === '/' || req.url === '') {
      sendJSON(res, 200, MANIFEST);
    } else {
      sendJSON(res, 404, { error: 'not found' });
    }
    return;
  }
  if (req.method !== 'POST') {
    sendJSON(res, 405, { error: 'method not allowed' });
    return;
  }

  let raw = '';
  req.on('data', (chunk) => {
    raw += chunk;
  });
  req.on('end', () => {
    let params;
    try {
      params = raw ? JSON.parse(raw) : {};
    } catch (err) {
      sendJSON(res, 400, { error: 'invalid JSON' });
      return;
    }
    const tool = req.url.replace(/^\/+|\/+$/g, '');
    const handler = HANDLERS[tool];
    if (!handler) {
      sendJSON(res, 404, { error: 'tool not found: ' + tool });
      return;
    }
    try {
      sendJSON(res, 200, handler(params));
    } catch (err) {
      sendJSON(res, 400, { error: String(err.message || err) });
    }
  });
});

server.listen(PORT, HOST, () => {
  console.log({{ .ServerName | quote }} + ' running at http://' + HOST + ':' + PORT);
});
`

// parsed templates, shared by all Generate calls.
var (
	pythonHandlerTmpl   = mustParse("python-handler", pythonHandlerTemplate)
	pythonBootstrapTmpl = mustParse("python-bootstrap", pythonBootstrapTemplate)
	nodeHandlerTmpl     = mustParse("node-handler", nodeHandlerTemplate)
	nodeBootstrapTmpl   = mustParse("node-bootstrap", nodeBootstrapTemplate)
)

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text))
}
