package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	config, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8090, config.Gateway.Port)
	assert.Equal(t, "localhost", config.Gateway.Host)
	assert.Equal(t, TransportStreamableHTTP, config.Gateway.Transport)
	assert.Equal(t, 30*time.Second, config.Assistant.Timeout)
	assert.Equal(t, 10*time.Minute, config.Timeouts.Deploy)
	assert.NotEmpty(t, config.DataDir)
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `dataDir: /var/lib/mcpforge
gateway:
  port: 9999
timeouts:
  deploy: 2m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))

	config, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/mcpforge", config.DataDir)
	assert.Equal(t, 9999, config.Gateway.Port)
	assert.Equal(t, "localhost", config.Gateway.Host, "unset fields keep defaults")
	assert.Equal(t, 2*time.Minute, config.Timeouts.Deploy)
	assert.Equal(t, 30*time.Second, config.Timeouts.Config)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("gateway: [broken"), 0644))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestLoadConfig_AssistantEndpoint(t *testing.T) {
	dir := t.TempDir()
	content := `assistant:
  endpoint: http://localhost:5005
  timeout: 5s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0644))

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5005", config.Assistant.Endpoint)
	assert.Equal(t, 5*time.Second, config.Assistant.Timeout)
}
