package deploy

import (
	"context"
	"encoding/json"
	"fmt"

	"mcpforge/internal/api"
)

// TargetWorkstation prepares the artifact for running directly on an
// operator's machine and registering it with a local MCP client.
const TargetWorkstation = "workstation"

type workstationDriver struct{}

// NewWorkstationDriver creates the workstation target driver.
func NewWorkstationDriver() Driver {
	return &workstationDriver{}
}

func (d *workstationDriver) TargetID() string { return TargetWorkstation }

func (d *workstationDriver) Description() string {
	return "Local run layout with launch scripts and an MCP client config snippet"
}

func (d *workstationDriver) Synchronous() bool { return false }

func (d *workstationDriver) GenerateConfig(ctx context.Context, workDir string) error {
	meta, err := requireMetadata(TargetWorkstation, workDir)
	if err != nil {
		return err
	}

	runtime, bootstrap := runtimeCommand(meta.Flavor)

	runSh := fmt.Sprintf(`#!/bin/sh
# Launch %s locally.
set -e
cd "$(dirname "$0")"
exec %s %s
`, meta.ServerName, runtime, bootstrap)

	runBat := fmt.Sprintf(`@echo off
rem Launch %s locally.
cd /d "%%~dp0"
%s %s
`, meta.ServerName, runtime, bootstrap)

	clientConfig := map[string]interface{}{
		"mcpServers": map[string]interface{}{
			meta.ServerName: map[string]interface{}{
				"command": runtime,
				"args":    []string{bootstrap},
				"env":     map[string]string{"PORT": "8000"},
			},
		},
	}
	clientJSON, err := json.MarshalIndent(clientConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal client config: %w", err)
	}

	if err := writeConfigFile(workDir, "run.sh", []byte(runSh), 0755); err != nil {
		return err
	}
	if err := writeConfigFile(workDir, "run.bat", []byte(runBat), 0644); err != nil {
		return err
	}
	return writeConfigFile(workDir, "mcp-client-config.json", append(clientJSON, '\n'), 0644)
}

func (d *workstationDriver) Deploy(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
	meta, err := requireMetadata(TargetWorkstation, workDir)
	if err != nil {
		return nil, err
	}

	return &api.DeploymentResult{
		Message:      fmt.Sprintf("%s packaged for local execution", meta.ServerName),
		ArtifactPath: workDir,
		SetupInstructions: []string{
			fmt.Sprintf("Copy the packaged directory %s to the workstation.", workDir),
			"Run install.sh (or install.bat on Windows) to verify the runtime is available.",
			"Start the server with run.sh (or run.bat on Windows).",
			"Merge mcp-client-config.json into your MCP client configuration to register the server.",
		},
		ArtifactUsable: true,
	}, nil
}

// runtimeCommand maps a runtime flavor to its interpreter and entrypoint.
func runtimeCommand(flavor string) (string, string) {
	if flavor == string(api.FlavorNode) {
		return "node", "server.js"
	}
	return "python3", "server.py"
}
