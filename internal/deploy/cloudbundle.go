package deploy

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"mcpforge/internal/api"
)

// TargetCloudBundle packages the artifact with a platform manifest for
// upload to a managed hosting provider. No provider exposes a documented
// non-interactive publish API here, so Deploy packages and instructs.
const TargetCloudBundle = "cloud-bundle"

type cloudBundleDriver struct{}

// NewCloudBundleDriver creates the cloud-bundle target driver.
func NewCloudBundleDriver() Driver {
	return &cloudBundleDriver{}
}

func (d *cloudBundleDriver) TargetID() string { return TargetCloudBundle }

func (d *cloudBundleDriver) Description() string {
	return "Upload bundle with a platform manifest for managed hosting providers"
}

func (d *cloudBundleDriver) Synchronous() bool { return false }

// platformManifest is the provider-facing service descriptor included in the
// bundle.
type platformManifest struct {
	Name    string            `yaml:"name"`
	Runtime string            `yaml:"runtime"`
	Start   string            `yaml:"start"`
	Port    int               `yaml:"port"`
	Env     map[string]string `yaml:"env,omitempty"`
	Health  string            `yaml:"healthCheckPath"`
}

func (d *cloudBundleDriver) GenerateConfig(ctx context.Context, workDir string) error {
	meta, err := requireMetadata(TargetCloudBundle, workDir)
	if err != nil {
		return err
	}

	runtime, bootstrap := runtimeCommand(meta.Flavor)
	manifest := platformManifest{
		Name:    meta.ServerName,
		Runtime: meta.Flavor,
		Start:   fmt.Sprintf("%s %s", runtime, bootstrap),
		Port:    8000,
		Env:     map[string]string{"HOST": "0.0.0.0"},
		Health:  "/",
	}
	manifestYAML, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal platform manifest: %w", err)
	}

	bundleSh := fmt.Sprintf(`#!/bin/sh
# Package %s into an upload bundle.
set -e
cd "$(dirname "$0")"
zip -r bundle.zip . -x bundle.zip -x build-info.yaml
echo "bundle.zip is ready for upload"
`, meta.ServerName)

	bundleBat := fmt.Sprintf(`@echo off
rem Package %s into an upload bundle.
cd /d "%%~dp0"
tar -a -c -f bundle.zip --exclude=bundle.zip --exclude=build-info.yaml *
if %%errorlevel%% neq 0 exit /b 1
echo bundle.zip is ready for upload
`, meta.ServerName)

	if err := writeConfigFile(workDir, "platform.yaml", manifestYAML, 0644); err != nil {
		return err
	}
	if err := writeConfigFile(workDir, "bundle.sh", []byte(bundleSh), 0755); err != nil {
		return err
	}
	return writeConfigFile(workDir, "bundle.bat", []byte(bundleBat), 0644)
}

func (d *cloudBundleDriver) Deploy(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
	meta, err := requireMetadata(TargetCloudBundle, workDir)
	if err != nil {
		return nil, err
	}

	return &api.DeploymentResult{
		Message:      fmt.Sprintf("%s packaged as a hosting provider bundle", meta.ServerName),
		ArtifactPath: workDir,
		SetupInstructions: []string{
			"Run bundle.sh (or bundle.bat on Windows) to produce bundle.zip.",
			"Upload bundle.zip to your hosting provider.",
			"Point the provider at platform.yaml for the start command, port and health check.",
			"Confirm the deployed server answers GET / with the discovery manifest.",
		},
		ArtifactUsable: true,
	}, nil
}
