package deploy

import (
	"context"
	"fmt"
	"strings"

	"mcpforge/internal/api"
)

// TargetContainerArchive packages the artifact as a self-contained container
// build context with companion build scripts. Publishing is an operator
// action; Deploy performs no external call.
const TargetContainerArchive = "container-archive"

type containerArchiveDriver struct{}

// NewContainerArchiveDriver creates the container-archive target driver.
func NewContainerArchiveDriver() Driver {
	return &containerArchiveDriver{}
}

func (d *containerArchiveDriver) TargetID() string { return TargetContainerArchive }

func (d *containerArchiveDriver) Description() string {
	return "Self-contained container build context with build-and-run scripts"
}

func (d *containerArchiveDriver) Synchronous() bool { return false }

func (d *containerArchiveDriver) GenerateConfig(ctx context.Context, workDir string) error {
	meta, err := requireMetadata(TargetContainerArchive, workDir)
	if err != nil {
		return err
	}

	image := imageName(meta.ServerName)

	dockerignore := strings.Join([]string{
		"build-info.yaml",
		"install.sh",
		"install.bat",
		"build-image.sh",
		"build-image.bat",
		"README.md",
		".dockerignore",
		"",
	}, "\n")

	buildSh := fmt.Sprintf(`#!/bin/sh
# Build the %s container image from this archive.
set -e
docker build -t %s .
echo "Image %s built. Run it with: docker run -p 8000:8000 %s"
`, meta.ServerName, image, image, image)

	buildBat := fmt.Sprintf(`@echo off
rem Build the %s container image from this archive.
docker build -t %s .
if %%errorlevel%% neq 0 exit /b 1
echo Image %s built. Run it with: docker run -p 8000:8000 %s
`, meta.ServerName, image, image, image)

	if err := writeConfigFile(workDir, ".dockerignore", []byte(dockerignore), 0644); err != nil {
		return err
	}
	if err := writeConfigFile(workDir, "build-image.sh", []byte(buildSh), 0755); err != nil {
		return err
	}
	return writeConfigFile(workDir, "build-image.bat", []byte(buildBat), 0644)
}

func (d *containerArchiveDriver) Deploy(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
	meta, err := requireMetadata(TargetContainerArchive, workDir)
	if err != nil {
		return nil, err
	}
	image := imageName(meta.ServerName)

	return &api.DeploymentResult{
		Message:      fmt.Sprintf("%s packaged as a container build context", meta.ServerName),
		ArtifactPath: workDir,
		SetupInstructions: []string{
			fmt.Sprintf("Copy the packaged directory %s to the machine that will build the image.", workDir),
			"Run build-image.sh (or build-image.bat on Windows) to build the container image.",
			fmt.Sprintf("Start the server with: docker run -p 8000:8000 %s", image),
			"Verify the discovery manifest with: curl http://localhost:8000/",
		},
		ArtifactUsable: true,
	}, nil
}

// imageName derives a container image tag from the server name.
func imageName(serverName string) string {
	slug := strings.ToLower(serverName)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "mcp-server"
	}
	return "mcpforge/" + slug + ":latest"
}
