package deploy

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"mcpforge/internal/api"
	"mcpforge/pkg/logging"
)

// TargetContainerImage builds a container image on the local host through
// the docker CLI. This is the only synchronous target: the publish step is a
// documented non-interactive tool invocation.
const TargetContainerImage = "container-image"

const dockerSubsystem = "Docker"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// ContainerBuilder abstracts the container tool used by the container-image
// driver.
type ContainerBuilder interface {
	// BuildImage builds the image tag from the build context at dir and
	// returns the tool's combined output.
	BuildImage(ctx context.Context, dir, tag string) (string, error)
}

// DockerBuilder implements ContainerBuilder using the Docker CLI.
type DockerBuilder struct{}

// NewDockerBuilder creates a Docker builder, verifying the CLI is usable.
func NewDockerBuilder() (*DockerBuilder, error) {
	if _, err := exec.LookPath("docker"); err != nil {
		return nil, fmt.Errorf("docker command not found in PATH: %w", err)
	}

	cmd := execCommandContext(context.Background(), "docker", "info")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("docker daemon not accessible: %w", err)
	}

	return &DockerBuilder{}, nil
}

// BuildImage runs docker build in dir.
func (b *DockerBuilder) BuildImage(ctx context.Context, dir, tag string) (string, error) {
	logging.Info(dockerSubsystem, "Building image %s from %s", tag, dir)

	cmd := execCommandContext(ctx, "docker", "build", "-t", tag, dir)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("docker build failed: %w", err)
	}
	return string(output), nil
}

type containerImageDriver struct {
	builder ContainerBuilder
}

// NewContainerImageDriver creates the container-image target driver on top
// of a container builder.
func NewContainerImageDriver(builder ContainerBuilder) Driver {
	return &containerImageDriver{builder: builder}
}

func (d *containerImageDriver) TargetID() string { return TargetContainerImage }

func (d *containerImageDriver) Description() string {
	return "Builds a container image on the local host via docker build"
}

func (d *containerImageDriver) Synchronous() bool { return true }

func (d *containerImageDriver) GenerateConfig(ctx context.Context, workDir string) error {
	if _, err := requireMetadata(TargetContainerImage, workDir); err != nil {
		return err
	}

	dockerignore := strings.Join([]string{
		"build-info.yaml",
		"install.sh",
		"install.bat",
		"README.md",
		".dockerignore",
		"",
	}, "\n")
	return writeConfigFile(workDir, ".dockerignore", []byte(dockerignore), 0644)
}

func (d *containerImageDriver) Deploy(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
	meta, err := requireMetadata(TargetContainerImage, workDir)
	if err != nil {
		return nil, err
	}
	tag := imageName(meta.ServerName)

	output, err := d.builder.BuildImage(ctx, workDir, tag)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			// The pipeline turns this into a Timeout diagnostic with the
			// configured operation budget.
			return nil, ctx.Err()
		}
		// The provider's diagnostic is preserved verbatim; the pipeline
		// never retries on its behalf.
		return nil, api.NewProviderFailure(TargetContainerImage, output)
	}

	return &api.DeploymentResult{
		Message:      fmt.Sprintf("Image %s built for %s", tag, meta.ServerName),
		ArtifactPath: workDir,
		SetupInstructions: []string{
			fmt.Sprintf("Start the server with: docker run -p 8000:8000 %s", tag),
			"Verify the discovery manifest with: curl http://localhost:8000/",
		},
		ArtifactUsable: true,
	}, nil
}
