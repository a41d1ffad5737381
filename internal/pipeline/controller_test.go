package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpforge/internal/api"
	"mcpforge/internal/assembler"
	"mcpforge/internal/config"
	"mcpforge/internal/deploy"
	"mcpforge/internal/store"
)

// scriptedDriver is a deploy.Driver test double with pluggable stages.
type scriptedDriver struct {
	id       string
	configFn func(ctx context.Context, workDir string) error
	deployFn func(ctx context.Context, workDir string) (*api.DeploymentResult, error)
}

func (d *scriptedDriver) TargetID() string    { return d.id }
func (d *scriptedDriver) Description() string { return "scripted test target" }
func (d *scriptedDriver) Synchronous() bool   { return true }

func (d *scriptedDriver) GenerateConfig(ctx context.Context, workDir string) error {
	if d.configFn != nil {
		return d.configFn(ctx, workDir)
	}
	return nil
}

func (d *scriptedDriver) Deploy(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
	if d.deployFn != nil {
		return d.deployFn(ctx, workDir)
	}
	return &api.DeploymentResult{Message: "done", ArtifactPath: workDir, ArtifactUsable: true}, nil
}

func testTimeouts() config.TimeoutConfig {
	return config.TimeoutConfig{
		Assemble: 10 * time.Second,
		Config:   5 * time.Second,
		Deploy:   5 * time.Second,
	}
}

func newTestController(t *testing.T, drivers ...deploy.Driver) *Controller {
	t.Helper()
	dataDir := t.TempDir()

	registry := deploy.NewRegistry()
	require.NoError(t, registry.Register(deploy.NewContainerArchiveDriver()))
	require.NoError(t, registry.Register(deploy.NewWorkstationDriver()))
	for _, d := range drivers {
		require.NoError(t, registry.Register(d))
	}

	c, err := NewController(
		store.NewStorage(dataDir),
		assembler.New(filepath.Join(dataDir, "builds")),
		registry,
		testTimeouts(),
	)
	require.NoError(t, err)
	return c
}

func helloWorldRequest() api.BuildSpecRequest {
	return api.BuildSpecRequest{
		ServerName:  "Greeting Server",
		Description: "A minimal greeting server",
		Flavor:      "python",
		Tools: []api.ToolSpec{
			{Name: "hello_world", Description: "Says hello"},
		},
	}
}

func awaitTerminal(t *testing.T, c *Controller, deploymentID string) *api.DeploymentSummary {
	t.Helper()
	var summary *api.DeploymentSummary
	require.Eventually(t, func() bool {
		s, err := c.DeploymentStatus(deploymentID)
		if err != nil {
			return false
		}
		summary = s
		return s.State.IsTerminal()
	}, 10*time.Second, 10*time.Millisecond)
	return summary
}

func TestSubmitBuild_HelloWorld(t *testing.T) {
	c := newTestController(t)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)
	require.NotEmpty(t, buildID)

	status, err := c.BuildStatus(buildID)
	require.NoError(t, err)
	assert.Equal(t, api.BuildGenerated, status)

	dir := c.ArtifactDir(buildID)
	for _, name := range []string{"tool_hello_world.py", "manifest.json", "server.py", "build-info.yaml", "Dockerfile", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s in artifact", name)
	}

	summary, err := c.GetBuild(buildID)
	require.NoError(t, err)
	assert.Equal(t, "Greeting Server", summary.ServerName)
	assert.Equal(t, 1, summary.ToolCount)
}

func TestSubmitBuild_Deterministic(t *testing.T) {
	c := newTestController(t)

	first, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)
	second, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	for _, name := range []string{"tool_hello_world.py", "manifest.json", "server.py"} {
		a, err := os.ReadFile(filepath.Join(c.ArtifactDir(first), name))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(c.ArtifactDir(second), name))
		require.NoError(t, err)
		assert.Equal(t, a, b, "%s must be byte-identical across builds of the same request", name)
	}
}

func TestSubmitBuild_ValidationLeavesNoTrace(t *testing.T) {
	c := newTestController(t)

	req := helloWorldRequest()
	req.Tools[0].Name = "hello world" // invalid identifier
	_, err := c.SubmitBuild(context.Background(), req)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Empty(t, c.ListBuilds())
}

func TestDeploy_ContainerArchive(t *testing.T) {
	c := newTestController(t)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	deploymentID, err := c.SubmitDeployment(context.Background(), buildID, deploy.TargetContainerArchive)
	require.NoError(t, err)

	summary := awaitTerminal(t, c, deploymentID)
	assert.Equal(t, api.JobSucceeded, summary.State)
	require.NotNil(t, summary.Result)
	assert.NotEmpty(t, summary.Result.SetupInstructions)
	assert.True(t, summary.Result.ArtifactUsable)

	// The driver augments an isolated copy; the promoted artifact stays
	// pristine.
	_, err = os.Stat(filepath.Join(summary.Result.ArtifactPath, "build-image.sh"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(c.ArtifactDir(buildID), "build-image.sh"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeploy_DuplicateInflightRejected(t *testing.T) {
	release := make(chan struct{})
	slow := &scriptedDriver{
		id: "slow-target",
		deployFn: func(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
			<-release
			return &api.DeploymentResult{Message: "done", ArtifactUsable: true}, nil
		},
	}
	c := newTestController(t, slow)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	first, err := c.SubmitDeployment(context.Background(), buildID, "slow-target")
	require.NoError(t, err)

	// Same build, same target, first still live.
	_, err = c.SubmitDeployment(context.Background(), buildID, "slow-target")
	require.Error(t, err)
	assert.True(t, api.IsInvalidState(err))

	// A different target for the same build is fine.
	other, err := c.SubmitDeployment(context.Background(), buildID, deploy.TargetWorkstation)
	require.NoError(t, err)
	awaitTerminal(t, c, other)

	close(release)
	summary := awaitTerminal(t, c, first)
	assert.Equal(t, api.JobSucceeded, summary.State)

	// Terminal jobs free the slot.
	again, err := c.SubmitDeployment(context.Background(), buildID, "slow-target")
	require.NoError(t, err)
	awaitTerminal(t, c, again)
}

func TestDeploy_UnknownBuildAndTarget(t *testing.T) {
	c := newTestController(t)

	_, err := c.SubmitDeployment(context.Background(), "nope", deploy.TargetWorkstation)
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	_, err = c.SubmitDeployment(context.Background(), buildID, "netlify")
	require.Error(t, err)
	assert.True(t, api.IsUnsupportedTarget(err))
}

func TestDeploy_RequiresGeneratedBuild(t *testing.T) {
	c := newTestController(t)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	// Force the build into Failed to simulate a generation fault.
	c.mu.Lock()
	c.builds[buildID].Status = api.BuildFailed
	c.mu.Unlock()

	_, err = c.SubmitDeployment(context.Background(), buildID, deploy.TargetWorkstation)
	require.Error(t, err)
	assert.True(t, api.IsInvalidState(err))
}

func TestDeploy_ProviderFailurePreservedVerbatim(t *testing.T) {
	diagnostic := "Error response from daemon: no space left on device"
	failing := &scriptedDriver{
		id: "broken-target",
		deployFn: func(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
			return nil, api.NewProviderFailure("broken-target", diagnostic)
		},
	}
	c := newTestController(t, failing)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	deploymentID, err := c.SubmitDeployment(context.Background(), buildID, "broken-target")
	require.NoError(t, err)

	summary := awaitTerminal(t, c, deploymentID)
	assert.Equal(t, api.JobFailed, summary.State)
	require.NotNil(t, summary.Result)
	assert.Equal(t, diagnostic, summary.Result.Diagnostic)
	assert.Equal(t, api.StageDeploy, summary.Result.Stage)
	assert.True(t, summary.Result.ArtifactUsable)

	// A failed job does not block resubmission against the same artifact.
	retry, err := c.SubmitDeployment(context.Background(), buildID, "broken-target")
	require.NoError(t, err)
	awaitTerminal(t, c, retry)
}

func TestDeploy_DeployTimeout(t *testing.T) {
	hanging := &scriptedDriver{
		id: "hanging-target",
		deployFn: func(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	c := newTestController(t, hanging)
	c.timeouts.Deploy = 50 * time.Millisecond

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	deploymentID, err := c.SubmitDeployment(context.Background(), buildID, "hanging-target")
	require.NoError(t, err)

	summary := awaitTerminal(t, c, deploymentID)
	assert.Equal(t, api.JobFailed, summary.State)
	require.NotNil(t, summary.Result)
	assert.Contains(t, summary.Result.Diagnostic, "timed out")
	assert.True(t, summary.Result.ArtifactUsable)

	// Partial target files are discarded; the build artifact survives.
	_, err = os.Stat(filepath.Join(c.deploymentsDir, deploymentID))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(c.ArtifactDir(buildID))
	assert.NoError(t, err)
}

func TestCancelDeployment_BeforeDeploying(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := &scriptedDriver{
		id: "blocking-target",
		configFn: func(ctx context.Context, workDir string) error {
			close(entered)
			<-release
			return nil
		},
	}
	c := newTestController(t, blocking)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	deploymentID, err := c.SubmitDeployment(context.Background(), buildID, "blocking-target")
	require.NoError(t, err)

	<-entered
	require.NoError(t, c.CancelDeployment(deploymentID))
	close(release)

	summary := awaitTerminal(t, c, deploymentID)
	assert.Equal(t, api.JobFailed, summary.State)
	require.NotNil(t, summary.Result)
	assert.Contains(t, summary.Result.Diagnostic, "cancelled")
}

func TestCancelDeployment_WhileDeploying(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	blocking := &scriptedDriver{
		id: "blocking-target",
		deployFn: func(ctx context.Context, workDir string) (*api.DeploymentResult, error) {
			close(entered)
			<-release
			return &api.DeploymentResult{Message: "published", ArtifactPath: workDir, ArtifactUsable: true}, nil
		},
	}
	c := newTestController(t, blocking)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	deploymentID, err := c.SubmitDeployment(context.Background(), buildID, "blocking-target")
	require.NoError(t, err)

	// Cancel once the external call is in flight: the call completes, but
	// the job must settle as Failed with reason "cancelled".
	<-entered
	require.NoError(t, c.CancelDeployment(deploymentID))
	close(release)

	summary := awaitTerminal(t, c, deploymentID)
	assert.Equal(t, api.JobFailed, summary.State)
	require.NotNil(t, summary.Result)
	assert.Equal(t, "cancelled", summary.Result.Diagnostic)
	assert.True(t, summary.Result.ArtifactUsable)
}

func TestCancelDeployment_TerminalRejected(t *testing.T) {
	c := newTestController(t)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	deploymentID, err := c.SubmitDeployment(context.Background(), buildID, deploy.TargetWorkstation)
	require.NoError(t, err)
	awaitTerminal(t, c, deploymentID)

	err = c.CancelDeployment(deploymentID)
	require.Error(t, err)
	assert.True(t, api.IsInvalidState(err))
}

func TestListDeployments_NewestFirst(t *testing.T) {
	c := newTestController(t)

	buildID, err := c.SubmitBuild(context.Background(), helloWorldRequest())
	require.NoError(t, err)

	first, err := c.SubmitDeployment(context.Background(), buildID, deploy.TargetWorkstation)
	require.NoError(t, err)
	awaitTerminal(t, c, first)

	second, err := c.SubmitDeployment(context.Background(), buildID, deploy.TargetContainerArchive)
	require.NoError(t, err)
	awaitTerminal(t, c, second)

	summaries := c.ListDeployments()
	require.Len(t, summaries, 2)
	assert.False(t, summaries[0].CreatedAt.Before(summaries[1].CreatedAt))
}

func TestRestart_MarksLiveJobsFailed(t *testing.T) {
	dataDir := t.TempDir()
	storage := store.NewStorage(dataDir)

	record := &store.DeploymentRecord{
		DeploymentID: "d-live",
		BuildID:      "b-1",
		TargetID:     deploy.TargetWorkstation,
		State:        api.JobDeploying,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, storage.SaveDeployment(record))

	registry := deploy.NewRegistry()
	require.NoError(t, registry.Register(deploy.NewWorkstationDriver()))

	c, err := NewController(storage, assembler.New(filepath.Join(dataDir, "builds")), registry, testTimeouts())
	require.NoError(t, err)

	summary, err := c.DeploymentStatus("d-live")
	require.NoError(t, err)
	assert.Equal(t, api.JobFailed, summary.State)
	require.NotNil(t, summary.Result)
	assert.True(t, summary.Result.ArtifactUsable)
}

func TestListTargets(t *testing.T) {
	c := newTestController(t)
	targets := c.ListTargets()
	require.Len(t, targets, 2)
	assert.Equal(t, deploy.TargetContainerArchive, targets[0].TargetID)
	assert.Equal(t, deploy.TargetWorkstation, targets[1].TargetID)
}
