package deploy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpforge/internal/api"
)

// fakeBuilder is a ContainerBuilder test double.
type fakeBuilder struct {
	output string
	err    error
	calls  int
}

func (f *fakeBuilder) BuildImage(ctx context.Context, dir, tag string) (string, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.output, f.err
}

func TestContainerImage_DeploySuccess(t *testing.T) {
	dir := writeTestArtifact(t, "Greeting Server", "python")
	builder := &fakeBuilder{output: "Successfully built abc123"}
	d := NewContainerImageDriver(builder)

	require.NoError(t, d.GenerateConfig(context.Background(), dir))

	result, err := d.Deploy(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, builder.calls)
	assert.Contains(t, result.Message, "mcpforge/greeting-server:latest")
	assert.NotEmpty(t, result.SetupInstructions)
}

func TestContainerImage_ProviderFailureVerbatim(t *testing.T) {
	dir := writeTestArtifact(t, "Greeting Server", "python")
	diagnostic := "Error response from daemon: dockerfile parse error line 3: unknown instruction: COPPY"
	builder := &fakeBuilder{output: diagnostic, err: errors.New("exit status 1")}
	d := NewContainerImageDriver(builder)

	_, err := d.Deploy(context.Background(), dir)
	require.Error(t, err)
	require.True(t, api.IsProviderFailure(err))

	var pf *api.ProviderFailure
	require.ErrorAs(t, err, &pf)
	assert.Equal(t, diagnostic, pf.Diagnostic, "provider diagnostic must be preserved verbatim")
	assert.Equal(t, 1, builder.calls, "the pipeline never retries a provider call")
}

func TestContainerImage_ContextExpiry(t *testing.T) {
	dir := writeTestArtifact(t, "Greeting Server", "python")
	builder := &fakeBuilder{}
	d := NewContainerImageDriver(builder)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := d.Deploy(ctx, dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestContainerImage_Synchronous(t *testing.T) {
	d := NewContainerImageDriver(&fakeBuilder{})
	assert.True(t, d.Synchronous())
}

// mockExecCommandContext routes docker invocations through the helper
// process below.
func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.Command(os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is a helper process for mocking exec.CommandContext.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}

	if len(args) == 0 || args[0] != "docker" {
		fmt.Fprintln(os.Stderr, "unexpected command")
		os.Exit(2)
	}

	switch args[1] {
	case "info":
		os.Exit(0)
	case "build":
		fmt.Println("Successfully built deadbeef")
		os.Exit(0)
	}
	os.Exit(1)
}

func TestDockerBuilder_BuildImage(t *testing.T) {
	orig := execCommandContext
	execCommandContext = mockExecCommandContext
	defer func() { execCommandContext = orig }()

	builder := &DockerBuilder{}
	output, err := builder.BuildImage(context.Background(), t.TempDir(), "mcpforge/test:latest")
	require.NoError(t, err)
	assert.Contains(t, output, "Successfully built")
}
