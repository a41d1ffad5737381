package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mcpforge/internal/api"
	"mcpforge/internal/buildspec"
)

func TestStorage_SaveLoadDelete(t *testing.T) {
	s := NewStorage(t.TempDir())

	require.NoError(t, s.Save("builds", "build-1", []byte("status: Pending\n")))

	data, err := s.Load("builds", "build-1")
	require.NoError(t, err)
	assert.Equal(t, "status: Pending\n", string(data))

	require.NoError(t, s.Delete("builds", "build-1"))
	_, err = s.Load("builds", "build-1")
	require.Error(t, err)
}

func TestStorage_ListEmptyType(t *testing.T) {
	s := NewStorage(t.TempDir())
	ids, err := s.List("deployments")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStorage_EmptyArguments(t *testing.T) {
	s := NewStorage(t.TempDir())
	assert.Error(t, s.Save("", "id", nil))
	assert.Error(t, s.Save("builds", "", nil))
	_, err := s.Load("", "id")
	assert.Error(t, err)
	assert.Error(t, s.Delete("builds", ""))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"build-1", "build-1"},
		{"../../etc/passwd", "etc_passwd"},
		{"a b:c", "a_b_c"},
		{"", "unnamed"},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, sanitizeFilename(test.input))
	}
}

func TestBuildRecord_RoundTrip(t *testing.T) {
	s := NewStorage(t.TempDir())

	record := &BuildRecord{
		BuildID: "b-42",
		Spec: buildspec.BuildSpec{
			BuildID:    "b-42",
			ServerName: "Greeting Server",
			Flavor:     api.FlavorPython,
			Tools: []buildspec.ToolDefinition{
				{Name: "hello_world", Description: "Says hello"},
			},
		},
		Status:    api.BuildPending,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SaveBuild(record))

	loaded, err := s.LoadBuild("b-42")
	require.NoError(t, err)
	assert.Equal(t, record.Spec.ServerName, loaded.Spec.ServerName)
	assert.Equal(t, api.BuildPending, loaded.Status)
	assert.Len(t, loaded.Spec.Tools, 1)

	records, err := s.ListBuilds()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestLoadBuild_NotFound(t *testing.T) {
	s := NewStorage(t.TempDir())
	_, err := s.LoadBuild("missing")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestDeploymentRecord_RoundTrip(t *testing.T) {
	s := NewStorage(t.TempDir())

	record := &DeploymentRecord{
		DeploymentID: "d-1",
		BuildID:      "b-42",
		TargetID:     "workstation",
		State:        api.JobSucceeded,
		Result: &api.DeploymentResult{
			Message:        "ready",
			ArtifactPath:   "/tmp/d-1",
			ArtifactUsable: true,
		},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.SaveDeployment(record))

	loaded, err := s.LoadDeployment("d-1")
	require.NoError(t, err)
	assert.Equal(t, api.JobSucceeded, loaded.State)
	require.NotNil(t, loaded.Result)
	assert.True(t, loaded.Result.ArtifactUsable)

	_, err = s.LoadDeployment("missing")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
}

func TestSpecWatcher_PicksUpDroppedSpec(t *testing.T) {
	specsDir := filepath.Join(t.TempDir(), "specs")

	received := make(chan api.BuildSpecRequest, 1)
	w := NewSpecWatcher(SpecWatcherConfig{
		SpecsDir: specsDir,
		OnSpec: func(path string, request api.BuildSpecRequest) error {
			received <- request
			return nil
		},
	})
	require.NoError(t, w.Start())
	defer w.Stop()
	assert.True(t, w.IsRunning())

	spec := `serverName: Greeting Server
flavor: python
tools:
  - name: hello_world
    description: Says hello
`
	require.NoError(t, os.WriteFile(filepath.Join(specsDir, "greeting.yaml"), []byte(spec), 0644))

	select {
	case request := <-received:
		assert.Equal(t, "Greeting Server", request.ServerName)
		require.Len(t, request.Tools, 1)
		assert.Equal(t, "hello_world", request.Tools[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("spec file was not picked up")
	}
}

func TestSpecWatcher_ProcessesExistingOnStart(t *testing.T) {
	specsDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(specsDir, "pre.yaml"),
		[]byte("serverName: Pre Existing\ntools:\n  - name: t1\n"), 0644))

	received := make(chan api.BuildSpecRequest, 1)
	w := NewSpecWatcher(SpecWatcherConfig{
		SpecsDir: specsDir,
		OnSpec: func(path string, request api.BuildSpecRequest) error {
			received <- request
			return nil
		},
	})
	require.NoError(t, w.Start())
	defer w.Stop()

	select {
	case request := <-received:
		assert.Equal(t, "Pre Existing", request.ServerName)
	case <-time.After(5 * time.Second):
		t.Fatal("pre-existing spec file was not processed")
	}
}
