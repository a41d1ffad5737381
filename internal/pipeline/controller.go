package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mcpforge/internal/api"
	"mcpforge/internal/assembler"
	"mcpforge/internal/buildspec"
	"mcpforge/internal/codegen"
	"mcpforge/internal/config"
	"mcpforge/internal/deploy"
	"mcpforge/internal/store"
	"mcpforge/pkg/logging"
)

const subsystem = "Pipeline"

// Controller owns the build and deployment lifecycle. It implements
// api.BuildManagerHandler and api.DeploymentManagerHandler.
type Controller struct {
	mu sync.RWMutex

	storage   *store.Storage
	assembler *assembler.Assembler
	registry  *deploy.Registry
	timeouts  config.TimeoutConfig

	// deploymentsDir holds one isolated working directory per job.
	deploymentsDir string

	builds map[string]*store.BuildRecord
	jobs   map[string]*job

	// inflight maps buildId/targetId to the active deploymentId. A second
	// submission for the same pair is rejected while the first is live.
	inflight map[string]string

	wg sync.WaitGroup
}

// job is the in-memory view of one deployment. All fields are guarded by
// the controller mutex.
type job struct {
	record    store.DeploymentRecord
	cancelled bool
	done      chan struct{}
}

// NewController creates the pipeline controller and restores persisted
// records. Deployment jobs that were live when the previous process
// stopped are marked Failed; their build artifacts remain usable.
func NewController(storage *store.Storage, asm *assembler.Assembler, registry *deploy.Registry, timeouts config.TimeoutConfig) (*Controller, error) {
	c := &Controller{
		storage:        storage,
		assembler:      asm,
		registry:       registry,
		timeouts:       timeouts,
		deploymentsDir: filepath.Join(storage.DataDir(), "deployments"),
		builds:         make(map[string]*store.BuildRecord),
		jobs:           make(map[string]*job),
		inflight:       make(map[string]string),
	}

	buildRecords, err := storage.ListBuilds()
	if err != nil {
		return nil, fmt.Errorf("failed to restore build records: %w", err)
	}
	for _, record := range buildRecords {
		c.builds[record.BuildID] = record
	}

	deploymentRecords, err := storage.ListDeployments()
	if err != nil {
		return nil, fmt.Errorf("failed to restore deployment records: %w", err)
	}
	for _, record := range deploymentRecords {
		if !record.State.IsTerminal() {
			record.State = api.JobFailed
			record.Result = &api.DeploymentResult{
				Message:        "deployment interrupted before completion",
				Stage:          api.StageDeploy,
				Diagnostic:     "process stopped while the job was live",
				ArtifactUsable: true,
			}
			record.UpdatedAt = time.Now().UTC()
			if err := storage.SaveDeployment(record); err != nil {
				logging.Warn(subsystem, "Failed to persist interrupted job %s: %v", record.DeploymentID, err)
			}
		}
		j := &job{record: *record, done: make(chan struct{})}
		close(j.done)
		c.jobs[record.DeploymentID] = j
	}

	logging.Info(subsystem, "Restored %d builds and %d deployments", len(c.builds), len(c.jobs))
	return c, nil
}

// Wait blocks until all live deployment jobs have reached a terminal
// state. Used during shutdown.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// SubmitBuild validates the request, generates the server sources and
// assembles them into the build store. The same input always yields
// byte-identical generated files.
func (c *Controller) SubmitBuild(ctx context.Context, req api.BuildSpecRequest) (string, error) {
	spec, err := buildspec.Normalize(req)
	if err != nil {
		// Validation failures leave no trace: no id, no record, no files.
		return "", err
	}

	spec.BuildID = uuid.NewString()
	now := time.Now().UTC()
	record := &store.BuildRecord{
		BuildID:   spec.BuildID,
		Spec:      *spec,
		Status:    api.BuildPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.storage.SaveBuild(record); err != nil {
		return "", fmt.Errorf("failed to persist build %s: %w", spec.BuildID, err)
	}
	c.mu.Lock()
	c.builds[spec.BuildID] = record
	c.mu.Unlock()

	files, err := codegen.Generate(spec)
	if err != nil {
		c.failBuild(record, err)
		return spec.BuildID, err
	}

	assembleCtx, cancel := context.WithTimeout(ctx, c.timeouts.Assemble)
	defer cancel()

	if _, err := c.assembler.Assemble(assembleCtx, spec, files); err != nil {
		if errors.Is(assembleCtx.Err(), context.DeadlineExceeded) {
			err = api.NewTimeoutError(api.StageAssemble, "artifact assembly", c.timeouts.Assemble)
		}
		c.failBuild(record, err)
		return spec.BuildID, err
	}

	c.setBuildStatus(record, api.BuildGenerated, "")
	logging.Info(subsystem, "Build %s (%s) generated", spec.BuildID, spec.ServerName)
	return spec.BuildID, nil
}

// BuildStatus returns the artifact status for a buildId.
func (c *Controller) BuildStatus(buildID string) (api.BuildStatus, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.builds[buildID]
	if !ok {
		return "", api.NewBuildNotFoundError(buildID)
	}
	return record.Status, nil
}

// GetBuild returns the full summary for a buildId.
func (c *Controller) GetBuild(buildID string) (*api.BuildSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	record, ok := c.builds[buildID]
	if !ok {
		return nil, api.NewBuildNotFoundError(buildID)
	}
	summary := buildSummary(record)
	return &summary, nil
}

// ListBuilds returns summaries for all known builds, newest first.
func (c *Controller) ListBuilds() []api.BuildSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summaries := make([]api.BuildSummary, 0, len(c.builds))
	for _, record := range c.builds {
		summaries = append(summaries, buildSummary(record))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].BuildID < summaries[j].BuildID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}

// ArtifactDir returns the promoted artifact directory for a buildId.
func (c *Controller) ArtifactDir(buildID string) string {
	return c.assembler.ArtifactDir(buildID)
}

func buildSummary(record *store.BuildRecord) api.BuildSummary {
	return api.BuildSummary{
		BuildID:    record.BuildID,
		ServerName: record.Spec.ServerName,
		Flavor:     string(record.Spec.Flavor),
		Status:     record.Status,
		ToolCount:  len(record.Spec.Tools),
		CreatedAt:  record.CreatedAt,
	}
}

func (c *Controller) failBuild(record *store.BuildRecord, cause error) {
	c.setBuildStatus(record, api.BuildFailed, cause.Error())
	logging.Error(subsystem, cause, "Build %s failed", record.BuildID)
}

func (c *Controller) setBuildStatus(record *store.BuildRecord, status api.BuildStatus, errMessage string) {
	c.mu.Lock()
	record.Status = status
	record.Error = errMessage
	record.UpdatedAt = time.Now().UTC()
	c.mu.Unlock()

	if err := c.storage.SaveBuild(record); err != nil {
		logging.Warn(subsystem, "Failed to persist build %s: %v", record.BuildID, err)
	}
}
