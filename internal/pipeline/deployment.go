package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"mcpforge/internal/api"
	"mcpforge/internal/deploy"
	"mcpforge/internal/store"
	"mcpforge/pkg/logging"
)

// stateRank orders job states for forward-only transition enforcement.
var stateRank = map[api.JobState]int{
	api.JobCreated:         0,
	api.JobConfigGenerated: 1,
	api.JobDeploying:       2,
	api.JobSucceeded:       3,
	api.JobFailed:          3,
}

func inflightKey(buildID, targetID string) string {
	return buildID + "/" + targetID
}

// SubmitDeployment starts a deployment job for a Generated build against a
// registered target. The target is resolved before any file is touched; a
// second submission for the same build and target is rejected while the
// first is still live.
func (c *Controller) SubmitDeployment(ctx context.Context, buildID, targetID string) (string, error) {
	driver, err := c.registry.Resolve(targetID)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	record, ok := c.builds[buildID]
	if !ok {
		c.mu.Unlock()
		return "", api.NewBuildNotFoundError(buildID)
	}
	if record.Status != api.BuildGenerated {
		c.mu.Unlock()
		return "", api.NewInvalidStateErrorWithMessage("deploy", string(record.Status),
			"build %s is %s, only Generated builds can be deployed", buildID, record.Status)
	}
	key := inflightKey(buildID, targetID)
	if liveID, exists := c.inflight[key]; exists {
		c.mu.Unlock()
		return "", api.NewInvalidStateErrorWithMessage("deploy", string(api.JobDeploying),
			"deployment %s for build %s to target %s is still in flight", liveID, buildID, targetID)
	}

	deploymentID := uuid.NewString()
	now := time.Now().UTC()
	j := &job{
		record: store.DeploymentRecord{
			DeploymentID: deploymentID,
			BuildID:      buildID,
			TargetID:     targetID,
			State:        api.JobCreated,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		done: make(chan struct{}),
	}
	c.jobs[deploymentID] = j
	c.inflight[key] = deploymentID
	c.wg.Add(1)
	c.mu.Unlock()

	if err := c.storage.SaveDeployment(&j.record); err != nil {
		logging.Warn(subsystem, "Failed to persist deployment %s: %v", deploymentID, err)
	}

	go c.runJob(j, driver)

	logging.Info(subsystem, "Deployment %s created: build %s -> target %s", deploymentID, buildID, targetID)
	return deploymentID, nil
}

// runJob drives one deployment job to a terminal state.
func (c *Controller) runJob(j *job, driver deploy.Driver) {
	defer c.wg.Done()
	defer close(j.done)
	defer c.clearInflight(j)

	workDir := filepath.Join(c.deploymentsDir, j.record.DeploymentID)

	// Config stage: copy the shared artifact into an isolated working
	// directory, then let the driver augment the copy. The promoted
	// artifact is never modified.
	if c.jobCancelled(j) {
		c.failJob(j, api.StageConfig, errors.New("cancelled before config generation"), true)
		return
	}

	configCtx, cancelConfig := context.WithTimeout(context.Background(), c.timeouts.Config)
	err := func() error {
		defer cancelConfig()
		if err := deploy.CopyArtifact(configCtx, c.assembler.ArtifactDir(j.record.BuildID), workDir); err != nil {
			return err
		}
		return driver.GenerateConfig(configCtx, workDir)
	}()
	if err != nil {
		if errors.Is(configCtx.Err(), context.DeadlineExceeded) {
			err = api.NewTimeoutError(api.StageConfig, "target configuration", c.timeouts.Config)
			c.discardWorkDir(workDir)
		}
		c.failJob(j, api.StageConfig, err, true)
		return
	}

	if err := c.transitionJob(j, api.JobConfigGenerated, nil); err != nil {
		return
	}

	// Last point where cancellation interrupts the job; once Deploying
	// starts the in-flight call runs to completion.
	if c.jobCancelled(j) {
		c.failJob(j, api.StageDeploy, errors.New("cancelled before deploy"), true)
		return
	}

	if err := c.transitionJob(j, api.JobDeploying, nil); err != nil {
		return
	}

	deployCtx, cancelDeploy := context.WithTimeout(context.Background(), c.timeouts.Deploy)
	result, err := driver.Deploy(deployCtx, workDir)
	cancelDeploy()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = api.NewTimeoutError(api.StageDeploy,
				fmt.Sprintf("target %s deploy", j.record.TargetID), c.timeouts.Deploy)
			c.discardWorkDir(workDir)
		}
		c.failJob(j, api.StageDeploy, err, true)
		return
	}

	// A cancel requested while Deploying never interrupts the external
	// call, but it still settles the completed job as Failed.
	if c.jobCancelled(j) {
		c.failJob(j, api.StageDeploy, errors.New("cancelled"), true)
		return
	}

	if err := c.transitionJob(j, api.JobSucceeded, result); err != nil {
		return
	}
	logging.Info(subsystem, "Deployment %s succeeded", j.record.DeploymentID)
}

func (c *Controller) jobCancelled(j *job) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return j.cancelled
}

func (c *Controller) clearInflight(j *job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := inflightKey(j.record.BuildID, j.record.TargetID)
	if c.inflight[key] == j.record.DeploymentID {
		delete(c.inflight, key)
	}
}

// transitionJob moves a job forward. Backward transitions and writes to
// terminal states are rejected.
func (c *Controller) transitionJob(j *job, to api.JobState, result *api.DeploymentResult) error {
	c.mu.Lock()
	current := j.record.State
	if current.IsTerminal() {
		c.mu.Unlock()
		return api.NewInvalidStateErrorWithMessage(string(to), string(current),
			"deployment %s is already %s", j.record.DeploymentID, current)
	}
	if stateRank[to] <= stateRank[current] {
		c.mu.Unlock()
		return api.NewInvalidStateError(string(to), string(current))
	}
	j.record.State = to
	if result != nil {
		j.record.Result = result
	}
	j.record.UpdatedAt = time.Now().UTC()
	record := j.record
	c.mu.Unlock()

	if err := c.storage.SaveDeployment(&record); err != nil {
		logging.Warn(subsystem, "Failed to persist deployment %s: %v", record.DeploymentID, err)
	}
	logging.Debug(subsystem, "Deployment %s: %s -> %s", record.DeploymentID, current, to)
	return nil
}

// failJob drives a job to Failed with a classified result. The shared
// build artifact always stays usable for a resubmission.
func (c *Controller) failJob(j *job, stage api.Stage, cause error, artifactUsable bool) {
	result := &api.DeploymentResult{
		Message:        fmt.Sprintf("deployment failed in %s stage", stage),
		Stage:          stage,
		Diagnostic:     cause.Error(),
		ArtifactUsable: artifactUsable,
	}

	var pf *api.ProviderFailure
	if errors.As(cause, &pf) {
		// The provider's own diagnostic is preserved verbatim.
		result.Diagnostic = pf.Diagnostic
	}

	if err := c.transitionJob(j, api.JobFailed, result); err != nil {
		logging.Warn(subsystem, "Deployment %s could not be failed: %v", j.record.DeploymentID, err)
		return
	}
	logging.Error(subsystem, cause, "Deployment %s failed in %s stage", j.record.DeploymentID, stage)
}

// discardWorkDir removes partially written target files after a timeout.
func (c *Controller) discardWorkDir(workDir string) {
	if err := os.RemoveAll(workDir); err != nil {
		logging.Warn(subsystem, "Failed to discard working directory %s: %v", workDir, err)
	}
}

// DeploymentStatus returns the current state and result of a job.
func (c *Controller) DeploymentStatus(deploymentID string) (*api.DeploymentSummary, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	j, ok := c.jobs[deploymentID]
	if !ok {
		return nil, api.NewDeploymentNotFoundError(deploymentID)
	}
	summary := deploymentSummary(j)
	return &summary, nil
}

// CancelDeployment requests cancellation of a job. Before the Deploying
// state the job fails at its next checkpoint. Afterwards the request is
// advisory with respect to the in-flight call: the call completes, then
// the job is marked Failed with reason "cancelled".
func (c *Controller) CancelDeployment(deploymentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	j, ok := c.jobs[deploymentID]
	if !ok {
		return api.NewDeploymentNotFoundError(deploymentID)
	}
	if j.record.State.IsTerminal() {
		return api.NewInvalidStateErrorWithMessage("cancel", string(j.record.State),
			"deployment %s is already %s", deploymentID, j.record.State)
	}

	j.cancelled = true
	if j.record.State == api.JobDeploying {
		logging.Info(subsystem, "Cancellation of deployment %s is advisory, deploy already started and will complete", deploymentID)
		return nil
	}
	logging.Info(subsystem, "Deployment %s marked for cancellation", deploymentID)
	return nil
}

// ListDeployments returns summaries for all known jobs, newest first.
func (c *Controller) ListDeployments() []api.DeploymentSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	summaries := make([]api.DeploymentSummary, 0, len(c.jobs))
	for _, j := range c.jobs {
		summaries = append(summaries, deploymentSummary(j))
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].DeploymentID < summaries[j].DeploymentID
		}
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries
}

// ListTargets returns all registered deployment targets.
func (c *Controller) ListTargets() []api.TargetInfo {
	return c.registry.List()
}

func deploymentSummary(j *job) api.DeploymentSummary {
	summary := api.DeploymentSummary{
		DeploymentID: j.record.DeploymentID,
		BuildID:      j.record.BuildID,
		TargetID:     j.record.TargetID,
		State:        j.record.State,
		CreatedAt:    j.record.CreatedAt,
		UpdatedAt:    j.record.UpdatedAt,
	}
	if j.record.Result != nil {
		result := *j.record.Result
		summary.Result = &result
	}
	return summary
}
