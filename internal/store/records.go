package store

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"mcpforge/internal/api"
	"mcpforge/internal/buildspec"
	"mcpforge/pkg/logging"
)

// Record type directories under <dataDir>/records.
const (
	recordTypeBuilds      = "builds"
	recordTypeDeployments = "deployments"
)

// BuildRecord is the persisted state of one build.
type BuildRecord struct {
	BuildID   string              `yaml:"buildId"`
	Spec      buildspec.BuildSpec `yaml:"spec"`
	Status    api.BuildStatus     `yaml:"status"`
	Error     string              `yaml:"error,omitempty"`
	CreatedAt time.Time           `yaml:"createdAt"`
	UpdatedAt time.Time           `yaml:"updatedAt"`
}

// DeploymentRecord is the persisted state of one deployment job.
type DeploymentRecord struct {
	DeploymentID string                `yaml:"deploymentId"`
	BuildID      string                `yaml:"buildId"`
	TargetID     string                `yaml:"targetId"`
	State        api.JobState          `yaml:"state"`
	Result       *api.DeploymentResult `yaml:"result,omitempty"`
	CreatedAt    time.Time             `yaml:"createdAt"`
	UpdatedAt    time.Time             `yaml:"updatedAt"`
}

// SaveBuild persists a build record, overwriting any previous version.
func (s *Storage) SaveBuild(record *BuildRecord) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal build record %s: %w", record.BuildID, err)
	}
	return s.Save(recordTypeBuilds, record.BuildID, data)
}

// LoadBuild retrieves a build record by id.
func (s *Storage) LoadBuild(buildID string) (*BuildRecord, error) {
	data, err := s.Load(recordTypeBuilds, buildID)
	if err != nil {
		return nil, api.NewBuildNotFoundError(buildID)
	}
	var record BuildRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse build record %s: %w", buildID, err)
	}
	return &record, nil
}

// ListBuilds returns all persisted build records.
func (s *Storage) ListBuilds() ([]*BuildRecord, error) {
	ids, err := s.List(recordTypeBuilds)
	if err != nil {
		return nil, err
	}
	records := make([]*BuildRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.LoadBuild(id)
		if err != nil {
			logging.Warn(storeSubsystem, "Skipping unreadable build record %s: %v", id, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// SaveDeployment persists a deployment record, overwriting any previous
// version.
func (s *Storage) SaveDeployment(record *DeploymentRecord) error {
	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal deployment record %s: %w", record.DeploymentID, err)
	}
	return s.Save(recordTypeDeployments, record.DeploymentID, data)
}

// LoadDeployment retrieves a deployment record by id.
func (s *Storage) LoadDeployment(deploymentID string) (*DeploymentRecord, error) {
	data, err := s.Load(recordTypeDeployments, deploymentID)
	if err != nil {
		return nil, api.NewDeploymentNotFoundError(deploymentID)
	}
	var record DeploymentRecord
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to parse deployment record %s: %w", deploymentID, err)
	}
	return &record, nil
}

// ListDeployments returns all persisted deployment records.
func (s *Storage) ListDeployments() ([]*DeploymentRecord, error) {
	ids, err := s.List(recordTypeDeployments)
	if err != nil {
		return nil, err
	}
	records := make([]*DeploymentRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.LoadDeployment(id)
		if err != nil {
			logging.Warn(storeSubsystem, "Skipping unreadable deployment record %s: %v", id, err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
