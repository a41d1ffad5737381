package api

import (
	"context"
	"time"
)

// BuildStatus represents the lifecycle status of a build artifact.
type BuildStatus string

const (
	BuildPending   BuildStatus = "Pending"
	BuildGenerated BuildStatus = "Generated"
	BuildFailed    BuildStatus = "Failed"
)

// JobState represents the lifecycle state of a deployment job.
// Transitions only move forward; Succeeded and Failed are terminal.
type JobState string

const (
	JobCreated         JobState = "Created"
	JobConfigGenerated JobState = "ConfigGenerated"
	JobDeploying       JobState = "Deploying"
	JobSucceeded       JobState = "Succeeded"
	JobFailed          JobState = "Failed"
)

// IsTerminal reports whether the state permits no further transitions.
func (s JobState) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// Stage identifies the pipeline stage an operation or failure belongs to.
type Stage string

const (
	StageValidate Stage = "validate"
	StageGenerate Stage = "generate"
	StageAssemble Stage = "assemble"
	StageConfig   Stage = "config"
	StageDeploy   Stage = "deploy"
)

// ParameterType enumerates the supported tool parameter types.
type ParameterType string

const (
	TypeString  ParameterType = "string"
	TypeNumber  ParameterType = "number"
	TypeBoolean ParameterType = "boolean"
	TypeObject  ParameterType = "object"
	TypeArray   ParameterType = "array"
)

// RuntimeFlavor selects the output ecosystem of a generated server.
type RuntimeFlavor string

const (
	FlavorPython RuntimeFlavor = "python"
	FlavorNode   RuntimeFlavor = "node"
)

// ToolParameterSpec describes one parameter of a tool in a build request.
type ToolParameterSpec struct {
	Name        string      `yaml:"name" json:"name"`
	Type        string      `yaml:"type" json:"type"`
	Required    bool        `yaml:"required" json:"required"`
	Default     interface{} `yaml:"default,omitempty" json:"default,omitempty"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
}

// ToolSpec describes one callable tool in a build request.
type ToolSpec struct {
	Name        string              `yaml:"name" json:"name"`
	Description string              `yaml:"description,omitempty" json:"description,omitempty"`
	Parameters  []ToolParameterSpec `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Hint        string              `yaml:"hint,omitempty" json:"hint,omitempty"`
}

// BuildSpecRequest is the wire-level declarative description of the server to
// generate. It is what callers submit through the gateway or the CLI; the
// validator normalizes it into an internal representation before any file is
// produced.
type BuildSpecRequest struct {
	ServerName  string     `yaml:"serverName" json:"serverName"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Flavor      string     `yaml:"flavor,omitempty" json:"flavor,omitempty"`
	Tools       []ToolSpec `yaml:"tools" json:"tools"`
}

// DeploymentResult carries the outcome of a deployment job.
type DeploymentResult struct {
	// Message is a human-readable summary of the outcome.
	Message string `yaml:"message" json:"message"`

	// SetupInstructions is the ordered sequence of operator steps for
	// targets that cannot be published programmatically. Nonempty on every
	// successful instruction-style deployment.
	SetupInstructions []string `yaml:"setupInstructions,omitempty" json:"setupInstructions,omitempty"`

	// ArtifactPath points at the packaged artifact directory.
	ArtifactPath string `yaml:"artifactPath,omitempty" json:"artifactPath,omitempty"`

	// Stage is the pipeline stage a failure occurred in, empty on success.
	Stage Stage `yaml:"stage,omitempty" json:"stage,omitempty"`

	// Diagnostic preserves the raw provider or pipeline diagnostic verbatim
	// on failure.
	Diagnostic string `yaml:"diagnostic,omitempty" json:"diagnostic,omitempty"`

	// ArtifactUsable reports whether the build artifact remains usable for
	// a further deployment attempt after a failure.
	ArtifactUsable bool `yaml:"artifactUsable" json:"artifactUsable"`
}

// BuildSummary is the queryable view of a submitted build.
type BuildSummary struct {
	BuildID    string      `yaml:"buildId" json:"buildId"`
	ServerName string      `yaml:"serverName" json:"serverName"`
	Flavor     string      `yaml:"flavor" json:"flavor"`
	Status     BuildStatus `yaml:"status" json:"status"`
	ToolCount  int         `yaml:"toolCount" json:"toolCount"`
	CreatedAt  time.Time   `yaml:"createdAt" json:"createdAt"`
}

// DeploymentSummary is the queryable view of a deployment job.
type DeploymentSummary struct {
	DeploymentID string            `yaml:"deploymentId" json:"deploymentId"`
	BuildID      string            `yaml:"buildId" json:"buildId"`
	TargetID     string            `yaml:"targetId" json:"targetId"`
	State        JobState          `yaml:"state" json:"state"`
	Result       *DeploymentResult `yaml:"result,omitempty" json:"result,omitempty"`
	CreatedAt    time.Time         `yaml:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time         `yaml:"updatedAt" json:"updatedAt"`
}

// TargetInfo describes one registered deployment target.
type TargetInfo struct {
	TargetID    string `yaml:"targetId" json:"targetId"`
	Description string `yaml:"description" json:"description"`

	// Synchronous reports whether Deploy invokes an external tool directly
	// instead of packaging with operator instructions.
	Synchronous bool `yaml:"synchronous" json:"synchronous"`
}

// BuildManagerHandler is implemented by the pipeline controller and provides
// the build half of the produced interface.
type BuildManagerHandler interface {
	// SubmitBuild validates, generates and assembles a build. Returns the
	// assigned buildId, or a ValidationError without any side effects.
	SubmitBuild(ctx context.Context, req BuildSpecRequest) (string, error)

	// BuildStatus returns the artifact status for a buildId.
	BuildStatus(buildID string) (BuildStatus, error)

	// GetBuild returns the full summary for a buildId.
	GetBuild(buildID string) (*BuildSummary, error)

	// ListBuilds returns summaries for all known builds.
	ListBuilds() []BuildSummary
}

// DeploymentManagerHandler is implemented by the pipeline controller and
// provides the deployment half of the produced interface.
type DeploymentManagerHandler interface {
	// SubmitDeployment starts a deployment job for an existing Generated
	// build against a registered target.
	SubmitDeployment(ctx context.Context, buildID, targetID string) (string, error)

	// DeploymentStatus returns the current state and result of a job.
	DeploymentStatus(deploymentID string) (*DeploymentSummary, error)

	// CancelDeployment requests cancellation. Before the Deploying state
	// the job stops at its next checkpoint; afterwards the in-flight call
	// completes and the job is then marked Failed.
	CancelDeployment(deploymentID string) error

	// ListDeployments returns summaries for all known jobs.
	ListDeployments() []DeploymentSummary

	// ListTargets returns all registered deployment targets.
	ListTargets() []TargetInfo
}

// AssistantHandler is the advisory text-generation collaborator. Its output
// never affects build or deployment correctness.
type AssistantHandler interface {
	Suggest(ctx context.Context, prompt string) (string, error)
}

// CallToolResult represents the result of a gateway tool call.
type CallToolResult struct {
	Content []interface{} `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ArgMetadata describes a gateway tool argument.
type ArgMetadata struct {
	Name        string
	Type        string // "string", "number", "boolean", "object"
	Required    bool
	Description string
	Default     interface{}
}

// ToolMetadata describes a tool the gateway exposes.
type ToolMetadata struct {
	Name        string
	Description string
	Args        []ArgMetadata
}

// ToolProvider is implemented by components that expose operations as
// gateway tools.
type ToolProvider interface {
	// GetTools returns all tools this provider offers.
	GetTools() []ToolMetadata

	// ExecuteTool executes a tool by name.
	ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*CallToolResult, error)
}
