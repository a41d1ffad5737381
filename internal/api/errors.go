package api

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a caller-fixable defect in a submitted build
// specification. Validation never mutates stored state, so a ValidationError
// guarantees the system is exactly as it was before the call.
type ValidationError struct {
	// Field names the offending spec field where one can be identified
	// (e.g. "serverName", "tools[2].parameters[0].type").
	Field string

	// Message describes the defect.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid build spec: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid build spec: %s", e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation checks if an error is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConfigError indicates a target driver could not generate its configuration
// because required spec fields are absent from the artifact's manifest
// metadata.
type ConfigError struct {
	TargetID string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config generation for target %s failed: %s", e.TargetID, e.Message)
}

// NewConfigError creates a ConfigError for the given target.
func NewConfigError(targetID, format string, args ...interface{}) *ConfigError {
	return &ConfigError{TargetID: targetID, Message: fmt.Sprintf(format, args...)}
}

// IsConfig checks if an error is or wraps a ConfigError.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// UnsupportedTargetError indicates an unrecognized deployment target id.
// It is raised before any file is touched.
type UnsupportedTargetError struct {
	TargetID string
	Known    []string
}

func (e *UnsupportedTargetError) Error() string {
	if len(e.Known) > 0 {
		return fmt.Sprintf("unsupported deployment target %q (known targets: %s)", e.TargetID, strings.Join(e.Known, ", "))
	}
	return fmt.Sprintf("unsupported deployment target %q", e.TargetID)
}

// NewUnsupportedTargetError creates an UnsupportedTargetError.
func NewUnsupportedTargetError(targetID string, known []string) *UnsupportedTargetError {
	return &UnsupportedTargetError{TargetID: targetID, Known: known}
}

// IsUnsupportedTarget checks if an error is or wraps an UnsupportedTargetError.
func IsUnsupportedTarget(err error) bool {
	var ue *UnsupportedTargetError
	return errors.As(err, &ue)
}

// InvalidStateError indicates an operation attempted out of pipeline order,
// e.g. deploying a build that is not Generated, or writing to a terminal job.
type InvalidStateError struct {
	Operation string
	Current   string
	Message   string
}

func (e *InvalidStateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("operation %s not permitted in state %s", e.Operation, e.Current)
}

// NewInvalidStateError creates an InvalidStateError.
func NewInvalidStateError(operation, current string) *InvalidStateError {
	return &InvalidStateError{Operation: operation, Current: current}
}

// NewInvalidStateErrorWithMessage creates an InvalidStateError with a custom
// message when the default format does not provide enough context.
func NewInvalidStateErrorWithMessage(operation, current, format string, args ...interface{}) *InvalidStateError {
	return &InvalidStateError{Operation: operation, Current: current, Message: fmt.Sprintf(format, args...)}
}

// IsInvalidState checks if an error is or wraps an InvalidStateError.
func IsInvalidState(err error) bool {
	var ie *InvalidStateError
	return errors.As(err, &ie)
}

// UpstreamError indicates a non-fatal fault in an external collaborator
// (currently only the text-generation assistant). Upstream faults never
// affect build or deployment correctness.
type UpstreamError struct {
	Collaborator string
	Err          error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream collaborator %s failed: %v", e.Collaborator, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates an UpstreamError wrapping the collaborator fault.
func NewUpstreamError(collaborator string, err error) *UpstreamError {
	return &UpstreamError{Collaborator: collaborator, Err: err}
}

// IsUpstream checks if an error is or wraps an UpstreamError.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// TimeoutError indicates an external invocation exceeded its
// operation-specific timeout. The owning job transitions to Failed and any
// partially written target-specific files are discarded.
type TimeoutError struct {
	Stage     Stage
	Operation string
	Timeout   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s stage: %s timed out after %s", e.Stage, e.Operation, e.Timeout)
}

// NewTimeoutError creates a TimeoutError.
func NewTimeoutError(stage Stage, operation string, timeout time.Duration) *TimeoutError {
	return &TimeoutError{Stage: stage, Operation: operation, Timeout: timeout}
}

// IsTimeout checks if an error is or wraps a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// ProviderFailure indicates an external deploy tool reported failure. The
// provider's raw diagnostic text is preserved verbatim, never summarized.
type ProviderFailure struct {
	TargetID   string
	Diagnostic string
}

func (e *ProviderFailure) Error() string {
	return fmt.Sprintf("provider for target %s reported failure: %s", e.TargetID, e.Diagnostic)
}

// NewProviderFailure creates a ProviderFailure carrying the raw diagnostic.
func NewProviderFailure(targetID, diagnostic string) *ProviderFailure {
	return &ProviderFailure{TargetID: targetID, Diagnostic: diagnostic}
}

// IsProviderFailure checks if an error is or wraps a ProviderFailure.
func IsProviderFailure(err error) bool {
	var pf *ProviderFailure
	return errors.As(err, &pf)
}

// NotFoundError represents a resource not found error with contextual
// information, shared by build and deployment lookups.
type NotFoundError struct {
	ResourceType string
	ResourceName string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nfe *NotFoundError
	return errors.As(err, &nfe)
}

// Specific NotFoundError constructors for each resource type.
var (
	// NewBuildNotFoundError creates a build not found error.
	NewBuildNotFoundError = func(id string) *NotFoundError {
		return &NotFoundError{ResourceType: "build", ResourceName: id}
	}

	// NewDeploymentNotFoundError creates a deployment not found error.
	NewDeploymentNotFoundError = func(id string) *NotFoundError {
		return &NotFoundError{ResourceType: "deployment", ResourceName: id}
	}
)

// Handler registration errors for the Service Locator Pattern.
var (
	// ErrBuildManagerNotRegistered indicates the build manager handler is not registered
	ErrBuildManagerNotRegistered = errors.New("build manager handler not registered")

	// ErrDeploymentManagerNotRegistered indicates the deployment manager handler is not registered
	ErrDeploymentManagerNotRegistered = errors.New("deployment manager handler not registered")

	// ErrAssistantNotRegistered indicates the assistant handler is not registered
	ErrAssistantNotRegistered = errors.New("assistant handler not registered")
)

// HandleError creates a CallToolResult based on the error. All failures are
// treated as tool errors so gateway clients see a consistent shape.
func HandleError(err error) *CallToolResult {
	return &CallToolResult{
		Content: []interface{}{fmt.Sprintf("Operation failed: %v", err)},
		IsError: true,
	}
}

// HandleErrorWithPrefix creates a CallToolResult with a custom message prefix.
func HandleErrorWithPrefix(err error, prefix string) *CallToolResult {
	return &CallToolResult{
		Content: []interface{}{fmt.Sprintf("%s: %v", prefix, err)},
		IsError: true,
	}
}
