package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"mcpforge/internal/api"
)

// ToolProvider exposes the build and deployment operations as gateway
// tools. All handler access goes through the api service locator.
type ToolProvider struct{}

// NewToolProvider creates the gateway tool provider.
func NewToolProvider() *ToolProvider {
	return &ToolProvider{}
}

// GetTools returns all tools this provider offers.
func (p *ToolProvider) GetTools() []api.ToolMetadata {
	return []api.ToolMetadata{
		{
			Name:        "build_submit",
			Description: "Submit a declarative server specification for validation, generation and assembly. Returns the assigned buildId.",
			Args: []api.ArgMetadata{
				{Name: "serverName", Type: "string", Required: true, Description: "Human-readable name of the server to generate"},
				{Name: "description", Type: "string", Required: false, Description: "Free-text description embedded in the generated manifest"},
				{Name: "flavor", Type: "string", Required: false, Description: "Runtime flavor: python (default) or node"},
				{Name: "tools", Type: "array", Required: true, Description: "Tool definitions: name, description, parameters and an optional implementation hint"},
			},
		},
		{
			Name:        "build_status",
			Description: "Return the artifact status (Pending, Generated or Failed) for a buildId.",
			Args: []api.ArgMetadata{
				{Name: "buildId", Type: "string", Required: true, Description: "Build identifier returned by build_submit"},
			},
		},
		{
			Name:        "build_get",
			Description: "Return the full summary for a buildId.",
			Args: []api.ArgMetadata{
				{Name: "buildId", Type: "string", Required: true, Description: "Build identifier returned by build_submit"},
			},
		},
		{
			Name:        "build_list",
			Description: "List all known builds, newest first.",
			Args:        []api.ArgMetadata{},
		},
		{
			Name:        "build_suggest",
			Description: "Ask the assistant for advisory text, e.g. a tool description or implementation hint. Suggestions never affect pipeline behavior.",
			Args: []api.ArgMetadata{
				{Name: "prompt", Type: "string", Required: true, Description: "What to suggest"},
			},
		},
		{
			Name:        "deploy_submit",
			Description: "Start a deployment job for a Generated build against a registered target. Returns the deploymentId.",
			Args: []api.ArgMetadata{
				{Name: "buildId", Type: "string", Required: true, Description: "Build identifier of a Generated build"},
				{Name: "targetId", Type: "string", Required: true, Description: "Deployment target id, see deploy_targets"},
			},
		},
		{
			Name:        "deploy_status",
			Description: "Return the state and result of a deployment job.",
			Args: []api.ArgMetadata{
				{Name: "deploymentId", Type: "string", Required: true, Description: "Deployment identifier returned by deploy_submit"},
			},
		},
		{
			Name:        "deploy_cancel",
			Description: "Request cancellation of a deployment job. An in-flight deploy call is never interrupted; the job is marked Failed once it returns.",
			Args: []api.ArgMetadata{
				{Name: "deploymentId", Type: "string", Required: true, Description: "Deployment identifier returned by deploy_submit"},
			},
		},
		{
			Name:        "deploy_list",
			Description: "List all known deployment jobs, newest first.",
			Args:        []api.ArgMetadata{},
		},
		{
			Name:        "deploy_targets",
			Description: "List all registered deployment targets.",
			Args:        []api.ArgMetadata{},
		},
	}
}

// ExecuteTool executes a tool by name.
func (p *ToolProvider) ExecuteTool(ctx context.Context, toolName string, args map[string]interface{}) (*api.CallToolResult, error) {
	switch toolName {
	case "build_submit":
		return p.buildSubmit(ctx, args)
	case "build_status":
		return p.buildStatus(args)
	case "build_get":
		return p.buildGet(args)
	case "build_list":
		return p.buildList()
	case "build_suggest":
		return p.buildSuggest(ctx, args)
	case "deploy_submit":
		return p.deploySubmit(ctx, args)
	case "deploy_status":
		return p.deployStatus(args)
	case "deploy_cancel":
		return p.deployCancel(args)
	case "deploy_list":
		return p.deployList()
	case "deploy_targets":
		return p.deployTargets()
	default:
		return nil, fmt.Errorf("unknown tool: %s", toolName)
	}
}

func (p *ToolProvider) buildSubmit(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	handler := api.GetBuildManager()
	if handler == nil {
		return nil, api.ErrBuildManagerNotRegistered
	}

	var req api.BuildSpecRequest
	if err := decodeArgs(args, &req); err != nil {
		return api.HandleErrorWithPrefix(err, "Invalid build specification"), nil
	}

	buildID, err := handler.SubmitBuild(ctx, req)
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Build submission failed"), nil
	}
	return jsonResult(map[string]interface{}{"buildId": buildID})
}

func (p *ToolProvider) buildStatus(args map[string]interface{}) (*api.CallToolResult, error) {
	handler := api.GetBuildManager()
	if handler == nil {
		return nil, api.ErrBuildManagerNotRegistered
	}

	buildID, err := stringArg(args, "buildId")
	if err != nil {
		return api.HandleError(err), nil
	}
	status, err := handler.BuildStatus(buildID)
	if err != nil {
		return api.HandleError(err), nil
	}
	return jsonResult(map[string]interface{}{"buildId": buildID, "status": status})
}

func (p *ToolProvider) buildGet(args map[string]interface{}) (*api.CallToolResult, error) {
	handler := api.GetBuildManager()
	if handler == nil {
		return nil, api.ErrBuildManagerNotRegistered
	}

	buildID, err := stringArg(args, "buildId")
	if err != nil {
		return api.HandleError(err), nil
	}
	summary, err := handler.GetBuild(buildID)
	if err != nil {
		return api.HandleError(err), nil
	}
	return jsonResult(summary)
}

func (p *ToolProvider) buildList() (*api.CallToolResult, error) {
	handler := api.GetBuildManager()
	if handler == nil {
		return nil, api.ErrBuildManagerNotRegistered
	}
	return jsonResult(map[string]interface{}{"builds": handler.ListBuilds()})
}

func (p *ToolProvider) buildSuggest(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	handler := api.GetAssistant()
	if handler == nil {
		return nil, api.ErrAssistantNotRegistered
	}

	prompt, err := stringArg(args, "prompt")
	if err != nil {
		return api.HandleError(err), nil
	}
	suggestion, err := handler.Suggest(ctx, prompt)
	if err != nil {
		// Advisory collaborator: the failure is reported, never escalated.
		return api.HandleErrorWithPrefix(err, "No suggestion available"), nil
	}
	return jsonResult(map[string]interface{}{"suggestion": suggestion})
}

func (p *ToolProvider) deploySubmit(ctx context.Context, args map[string]interface{}) (*api.CallToolResult, error) {
	handler := api.GetDeploymentManager()
	if handler == nil {
		return nil, api.ErrDeploymentManagerNotRegistered
	}

	buildID, err := stringArg(args, "buildId")
	if err != nil {
		return api.HandleError(err), nil
	}
	targetID, err := stringArg(args, "targetId")
	if err != nil {
		return api.HandleError(err), nil
	}

	deploymentID, err := handler.SubmitDeployment(ctx, buildID, targetID)
	if err != nil {
		return api.HandleErrorWithPrefix(err, "Deployment submission failed"), nil
	}
	return jsonResult(map[string]interface{}{"deploymentId": deploymentID})
}

func (p *ToolProvider) deployStatus(args map[string]interface{}) (*api.CallToolResult, error) {
	handler := api.GetDeploymentManager()
	if handler == nil {
		return nil, api.ErrDeploymentManagerNotRegistered
	}

	deploymentID, err := stringArg(args, "deploymentId")
	if err != nil {
		return api.HandleError(err), nil
	}
	summary, err := handler.DeploymentStatus(deploymentID)
	if err != nil {
		return api.HandleError(err), nil
	}
	return jsonResult(summary)
}

func (p *ToolProvider) deployCancel(args map[string]interface{}) (*api.CallToolResult, error) {
	handler := api.GetDeploymentManager()
	if handler == nil {
		return nil, api.ErrDeploymentManagerNotRegistered
	}

	deploymentID, err := stringArg(args, "deploymentId")
	if err != nil {
		return api.HandleError(err), nil
	}
	if err := handler.CancelDeployment(deploymentID); err != nil {
		return api.HandleError(err), nil
	}
	return jsonResult(map[string]interface{}{"deploymentId": deploymentID, "cancelRequested": true})
}

func (p *ToolProvider) deployList() (*api.CallToolResult, error) {
	handler := api.GetDeploymentManager()
	if handler == nil {
		return nil, api.ErrDeploymentManagerNotRegistered
	}
	return jsonResult(map[string]interface{}{"deployments": handler.ListDeployments()})
}

func (p *ToolProvider) deployTargets() (*api.CallToolResult, error) {
	handler := api.GetDeploymentManager()
	if handler == nil {
		return nil, api.ErrDeploymentManagerNotRegistered
	}
	return jsonResult(map[string]interface{}{"targets": handler.ListTargets()})
}

// decodeArgs maps raw tool arguments onto a typed request via json.
func decodeArgs(args map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode arguments: %w", err)
	}
	return nil
}

func stringArg(args map[string]interface{}, name string) (string, error) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%s argument is required", name)
	}
	return value, nil
}

func jsonResult(payload interface{}) (*api.CallToolResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &api.CallToolResult{Content: []interface{}{string(data)}}, nil
}
