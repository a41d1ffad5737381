// Package pipeline contains the controller that drives a declarative build
// specification through validation, code generation, artifact assembly,
// target configuration and deployment.
//
// The controller implements the BuildManagerHandler and
// DeploymentManagerHandler interfaces and is registered with the api
// service locator at startup. Builds are synchronous: SubmitBuild returns
// once the artifact is promoted into the build store (or the submission
// failed). Deployments are asynchronous jobs: SubmitDeployment returns a
// deploymentId immediately and the job advances through
//
//	Created -> ConfigGenerated -> Deploying -> Succeeded | Failed
//
// in a background goroutine. States only move forward and terminal states
// are immutable; every transition is persisted before it becomes visible.
package pipeline
