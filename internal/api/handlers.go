package api

import (
	"sync"

	"mcpforge/pkg/logging"
)

// Handler registry variables store the registered implementations.
// These variables are protected by handlerMutex for thread-safe access.
var (
	buildManagerHandler      BuildManagerHandler
	deploymentManagerHandler DeploymentManagerHandler
	assistantHandler         AssistantHandler

	// handlerMutex protects all handler registry operations.
	handlerMutex sync.RWMutex
)

// RegisterBuildManager registers the build manager handler implementation.
// Registration is thread-safe and should happen during system initialization;
// a subsequent registration replaces the previous handler.
func RegisterBuildManager(h BuildManagerHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering build manager handler: %v", h != nil)
	buildManagerHandler = h
}

// GetBuildManager returns the registered build manager handler, or nil if
// none has been registered yet.
func GetBuildManager() BuildManagerHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return buildManagerHandler
}

// RegisterDeploymentManager registers the deployment manager handler
// implementation.
func RegisterDeploymentManager(h DeploymentManagerHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	logging.Debug("API", "Registering deployment manager handler: %v", h != nil)
	deploymentManagerHandler = h
}

// GetDeploymentManager returns the registered deployment manager handler, or
// nil if none has been registered yet.
func GetDeploymentManager() DeploymentManagerHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return deploymentManagerHandler
}

// RegisterAssistant registers the advisory assistant handler implementation.
func RegisterAssistant(h AssistantHandler) {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	assistantHandler = h
}

// GetAssistant returns the registered assistant handler, or nil if none has
// been registered. Callers must tolerate nil: the assistant is optional and
// advisory only.
func GetAssistant() AssistantHandler {
	handlerMutex.RLock()
	defer handlerMutex.RUnlock()
	return assistantHandler
}

// ResetHandlers clears all registered handlers. Intended for tests.
func ResetHandlers() {
	handlerMutex.Lock()
	defer handlerMutex.Unlock()
	buildManagerHandler = nil
	deploymentManagerHandler = nil
	assistantHandler = nil
}
