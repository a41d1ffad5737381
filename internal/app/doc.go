// Package app wires the configuration, storage, pipeline, assistant and
// gateway into a runnable application. It owns startup order, handler
// registration with the api service locator and graceful shutdown.
package app
