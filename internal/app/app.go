package app

import (
	"context"
	"fmt"
	"path/filepath"

	"mcpforge/internal/api"
	"mcpforge/internal/assembler"
	"mcpforge/internal/assistant"
	"mcpforge/internal/config"
	"mcpforge/internal/deploy"
	"mcpforge/internal/gateway"
	"mcpforge/internal/pipeline"
	"mcpforge/internal/store"
	"mcpforge/pkg/logging"
)

const subsystem = "App"

// Runtime is the wired pipeline stack without any transport. CLI commands
// that operate directly on the local data directory use it as-is; the
// serve command wraps it in an Application.
type Runtime struct {
	Config     config.ForgeConfig
	Controller *pipeline.Controller
	Storage    *store.Storage
}

// NewRuntime loads configuration, wires the pipeline and registers all
// handlers with the api service locator.
func NewRuntime(configPath string) (*Runtime, error) {
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	storage := store.NewStorage(cfg.DataDir)
	asm := assembler.New(filepath.Join(cfg.DataDir, "builds"))
	registry := deploy.DefaultRegistry()

	controller, err := pipeline.NewController(storage, asm, registry, cfg.Timeouts)
	if err != nil {
		return nil, err
	}

	api.RegisterBuildManager(controller)
	api.RegisterDeploymentManager(controller)
	api.RegisterAssistant(assistant.NewClient(cfg.Assistant.Endpoint, cfg.Assistant.Timeout))

	return &Runtime{
		Config:     cfg,
		Controller: controller,
		Storage:    storage,
	}, nil
}

// Options configures the long-running server. Zero values defer to the
// loaded configuration file.
type Options struct {
	ConfigPath string
	Version    string

	// Transport and Port override the gateway settings from config.yaml.
	Transport string
	Port      int
}

// Application is the long-running server: the runtime plus the MCP
// gateway and the drop-in spec watcher.
type Application struct {
	*Runtime

	gateway *gateway.Server
	watcher *store.SpecWatcher
}

// NewApplication wires the full server for the serve command.
func NewApplication(opts Options) (*Application, error) {
	runtime, err := NewRuntime(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.Transport != "" {
		runtime.Config.Gateway.Transport = opts.Transport
	}
	if opts.Port != 0 {
		runtime.Config.Gateway.Port = opts.Port
	}

	app := &Application{
		Runtime: runtime,
		gateway: gateway.NewServer(runtime.Config.Gateway, opts.Version),
	}
	app.watcher = store.NewSpecWatcher(store.SpecWatcherConfig{
		SpecsDir: filepath.Join(runtime.Config.DataDir, "specs"),
		OnSpec: func(path string, request api.BuildSpecRequest) error {
			buildID, err := runtime.Controller.SubmitBuild(context.Background(), request)
			if err != nil {
				return err
			}
			logging.Info(subsystem, "Drop-in spec %s submitted as build %s", path, buildID)
			return nil
		},
	})
	return app, nil
}

// Run starts the gateway and the spec watcher, then blocks until the
// context is cancelled. Live deployment jobs are drained on shutdown.
func (a *Application) Run(ctx context.Context) error {
	if err := a.gateway.Start(ctx); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}
	if err := a.watcher.Start(); err != nil {
		logging.Warn(subsystem, "Spec watcher disabled: %v", err)
	}

	logging.Info(subsystem, "mcpforge is ready (data dir: %s)", a.Config.DataDir)
	<-ctx.Done()

	logging.Info(subsystem, "Shutting down")
	if err := a.watcher.Stop(); err != nil {
		logging.Warn(subsystem, "Spec watcher stop: %v", err)
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Timeouts.Deploy)
	defer cancel()
	if err := a.gateway.Stop(stopCtx); err != nil {
		logging.Warn(subsystem, "Gateway stop: %v", err)
	}
	a.Controller.Wait()
	return nil
}
