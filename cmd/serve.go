package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mcpforge/internal/app"
	"mcpforge/pkg/logging"
)

// serveDebug enables verbose logging across the application.
var serveDebug bool

// serveTransport overrides the gateway transport from the config file.
var serveTransport string

// servePort overrides the gateway port from the config file.
var servePort int

// serveLogLevel sets the log verbosity (debug, info, warn, error).
var serveLogLevel string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the pipeline as an MCP server",
	Long: `Starts the gateway that exposes every pipeline operation as an MCP tool
(build_submit, deploy_submit, deploy_targets, ...) over the configured
transport, and watches the drop-in specs directory for incoming build
requests. The process runs until interrupted; live deployment jobs are
drained before exit.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	level := logging.ParseLevel(serveLogLevel)
	if serveDebug {
		level = logging.LevelDebug
	}
	logging.Init(level, cmd.ErrOrStderr())

	application, err := app.NewApplication(app.Options{
		ConfigPath: configPath,
		Version:    GetVersion(),
		Transport:  serveTransport,
		Port:       servePort,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveTransport, "transport", "", "Gateway transport: streamable-http or stdio")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Gateway port for the streamable-http transport")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level: debug, info, warn or error")
}
