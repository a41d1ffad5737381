package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"mcpforge/internal/api"
)

// Exit codes for CLI commands. These follow common conventions so scripts
// can react to the failure class without parsing output.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error.
	ExitCodeError = 1
	// ExitCodeValidation indicates the submitted specification was rejected.
	ExitCodeValidation = 2
	// ExitCodeNotFound indicates the referenced build or deployment does not exist.
	ExitCodeNotFound = 3
)

// rootCmd represents the base command for the mcpforge application.
var rootCmd = &cobra.Command{
	Use:   "mcpforge",
	Short: "Generate, package and deploy MCP servers from declarative specs",
	Long: `mcpforge turns a declarative tool specification into a runnable MCP
server: it validates the spec, generates the server sources, assembles them
into a versioned artifact and deploys the artifact to a chosen target.

Run 'mcpforge serve' to expose the pipeline itself as an MCP server, or use
the build/deploy subcommands to drive it directly from the shell.`,
	// SilenceUsage prevents Cobra from printing the usage message on
	// errors that are handled by the application.
	SilenceUsage: true,
}

// configPath is the shared --config-path flag value.
var configPath string

// SetVersion sets the version for the root command. Called from the main
// package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcpforge version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error classes to semantic exit codes.
func getExitCode(err error) int {
	switch {
	case api.IsValidation(err):
		return ExitCodeValidation
	case api.IsNotFound(err):
		return ExitCodeNotFound
	default:
		return ExitCodeError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", "", "Custom configuration directory (default ~/.config/mcpforge)")
}
