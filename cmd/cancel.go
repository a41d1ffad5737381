package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mcpforge/internal/app"
	"mcpforge/pkg/logging"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <deploymentId>",
	Short: "Request cancellation of a deployment job",
	Long: `Requests cancellation of a running deployment job. Before the deploy
stage starts the job stops at its next checkpoint; afterwards the in-flight
call completes and the job is then marked Failed with reason "cancelled".`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	logging.Init(logging.LevelWarn, cmd.ErrOrStderr())

	runtime, err := app.NewRuntime(configPath)
	if err != nil {
		return err
	}

	if err := runtime.Controller.CancelDeployment(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cancellation requested for deployment %s\n", args[0])
	return nil
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
