package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"mcpforge/internal/api"
	"mcpforge/internal/app"
	"mcpforge/pkg/logging"
)

// deployPollInterval is how often the job state is checked while waiting.
const deployPollInterval = 200 * time.Millisecond

// deployNoWait returns immediately after submission instead of waiting for
// a terminal state.
var deployNoWait bool

var deployCmd = &cobra.Command{
	Use:   "deploy <buildId> <targetId>",
	Short: "Deploy a generated build to a target",
	Long: `Starts a deployment job for a Generated build against a registered
target and waits for it to finish. Most targets package the artifact with
target-specific configuration and print setup instructions; the
container-image target invokes the local container tool directly.

Run 'mcpforge targets' to see what is available.`,
	Args: cobra.ExactArgs(2),
	RunE: runDeploy,
}

func runDeploy(cmd *cobra.Command, args []string) error {
	logging.Init(logging.LevelWarn, cmd.ErrOrStderr())
	buildID, targetID := args[0], args[1]

	runtime, err := app.NewRuntime(configPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deploymentID, err := runtime.Controller.SubmitDeployment(ctx, buildID, targetID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if deployNoWait {
		fmt.Fprintln(out, deploymentID)
		return nil
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = fmt.Sprintf(" Deploying build %s to %s...", buildID, targetID)
	s.Start()

	summary, err := waitForTerminal(ctx, runtime, deploymentID)
	s.Stop()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Deployment %s: %s\n", deploymentID, summary.State)
	if summary.Result == nil {
		return nil
	}

	if summary.State == api.JobFailed {
		fmt.Fprintln(out, text.FgRed.Sprint(summary.Result.Message))
		if summary.Result.Diagnostic != "" {
			fmt.Fprintln(out, summary.Result.Diagnostic)
		}
		if summary.Result.ArtifactUsable {
			fmt.Fprintf(out, "The build artifact is still usable; retry with: mcpforge deploy %s %s\n", buildID, targetID)
		}
		return fmt.Errorf("deployment %s failed", deploymentID)
	}

	if summary.Result.Message != "" {
		fmt.Fprintln(out, summary.Result.Message)
	}
	if summary.Result.ArtifactPath != "" {
		fmt.Fprintf(out, "Artifact: %s\n", summary.Result.ArtifactPath)
	}
	if len(summary.Result.SetupInstructions) > 0 {
		fmt.Fprintln(out, "\nNext steps:")
		for i, step := range summary.Result.SetupInstructions {
			fmt.Fprintf(out, "  %d. %s\n", i+1, step)
		}
	}
	return nil
}

// waitForTerminal polls the job until it reaches a terminal state or the
// context is cancelled.
func waitForTerminal(ctx context.Context, runtime *app.Runtime, deploymentID string) (*api.DeploymentSummary, error) {
	ticker := time.NewTicker(deployPollInterval)
	defer ticker.Stop()

	for {
		summary, err := runtime.Controller.DeploymentStatus(deploymentID)
		if err != nil {
			return nil, err
		}
		if summary.State.IsTerminal() {
			return summary, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func init() {
	rootCmd.AddCommand(deployCmd)

	deployCmd.Flags().BoolVar(&deployNoWait, "no-wait", false, "Print the deploymentId and return without waiting")
}
