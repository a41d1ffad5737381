package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mcpforge/internal/api"
	"mcpforge/internal/app"
	"mcpforge/pkg/logging"
)

// buildSpecFile is the path of the yaml build specification.
var buildSpecFile string

// buildQuiet suppresses the progress spinner and prints only the buildId.
var buildQuiet bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validate, generate and assemble a server from a spec file",
	Long: `Submits the yaml build specification to the pipeline. On success the
assembled artifact is placed into the build store and the assigned buildId
is printed; deploy it with 'mcpforge deploy <buildId> <targetId>'.

Example spec:

  serverName: Greeting Server
  flavor: python
  tools:
    - name: hello_world
      description: Says hello
`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	logging.Init(logging.LevelWarn, cmd.ErrOrStderr())

	data, err := os.ReadFile(buildSpecFile)
	if err != nil {
		return fmt.Errorf("failed to read spec file: %w", err)
	}
	var req api.BuildSpecRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse spec file %s: %w", buildSpecFile, err)
	}

	runtime, err := app.NewRuntime(configPath)
	if err != nil {
		return err
	}

	var s *spinner.Spinner
	if !buildQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Generating server..."
		s.Start()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	buildID, err := runtime.Controller.SubmitBuild(ctx, req)

	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	if buildQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), buildID)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Build %s generated\n", buildID)
	fmt.Fprintf(cmd.OutOrStdout(), "Artifact: %s\n", runtime.Controller.ArtifactDir(buildID))
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildSpecFile, "file", "f", "", "Path to the yaml build specification (required)")
	buildCmd.MarkFlagRequired("file")
	buildCmd.Flags().BoolVarP(&buildQuiet, "quiet", "q", false, "Print only the buildId")
}
