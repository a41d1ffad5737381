package cmd

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mcpforge/internal/app"
	"mcpforge/pkg/logging"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List registered deployment targets",
	Args:  cobra.NoArgs,
	RunE:  runTargets,
}

func runTargets(cmd *cobra.Command, args []string) error {
	logging.Init(logging.LevelWarn, cmd.ErrOrStderr())

	runtime, err := app.NewRuntime(configPath)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"TARGET", "MODE", "DESCRIPTION"})
	for _, info := range runtime.Controller.ListTargets() {
		mode := "package + instructions"
		if info.Synchronous {
			mode = "direct tool invocation"
		}
		t.AppendRow(table.Row{info.TargetID, mode, info.Description})
	}
	t.Render()
	return nil
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
