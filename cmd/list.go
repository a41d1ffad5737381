package cmd

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mcpforge/internal/app"
	"mcpforge/pkg/logging"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List builds and deployment jobs",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	logging.Init(logging.LevelWarn, cmd.ErrOrStderr())

	runtime, err := app.NewRuntime(configPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	builds := runtime.Controller.ListBuilds()
	fmt.Fprintf(out, "Builds (%d):\n", len(builds))
	bt := table.NewWriter()
	bt.SetOutputMirror(out)
	bt.SetStyle(table.StyleLight)
	bt.AppendHeader(table.Row{"BUILD ID", "SERVER", "FLAVOR", "STATUS", "TOOLS", "CREATED"})
	for _, b := range builds {
		bt.AppendRow(table.Row{b.BuildID, b.ServerName, b.Flavor, b.Status, b.ToolCount, b.CreatedAt.Format(time.RFC3339)})
	}
	bt.Render()

	deployments := runtime.Controller.ListDeployments()
	fmt.Fprintf(out, "\nDeployments (%d):\n", len(deployments))
	dt := table.NewWriter()
	dt.SetOutputMirror(out)
	dt.SetStyle(table.StyleLight)
	dt.AppendHeader(table.Row{"DEPLOYMENT ID", "BUILD ID", "TARGET", "STATE", "UPDATED"})
	for _, d := range deployments {
		dt.AppendRow(table.Row{d.DeploymentID, d.BuildID, d.TargetID, d.State, d.UpdatedAt.Format(time.RFC3339)})
	}
	dt.Render()

	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
}
