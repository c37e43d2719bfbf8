// ABOUTME: TUI subcommand
// ABOUTME: Opens the interactive contact listing for the current project
package cli

import (
	"github.com/harperreed/leadgen/tui"
	"github.com/spf13/cobra"
)

func (a *App) tuiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the current project interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.currentProject()
			if err != nil {
				return err
			}
			d, release, err := a.newDashboard(true)
			if err != nil {
				return err
			}
			defer release()
			return tui.Run(d, p.ID)
		},
	}
}
