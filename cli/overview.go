// ABOUTME: Overview CLI command
// ABOUTME: Prints the ASCII status breakdown and follow-ups needing attention
package cli

import (
	"fmt"

	"github.com/harperreed/leadgen/viz"
	"github.com/spf13/cobra"
)

func (a *App) overviewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show the project at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, release, err := a.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			st := d.State()
			visible, _ := d.Tombstones().Filter(st.Contacts)
			stats := viz.GenerateOverview(st.Project.Name, st.Index.Views(visible), st.Activities, st.Index.Now)
			fmt.Fprint(cmd.OutOrStdout(), viz.RenderOverview(stats))
			return nil
		},
	}
}
