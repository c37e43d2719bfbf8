// ABOUTME: KPI CLI commands
// ABOUTME: Prints per-channel KPI tiles, checks one contact and lists metric names
package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/leadgen/kpi"
	"github.com/harperreed/leadgen/models"
	"github.com/spf13/cobra"
)

func (a *App) kpiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kpi",
		Short: "KPI tiles and drill-downs",
	}
	cmd.AddCommand(a.kpiSummaryCommand(), a.kpiCheckCommand(), a.kpiMetricsCommand())
	return cmd
}

func (a *App) kpiSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show activity rollups and per-metric contact counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, release, err := a.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			tally, err := d.LocalTally()
			if err != nil {
				return err
			}
			st := d.State()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", st.Project.Name)

			for _, ch := range models.Channels {
				rollup := st.KPI.Channels[ch]
				fmt.Fprintf(out, "\n%s: %d activities, %d contacts\n", strings.ToUpper(string(ch)), rollup.Activities, rollup.Contacts)

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, name := range d.Evaluator().Metrics(ch) {
					_, _ = fmt.Fprintf(w, "  %s\t%d\n", name, tally[ch][name])
				}
				if err := w.Flush(); err != nil {
					return err
				}

				if len(rollup.ByStatus) > 0 {
					statuses := make([]string, 0, len(rollup.ByStatus))
					for s := range rollup.ByStatus {
						statuses = append(statuses, s)
					}
					sort.Strings(statuses)
					parts := make([]string, len(statuses))
					for i, s := range statuses {
						parts[i] = fmt.Sprintf("%s %d", s, rollup.ByStatus[s])
					}
					fmt.Fprintf(out, "  by status: %s\n", strings.Join(parts, ", "))
				}
			}
			return nil
		},
	}
}

func (a *App) kpiCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check CONTACT CHANNEL:METRIC",
		Short: "Report whether a contact counts toward a KPI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := kpi.ParseRequest(args[1])
			if err != nil {
				return err
			}
			d, release, err := a.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			resolved, err := d.Evaluator().Resolve(req)
			if err != nil {
				return err
			}
			ok, err := d.CheckKPI(args[0], resolved)
			if err != nil {
				return err
			}
			verdict := "no"
			if ok {
				verdict = "yes"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", resolved, verdict)
			return nil
		},
	}
}

func (a *App) kpiMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics [CHANNEL]",
		Short: "List metric names and their legacy aliases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			channels := models.Channels
			if len(args) == 1 {
				ch := models.Channel(strings.ToLower(args[0]))
				if !ch.Valid() {
					return fmt.Errorf("%w: %q", kpi.ErrUnknownChannel, args[0])
				}
				channels = []models.Channel{ch}
			}

			e := kpi.NewEvaluator()
			out := cmd.OutOrStdout()
			for _, ch := range channels {
				fmt.Fprintf(out, "%s: %s\n", ch, strings.Join(e.Metrics(ch), ", "))
				if aliases := kpi.Aliases(ch); len(aliases) > 0 {
					fmt.Fprintf(out, "  legacy: %s\n", strings.Join(aliases, ", "))
				}
			}
			return nil
		},
	}
}
