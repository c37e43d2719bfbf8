// ABOUTME: Project CLI commands
// ABOUTME: Creates and lists outreach projects
package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/leadgen/db"
	"github.com/harperreed/leadgen/models"
	"github.com/spf13/cobra"
)

func (a *App) projectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var channels []string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.db()
			if err != nil {
				return err
			}
			p := &models.Project{Name: strings.TrimSpace(args[0])}
			for _, ch := range channels {
				p.Channels = append(p.Channels, models.Channel(strings.ToLower(strings.TrimSpace(ch))))
			}
			if err := db.CreateProject(database, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Project created: %s (ID: %s)\n", p.Name, p.ID)
			return nil
		},
	}
	add.Flags().StringSliceVar(&channels, "channels", nil, "Channels used (call, email, linkedin)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.db()
			if err != nil {
				return err
			}
			projects, err := db.ListProjects(database)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tCHANNELS\tCREATED\tID")
			_, _ = fmt.Fprintln(w, "----\t--------\t-------\t--")
			for _, p := range projects {
				chs := make([]string, len(p.Channels))
				for i, ch := range p.Channels {
					chs[i] = string(ch)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					p.Name, orDash(strings.Join(chs, ",")), p.CreatedAt.In(a.loc).Format("2006-01-02"), p.ID)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
