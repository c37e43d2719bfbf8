// ABOUTME: Contact CLI commands
// ABOUTME: Adds, lists with filters, shows and deletes contacts in a project
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/db"
	"github.com/harperreed/leadgen/filter"
	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/models"
	"github.com/spf13/cobra"
)

func (a *App) contactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Manage and list contacts",
	}
	cmd.AddCommand(a.contactAddCommand(), a.contactListCommand(), a.contactShowCommand(), a.contactDeleteCommand())
	return cmd
}

func (a *App) contactAddCommand() *cobra.Command {
	var (
		c        models.Contact
		linkedin []string
		noImport bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a contact and import it into the current project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := a.db()
			if err != nil {
				return err
			}
			c.LinkedInURLs = linkedin
			if err := db.CreateContact(database, &c); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Contact created: %s (ID: %s)\n", c.Name, c.ID)

			if noImport {
				return nil
			}
			p, err := a.currentProject()
			if err != nil {
				return err
			}
			if _, err := db.AddContactToProject(database, p.ID, c.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "  Imported into: %s\n", p.Name)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&c.Name, "name", "", "Contact name (required)")
	f.StringVar(&c.Email, "email", "", "Email address")
	f.StringVar(&c.Phone, "phone", "", "Phone number")
	f.StringVar(&c.Company, "company", "", "Company name")
	f.StringVar(&c.Stage, "stage", "", "Pipeline stage (default New)")
	f.StringSliceVar(&linkedin, "linkedin", nil, "LinkedIn profile URL (repeatable)")
	f.BoolVar(&noImport, "no-import", false, "Create the contact without importing it into a project")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *App) contactListCommand() *cobra.Command {
	var (
		q        filter.Query
		page     int
		pageSize int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts of the current project",
		Long: `List contacts of the current project, one page at a time.

Without filters the database pages the listing. Any filter, search or KPI
switches to filtering the whole project locally. Date filters take a bucket
(today, yesterday, tomorrow, this-week, this-month) or a --*-from/--*-to
range in YYYY-MM-DD.

Examples:
  leadgen contact list --next-action today
  leadgen contact list --kpi call:interested --sort name
  leadgen contact list --last-from 2024-01-01 --last-to 2024-01-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			criteria, err := q.Criteria(a.loc)
			if err != nil {
				return err
			}
			if pageSize > 0 {
				a.cfg.PageSize = pageSize
				a.cfg.ClientFetchLimit = max(a.cfg.ClientFetchLimit, pageSize)
			}

			d, release, err := a.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			listing, err := d.Page(cmd.Context(), criteria, page)
			if err != nil {
				return err
			}
			return a.printListing(cmd.OutOrStdout(), listing)
		},
	}

	f := cmd.Flags()
	f.StringVar(&q.Status, "status", "", "Displayed status")
	f.StringVar(&q.NextAction, "next-action", "", "Next action bucket")
	f.StringVar(&q.NextFrom, "next-from", "", "Next action due on or after (YYYY-MM-DD)")
	f.StringVar(&q.NextTo, "next-to", "", "Next action due on or before (YYYY-MM-DD)")
	f.StringVar(&q.LastInteraction, "last", "", "Last interaction bucket")
	f.StringVar(&q.LastFrom, "last-from", "", "Last interaction on or after (YYYY-MM-DD)")
	f.StringVar(&q.LastTo, "last-to", "", "Last interaction on or before (YYYY-MM-DD)")
	f.StringVar(&q.Imported, "imported", "", "Import date bucket (today, yesterday)")
	f.StringVar(&q.ImportedFrom, "imported-from", "", "Imported on or after (YYYY-MM-DD)")
	f.StringVar(&q.ImportedTo, "imported-to", "", "Imported on or before (YYYY-MM-DD)")
	f.BoolVar(&q.NoActivity, "no-activity", false, "Only contacts without any activity")
	f.StringVar(&q.KPI, "kpi", "", "Contacts counted by a KPI, as channel:metric")
	f.StringVar(&q.Search, "search", "", "Search name, email and company")
	f.StringVar(&q.Sort, "sort", "", "Sort by name or -name")
	f.IntVar(&page, "page", 1, "Page number")
	f.IntVar(&pageSize, "page-size", 0, "Rows per page (default from config)")
	return cmd
}

func (a *App) printListing(out io.Writer, listing dashboard.Listing) error {
	if listing.Reset {
		fmt.Fprintln(out, "Filters changed, showing the first page")
	}
	if len(listing.Rows) == 0 {
		fmt.Fprintln(out, "No contacts found")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tCOMPANY\tSTATUS\tLAST ACTIVITY\tNEXT ACTION\tID")
		_, _ = fmt.Fprintln(w, "----\t-------\t------\t-------------\t-----------\t--")
		for _, v := range listing.Rows {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				v.Contact.Name, orDash(v.Contact.Company), v.Status,
				a.lastActivity(v), a.nextAction(v), orDash(v.Contact.ID))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	footer := listing.Window.String()
	if listing.Window.TotalPages > 1 {
		footer += fmt.Sprintf(" (page %d of %d)", listing.Window.Page, listing.Window.TotalPages)
	}
	if listing.Skipped > 0 {
		footer += fmt.Sprintf(", %d skipped", listing.Skipped)
	}
	fmt.Fprintln(out, footer)
	return nil
}

func (a *App) lastActivity(v index.View) string {
	t, ok := v.LastActivityDate()
	if !ok {
		return "-"
	}
	return a.day(t)
}

func (a *App) nextAction(v index.View) string {
	if v.NextAction == nil || v.NextAction.NextActionDate == nil {
		return "-"
	}
	s := a.day(*v.NextAction.NextActionDate)
	if v.NextAction.NextAction != "" {
		s += " " + v.NextAction.NextAction
	}
	return s
}

func (a *App) day(t time.Time) string {
	return t.In(a.loc).Format("2006-01-02")
}

func (a *App) contactShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a contact with its activity history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, release, err := a.loadDashboard(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			detail, err := d.Contact(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			c := detail.View.Contact
			fmt.Fprintf(out, "%s\n", c.Name)
			fmt.Fprintf(out, "  ID:       %s\n", orDash(c.ID))
			fmt.Fprintf(out, "  Company:  %s\n", orDash(c.Company))
			fmt.Fprintf(out, "  Email:    %s\n", orDash(c.Email))
			fmt.Fprintf(out, "  Phone:    %s\n", orDash(c.Phone))
			if len(c.LinkedInURLs) > 0 {
				fmt.Fprintf(out, "  LinkedIn: %s\n", strings.Join(c.LinkedInURLs, ", "))
			}
			fmt.Fprintf(out, "  Stage:    %s\n", c.Stage)
			fmt.Fprintf(out, "  Status:   %s\n", detail.View.Status)
			fmt.Fprintf(out, "  Next:     %s\n", a.nextAction(detail.View))
			fmt.Fprintf(out, "  Match:    %s\n", detail.View.Confidence)

			if len(detail.Activities) == 0 {
				fmt.Fprintln(out, "\nNo activities")
				return nil
			}
			fmt.Fprintln(out)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "DATE\tTYPE\tSTATUS\tNOTES")
			for _, act := range detail.Activities {
				date := "-"
				if t, ok := act.ActivityDate(); ok {
					date = a.day(t)
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", date, act.Type, orDash(act.StatusValue()), orDash(act.Notes))
			}
			return w.Flush()
		},
	}
}

func (a *App) contactDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a contact with its memberships and activities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, release, err := a.newDashboard(false)
			if err != nil {
				return err
			}
			defer release()

			if err := d.DeleteContact(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Contact deleted: %s\n", args[0])
			return nil
		},
	}
}
