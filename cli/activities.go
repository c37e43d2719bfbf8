// ABOUTME: Activity CLI commands
// ABOUTME: Logs single activities and bulk-logs JSON exports with live progress
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/models"
	"github.com/harperreed/leadgen/normalize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (a *App) activityCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Log outreach activities",
	}
	cmd.AddCommand(a.activityLogCommand(), a.activityBulkLogCommand())
	return cmd
}

type activityFlags struct {
	contact       string
	channel       string
	status        string
	date          string
	notes         string
	nextAction    string
	nextDate      string
	lnRequestSent bool
	connected     bool
	account       string
}

// activity builds the activity described by the flags. The status lands in
// the field its channel reads.
func (f activityFlags) activity(projectID string, loc *time.Location) (models.Activity, error) {
	act := models.Activity{
		ProjectID:           projectID,
		ContactID:           strings.TrimSpace(f.contact),
		Type:                models.Channel(strings.ToLower(strings.TrimSpace(f.channel))),
		Notes:               f.notes,
		NextAction:          f.nextAction,
		LnRequestSent:       f.lnRequestSent,
		Connected:           f.connected,
		LinkedInAccountName: f.account,
	}
	if !act.Type.Valid() {
		return models.Activity{}, fmt.Errorf("unknown channel %q (use call, email or linkedin)", f.channel)
	}
	if act.Type == models.ChannelCall {
		act.CallStatus = f.status
	} else {
		act.Status = f.status
	}

	if f.date != "" {
		t, ok := normalize.Date(f.date, loc)
		if !ok {
			return models.Activity{}, fmt.Errorf("invalid --date %q", f.date)
		}
		act.ChannelDate = &t
	}
	if f.nextDate != "" {
		t, ok := normalize.Date(f.nextDate, loc)
		if !ok {
			return models.Activity{}, fmt.Errorf("invalid --next-date %q", f.nextDate)
		}
		act.NextActionDate = &t
	}
	return act, nil
}

func (a *App) activityLogCommand() *cobra.Command {
	var f activityFlags
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log one activity for a contact",
		Long: `Log one call, email or LinkedIn activity in the current project.

A status also becomes the contact's stage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.currentProject()
			if err != nil {
				return err
			}
			act, err := f.activity(p.ID, a.loc)
			if err != nil {
				return err
			}

			d, release, err := a.newDashboard(false)
			if err != nil {
				return err
			}
			defer release()

			res, err := d.LogActivities(cmd.Context(), []models.Activity{act}, nil)
			if err != nil {
				return err
			}
			if res.Failed > 0 {
				return res.Errors[0]
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged %s activity (ID: %s)\n", act.Type, res.Logged[0].ID)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.contact, "contact", "", "Contact id")
	fl.StringVar(&f.channel, "type", "", "Channel: call, email or linkedin (required)")
	fl.StringVar(&f.status, "status", "", "Call status, or email/LinkedIn status")
	fl.StringVar(&f.date, "date", "", "When it happened (default now)")
	fl.StringVar(&f.notes, "notes", "", "Notes")
	fl.StringVar(&f.nextAction, "next-action", "", "Planned follow-up")
	fl.StringVar(&f.nextDate, "next-date", "", "Follow-up due date")
	fl.BoolVar(&f.lnRequestSent, "ln-request-sent", false, "LinkedIn connection request sent")
	fl.BoolVar(&f.connected, "connected", false, "LinkedIn connection accepted")
	fl.StringVar(&f.account, "account", "", "LinkedIn account used")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (a *App) activityBulkLogCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-log FILE",
		Short: "Log every activity in a JSON export (- reads stdin)",
		Long: `Log every activity record in a JSON array (or {"data": [...]}) into the
current project. Records that fail validation are reported and skipped; each
remaining activity succeeds or fails on its own.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.currentProject()
			if err != nil {
				return err
			}
			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			records, err := normalize.DecodeRecords(data)
			if err != nil {
				return err
			}

			acts, rejected := normalize.New(a.loc).Activities(records)
			for _, err := range rejected {
				a.logger.Warn("skipping activity record", zap.Error(err))
			}
			for i := range acts {
				acts[i].ID = ""
				acts[i].ProjectID = p.ID
			}

			d, release, err := a.newDashboard(false)
			if err != nil {
				return err
			}
			defer release()

			errOut := cmd.ErrOrStderr()
			res, err := d.LogActivities(cmd.Context(), acts, func(pr dashboard.BulkProgress) {
				fmt.Fprintf(errOut, "\rlogging %d/%d", pr.Done, pr.Total)
			})
			if err != nil {
				return err
			}
			if len(acts) > 0 {
				fmt.Fprintln(errOut)
			}
			for _, e := range res.Errors {
				fmt.Fprintf(errOut, "  %v\n", e)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %d rejected\n", res, len(rejected))
			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
