// ABOUTME: Shared state for the outreach MCP tool handlers
// ABOUTME: Resolves projects, loads them into the dashboard and shapes output rows
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/db"
	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/models"
)

// OutreachHandlers serves contact listings and KPI questions over MCP. Tool
// calls are serialized because the dashboard shows one project at a time.
type OutreachHandlers struct {
	db             *sql.DB
	dash           *dashboard.Dashboard
	defaultProject string
	loc            *time.Location

	mu sync.Mutex
}

func NewOutreachHandlers(database *sql.DB, dash *dashboard.Dashboard, defaultProject string, loc *time.Location) *OutreachHandlers {
	if loc == nil {
		loc = time.Local
	}
	return &OutreachHandlers{db: database, dash: dash, defaultProject: defaultProject, loc: loc}
}

// load makes project the dashboard's current project. The loaded state is
// reused unless refresh is set. Callers hold h.mu.
func (h *OutreachHandlers) load(ctx context.Context, project string, refresh bool) (*dashboard.State, error) {
	if project == "" {
		project = h.defaultProject
	}
	if project == "" {
		return nil, fmt.Errorf("project is required (no default project configured)")
	}
	p, err := db.GetProject(h.db, project)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("project %q not found", project)
	}

	if st := h.dash.State(); st != nil && st.ProjectID == p.ID && !refresh {
		return st, nil
	}
	st, err := h.dash.Enter(ctx, p.ID)
	if err != nil && st == nil {
		return nil, err
	}
	return st, nil
}

type ContactRow struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	Company        string `json:"company,omitempty"`
	Email          string `json:"email,omitempty"`
	Status         string `json:"status"`
	LastActivity   string `json:"last_activity,omitempty"`
	NextAction     string `json:"next_action,omitempty"`
	NextActionDate string `json:"next_action_date,omitempty"`
	Activities     int    `json:"activities"`
	Match          string `json:"match"`
	Imported       bool   `json:"imported"`
}

func (h *OutreachHandlers) toRow(v index.View) ContactRow {
	row := ContactRow{
		ID:         v.Contact.ID,
		Name:       v.Contact.Name,
		Company:    v.Contact.Company,
		Email:      v.Contact.Email,
		Status:     v.Status,
		Activities: v.Activities,
		Match:      v.Confidence,
		Imported:   v.Contact.Imported(),
	}
	if t, ok := v.LastActivityDate(); ok {
		row.LastActivity = h.formatTime(t)
	}
	if v.NextAction != nil {
		row.NextAction = v.NextAction.NextAction
		if v.NextAction.NextActionDate != nil {
			row.NextActionDate = h.formatTime(*v.NextAction.NextActionDate)
		}
	}
	return row
}

type ActivityRow struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Date       string `json:"date,omitempty"`
	Status     string `json:"status,omitempty"`
	Notes      string `json:"notes,omitempty"`
	NextAction string `json:"next_action,omitempty"`
}

func (h *OutreachHandlers) toActivityRow(a models.Activity) ActivityRow {
	row := ActivityRow{
		ID:         a.ID,
		Type:       string(a.Type),
		Status:     a.StatusValue(),
		Notes:      a.Notes,
		NextAction: a.NextAction,
	}
	if t, ok := a.ActivityDate(); ok {
		row.Date = h.formatTime(t)
	}
	return row
}

func (h *OutreachHandlers) formatTime(t time.Time) string {
	return t.In(h.loc).Format(time.RFC3339)
}
