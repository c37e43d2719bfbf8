// ABOUTME: Loosely typed listing query as it arrives from flags or tool calls
// ABOUTME: Parses buckets, day ranges, KPI references and sort into Criteria
package filter

import (
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/kpi"
)

// Query holds every listing filter as plain strings. Each date filter takes
// either a bucket name or a from/to day range (YYYY-MM-DD, either end open).
type Query struct {
	Status          string `json:"status,omitempty" jsonschema:"Displayed status to match exactly"`
	NextAction      string `json:"next_action,omitempty" jsonschema:"Next action due: today, tomorrow, this-week or this-month"`
	NextFrom        string `json:"next_from,omitempty" jsonschema:"Next action due on or after this day (YYYY-MM-DD)"`
	NextTo          string `json:"next_to,omitempty" jsonschema:"Next action due on or before this day (YYYY-MM-DD)"`
	LastInteraction string `json:"last_interaction,omitempty" jsonschema:"Last activity: today, yesterday, this-week or this-month"`
	LastFrom        string `json:"last_from,omitempty" jsonschema:"Last activity on or after this day (YYYY-MM-DD)"`
	LastTo          string `json:"last_to,omitempty" jsonschema:"Last activity on or before this day (YYYY-MM-DD)"`
	Imported        string `json:"imported,omitempty" jsonschema:"Import date: today or yesterday"`
	ImportedFrom    string `json:"imported_from,omitempty" jsonschema:"Imported on or after this day (YYYY-MM-DD)"`
	ImportedTo      string `json:"imported_to,omitempty" jsonschema:"Imported on or before this day (YYYY-MM-DD)"`
	NoActivity      bool   `json:"no_activity,omitempty" jsonschema:"Only contacts without any activity"`
	KPI             string `json:"kpi,omitempty" jsonschema:"KPI drill-down as channel:metric, e.g. call:interested"`
	Search          string `json:"search,omitempty" jsonschema:"Free-text search on name, email and company"`
	Sort            string `json:"sort,omitempty" jsonschema:"name or -name"`
}

// Criteria parses q. Day ranges are read in loc.
func (q Query) Criteria(loc *time.Location) (Criteria, error) {
	var (
		c   Criteria
		err error
	)
	c.Status = strings.TrimSpace(q.Status)
	c.Search = strings.TrimSpace(q.Search)
	c.NoActivity = q.NoActivity

	if c.NextAction, err = dates.ParseWindow(q.NextAction, q.NextFrom, q.NextTo, loc); err != nil {
		return Criteria{}, fmt.Errorf("next action: %w", err)
	}
	if c.LastInteraction, err = dates.ParseWindow(q.LastInteraction, q.LastFrom, q.LastTo, loc); err != nil {
		return Criteria{}, fmt.Errorf("last interaction: %w", err)
	}
	if c.ImportDate, err = dates.ParseWindow(q.Imported, q.ImportedFrom, q.ImportedTo, loc); err != nil {
		return Criteria{}, fmt.Errorf("import date: %w", err)
	}
	if q.KPI != "" {
		req, err := kpi.ParseRequest(q.KPI)
		if err != nil {
			return Criteria{}, err
		}
		c.KPI = &req
	}
	if c.Sort, err = ParseSort(q.Sort); err != nil {
		return Criteria{}, err
	}
	return c, nil
}
