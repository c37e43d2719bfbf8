// ABOUTME: Per-contact summary rows combining the derived indices
// ABOUTME: Used by the CLI, TUI and MCP layers to render a contact's outreach state
package index

import (
	"time"

	"github.com/harperreed/leadgen/models"
)

// View is what a listing shows for one contact.
type View struct {
	Contact      models.Contact   `json:"contact"`
	Status       string           `json:"status"`
	LastActivity *models.Activity `json:"last_activity,omitempty"`
	NextAction   *models.Activity `json:"next_action,omitempty"`
	Activities   int              `json:"activities"`
	Confidence   string           `json:"match"`
}

// LastActivityDate returns the date of the view's last activity, if any.
func (v View) LastActivityDate() (time.Time, bool) {
	if v.LastActivity == nil {
		return time.Time{}, false
	}
	return v.LastActivity.ActivityDate()
}

// View summarizes a contact. The last and next columns come only from
// id-keyed activity, the same indices the date filters test. A fallback
// match shows up in Activities and Confidence and nowhere else.
func (ix *Index) View(c models.Contact) View {
	acts, conf := ix.Resolve(c)
	v := View{
		Contact:    c,
		Status:     ix.DisplayStatus(c),
		Activities: len(acts),
		Confidence: conf.String(),
	}
	if conf != ConfidenceExact {
		return v
	}
	if a, ok := ix.LastActivity[c.ID]; ok {
		v.LastActivity = &a
	}
	if a, ok := ix.NextAction[c.ID]; ok {
		v.NextAction = &a
	}
	return v
}

// Views summarizes contacts in order.
func (ix *Index) Views(contacts []models.Contact) []View {
	views := make([]View, len(contacts))
	for i, c := range contacts {
		views[i] = ix.View(c)
	}
	return views
}
