// ABOUTME: Derived per-contact lookup tables over one project's activity snapshot
// ABOUTME: Builds last-activity, next-action and latest-status indices as a pure function
package index

import (
	"strings"
	"time"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/models"
)

// Status is the most recent status-bearing value logged for a contact.
type Status struct {
	Status       string    `json:"status"`
	ActivityDate time.Time `json:"activity_date"`
}

// Index is the read-only result of Build. It is never mutated after
// construction and may be shared between goroutines.
type Index struct {
	// Activities is the snapshot the index was built from, in input order.
	Activities   []models.Activity
	ByContact    map[string][]models.Activity
	LastActivity map[string]models.Activity
	NextAction   map[string]models.Activity
	LatestStatus map[string]Status
	// Now anchors every day-bucket decision made from this index.
	Now time.Time
}

// Build indexes a full activity snapshot. now fixes "today" and its location
// is used as the local zone for day comparisons. Activities without a
// contact id are kept for fallback matching but not keyed.
func Build(activities []models.Activity, now time.Time) *Index {
	ix := &Index{
		Activities:   activities,
		ByContact:    make(map[string][]models.Activity),
		LastActivity: make(map[string]models.Activity),
		NextAction:   make(map[string]models.Activity),
		LatestStatus: make(map[string]Status),
		Now:          now,
	}

	for _, a := range activities {
		if a.ContactID == "" {
			continue
		}
		ix.ByContact[a.ContactID] = append(ix.ByContact[a.ContactID], a)
	}

	for id, acts := range ix.ByContact {
		if last, ok := pickLast(acts); ok {
			ix.LastActivity[id] = last
		}
		if next, ok := pickNext(acts, now); ok {
			ix.NextAction[id] = next
		}
		if st, ok := pickStatus(acts); ok {
			ix.LatestStatus[id] = st
		}
	}

	return ix
}

// pickLast returns the activity with the greatest activity date. Later input
// wins ties. Activities with no usable date are skipped.
func pickLast(acts []models.Activity) (models.Activity, bool) {
	var best models.Activity
	var bestAt time.Time
	found := false
	for _, a := range acts {
		at, ok := a.ActivityDate()
		if !ok {
			continue
		}
		if !found || !at.Before(bestAt) {
			best, bestAt, found = a, at, true
		}
	}
	return best, found
}

// pickNext applies the follow-up policy: the earliest next action due today or
// later, else the most recent overdue one. Day granularity decides which side
// of today an action falls on; full timestamps order within each side, and
// later input wins exact ties.
func pickNext(acts []models.Activity, now time.Time) (models.Activity, bool) {
	var upcoming, overdue *models.Activity
	for i := range acts {
		a := &acts[i]
		if a.NextActionDate == nil || a.NextActionDate.IsZero() {
			continue
		}
		at := *a.NextActionDate
		if dates.DaysFrom(at, now) >= 0 {
			if upcoming == nil || !at.After(*upcoming.NextActionDate) {
				upcoming = a
			}
			continue
		}
		if overdue == nil || !at.Before(*overdue.NextActionDate) {
			overdue = a
		}
	}
	switch {
	case upcoming != nil:
		return *upcoming, true
	case overdue != nil:
		return *overdue, true
	}
	return models.Activity{}, false
}

func pickStatus(acts []models.Activity) (Status, bool) {
	var best Status
	found := false
	for _, a := range acts {
		status := a.StatusValue()
		if status == "" {
			continue
		}
		at, ok := a.ActivityDate()
		if !ok {
			continue
		}
		if !found || !at.Before(best.ActivityDate) {
			best, found = Status{Status: status, ActivityDate: at}, true
		}
	}
	return best, found
}

// Confidence grades how a contact was associated with its activities.
type Confidence int

const (
	ConfidenceNone Confidence = iota
	ConfidenceFallback
	ConfidenceExact
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceExact:
		return "exact"
	case ConfidenceFallback:
		return "fallback"
	}
	return "none"
}

// Resolve returns the activities associated with a contact. An id match is
// authoritative. Only when there is none are the notes of every activity in
// the snapshot searched for the contact's name or email, case-insensitively.
func (ix *Index) Resolve(c models.Contact) ([]models.Activity, Confidence) {
	if c.ID != "" {
		if acts := ix.ByContact[c.ID]; len(acts) > 0 {
			return acts, ConfidenceExact
		}
	}

	needles := make([]string, 0, 2)
	for _, s := range []string{c.Name, c.Email} {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			needles = append(needles, s)
		}
	}
	if len(needles) == 0 {
		return nil, ConfidenceNone
	}

	var matched []models.Activity
	for _, a := range ix.Activities {
		notes := strings.ToLower(a.Notes)
		if notes == "" {
			continue
		}
		for _, n := range needles {
			if strings.Contains(notes, n) {
				matched = append(matched, a)
				break
			}
		}
	}
	if len(matched) == 0 {
		return nil, ConfidenceNone
	}
	return matched, ConfidenceFallback
}

// HasActivity reports whether any activity, by id or by fallback, belongs to c.
func (ix *Index) HasActivity(c models.Contact) bool {
	_, conf := ix.Resolve(c)
	return conf != ConfidenceNone
}

// DisplayStatus is the latest logged status, else the contact's stage, else "New".
func (ix *Index) DisplayStatus(c models.Contact) string {
	if c.ID != "" {
		if st, ok := ix.LatestStatus[c.ID]; ok {
			return st.Status
		}
	}
	if stage := strings.TrimSpace(c.Stage); stage != "" {
		return stage
	}
	return models.StageNew
}
