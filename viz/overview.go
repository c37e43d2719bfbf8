// ABOUTME: Terminal overview statistics and rendering for one outreach project
// ABOUTME: Provides an ASCII status breakdown plus contacts needing attention
package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/models"
)

// StaleAfterDays is how long a contact may go without activity before it
// needs attention.
const StaleAfterDays = 30

type OverviewStats struct {
	Project string

	// Status breakdown of the listing
	ByStatus map[string]int

	// Overall stats
	TotalContacts       int
	ActivitiesByType    map[models.Channel]int
	RecentActivities    int // last 7 days, today included
	NeverContacted      int
	ActivitiesWithNotes int

	// Needs attention
	DueToday []StaleContact
	Overdue  []StaleContact
	Stale    []StaleContact
}

type StaleContact struct {
	Name string
	// Days is days since the last activity, or days past the due date for
	// overdue follow-ups.
	Days int
}

// GenerateOverview summarizes views and the project's activities as of now.
// now's location decides day boundaries.
func GenerateOverview(project string, views []index.View, activities []models.Activity, now time.Time) *OverviewStats {
	stats := &OverviewStats{
		Project:          project,
		ByStatus:         make(map[string]int),
		ActivitiesByType: make(map[models.Channel]int),
		TotalContacts:    len(views),
	}

	for _, a := range activities {
		stats.ActivitiesByType[a.Type]++
		if d, ok := a.ActivityDate(); ok {
			if diff := dates.DaysFrom(d, now); diff <= 0 && diff > -7 {
				stats.RecentActivities++
			}
		}
		if strings.TrimSpace(a.Notes) != "" {
			stats.ActivitiesWithNotes++
		}
	}

	for _, v := range views {
		stats.ByStatus[v.Status]++

		if v.NextAction != nil && v.NextAction.NextActionDate != nil {
			switch diff := dates.DaysFrom(*v.NextAction.NextActionDate, now); {
			case diff == 0:
				stats.DueToday = append(stats.DueToday, StaleContact{Name: v.Contact.Name})
			case diff < 0:
				stats.Overdue = append(stats.Overdue, StaleContact{Name: v.Contact.Name, Days: -diff})
			}
		}

		last, ok := v.LastActivityDate()
		if !ok {
			if v.Activities == 0 {
				stats.NeverContacted++
			}
			continue
		}
		if days := -dates.DaysFrom(last, now); days > StaleAfterDays {
			stats.Stale = append(stats.Stale, StaleContact{Name: v.Contact.Name, Days: days})
		}
	}

	sort.Slice(stats.Stale, func(i, j int) bool { return stats.Stale[i].Days > stats.Stale[j].Days })
	sort.Slice(stats.Overdue, func(i, j int) bool { return stats.Overdue[i].Days > stats.Overdue[j].Days })
	return stats
}

func RenderOverview(stats *OverviewStats) string {
	var out strings.Builder

	// Header
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString(fmt.Sprintf("  %s\n", strings.ToUpper(stats.Project)))
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	out.WriteString("STATUS OVERVIEW\n")
	renderStatuses(&out, stats.ByStatus)
	out.WriteString("\n")

	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts  📞 %d calls  ✉️  %d emails  🔗 %d linkedin\n",
		stats.TotalContacts,
		stats.ActivitiesByType[models.ChannelCall],
		stats.ActivitiesByType[models.ChannelEmail],
		stats.ActivitiesByType[models.ChannelLinkedIn]))
	out.WriteString(fmt.Sprintf("  %d activities in the last 7 days, %d with notes\n\n",
		stats.RecentActivities, stats.ActivitiesWithNotes))

	if len(stats.DueToday) > 0 || len(stats.Overdue) > 0 || len(stats.Stale) > 0 || stats.NeverContacted > 0 {
		out.WriteString("NEEDS ATTENTION\n")

		if len(stats.DueToday) > 0 {
			out.WriteString(fmt.Sprintf("  📌 %d follow-ups due today: %s\n", len(stats.DueToday), names(stats.DueToday, 5)))
		}
		if len(stats.Overdue) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d follow-ups overdue: %s\n", len(stats.Overdue), names(stats.Overdue, 5)))
		}
		if len(stats.Stale) > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - no activity in %d+ days\n", len(stats.Stale), StaleAfterDays))
		}
		if stats.NeverContacted > 0 {
			out.WriteString(fmt.Sprintf("  ⚠️  %d contacts - never contacted\n", stats.NeverContacted))
		}
	}

	return out.String()
}

func renderStatuses(out *strings.Builder, byStatus map[string]int) {
	statuses := make([]string, 0, len(byStatus))
	maxCount := 1
	for s, n := range byStatus {
		statuses = append(statuses, s)
		maxCount = max(maxCount, n)
	}
	sort.Slice(statuses, func(i, j int) bool {
		if byStatus[statuses[i]] != byStatus[statuses[j]] {
			return byStatus[statuses[i]] > byStatus[statuses[j]]
		}
		return statuses[i] < statuses[j]
	})

	for _, s := range statuses {
		// Bar length 0-10 blocks
		barLength := (byStatus[s] * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-26s %s  %2d\n", s, bar, byStatus[s]))
	}
}

func names(contacts []StaleContact, limit int) string {
	list := make([]string, 0, min(len(contacts), limit))
	for _, c := range contacts[:min(len(contacts), limit)] {
		list = append(list, c.Name)
	}
	s := strings.Join(list, ", ")
	if len(contacts) > limit {
		s += fmt.Sprintf(" (+%d more)", len(contacts)-limit)
	}
	return s
}
