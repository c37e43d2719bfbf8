package viz

import (
	"testing"
	"time"

	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/models"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
	return &t
}

func TestGenerateOverview(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	recent := models.Activity{Type: models.ChannelCall, ChannelDate: day(2024, 5, 14), Notes: "left voicemail"}
	old := models.Activity{Type: models.ChannelEmail, ChannelDate: day(2024, 3, 1)}
	dueToday := models.Activity{Type: models.ChannelCall, NextActionDate: day(2024, 5, 15)}
	overdue := models.Activity{Type: models.ChannelLinkedIn, NextActionDate: day(2024, 5, 10)}

	views := []index.View{
		{Contact: models.Contact{Name: "Ada"}, Status: "Interested", LastActivity: &recent, NextAction: &dueToday},
		{Contact: models.Contact{Name: "Bob"}, Status: "No Reply", LastActivity: &old, NextAction: &overdue},
		{Contact: models.Contact{Name: "Cy"}, Status: "New"},
		{Contact: models.Contact{Name: "Di"}, Status: "Interested"},
	}

	stats := GenerateOverview("Spring", views, []models.Activity{recent, old}, now)

	assert.Equal(t, 4, stats.TotalContacts)
	assert.Equal(t, map[string]int{"Interested": 2, "No Reply": 1, "New": 1}, stats.ByStatus)
	assert.Equal(t, 1, stats.ActivitiesByType[models.ChannelCall])
	assert.Equal(t, 1, stats.RecentActivities)
	assert.Equal(t, 1, stats.ActivitiesWithNotes)
	assert.Equal(t, 2, stats.NeverContacted)
	assert.Equal(t, []StaleContact{{Name: "Ada"}}, stats.DueToday)
	assert.Equal(t, []StaleContact{{Name: "Bob", Days: 5}}, stats.Overdue)
	assert.Equal(t, []StaleContact{{Name: "Bob", Days: 75}}, stats.Stale)
}

func TestRenderOverview(t *testing.T) {
	stats := &OverviewStats{
		Project:          "Spring",
		ByStatus:         map[string]int{"Interested": 2, "New": 1},
		TotalContacts:    3,
		ActivitiesByType: map[models.Channel]int{models.ChannelCall: 4},
		DueToday:         []StaleContact{{Name: "Ada"}},
	}

	out := RenderOverview(stats)
	assert.Contains(t, out, "SPRING")
	assert.Contains(t, out, "██████████   2")
	assert.Contains(t, out, "█████░░░░░   1")
	assert.Contains(t, out, "📞 4 calls")
	assert.Contains(t, out, "1 follow-ups due today: Ada")
	assert.NotContains(t, out, "overdue")
}

func TestNamesTruncates(t *testing.T) {
	list := []StaleContact{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	assert.Equal(t, "a, b (+1 more)", names(list, 2))
	assert.Equal(t, "a, b, c", names(list, 5))
}

func TestFallbackMatchedContactsAreNotNeverContacted(t *testing.T) {
	now := time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
	views := []index.View{
		{Contact: models.Contact{Name: "Eve"}, Status: "New", Activities: 1, Confidence: "fallback"},
		{Contact: models.Contact{Name: "Fay"}, Status: "New"},
	}
	stats := GenerateOverview("Spring", views, nil, now)
	assert.Equal(t, 1, stats.NeverContacted)
}
