// ABOUTME: Tests for predicate composition and sorting
// ABOUTME: Covers every criteria field against a fixed clock
package filter

import (
	"testing"
	"time"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/kpi"
	"github.com/harperreed/leadgen/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 10 Jan 2024.
var now = time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)

func ptr(t time.Time) *time.Time { return &t }

func day(offset int) *time.Time {
	return ptr(time.Date(2024, 1, 10+offset, 12, 0, 0, 0, time.UTC))
}

func fixture() ([]models.Contact, *index.Index) {
	contacts := []models.Contact{
		{ID: "ada", Name: "Ada", Stage: "New", CreatedAt: day(0)},
		{ID: "bob", Name: "bob", Stage: "SQL", CreatedAt: day(-1)},
		{ID: "cy", Name: "Cy", Stage: "New"},
		{ID: "dee", Name: "Dee", Email: "dee@example.com", CreatedAt: day(-30)},
		{ID: "eve", Name: "Eve", Stage: "WON", CreatedAt: day(0)},
	}
	acts := []models.Activity{
		{ID: "1", ProjectID: "p1", ContactID: "ada", Type: models.ChannelCall, CallStatus: "Interested", ChannelDate: day(-1), NextActionDate: day(1)},
		{ID: "2", ProjectID: "p1", ContactID: "bob", Type: models.ChannelCall, CallStatus: "Busy", ChannelDate: day(-3), NextActionDate: day(-2)},
		{ID: "3", ProjectID: "p1", ContactID: "eve", Type: models.ChannelLinkedIn, Connected: true, ChannelDate: day(0), NextActionDate: day(0)},
		{ID: "4", ProjectID: "p1", Type: models.ChannelEmail, Notes: "emailed DEE@example.com the deck", ChannelDate: day(-5)},
	}
	return contacts, index.Build(acts, now)
}

func keys(contacts []models.Contact) []string {
	out := make([]string, len(contacts))
	for i, c := range contacts {
		out[i] = c.Key()
	}
	return out
}

func TestApply(t *testing.T) {
	contacts, ix := fixture()
	en := NewEngine(nil, nil)

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no criteria keeps input order", Criteria{}, []string{"ada", "bob", "cy", "dee", "eve"}},
		{"displayed status from activity", Criteria{Status: "Interested"}, []string{"ada"}},
		{"status match is exact", Criteria{Status: "interested"}, []string{}},
		{"displayed status from stage", Criteria{Status: "WON"}, []string{"eve"}},
		{"status matches nothing", Criteria{Status: "Demo Completed"}, []string{}},
		{"displayed status defaults to New", Criteria{Status: "New"}, []string{"cy", "dee"}},
		{"next action tomorrow", Criteria{NextAction: dates.Window{Bucket: dates.BucketTomorrow}}, []string{"ada"}},
		{"next action this week", Criteria{NextAction: dates.Window{Bucket: dates.BucketThisWeek}}, []string{"ada", "bob", "eve"}},
		{"next action range", Criteria{NextAction: dates.Window{From: day(-2), To: day(0)}}, []string{"bob", "eve"}},
		{"last interaction yesterday", Criteria{LastInteraction: dates.Window{Bucket: dates.BucketYesterday}}, []string{"ada"}},
		{"imported today", Criteria{ImportDate: dates.Window{Bucket: dates.BucketToday}}, []string{"ada", "eve"}},
		{"imported yesterday", Criteria{ImportDate: dates.Window{Bucket: dates.BucketYesterday}}, []string{"bob"}},
		{"no activity excludes fallback matches", Criteria{NoActivity: true}, []string{"cy"}},
		{"kpi membership", Criteria{KPI: &kpi.Request{Channel: models.ChannelLinkedIn, Metric: "connectionsAccepted"}}, []string{"eve"}},
		{"and composition", Criteria{Status: "New", NoActivity: true}, []string{"cy"}},
		{"search alone does not refilter", Criteria{Search: "zzz"}, []string{"ada", "bob", "cy", "dee", "eve"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errs := en.Apply(contacts, tt.criteria, ix, "p1")
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, keys(got))
		})
	}
}

func TestApplyUnknownMetricMatchesNothing(t *testing.T) {
	contacts, ix := fixture()
	got, errs := NewEngine(nil, nil).Apply(contacts, Criteria{KPI: &kpi.Request{Channel: models.ChannelCall, Metric: "vibes"}}, ix, "p1")
	assert.Empty(t, got)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], kpi.ErrUnknownMetric)
}

func TestApplyRejectsUnsupportedBucket(t *testing.T) {
	contacts, ix := fixture()
	_, errs := NewEngine(nil, nil).Apply(contacts, Criteria{ImportDate: dates.Window{Bucket: dates.BucketThisMonth}}, ix, "p1")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], dates.ErrInvalidBucket)
}

func TestPanickingPredicateExcludesOneContact(t *testing.T) {
	contacts, _ := fixture()
	preds := []Predicate{{Name: "explosive", Test: func(c models.Contact) (bool, error) {
		if c.ID == "bob" {
			var m map[string]int
			m["boom"]++
		}
		return true, nil
	}}}

	var kept []string
	var failures int
	for _, c := range contacts {
		ok, err := matches(c, preds)
		if err != nil {
			failures++
			assert.Contains(t, err.Error(), "explosive")
			continue
		}
		if ok {
			kept = append(kept, c.ID)
		}
	}
	assert.Equal(t, 1, failures)
	assert.Equal(t, []string{"ada", "cy", "dee", "eve"}, kept)
}

func TestSortIsStable(t *testing.T) {
	contacts := []models.Contact{
		{ID: "1", Name: "beth"},
		{ID: "2", Name: "Al"},
		{ID: "3", Name: "Beth"},
		{ID: "4", Name: "cat"},
	}

	asc := append([]models.Contact(nil), contacts...)
	SortContacts(asc, SortNameAsc)
	assert.Equal(t, []string{"2", "1", "3", "4"}, keys(asc))

	desc := append([]models.Contact(nil), contacts...)
	SortContacts(desc, SortNameDesc)
	assert.Equal(t, []string{"4", "1", "3", "2"}, keys(desc))
}

func TestActiveAndSignature(t *testing.T) {
	assert.False(t, Criteria{}.Active())
	assert.False(t, Criteria{Sort: SortNameAsc}.Active())
	assert.True(t, Criteria{Sort: SortNameAsc}.Ordered())
	assert.False(t, Criteria{}.Ordered())
	assert.True(t, Criteria{Search: "ada"}.Active())
	assert.True(t, Criteria{NoActivity: true}.Active())
	assert.True(t, Criteria{KPI: &kpi.Request{Channel: models.ChannelCall, Metric: "won"}}.Active())

	a := Criteria{Search: "ada", NextAction: dates.Window{Bucket: dates.BucketToday}}
	b := Criteria{Search: "ada", NextAction: dates.Window{Bucket: dates.BucketToday}}
	assert.Equal(t, a.Signature(), b.Signature())

	b.Search = "bob"
	assert.NotEqual(t, a.Signature(), b.Signature())
}

func TestParseSort(t *testing.T) {
	s, err := ParseSort("desc")
	require.NoError(t, err)
	assert.Equal(t, SortNameDesc, s)

	_, err = ParseSort("age")
	assert.Error(t, err)
}

func TestFallbackMatchesStayOutOfDateColumns(t *testing.T) {
	ix := index.Build([]models.Activity{
		{ID: "1", ProjectID: "p1", Type: models.ChannelCall, Notes: "call Grace back", ChannelDate: day(0), NextActionDate: day(0)},
	}, now)
	grace := models.Contact{ID: "grace", Name: "Grace"}

	got, errs := NewEngine(nil, nil).Apply([]models.Contact{grace}, Criteria{NextAction: dates.Window{Bucket: dates.BucketToday}}, ix, "p1")
	assert.Empty(t, errs)
	assert.Empty(t, got)

	v := ix.View(grace)
	assert.Equal(t, "fallback", v.Confidence)
	assert.Nil(t, v.NextAction)
	assert.Nil(t, v.LastActivity)
}
