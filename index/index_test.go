// ABOUTME: Tests for the per-contact activity index
// ABOUTME: Covers next-action selection, fallback matching and idempotence
package index

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/leadgen/models"
	"github.com/harperreed/leadgen/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// Wednesday 10 Jan 2024.
var now = time.Date(2024, 1, 10, 10, 0, 0, 0, ist)

func at(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 12, 0, 0, 0, ist)
	return &t
}

func call(id, contact, status string, date *time.Time) models.Activity {
	return models.Activity{ID: id, ProjectID: "p1", ContactID: contact, Type: models.ChannelCall, CallStatus: status, ChannelDate: date}
}

func followUp(id, contact string, due *time.Time) models.Activity {
	return models.Activity{
		ID: id, ProjectID: "p1", ContactID: contact, Type: models.ChannelEmail,
		CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, ist), NextAction: "follow up " + id, NextActionDate: due,
	}
}

func TestLatestStatusFromRawRecords(t *testing.T) {
	n := normalize.New(ist)
	acts, errs := n.Activities([]normalize.Record{
		{"id": "1", "contactId": "A", "type": "call", "callStatus": "Ring", "callDate": "2024-01-01"},
		{"id": "2", "contactId": "A", "type": "call", "callStatus": "Interested", "callDate": "2024-01-05"},
	})
	require.Empty(t, errs)

	ix := Build(acts, now)
	st, ok := ix.LatestStatus["A"]
	require.True(t, ok)
	assert.Equal(t, "Interested", st.Status)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, ist), st.ActivityDate)
}

func TestLatestStatusIgnoresArrivalOrder(t *testing.T) {
	ix := Build([]models.Activity{
		call("2", "A", "Interested", at(2024, 1, 5)),
		call("1", "A", "Ring", at(2024, 1, 1)),
	}, now)
	assert.Equal(t, "Interested", ix.LatestStatus["A"].Status)
}

func TestLatestStatusSkipsBlankStatus(t *testing.T) {
	ix := Build([]models.Activity{
		call("1", "A", "Busy", at(2024, 1, 1)),
		call("2", "A", "   ", at(2024, 1, 5)),
		{ID: "3", ContactID: "A", Type: models.ChannelLinkedIn, CallStatus: "Interested", ChannelDate: at(2024, 1, 6)},
	}, now)
	assert.Equal(t, "Busy", ix.LatestStatus["A"].Status, "linkedin rows read status, not callStatus")
}

func TestNextActionYesterdayVersusTomorrow(t *testing.T) {
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		pair := []models.Activity{
			followUp("yesterday", "B", at(2024, 1, 9)),
			followUp("tomorrow", "B", at(2024, 1, 11)),
		}
		ix := Build([]models.Activity{pair[order[0]], pair[order[1]]}, now)
		assert.Equal(t, "tomorrow", ix.NextAction["B"].ID)
	}
}

func TestNextActionPolicy(t *testing.T) {
	tests := []struct {
		name string
		acts []models.Activity
		want string
	}{
		{
			name: "one future beats many overdue",
			acts: []models.Activity{
				followUp("o1", "C", at(2023, 12, 1)),
				followUp("f1", "C", at(2024, 3, 1)),
				followUp("o2", "C", at(2024, 1, 9)),
				followUp("o3", "C", at(2024, 1, 8)),
			},
			want: "f1",
		},
		{
			name: "earliest future wins",
			acts: []models.Activity{
				followUp("f2", "C", at(2024, 2, 1)),
				followUp("f1", "C", at(2024, 1, 12)),
			},
			want: "f1",
		},
		{
			name: "today counts as upcoming",
			acts: []models.Activity{
				followUp("o1", "C", at(2024, 1, 9)),
				followUp("today", "C", func() *time.Time { t := time.Date(2024, 1, 10, 0, 0, 0, 0, ist); return &t }()),
			},
			want: "today",
		},
		{
			name: "least overdue wins",
			acts: []models.Activity{
				followUp("o2", "C", at(2024, 1, 9)),
				followUp("o1", "C", at(2023, 11, 1)),
			},
			want: "o2",
		},
		{
			name: "equal dates later input wins",
			acts: []models.Activity{
				followUp("first", "C", at(2024, 1, 12)),
				followUp("second", "C", at(2024, 1, 12)),
			},
			want: "second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := Build(tt.acts, now)
			assert.Equal(t, tt.want, ix.NextAction["C"].ID)
		})
	}
}

func TestNextActionAbsent(t *testing.T) {
	ix := Build([]models.Activity{call("1", "D", "Ring", at(2024, 1, 1))}, now)
	_, ok := ix.NextAction["D"]
	assert.False(t, ok)
}

func TestLastActivity(t *testing.T) {
	ix := Build([]models.Activity{
		call("1", "E", "Ring", at(2024, 1, 3)),
		call("2", "E", "Ring", at(2024, 1, 7)),
		call("3", "E", "Ring", at(2024, 1, 7)),
		call("4", "E", "Ring", at(2024, 1, 2)),
		{ID: "5", ContactID: "E", Type: models.ChannelCall},
	}, now)
	assert.Equal(t, "3", ix.LastActivity["E"].ID, "ties go to the later input")
	assert.Len(t, ix.ByContact["E"], 5, "undated activities stay in the by-contact list")
}

func TestActivityDateTotality(t *testing.T) {
	created := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	channel := time.Date(2024, 1, 1, 0, 0, 0, 0, ist)
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, ist)

	got, ok := models.Activity{CreatedAt: created, ChannelDate: &channel}.ActivityDate()
	require.True(t, ok)
	assert.Equal(t, channel, got)

	got, ok = models.Activity{CreatedAt: created}.ActivityDate()
	require.True(t, ok)
	assert.Equal(t, created, got)

	got, ok = models.Activity{CreatedAt: created, ChannelDate: &future}.ActivityDate()
	require.True(t, ok)
	assert.Equal(t, future, got, "future channel dates are not clamped")

	_, ok = models.Activity{}.ActivityDate()
	assert.False(t, ok)
}

func TestBuildIsIdempotent(t *testing.T) {
	acts := []models.Activity{
		call("1", "A", "Ring", at(2024, 1, 1)),
		call("2", "A", "Interested", at(2024, 1, 5)),
		followUp("3", "B", at(2024, 1, 9)),
		followUp("4", "B", at(2024, 1, 11)),
		{ID: "5", Type: models.ChannelEmail, Notes: "spoke to ada@example.com"},
	}

	first := Build(acts, now)
	second := Build(acts, now)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("rebuilding changed the index (-first +second):\n%s", diff)
	}
}

func TestResolve(t *testing.T) {
	ix := Build([]models.Activity{
		call("1", "A", "Ring", at(2024, 1, 1)),
		{ID: "2", Type: models.ChannelEmail, Notes: "Intro call with ADA LOVELACE", ChannelDate: at(2024, 1, 4)},
		{ID: "3", Type: models.ChannelEmail, Notes: "sent deck to grace@navy.mil"},
	}, now)

	acts, conf := ix.Resolve(models.Contact{ID: "A", Name: "Ada Lovelace"})
	assert.Equal(t, ConfidenceExact, conf)
	require.Len(t, acts, 1)
	assert.Equal(t, "1", acts[0].ID, "an id match suppresses fallback")

	acts, conf = ix.Resolve(models.Contact{ID: "Z", Name: "Ada Lovelace"})
	assert.Equal(t, ConfidenceFallback, conf)
	require.Len(t, acts, 1)
	assert.Equal(t, "2", acts[0].ID)

	_, conf = ix.Resolve(models.Contact{Name: "Hopper", Email: "GRACE@navy.mil"})
	assert.Equal(t, ConfidenceFallback, conf)

	_, conf = ix.Resolve(models.Contact{ID: "Q", Name: "Nobody"})
	assert.Equal(t, ConfidenceNone, conf)
	assert.False(t, ix.HasActivity(models.Contact{ID: "Q", Name: "Nobody"}))
}

func TestDisplayStatus(t *testing.T) {
	ix := Build([]models.Activity{call("1", "A", "Interested", at(2024, 1, 1))}, now)

	assert.Equal(t, "Interested", ix.DisplayStatus(models.Contact{ID: "A", Stage: "SQL"}))
	assert.Equal(t, "SQL", ix.DisplayStatus(models.Contact{ID: "B", Stage: "SQL"}))
	assert.Equal(t, "New", ix.DisplayStatus(models.Contact{ID: "B"}))
}

func TestView(t *testing.T) {
	ix := Build([]models.Activity{
		followUp("1", "A", at(2024, 1, 11)),
		{ID: "2", Type: models.ChannelCall, Notes: "cold call to Grace", ChannelDate: at(2024, 1, 3), NextActionDate: at(2024, 1, 8)},
	}, now)

	v := ix.View(models.Contact{ID: "A", Name: "Ada"})
	assert.Equal(t, "exact", v.Confidence)
	require.NotNil(t, v.NextAction)
	assert.Equal(t, "1", v.NextAction.ID)
	require.NotNil(t, v.LastActivity)

	v = ix.View(models.Contact{ID: "G", Name: "grace"})
	assert.Equal(t, "fallback", v.Confidence)
	assert.Equal(t, 1, v.Activities)
	assert.Nil(t, v.NextAction, "fallback matches never fill the next column")
	_, ok := v.LastActivityDate()
	assert.False(t, ok)
	assert.Equal(t, "New", v.Status)

	v = ix.View(models.Contact{ID: "X", Name: "nobody"})
	assert.Equal(t, "none", v.Confidence)
	assert.Nil(t, v.LastActivity)
	assert.Equal(t, 0, v.Activities)
}
