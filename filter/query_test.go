package filter

import (
	"testing"
	"time"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/kpi"
	"github.com/harperreed/leadgen/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCriteria(t *testing.T) {
	c, err := Query{
		Status:     " Interested ",
		NextAction: "thisWeek",
		LastFrom:   "2024-01-01",
		ImportedTo: "2024-01-31",
		KPI:        "Call:interested",
		Search:     "acme",
		Sort:       "desc",
		NoActivity: true,
	}.Criteria(time.UTC)
	require.NoError(t, err)

	assert.Equal(t, "Interested", c.Status)
	assert.Equal(t, dates.BucketThisWeek, c.NextAction.Bucket)
	require.NotNil(t, c.LastInteraction.From)
	assert.Nil(t, c.LastInteraction.To)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *c.LastInteraction.From)
	require.NotNil(t, c.ImportDate.To)
	assert.Equal(t, &kpi.Request{Channel: models.ChannelCall, Metric: "interested"}, c.KPI)
	assert.Equal(t, SortNameDesc, c.Sort)
	assert.True(t, c.NoActivity)
	assert.True(t, c.Active())
}

func TestQueryCriteriaErrors(t *testing.T) {
	tests := []struct {
		name  string
		query Query
	}{
		{"unknown bucket", Query{NextAction: "someday"}},
		{"bucket and range", Query{LastInteraction: "today", LastFrom: "2024-01-01"}},
		{"bad day", Query{ImportedFrom: "01/02/2024"}},
		{"kpi without metric", Query{KPI: "call"}},
		{"bad sort", Query{Sort: "company"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.query.Criteria(time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestEmptyQueryIsInactive(t *testing.T) {
	c, err := Query{}.Criteria(time.UTC)
	require.NoError(t, err)
	assert.False(t, c.Active())
	assert.Nil(t, c.KPI)
}
