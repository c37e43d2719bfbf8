// ABOUTME: Tests for record merging, tombstones and the snapshot cache
// ABOUTME: Uses an in-memory badger store per test
package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/harperreed/leadgen/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergePrefersImportedRegardlessOfOrder(t *testing.T) {
	placeholder := models.Contact{ID: "x", Name: "X from activity"}
	imported := models.Contact{ID: "x", Name: "X imported", ProjectContactID: "pc-1"}

	assert.Equal(t, []models.Contact{imported}, Merge([]models.Contact{placeholder}, []models.Contact{imported}))
	assert.Equal(t, []models.Contact{imported}, Merge([]models.Contact{imported}, []models.Contact{placeholder}))
}

func TestMergeKeepsFirstAndOrder(t *testing.T) {
	a1 := models.Contact{ID: "a", Name: "first a"}
	a2 := models.Contact{ID: "a", Name: "second a"}
	b := models.Contact{ID: "b", Name: "b"}
	suggestion := models.Contact{Name: "Unsaved"}
	blank := models.Contact{}

	got := Merge([]models.Contact{b, a1}, []models.Contact{a2, suggestion, blank, suggestion})
	assert.Equal(t, []models.Contact{b, a1, suggestion}, got)
}

func TestMergeImportedReplacementKeepsPosition(t *testing.T) {
	got := Merge(
		[]models.Contact{{ID: "a"}, {ID: "b"}, {ID: "c"}},
		[]models.Contact{{ID: "b", ProjectContactID: "pc"}},
	)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[1].ID)
	assert.True(t, got[1].Imported())
}

func TestTombstonesFilter(t *testing.T) {
	ts := NewTombstones()
	contacts := []models.Contact{{ID: "a"}, {ID: "b"}, {Name: "suggested"}}

	out, dropped := ts.Filter(contacts)
	assert.Len(t, out, 3)
	assert.Equal(t, 0, dropped)

	ts.Add("b")
	ts.Add("suggested")
	ts.Add("")
	assert.Equal(t, 2, ts.Len())

	out, dropped = ts.Filter(contacts)
	assert.Equal(t, []models.Contact{{ID: "a"}}, out)
	assert.Equal(t, 2, dropped)
	assert.Len(t, contacts, 3, "input untouched")

	ts.Remove("b")
	assert.False(t, ts.Has("b"))
}

func TestTombstonesConcurrentUse(t *testing.T) {
	ts := NewTombstones()
	contacts := []models.Contact{{ID: "0"}, {ID: "1"}, {ID: "2"}}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			ts.Add("1")
		}()
		go func() {
			defer wg.Done()
			_, _ = ts.Filter(contacts)
		}()
	}
	wg.Wait()

	out, _ := ts.Filter(contacts)
	assert.Len(t, out, 2)
}

func newSnapshotCache(t *testing.T, ttl time.Duration) *SnapshotCache {
	t.Helper()
	c, err := NewSnapshotCache(ttl)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	c := newSnapshotCache(t, 0)

	_, err := c.Get("p1")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	fetched := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	snap := models.Snapshot{
		Project:    models.Project{ID: "p1", Name: "Q1 outbound"},
		Contacts:   []models.Contact{{ID: "a", Name: "Ada"}},
		Activities: []models.Activity{{ID: "1", ProjectID: "p1", ContactID: "a", Type: models.ChannelCall}},
		FetchedAt:  fetched,
	}
	require.NoError(t, c.Put("p1", snap))

	got, err := c.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "Q1 outbound", got.Project.Name)
	require.Len(t, got.Contacts, 1)
	assert.True(t, got.FetchedAt.Equal(fetched))

	got.Contacts[0].Name = "mutated"
	again, err := c.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", again.Contacts[0].Name, "callers never alias cached state")

	ids, err := c.Projects()
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)

	require.NoError(t, c.Invalidate("p1"))
	_, err = c.Get("p1")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshotCacheReplaces(t *testing.T) {
	c := newSnapshotCache(t, time.Hour)

	require.NoError(t, c.Put("p1", models.Snapshot{Project: models.Project{Name: "old"}}))
	require.NoError(t, c.Put("p1", models.Snapshot{Project: models.Project{Name: "new"}}))
	require.NoError(t, c.Put("p2", models.Snapshot{Project: models.Project{Name: "other"}}))

	got, err := c.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Project.Name)

	ids, err := c.Projects()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
}
