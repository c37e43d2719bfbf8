// ABOUTME: Tests for the bubbletea dashboard model
// ABOUTME: Drives key messages against a seeded SQLite backend
package tui

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/leadgen/dashboard"
	"github.com/harperreed/leadgen/db"
	"github.com/harperreed/leadgen/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)

func setupModel(t *testing.T) (Model, []*models.Contact) {
	t.Helper()
	database, err := db.OpenDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	p := &models.Project{Name: "summer"}
	require.NoError(t, db.CreateProject(database, p))

	var contacts []*models.Contact
	for i := range 3 {
		c := &models.Contact{Name: fmt.Sprintf("Lead %d", i)}
		require.NoError(t, db.CreateContact(database, c))
		_, err := db.AddContactToProject(database, p.ID, c.ID)
		require.NoError(t, err)
		contacts = append(contacts, c)
	}
	due := testNow.Add(2 * time.Hour)
	require.NoError(t, db.LogActivity(database, &models.Activity{
		ProjectID: p.ID, ContactID: contacts[1].ID, Type: models.ChannelEmail,
		Status: "CIP", NextAction: "Reply", NextActionDate: &due,
	}))

	d := dashboard.New(db.NewBackend(database), dashboard.Options{
		Location: time.UTC,
		PageSize: 2,
		Now:      func() time.Time { return testNow },
	})
	t.Cleanup(func() { d.Close() })
	return NewModel(d, p.ID), contacts
}

// drive applies msg and then every message its commands produce.
func drive(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	for msg != nil {
		next, cmd := m.Update(msg)
		m = next.(Model)
		if cmd == nil {
			break
		}
		msg = cmd()
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitLoadsFirstPage(t *testing.T) {
	m, _ := setupModel(t)
	m = drive(t, m, m.Init()())

	require.True(t, m.loaded)
	require.NoError(t, m.err)
	assert.Len(t, m.listing.Rows, 2)
	assert.Contains(t, m.View(), "showing 1–2 of 3")
	assert.Contains(t, m.View(), "summer")
}

func TestPaging(t *testing.T) {
	m, _ := setupModel(t)
	m = drive(t, m, m.Init()())

	m = drive(t, m, key("n"))
	assert.Equal(t, 2, m.page)
	assert.Contains(t, m.View(), "showing 3–3 of 3")

	_, cmd := m.Update(key("n"))
	assert.Nil(t, cmd, "no page after the last")

	m = drive(t, m, key("p"))
	assert.Equal(t, 1, m.page)
}

func TestPresetFiltersAndResetsPage(t *testing.T) {
	m, _ := setupModel(t)
	m = drive(t, m, m.Init()())
	m = drive(t, m, key("n"))

	m = drive(t, m, key("tab"))
	assert.Equal(t, "Due today", presets[m.preset].name)
	assert.Equal(t, 1, m.page)
	require.Len(t, m.listing.Rows, 1)
	assert.Equal(t, "Lead 1", m.listing.Rows[0].Contact.Name)
	assert.Equal(t, "client", m.listing.Mode)
}

func TestSearch(t *testing.T) {
	m, _ := setupModel(t)
	m = drive(t, m, m.Init()())

	next, _ := m.Update(key("/"))
	m = next.(Model)
	assert.Equal(t, ViewSearch, m.viewMode)
	m.searchInput.SetValue("lead 2")
	m = drive(t, m, key("enter"))

	assert.Equal(t, ViewList, m.viewMode)
	require.Len(t, m.listing.Rows, 1)
	assert.Equal(t, "Lead 2", m.listing.Rows[0].Contact.Name)
}

func TestDetailAndDelete(t *testing.T) {
	m, contacts := setupModel(t)
	m = drive(t, m, m.Init()())

	m = drive(t, m, key("j"))
	m = drive(t, m, key("enter"))
	require.Equal(t, ViewDetail, m.viewMode)
	assert.Contains(t, m.View(), "LEAD 1")
	assert.Contains(t, m.View(), "CIP")

	m = drive(t, m, key("d"))
	require.Equal(t, ViewConfirmDelete, m.viewMode)
	m = drive(t, m, key("y"))

	assert.Equal(t, ViewList, m.viewMode)
	assert.Equal(t, "Deleted Lead 1", m.status)
	assert.True(t, m.dash.Tombstones().Has(contacts[1].ID))
	for _, v := range m.listing.Rows {
		assert.NotEqual(t, contacts[1].ID, v.Contact.ID)
	}
}
