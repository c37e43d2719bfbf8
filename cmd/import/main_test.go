// ABOUTME: Tests for the JSON import tool
// ABOUTME: Checks rejection counts, contact reuse and dry runs
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/leadgen/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const contactsJSON = `{"data": [
	{"_id": "c1", "name": "Ada", "email": "ADA@example.com", "company": "Analytical"},
	{"_id": "c2", "name": "Bob", "linkedinUrl": "https://linkedin.com/in/bob"},
	{"_id": "c3"}
]}`

const activitiesJSON = `[
	{"_id": "a1", "contactId": "c1", "type": "call", "callDate": "2024-03-01", "callStatus": "Interested"},
	{"_id": "a2", "contactId": "c2", "type": "email", "emailDate": "2024-03-02", "nextActionDate": "2024-03-09"},
	{"_id": "a3", "contactId": "c9", "type": "email"},
	{"_id": "a4", "contactId": "c1", "type": "fax"}
]`

func TestImport(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		dbPath:         filepath.Join(dir, "leadgen.db"),
		project:        "Imported",
		contactsPath:   writeFile(t, dir, "contacts.json", contactsJSON),
		activitiesPath: writeFile(t, dir, "activities.json", activitiesJSON),
		timezone:       "UTC",
		backup:         true,
	}

	s, err := run(opts)
	require.NoError(t, err)
	assert.Equal(t, summary{Contacts: 2, Activities: 2, Rejected: 3}, s)

	database, err := db.OpenDatabase(opts.dbPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()

	p, err := db.GetProject(database, "Imported")
	require.NoError(t, err)
	require.NotNil(t, p)

	ada, err := db.FindContactByEmail(database, "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, ada)
	assert.NotEqual(t, "c1", ada.ID, "contacts get fresh ids")

	var linked int
	require.NoError(t, database.QueryRow(
		`SELECT COUNT(*) FROM activities WHERE contact_id = ? AND project_id = ?`, ada.ID, p.ID).Scan(&linked))
	assert.Equal(t, 1, linked)

	// A second run reuses contacts by email and backs up the existing file.
	opts.activitiesPath = ""
	s, err = run(opts)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Reused)
	assert.Equal(t, 1, s.Contacts, "Bob has no email and is created again")

	backups, err := filepath.Glob(opts.dbPath + ".backup.*")
	require.NoError(t, err)
	assert.NotEmpty(t, backups)
}

func TestImportDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	opts := options{
		dbPath:         filepath.Join(dir, "leadgen.db"),
		project:        "Trial",
		contactsPath:   writeFile(t, dir, "contacts.json", contactsJSON),
		activitiesPath: writeFile(t, dir, "activities.json", activitiesJSON),
		timezone:       "UTC",
		dryRun:         true,
	}

	s, err := run(opts)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Contacts)
	assert.Equal(t, 2, s.Activities)

	database, err := db.OpenDatabase(opts.dbPath)
	require.NoError(t, err)
	defer func() { _ = database.Close() }()
	p, err := db.GetProject(database, "Trial")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestImportRejectsBadTimezone(t *testing.T) {
	_, err := run(options{dbPath: filepath.Join(t.TempDir(), "x.db"), project: "p", timezone: "Mars/Base"})
	assert.ErrorContains(t, err, "timezone")
}
