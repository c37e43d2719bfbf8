// ABOUTME: Tests for config loading precedence and validation
// ABOUTME: Covers file, environment and save round trips
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, 10000, cfg.ClientFetchLimit)
	assert.Equal(t, 4, cfg.BulkConcurrency)
	assert.Equal(t, DefaultDBPath(), cfg.DBPath)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db_path: /tmp/sales.db
page_size: 25
snapshot_ttl: 10m
timezone: Asia/Kolkata
default_project: q1
`), 0o600))

	t.Setenv("LEADGEN_PAGE_SIZE", "40")
	t.Setenv("LEADGEN_PROJECT", "q2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/sales.db", cfg.DBPath)
	assert.Equal(t, 40, cfg.PageSize)
	assert.Equal(t, 10*time.Minute, cfg.SnapshotTTL)
	assert.Equal(t, "q2", cfg.DefaultProject)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Kolkata", loc.String())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("LEADGEN_PAGE_SIZE", "lots")
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "LEADGEN_PAGE_SIZE")

	t.Setenv("LEADGEN_PAGE_SIZE", "0")
	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "page_size")

	t.Setenv("LEADGEN_PAGE_SIZE", "")
	t.Setenv("LEADGEN_TIMEZONE", "Mars/Olympus")
	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "timezone")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.DefaultProject = "outbound"
	cfg.SnapshotTTL = time.Hour
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "outbound", loaded.DefaultProject)
	assert.Equal(t, time.Hour, loaded.SnapshotTTL)
}
