// ABOUTME: Per-project snapshot cache for instant re-entry into a project view
// ABOUTME: Backed by an in-memory BadgerDB; values are copied in and out as JSON
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/leadgen/models"
)

// ErrNoSnapshot is returned by Get when a project has no live snapshot.
var ErrNoSnapshot = errors.New("no cached snapshot")

const snapshotPrefix = "snapshot/"

// SnapshotCache holds the last full listing of each project for the life of
// the process. Nothing is written to disk.
type SnapshotCache struct {
	db  *badger.DB
	ttl time.Duration
}

// NewSnapshotCache opens the cache. A zero ttl keeps snapshots until they
// are replaced or invalidated.
func NewSnapshotCache(ttl time.Duration) (*SnapshotCache, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot cache: %w", err)
	}
	return &SnapshotCache{db: db, ttl: ttl}, nil
}

func snapshotKey(projectID string) []byte {
	return []byte(snapshotPrefix + projectID)
}

// Get returns a private copy of the project's snapshot.
func (c *SnapshotCache) Get(projectID string) (models.Snapshot, error) {
	var snap models.Snapshot
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(projectID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.Snapshot{}, fmt.Errorf("%w for project %q", ErrNoSnapshot, projectID)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return snap, nil
}

// Put replaces the project's snapshot.
func (c *SnapshotCache) Put(projectID string, snap models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(snapshotKey(projectID), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Invalidate drops the project's snapshot, if any.
func (c *SnapshotCache) Invalidate(projectID string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(projectID))
	})
}

// Projects lists the project ids with a live snapshot.
func (c *SnapshotCache) Projects() ([]string, error) {
	var ids []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			ids = append(ids, string(key[len(snapshotPrefix):]))
		}
		return nil
	})
	return ids, err
}

func (c *SnapshotCache) Close() error {
	return c.db.Close()
}
