// ABOUTME: Session-scoped record of contacts the user deleted
// ABOUTME: Filters every listing so stale fetches cannot bring deleted rows back
package cache

import (
	"sync"

	"github.com/harperreed/leadgen/models"
)

// Tombstones is a concurrency-safe set of deleted contact keys.
type Tombstones struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewTombstones() *Tombstones {
	return &Tombstones{ids: make(map[string]struct{})}
}

func (t *Tombstones) Add(id string) {
	if id == "" {
		return
	}
	t.mu.Lock()
	t.ids[id] = struct{}{}
	t.mu.Unlock()
}

// Remove forgets a tombstone, used when a deletion is rolled back.
func (t *Tombstones) Remove(id string) {
	t.mu.Lock()
	delete(t.ids, id)
	t.mu.Unlock()
}

func (t *Tombstones) Has(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.ids[id]
	return ok
}

func (t *Tombstones) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}

// Filter returns the contacts that are not tombstoned and how many were
// dropped. The input slice is not modified.
func (t *Tombstones) Filter(contacts []models.Contact) ([]models.Contact, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if len(t.ids) == 0 {
		return contacts, 0
	}
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if _, dead := t.ids[c.Key()]; dead {
			continue
		}
		out = append(out, c)
	}
	return out, len(contacts) - len(out)
}
