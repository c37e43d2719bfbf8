// ABOUTME: Merges contact listings from several sources into one deduplicated list
// ABOUTME: Imported project contacts win over placeholders inferred from activities
package cache

import "github.com/harperreed/leadgen/models"

// Merge combines contact lists keyed by Contact.Key. The first record for a
// key is kept unless a later one carries a ProjectContactID and the kept one
// does not; the replacement takes the earlier record's position. Order of
// first appearance is preserved.
func Merge(lists ...[]models.Contact) []models.Contact {
	total := 0
	for _, l := range lists {
		total += len(l)
	}

	out := make([]models.Contact, 0, total)
	pos := make(map[string]int, total)
	for _, l := range lists {
		for _, c := range l {
			key := c.Key()
			if key == "" {
				continue
			}
			i, seen := pos[key]
			if !seen {
				pos[key] = len(out)
				out = append(out, c)
				continue
			}
			if c.Imported() && !out[i].Imported() {
				out[i] = c
			}
		}
	}
	return out
}
