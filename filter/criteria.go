// ABOUTME: Contact listing criteria combining status, date, activity and KPI filters
// ABOUTME: Validates criteria and derives the signature used to detect changes
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/leadgen/dates"
	"github.com/harperreed/leadgen/kpi"
)

// Sort orders a filtered listing by contact name.
type Sort string

const (
	SortNone     Sort = ""
	SortNameAsc  Sort = "name"
	SortNameDesc Sort = "-name"
)

// ParseSort accepts "name", "name-asc", "asc", "-name", "name-desc" and "desc".
func ParseSort(s string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return SortNone, nil
	case "name", "name-asc", "asc":
		return SortNameAsc, nil
	case "-name", "name-desc", "desc":
		return SortNameDesc, nil
	}
	return SortNone, fmt.Errorf("invalid sort %q", s)
}

// Buckets each date filter accepts. Custom ranges are always allowed.
var (
	NextActionBuckets      = []dates.Bucket{dates.BucketToday, dates.BucketTomorrow, dates.BucketThisWeek, dates.BucketThisMonth}
	LastInteractionBuckets = []dates.Bucket{dates.BucketToday, dates.BucketYesterday, dates.BucketThisWeek, dates.BucketThisMonth}
	ImportDateBuckets      = []dates.Bucket{dates.BucketToday, dates.BucketYesterday}
)

// Criteria is the full set of filters on a contact listing. Every set
// filter must pass. Search is matched by the data source and only takes
// part here through Active and Signature.
type Criteria struct {
	Status          string       `json:"status,omitempty"`
	NextAction      dates.Window `json:"-"`
	LastInteraction dates.Window `json:"-"`
	ImportDate      dates.Window `json:"-"`
	NoActivity      bool         `json:"no_activity,omitempty"`
	KPI             *kpi.Request `json:"kpi,omitempty"`
	Search          string       `json:"search,omitempty"`
	Sort            Sort         `json:"sort,omitempty"`
}

// Active reports whether any search, filter or KPI narrows the listing.
// Sorting alone does not.
func (c Criteria) Active() bool {
	return strings.TrimSpace(c.Search) != "" ||
		strings.TrimSpace(c.Status) != "" ||
		!c.NextAction.IsZero() ||
		!c.LastInteraction.IsZero() ||
		!c.ImportDate.IsZero() ||
		c.NoActivity ||
		c.KPI != nil
}

// Ordered reports whether the listing has to be sorted as a whole. A name
// sort cannot be applied page by page because the source pages in its own
// order.
func (c Criteria) Ordered() bool {
	return c.Sort != SortNone
}

// Validate rejects buckets a filter does not support and KPI requests the
// evaluator does not know.
func (c Criteria) Validate(e *kpi.Evaluator) error {
	if err := c.NextAction.Allow(NextActionBuckets...); err != nil {
		return fmt.Errorf("next action: %w", err)
	}
	if err := c.LastInteraction.Allow(LastInteractionBuckets...); err != nil {
		return fmt.Errorf("last interaction: %w", err)
	}
	if err := c.ImportDate.Allow(ImportDateBuckets...); err != nil {
		return fmt.Errorf("import date: %w", err)
	}
	switch c.Sort {
	case SortNone, SortNameAsc, SortNameDesc:
	default:
		return fmt.Errorf("invalid sort %q", c.Sort)
	}
	if c.KPI != nil {
		if _, err := e.Resolve(*c.KPI); err != nil {
			return err
		}
	}
	return nil
}

// Signature is a stable key for the criteria. Two criteria with the same
// signature select and order the same rows.
func (c Criteria) Signature() string {
	kpiKey := ""
	if c.KPI != nil {
		kpiKey = c.KPI.String()
	}
	parts := []string{
		"q=" + strings.TrimSpace(c.Search),
		"status=" + strings.TrimSpace(c.Status),
		"next=" + c.NextAction.String(),
		"last=" + c.LastInteraction.String(),
		"import=" + c.ImportDate.String(),
		"none=" + strconv.FormatBool(c.NoActivity),
		"kpi=" + kpiKey,
		"sort=" + string(c.Sort),
	}
	return strings.Join(parts, "|")
}
