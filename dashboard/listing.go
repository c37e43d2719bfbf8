// ABOUTME: Contact listings, KPI drill-downs and single-contact views
// ABOUTME: Applies tombstones to every listing and picks server or client paging
package dashboard

import (
	"context"
	"fmt"

	"github.com/harperreed/leadgen/cache"
	"github.com/harperreed/leadgen/filter"
	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/kpi"
	"github.com/harperreed/leadgen/metrics"
	"github.com/harperreed/leadgen/models"
	"github.com/harperreed/leadgen/pager"
	"go.uber.org/zap"
)

// Listing is one rendered page of contacts.
type Listing struct {
	Rows   []index.View `json:"rows"`
	Window pager.Window `json:"window"`
	Mode   string       `json:"mode"`
	// Reset is true when the requested page was replaced by page 1.
	Reset bool `json:"reset,omitempty"`
	// Skipped counts contacts excluded because a filter failed on them.
	Skipped int `json:"skipped,omitempty"`
}

// Page lists contacts matching criteria. Without any active filter, search,
// KPI or sort the source pages; otherwise one large page is fetched, filtered
// and sorted here, then sliced.
func (d *Dashboard) Page(ctx context.Context, criteria filter.Criteria, page int) (Listing, error) {
	st, err := d.current()
	if err != nil {
		return Listing{}, err
	}
	if err := criteria.Validate(d.engine.Evaluator()); err != nil {
		return Listing{}, fmt.Errorf("invalid filter: %w", err)
	}

	plan := d.pager.Plan(criteria, page)
	if plan.Mode == pager.ModeServer {
		return d.serverPage(ctx, st, plan)
	}
	return d.clientPage(ctx, st, criteria, plan)
}

func (d *Dashboard) serverPage(ctx context.Context, st *State, plan pager.Plan) (Listing, error) {
	raw, err := d.source.FetchContacts(ctx, st.ProjectID, plan.FetchPage, plan.FetchSize, "")
	if err != nil {
		return Listing{}, d.fetchErr("contacts", st.ProjectID, err)
	}

	fetched := d.normalizeContacts(raw.Data)
	contacts := cache.Merge(fetched)
	visible, dropped := d.tombstones.Filter(contacts)
	d.countTombstoned(plan.Mode, dropped)
	dropped += len(fetched) - len(contacts)

	return Listing{
		Rows:   st.Index.Views(visible),
		Window: pager.ServerWindow(plan.Page, plan.PageSize, raw.Total, len(visible), dropped),
		Mode:   plan.Mode.String(),
		Reset:  plan.Reset,
	}, nil
}

func (d *Dashboard) clientPage(ctx context.Context, st *State, criteria filter.Criteria, plan pager.Plan) (Listing, error) {
	contacts := st.Contacts
	if criteria.Search != "" {
		raw, err := d.source.FetchContacts(ctx, st.ProjectID, plan.FetchPage, plan.FetchSize, criteria.Search)
		if err != nil {
			return Listing{}, d.fetchErr("contacts", st.ProjectID, err)
		}
		contacts = cache.Merge(d.normalizeContacts(raw.Data))
	}

	visible, dropped := d.tombstones.Filter(contacts)
	d.countTombstoned(plan.Mode, dropped)

	matched, errs := d.engine.Apply(visible, criteria, st.Index, st.ProjectID)
	if len(errs) > 0 {
		metrics.FilterErrorsTotal.Add(float64(len(errs)))
		d.logger.Debug("contacts excluded by filter errors", zap.Int("count", len(errs)))
	}

	w := pager.ClientWindow(len(matched), plan.Page, plan.PageSize)
	return Listing{
		Rows:    st.Index.Views(pager.Slice(matched, w)),
		Window:  w,
		Mode:    plan.Mode.String(),
		Reset:   plan.Reset,
		Skipped: len(errs),
	}, nil
}

func (d *Dashboard) countTombstoned(mode pager.Mode, n int) {
	if n > 0 {
		metrics.TombstonedRowsTotal.WithLabelValues(mode.String()).Add(float64(n))
	}
}

// Drilldown lists every contact counted by a KPI tile, sorted by name.
func (d *Dashboard) Drilldown(req kpi.Request) ([]index.View, error) {
	st, err := d.current()
	if err != nil {
		return nil, err
	}
	criteria := filter.Criteria{KPI: &req, Sort: filter.SortNameAsc}
	if err := criteria.Validate(d.engine.Evaluator()); err != nil {
		return nil, err
	}

	visible, dropped := d.tombstones.Filter(st.Contacts)
	d.countTombstoned(pager.ModeClient, dropped)
	matched, errs := d.engine.Apply(visible, criteria, st.Index, st.ProjectID)
	if len(errs) > 0 {
		metrics.FilterErrorsTotal.Add(float64(len(errs)))
	}
	return st.Index.Views(matched), nil
}

// ContactDetail is a single contact with every activity associated with it.
type ContactDetail struct {
	View       index.View        `json:"view"`
	Activities []models.Activity `json:"activities"`
}

// Contact looks up one contact by id, or by name for unsaved suggestions.
func (d *Dashboard) Contact(key string) (ContactDetail, error) {
	st, err := d.current()
	if err != nil {
		return ContactDetail{}, err
	}
	c, err := d.find(st, key)
	if err != nil {
		return ContactDetail{}, err
	}
	acts, _ := st.Index.Resolve(c)
	return ContactDetail{View: st.Index.View(c), Activities: acts}, nil
}

func (d *Dashboard) find(st *State, key string) (models.Contact, error) {
	if d.tombstones.Has(key) {
		return models.Contact{}, fmt.Errorf("contact %q was deleted", key)
	}
	for _, c := range st.Contacts {
		if c.Key() == key {
			return c, nil
		}
	}
	return models.Contact{}, fmt.Errorf("contact %q not found in project %s", key, st.ProjectID)
}

// CheckKPI reports whether one contact counts toward a KPI.
func (d *Dashboard) CheckKPI(key string, req kpi.Request) (bool, error) {
	st, err := d.current()
	if err != nil {
		return false, err
	}
	c, err := d.find(st, key)
	if err != nil {
		return false, err
	}
	return d.engine.Evaluator().HasMatchingActivity(req, c, st.Index, st.ProjectID)
}

// LocalTally recounts every KPI from the loaded contacts and activities.
func (d *Dashboard) LocalTally() (map[models.Channel]map[string]int, error) {
	st, err := d.current()
	if err != nil {
		return nil, err
	}
	visible, _ := d.tombstones.Filter(st.Contacts)
	return d.engine.Evaluator().Tally(visible, st.Index, st.ProjectID), nil
}
