// ABOUTME: Orchestrates fetch, normalize and index for the project being viewed
// ABOUTME: Each refresh builds a new immutable state; stale refreshes are discarded
package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harperreed/leadgen/cache"
	"github.com/harperreed/leadgen/filter"
	"github.com/harperreed/leadgen/index"
	"github.com/harperreed/leadgen/kpi"
	"github.com/harperreed/leadgen/metrics"
	"github.com/harperreed/leadgen/models"
	"github.com/harperreed/leadgen/normalize"
	"github.com/harperreed/leadgen/pager"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoProject is returned by listing calls made before any project loaded.
var ErrNoProject = errors.New("no project loaded")

// Options configures a Dashboard. Zero values pick defaults.
type Options struct {
	Location         *time.Location
	PageSize         int
	ClientFetchLimit int
	BulkConcurrency  int
	// Snapshots enables instant re-entry into previously loaded projects.
	// The caller owns it and closes it.
	Snapshots *cache.SnapshotCache
	Logger    *zap.Logger
	Now       func() time.Time
}

// State is one fully derived view of a project. It is never mutated once
// published.
type State struct {
	Generation uint64
	ProjectID  string
	Project    models.Project
	// Contacts is the full listing, imported contacts merged with
	// placeholders inferred from activities. Tombstones are not applied.
	Contacts   []models.Contact
	Activities []models.Activity
	Index      *index.Index
	KPI        models.KPISummary
	FetchedAt  time.Time
	FromCache  bool
}

// Dashboard serves listings for one project at a time.
type Dashboard struct {
	source     Source
	norm       *normalize.Normalizer
	engine     *filter.Engine
	pager      *pager.Controller
	tombstones *cache.Tombstones
	snapshots  *cache.SnapshotCache
	logger     *zap.Logger
	now        func() time.Time
	loc        *time.Location
	fetchLimit int
	bulkLimit  int

	state      atomic.Pointer[State]
	generation atomic.Uint64
	applyMu    sync.Mutex
	background sync.WaitGroup
}

// New creates a dashboard over source.
func New(source Source, opts Options) *Dashboard {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClientFetchLimit <= 0 {
		opts.ClientFetchLimit = pager.DefaultClientFetchLimit
	}
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = 4
	}

	return &Dashboard{
		source:     source,
		norm:       normalize.New(opts.Location),
		engine:     filter.NewEngine(kpi.NewEvaluator(), opts.Logger),
		pager:      pager.NewController(opts.PageSize, opts.ClientFetchLimit),
		tombstones: cache.NewTombstones(),
		snapshots:  opts.Snapshots,
		logger:     opts.Logger,
		now:        opts.Now,
		loc:        opts.Location,
		fetchLimit: opts.ClientFetchLimit,
		bulkLimit:  opts.BulkConcurrency,
	}
}

// State returns the current state, or nil before the first load.
func (d *Dashboard) State() *State {
	return d.state.Load()
}

// Evaluator exposes the KPI evaluator used for filtering.
func (d *Dashboard) Evaluator() *kpi.Evaluator {
	return d.engine.Evaluator()
}

// Tombstones exposes the session's deleted-contact set.
func (d *Dashboard) Tombstones() *cache.Tombstones {
	return d.tombstones
}

func (d *Dashboard) today() time.Time {
	return d.now().In(d.loc)
}

// Enter switches to a project. A cached snapshot is published immediately,
// then a refresh runs. If the refresh fails the cached state stays current
// and the fetch error is returned alongside it.
func (d *Dashboard) Enter(ctx context.Context, projectID string) (*State, error) {
	if d.snapshots != nil {
		snap, err := d.snapshots.Get(projectID)
		switch {
		case err == nil:
			metrics.SnapshotCacheTotal.WithLabelValues("hit").Inc()
			gen := d.generation.Add(1)
			d.apply(d.stateFromSnapshot(gen, projectID, snap))
			d.logger.Debug("entered project from snapshot cache",
				zap.String("project", projectID),
				zap.Time("fetched_at", snap.FetchedAt))
		case errors.Is(err, cache.ErrNoSnapshot):
			metrics.SnapshotCacheTotal.WithLabelValues("miss").Inc()
		default:
			d.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
	}

	st, err := d.Refresh(ctx, projectID)
	if err != nil {
		if cur := d.state.Load(); cur != nil && cur.ProjectID == projectID {
			return cur, err
		}
		return nil, err
	}
	return st, nil
}

func (d *Dashboard) stateFromSnapshot(gen uint64, projectID string, snap models.Snapshot) *State {
	return &State{
		Generation: gen,
		ProjectID:  projectID,
		Project:    snap.Project,
		Contacts:   snap.Contacts,
		Activities: snap.Activities,
		Index:      d.buildIndex(snap.Activities),
		KPI:        snap.KPI,
		FetchedAt:  snap.FetchedAt,
		FromCache:  true,
	}
}

func (d *Dashboard) buildIndex(acts []models.Activity) *index.Index {
	start := time.Now()
	ix := index.Build(acts, d.today())
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	return ix
}

// Refresh fetches everything for projectID concurrently, normalizes it and
// publishes a new state. A refresh that finishes after a newer one was
// published is discarded and the newer state is returned. On failure the
// previous state is kept and a *FetchError is returned.
func (d *Dashboard) Refresh(ctx context.Context, projectID string) (*State, error) {
	gen := d.generation.Add(1)

	var (
		rawActs       []normalize.Record
		rawContacts   RawPage
		rawInferred   []normalize.Record
		summary       models.KPISummary
		project       = models.Project{ID: projectID}
		projectLoaded bool
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		rawActs, err = d.source.FetchActivities(ctx, projectID)
		return d.fetchErr("activities", projectID, err)
	})
	g.Go(func() error {
		var err error
		rawContacts, err = d.source.FetchContacts(ctx, projectID, 1, d.fetchLimit, "")
		return d.fetchErr("contacts", projectID, err)
	})
	g.Go(func() error {
		var err error
		summary, err = d.source.FetchKPISummary(ctx, projectID)
		return d.fetchErr("KPI summary", projectID, err)
	})
	if pf, ok := d.source.(ProjectFetcher); ok {
		g.Go(func() error {
			p, err := pf.FetchProject(ctx, projectID)
			if err == nil {
				project, projectLoaded = p, true
			}
			return d.fetchErr("project", projectID, err)
		})
	}
	if af, ok := d.source.(ActivityContactFetcher); ok {
		g.Go(func() error {
			var err error
			rawInferred, err = af.FetchActivityContacts(ctx, projectID)
			return d.fetchErr("activity contacts", projectID, err)
		})
	}

	if err := g.Wait(); err != nil {
		metrics.RefreshesTotal.WithLabelValues("failed").Inc()
		d.logger.Warn("refresh failed, keeping last good state",
			zap.String("project", projectID),
			zap.Uint64("generation", gen),
			zap.Error(err))
		return nil, err
	}

	acts := d.normalizeActivities(rawActs)
	imported := d.normalizeContacts(rawContacts.Data)
	inferred := d.normalizeContacts(rawInferred)
	if !projectLoaded {
		if cur := d.state.Load(); cur != nil && cur.ProjectID == projectID {
			project = cur.Project
		}
	}

	st := &State{
		Generation: gen,
		ProjectID:  projectID,
		Project:    project,
		Contacts:   cache.Merge(imported, inferred),
		Activities: acts,
		Index:      d.buildIndex(acts),
		KPI:        summary,
		FetchedAt:  d.now(),
	}

	current, applied := d.apply(st)
	if !applied {
		metrics.RefreshesTotal.WithLabelValues("stale").Inc()
		d.logger.Debug("discarding stale refresh",
			zap.String("project", projectID),
			zap.Uint64("generation", gen),
			zap.Uint64("current", current.Generation))
		return current, nil
	}
	metrics.RefreshesTotal.WithLabelValues("applied").Inc()

	if d.snapshots != nil {
		snap := models.Snapshot{
			Project:    st.Project,
			Contacts:   st.Contacts,
			Activities: st.Activities,
			KPI:        st.KPI,
			FetchedAt:  st.FetchedAt,
		}
		if err := d.snapshots.Put(projectID, snap); err != nil {
			d.logger.Warn("failed to cache snapshot", zap.String("project", projectID), zap.Error(err))
		}
	}
	return st, nil
}

// apply publishes st unless a newer generation is already current.
func (d *Dashboard) apply(st *State) (*State, bool) {
	d.applyMu.Lock()
	defer d.applyMu.Unlock()

	if cur := d.state.Load(); cur != nil && cur.Generation > st.Generation {
		return cur, false
	}
	d.state.Store(st)
	return st, true
}

func (d *Dashboard) fetchErr(op, projectID string, err error) error {
	if err == nil {
		return nil
	}
	metrics.FetchErrorsTotal.WithLabelValues(op).Inc()
	return &FetchError{Op: op, ProjectID: projectID, Err: err}
}

func (d *Dashboard) normalizeActivities(records []normalize.Record) []models.Activity {
	acts, errs := d.norm.Activities(records)
	d.logDropped("activity", errs)
	return acts
}

func (d *Dashboard) normalizeContacts(records []normalize.Record) []models.Contact {
	contacts, errs := d.norm.Contacts(records)
	d.logDropped("contact", errs)
	return contacts
}

func (d *Dashboard) logDropped(kind string, errs []error) {
	if len(errs) == 0 {
		return
	}
	metrics.RecordsDroppedTotal.WithLabelValues(kind).Add(float64(len(errs)))
	for _, err := range errs {
		d.logger.Debug("dropped malformed record", zap.String("kind", kind), zap.Error(err))
	}
}

// Close waits for background write-backs to finish.
func (d *Dashboard) Close() error {
	d.background.Wait()
	return nil
}

func (d *Dashboard) current() (*State, error) {
	st := d.state.Load()
	if st == nil {
		return nil, ErrNoProject
	}
	return st, nil
}
