// ABOUTME: Prometheus metrics for dashboard refreshes, indexing and bulk logging
// ABOUTME: Registered once on the default registry via promauto
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RefreshesTotal tracks project refreshes by result (applied, stale, failed).
	RefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgen",
			Subsystem: "dashboard",
			Name:      "refreshes_total",
			Help:      "Total number of project refreshes by result",
		},
		[]string{"result"},
	)

	// FetchErrorsTotal tracks failed source fetches by operation.
	FetchErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgen",
			Subsystem: "source",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed source fetches by operation",
		},
		[]string{"op"},
	)

	// IndexBuildDuration tracks how long activity index builds take.
	IndexBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "leadgen",
			Subsystem: "index",
			Name:      "build_duration_seconds",
			Help:      "Duration of activity index builds in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	// RecordsDroppedTotal tracks raw records rejected by normalization.
	RecordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgen",
			Subsystem: "normalize",
			Name:      "records_dropped_total",
			Help:      "Total number of raw records dropped during normalization",
		},
		[]string{"kind"},
	)

	// TombstonedRowsTotal tracks rows suppressed because they were deleted locally.
	TombstonedRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgen",
			Subsystem: "dashboard",
			Name:      "tombstoned_rows_total",
			Help:      "Total number of listing rows suppressed by tombstones",
		},
		[]string{"mode"},
	)

	// FilterErrorsTotal tracks contacts excluded because a predicate failed.
	FilterErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "leadgen",
			Subsystem: "filter",
			Name:      "contact_errors_total",
			Help:      "Total number of contacts excluded by failing predicates",
		},
	)

	// BulkActivitiesTotal tracks bulk-logged activities by status.
	BulkActivitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgen",
			Subsystem: "bulk",
			Name:      "activities_total",
			Help:      "Total number of bulk-logged activities by status",
		},
		[]string{"status"},
	)

	// SnapshotCacheTotal tracks snapshot cache lookups by outcome.
	SnapshotCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "leadgen",
			Subsystem: "snapshot_cache",
			Name:      "lookups_total",
			Help:      "Total number of snapshot cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	// WriteBacksInFlight tracks background stage write-backs still running.
	WriteBacksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "leadgen",
			Subsystem: "dashboard",
			Name:      "write_backs_in_flight",
			Help:      "Number of background stage write-backs in flight",
		},
	)
)
