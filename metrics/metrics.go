package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Collector run metrics. They live in their own registry so a run can push
// them to a Pushgateway without the Go runtime collectors.
type CollectorMetrics struct {
	Registry        *prometheus.Registry
	PostsFetched    prometheus.Gauge
	BatchBytes      prometheus.Gauge
	LastSuccess     prometheus.Gauge
	FetchDuration   prometheus.Gauge
	UploadDuration  prometheus.Gauge
	RunsFailedTotal prometheus.Counter
}

func NewCollectorMetrics() *CollectorMetrics {
	m := &CollectorMetrics{
		Registry: prometheus.NewRegistry(),
		PostsFetched: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nba_collector_posts_fetched",
			Help: "Posts written to the last batch file.",
		}),
		BatchBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nba_collector_batch_bytes",
			Help: "Size of the last batch file.",
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nba_collector_last_success_timestamp_seconds",
			Help: "Unix time of the last successful upload.",
		}),
		FetchDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nba_collector_fetch_duration_seconds",
			Help: "Time spent fetching posts in the last run.",
		}),
		UploadDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nba_collector_upload_duration_seconds",
			Help: "Time spent uploading the last batch file.",
		}),
		RunsFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nba_collector_runs_failed_total",
			Help: "Collector runs that aborted.",
		}),
	}
	m.Registry.MustRegister(m.PostsFetched, m.BatchBytes, m.LastSuccess, m.FetchDuration, m.UploadDuration, m.RunsFailedTotal)
	return m
}

// Push sends the run metrics to a Pushgateway under the given job.
func (m *CollectorMetrics) Push(url, job string) error {
	return push.New(url, job).Gatherer(m.Registry).Push()
}

type ViewerMetrics struct {
	Requests     *prometheus.CounterVec
	RenderTime   prometheus.Histogram
	BatchLoads   *prometheus.CounterVec
	CacheHits    prometheus.Counter
	CacheMisses  prometheus.Counter
	FilteredRows prometheus.Histogram
}

// NewViewerMetrics registers the viewer metrics with reg.
func NewViewerMetrics(reg prometheus.Registerer) *ViewerMetrics {
	m := &ViewerMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nba_viewer_requests_total",
			Help: "Viewer requests by route and status code.",
		}, []string{"route", "code"}),
		RenderTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nba_viewer_render_seconds",
			Help:    "Time to load, transform and render the dashboard.",
			Buckets: prometheus.DefBuckets,
		}),
		BatchLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nba_viewer_batch_loads_total",
			Help: "Batch file downloads by result.",
		}, []string{"result"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nba_viewer_derived_cache_hits_total",
			Help: "Batches whose derived columns came from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nba_viewer_derived_cache_misses_total",
			Help: "Batches whose derived columns had to be computed.",
		}),
		FilteredRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nba_viewer_filtered_rows",
			Help:    "Rows left after filtering.",
			Buckets: []float64{0, 1, 10, 50, 100, 250, 500},
		}),
	}
	reg.MustRegister(m.Requests, m.RenderTime, m.BatchLoads, m.CacheHits, m.CacheMisses, m.FilteredRows)
	return m
}
