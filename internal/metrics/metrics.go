package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yt_clipper_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yt_clipper_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yt_clipper_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Job pipeline metrics
var (
	JobsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yt_clipper_jobs_submitted_total",
			Help: "Total number of clip jobs accepted",
		},
		[]string{"mode"}, // "async" or "sync"
	)

	JobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yt_clipper_jobs_completed_total",
			Help: "Total number of clip jobs reaching a terminal state",
		},
		[]string{"status"}, // "done" or "error"
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yt_clipper_job_duration_seconds",
			Help:    "End-to-end duration of one job (download + clip)",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yt_clipper_queue_depth",
			Help: "Number of jobs waiting for the worker",
		},
	)
)

// Source cache metrics
var (
	SourceCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yt_clipper_source_cache_hits_total",
			Help: "Total number of source resolutions served from the disk cache",
		},
	)

	SourceCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yt_clipper_source_cache_misses_total",
			Help: "Total number of source resolutions requiring a download",
		},
	)

	SourceDownloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yt_clipper_source_downloads_total",
			Help: "Total number of source downloads",
		},
		[]string{"status"}, // "success" or "error"
	)

	SourceDownloadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "yt_clipper_source_download_duration_seconds",
			Help:    "Source download duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)
)

// Batch metrics
var (
	BatchResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yt_clipper_batch_resets_total",
			Help: "Total number of batch resets",
		},
	)

	BatchCounter = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "yt_clipper_batch_counter",
			Help: "Next sequence index to be reserved",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yt_clipper_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
